package analysis

import "fmt"

const (
	DangerWeight       = 15
	WarningWeight      = 7
	CriticalSpofWeight = 20
	HighSpofWeight     = 10
	HighLatencyWeight  = 25
	WarnLatencyWeight  = 15

	MaxRiskScore = 100

	RiskHighThreshold   = 70
	RiskMediumThreshold = 40
)

const (
	OverallHigh   = "High"
	OverallMedium = "Medium"
	OverallLow    = "Low"
)

// CalculateRiskScore combines bottleneck, SPOF and latency findings into a
// score capped at MaxRiskScore.
func CalculateRiskScore(bottlenecks []BottleneckEntry, spofs []SpofEntry, latency LatencyResult) RiskScore {
	bottleneckRisk := 0
	for _, b := range bottlenecks {
		switch b.Status {
		case StatusDanger:
			bottleneckRisk += DangerWeight
		case StatusWarning:
			bottleneckRisk += WarningWeight
		}
	}

	spofRisk := 0
	for _, s := range spofs {
		switch s.Risk {
		case RiskCritical:
			spofRisk += CriticalSpofWeight
		case RiskHigh:
			spofRisk += HighSpofWeight
		}
	}

	latencyRisk := 0
	switch latency.Risk {
	case RiskHigh:
		latencyRisk = HighLatencyWeight
	case RiskWarning:
		latencyRisk = WarnLatencyWeight
	}

	score := bottleneckRisk + spofRisk + latencyRisk
	if score > MaxRiskScore {
		score = MaxRiskScore
	}

	return RiskScore{
		RiskScore:   score,
		OverallRisk: overallLabel(score),
		Breakdown: RiskBreakdown{
			BottleneckRisk: bottleneckRisk,
			SpofRisk:       spofRisk,
			LatencyRisk:    latencyRisk,
		},
	}
}

func overallLabel(score int) string {
	if score > RiskHighThreshold {
		return OverallHigh
	} else if score > RiskMediumThreshold {
		return OverallMedium
	}
	return OverallLow
}

// GenerateSuggestions emits one line per triggering finding, in source order.
func GenerateSuggestions(bottlenecks []BottleneckEntry, spofs []SpofEntry, latency LatencyResult) []string {
	suggestions := []string{}

	for _, b := range bottlenecks {
		if b.Status == StatusDanger {
			suggestions = append(suggestions,
				fmt.Sprintf("Service %s is overloaded. Consider scaling or load balancing.", b.Service))
		}
	}

	for _, s := range spofs {
		if s.Risk == RiskCritical {
			suggestions = append(suggestions,
				fmt.Sprintf("%s is a single point of failure. Add redundancy or replica.", s.Service))
		}
	}

	if latency.Risk == RiskHigh || latency.Risk == RiskWarning {
		suggestions = append(suggestions,
			"Critical path latency is high. Optimize service communication or caching.")
	}

	return suggestions
}
