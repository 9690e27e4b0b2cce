package analysis

import "architecture-risk-engine/pkg/graph"

// Report is the combined output of one analysis request.
type Report struct {
	BottleneckResult  []BottleneckEntry `json:"bottleneckResult"`
	SpofResult        []SpofEntry       `json:"spofResult"`
	LatencyRiskResult LatencyResult     `json:"latencyRiskResult"`
	OverallRisk       RiskScore         `json:"overallRisk"`
	Suggestions       []string          `json:"suggestions"`
	WeakestPoint      *WeakPoint        `json:"weakestPoint"`
}

// Analyze runs every structural engine over d and aggregates the score.
func Analyze(d graph.Diagram, opts Options) Report {
	bottlenecks := DetectBottlenecks(d.Nodes)
	spofs := DetectSPOF(d.Nodes, d.Edges, opts)
	latency := DetectLatencyRisk(d.Nodes, d.Edges, opts)

	return Report{
		BottleneckResult:  bottlenecks,
		SpofResult:        spofs,
		LatencyRiskResult: latency,
		OverallRisk:       CalculateRiskScore(bottlenecks, spofs, latency),
		Suggestions:       GenerateSuggestions(bottlenecks, spofs, latency),
		WeakestPoint:      FindWeakestService(d.Nodes),
	}
}
