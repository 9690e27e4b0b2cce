package analysis

// Utilization tiers used by bottleneck and stress results.
const (
	StatusCrashed = "crashed"
	StatusDanger  = "danger"
	StatusWarning = "warning"
	StatusSafe    = "safe"

	CrashedThreshold = 1.0
	DangerThreshold  = 0.85
	WarningThreshold = 0.6
)

const (
	RiskCritical = "critical"
	RiskHigh     = "high"
	RiskWarning  = "warning"
	RiskLow      = "low"
)

type BottleneckEntry struct {
	Service     string  `json:"service"`
	Load        float64 `json:"load"`
	Capacity    float64 `json:"capacity"`
	Utilization string  `json:"utilization"`
	Status      string  `json:"status"`
}

type SpofEntry struct {
	Service          string `json:"service"`
	AffectedServices int    `json:"affectedServices"`
	Risk             string `json:"risk"`
}

type CascadeEntry struct {
	InitialFailure   string   `json:"initialFailure"`
	CascadedFailures []string `json:"cascadedFailures"`
	TotalAffected    int      `json:"totalAffected"`
}

type LatencyResult struct {
	EntryNode           string  `json:"entryNode,omitempty"`
	CriticalPathLatency float64 `json:"criticalPathLatency"`
	Risk                string  `json:"risk"`
}

type StressEntry struct {
	Service      string  `json:"service"`
	OriginalLoad float64 `json:"originalLoad"`
	NewLoad      float64 `json:"newLoad"`
	Capacity     float64 `json:"capacity"`
	Status       string  `json:"status"`
	Utilization  string  `json:"utilization"`
}

type StressResult struct {
	Increase          string        `json:"increase"`
	SimulationResults []StressEntry `json:"simulationResults"`
	FirstFailure      string        `json:"firstFailure"`
}

type WeakPoint struct {
	WeakestService    string  `json:"weakestService"`
	RemainingCapacity float64 `json:"remainingCapacity"`
	Utilization       string  `json:"utilization"`
	Risk              string  `json:"risk"`
}

type RiskBreakdown struct {
	BottleneckRisk int `json:"bottleneckRisk"`
	SpofRisk       int `json:"spofRisk"`
	LatencyRisk    int `json:"latencyRisk"`
}

type RiskScore struct {
	RiskScore   int           `json:"riskScore"`
	OverallRisk string        `json:"overallRisk"`
	Breakdown   RiskBreakdown `json:"breakdown"`
}

// Options tunes entry-node selection and latency defaults. The zero value is
// completed by withDefaults.
type Options struct {
	// EntryNodeID overrides the analysis entry point for SPOF and latency.
	EntryNodeID string
	// PreferredLatencyEntry is tried before the first node when EntryNodeID is
	// empty or unknown.
	PreferredLatencyEntry string
	// DefaultEdgeLatency applies to edges without a latency.
	DefaultEdgeLatency *float64
}

const (
	defaultLatencyEntry = "api-gateway"
	defaultEdgeLatency  = 10.0
)

func (o Options) withDefaults() Options {
	if o.PreferredLatencyEntry == "" {
		o.PreferredLatencyEntry = defaultLatencyEntry
	}
	if o.DefaultEdgeLatency == nil {
		d := defaultEdgeLatency
		o.DefaultEdgeLatency = &d
	}
	return o
}
