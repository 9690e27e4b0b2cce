package analysis

import "architecture-risk-engine/pkg/graph"

const (
	LatencyHighThreshold    = 200.0
	LatencyWarningThreshold = 120.0
)

func latencyEntry(nodes []graph.Node, opts Options) string {
	if opts.EntryNodeID != "" && graph.Contains(nodes, opts.EntryNodeID) {
		return opts.EntryNodeID
	}
	if graph.Contains(nodes, opts.PreferredLatencyEntry) {
		return opts.PreferredLatencyEntry
	}
	return nodes[0].ID
}

// DetectLatencyRisk finds the slowest simple path from the entry node.
func DetectLatencyRisk(nodes []graph.Node, edges []graph.Edge, opts Options) LatencyResult {
	if len(nodes) == 0 {
		return LatencyResult{CriticalPathLatency: 0, Risk: RiskLow}
	}
	opts = opts.withDefaults()

	entry := latencyEntry(nodes, opts)
	g := graph.BuildWithLatency(edges, *opts.DefaultEdgeLatency)
	total := graph.LongestLatency(entry, g)

	return LatencyResult{
		EntryNode:           entry,
		CriticalPathLatency: total,
		Risk:                latencyRisk(total),
	}
}

func latencyRisk(total float64) string {
	switch {
	case total > LatencyHighThreshold:
		return RiskHigh
	case total > LatencyWarningThreshold:
		return RiskWarning
	default:
		return RiskLow
	}
}
