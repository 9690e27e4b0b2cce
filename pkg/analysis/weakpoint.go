package analysis

import (
	"math"

	"architecture-risk-engine/pkg/graph"
)

// FindWeakestService returns the node with the least remaining headroom
// (capacity-load, possibly negative), or nil for an empty diagram. Ties keep
// the earliest node.
func FindWeakestService(nodes []graph.Node) *WeakPoint {
	if len(nodes) == 0 {
		return nil
	}

	var weakest *WeakPoint
	minRemaining := math.Inf(1)
	for _, n := range nodes {
		capacity := n.Capacity.Float()
		load := n.Load.Float()
		remaining := capacity - load

		if remaining < minRemaining {
			minRemaining = remaining
			weakest = &WeakPoint{
				WeakestService:    n.ID,
				RemainingCapacity: remaining,
				Utilization:       formatPercent(graph.Utilization(load, capacity), 2),
			}
		}
	}

	weakest.Risk = weakPointRisk(weakest.RemainingCapacity)
	return weakest
}

// weakPointRisk compares headroom against a fifth of itself, which only holds
// for negative headroom; those are already critical, so "high" never occurs.
func weakPointRisk(remaining float64) string {
	if remaining <= 0 {
		return RiskCritical
	}
	if remaining < remaining*0.2 {
		return RiskHigh
	}
	return RiskLow
}
