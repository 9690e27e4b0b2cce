package analysis

import (
	"fmt"

	"architecture-risk-engine/pkg/graph"
)

// Status classifies a 0-1 utilization. First match wins.
func Status(utilization float64) string {
	switch {
	case utilization >= CrashedThreshold:
		return StatusCrashed
	case utilization >= DangerThreshold:
		return StatusDanger
	case utilization >= WarningThreshold:
		return StatusWarning
	default:
		return StatusSafe
	}
}

func formatPercent(utilization float64, decimals int) string {
	return fmt.Sprintf("%.*f%%", decimals, utilization*100)
}

// DetectBottlenecks classifies every node by its own load and capacity.
func DetectBottlenecks(nodes []graph.Node) []BottleneckEntry {
	out := make([]BottleneckEntry, 0, len(nodes))
	for _, n := range nodes {
		load := n.Load.Float()
		capacity := n.Capacity.Float()
		u := graph.Utilization(load, capacity)

		out = append(out, BottleneckEntry{
			Service:     n.ID,
			Load:        load,
			Capacity:    capacity,
			Utilization: formatPercent(u, 1),
			Status:      Status(u),
		})
	}
	return out
}
