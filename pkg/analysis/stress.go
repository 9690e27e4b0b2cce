package analysis

import (
	"math"
	"strconv"

	"architecture-risk-engine/pkg/graph"
)

// StressLevels are the load increases, in percent, applied by RunStressTests.
var StressLevels = []float64{20, 50, 100}

const noFailure = "None"

// SimulateLoadIncrease raises every node's own load by percentage. Load is not
// propagated along edges.
func SimulateLoadIncrease(nodes []graph.Node, percentage float64) StressResult {
	multiplier := 1 + percentage/100

	results := make([]StressEntry, 0, len(nodes))
	firstFailure := noFailure
	for _, n := range nodes {
		capacity := n.Capacity.Float()
		load := n.Load.Float()
		newLoad := math.Round(load * multiplier)
		u := graph.Utilization(newLoad, capacity)
		status := Status(u)

		if status == StatusCrashed && firstFailure == noFailure {
			firstFailure = n.ID
		}

		results = append(results, StressEntry{
			Service:      n.ID,
			OriginalLoad: load,
			NewLoad:      newLoad,
			Capacity:     capacity,
			Status:       status,
			Utilization:  formatPercent(u, 1),
		})
	}

	return StressResult{
		Increase:          strconv.FormatFloat(percentage, 'f', -1, 64) + "%",
		SimulationResults: results,
		FirstFailure:      firstFailure,
	}
}

func RunStressTests(nodes []graph.Node) []StressResult {
	out := make([]StressResult, 0, len(StressLevels))
	for _, level := range StressLevels {
		out = append(out, SimulateLoadIncrease(nodes, level))
	}
	return out
}
