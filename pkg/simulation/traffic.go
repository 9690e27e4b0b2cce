package simulation

import (
	"math"

	"architecture-risk-engine/pkg/config"
	"architecture-risk-engine/pkg/graph"
)

const (
	DefaultMaxVisitsPerNode = 3
	MaxVisitsPerNodeLimit   = config.MaxVisitsPerNodeLimit

	TrafficCriticalThreshold   = 1.2
	TrafficOverloadedThreshold = 0.85
	TrafficWarningThreshold    = 0.6
)

const (
	StatusCritical   = "critical"
	StatusOverloaded = "overloaded"
	StatusWarning    = "warning"
	StatusSafe       = "safe"
)

type TrafficRequest struct {
	TotalTraffic     float64
	EntryNode        string
	Nodes            []graph.Node
	Edges            []graph.Edge
	MaxVisitsPerNode int
}

// NodeSummary is the derived state of one node after propagation.
type NodeSummary struct {
	ID                 string  `json:"id"`
	Load               float64 `json:"load"`
	Capacity           float64 `json:"capacity"`
	Utilization        float64 `json:"utilization"`
	UtilizationPercent float64 `json:"utilizationPercent"`
	Status             string  `json:"status"`
	Queue              float64 `json:"queue"`
	Latency            float64 `json:"latency"`
}

type TrafficResult struct {
	NodeLoads     map[string]float64 `json:"nodeLoads"`
	NodeSummaries []NodeSummary      `json:"nodeSummaries"`
}

func trafficStatus(utilization float64) string {
	switch {
	case utilization >= TrafficCriticalThreshold:
		return StatusCritical
	case utilization >= TrafficOverloadedThreshold:
		return StatusOverloaded
	case utilization >= TrafficWarningThreshold:
		return StatusWarning
	default:
		return StatusSafe
	}
}

func validFloat(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// saturate pins overflowed values to the largest finite float so results
// always encode as JSON numbers.
func saturate(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case math.IsInf(v, 1):
		return math.MaxFloat64
	case math.IsInf(v, -1):
		return -math.MaxFloat64
	}
	return v
}

func visitCap(n int) (int, error) {
	if n < 0 || n > MaxVisitsPerNodeLimit {
		return 0, invalid("maxVisitsPerNode", "maxVisitsPerNode must be between 0 and %d", MaxVisitsPerNodeLimit)
	}
	if n == 0 {
		return DefaultMaxVisitsPerNode, nil
	}
	return n, nil
}

func validateTopology(entry string, nodes []graph.Node) error {
	if entry == "" {
		return invalid("entryNode", "entryNode is required")
	}
	if len(nodes) == 0 {
		return invalid("nodes", "nodes must be a non-empty array")
	}
	if !graph.Contains(nodes, entry) {
		return invalid("entryNode", "Entry node '%s' not found in nodes", entry)
	}
	return nil
}

// propagate pushes traffic from entry breadth-first along split edges. A node
// is expanded at most maxVisits times; every expansion forwards its current
// accumulated load, so shared downstream nodes may accumulate more than once.
func propagate(entry string, traffic float64, g graph.SplitAdjacency, maxVisits int) map[string]float64 {
	load := make(map[string]float64, len(g))
	for id := range g {
		load[id] = 0
	}
	load[entry] = traffic

	visits := make(map[string]int)
	queue := []string{entry}
	for head := 0; head < len(queue); head++ {
		curr := queue[head]

		visits[curr]++
		if visits[curr] > maxVisits {
			continue
		}

		currLoad := load[curr]
		for _, e := range g[curr] {
			if e.To == "" || !validFloat(e.Percentage) || e.Percentage <= 0 {
				continue
			}
			toChild := currLoad * (e.Percentage / 100)
			if !validFloat(toChild) || toChild <= 0 {
				continue
			}
			load[e.To] = saturate(load[e.To] + toChild)
			queue = append(queue, e.To)
		}
	}
	return load
}

// SimulateTraffic distributes TotalTraffic from EntryNode through percentage
// splits and derives per-node utilization, queue and latency.
func SimulateTraffic(req TrafficRequest) (*TrafficResult, error) {
	if !validFloat(req.TotalTraffic) || req.TotalTraffic < 0 {
		return nil, invalid("totalTraffic", "totalTraffic must be a non-negative number")
	}
	if err := validateTopology(req.EntryNode, req.Nodes); err != nil {
		return nil, err
	}

	maxVisits, err := visitCap(req.MaxVisitsPerNode)
	if err != nil {
		return nil, err
	}

	g := graph.BuildSplit(req.Nodes, req.Edges)
	loads := propagate(req.EntryNode, req.TotalTraffic, g, maxVisits)

	summaries := make([]NodeSummary, 0, len(req.Nodes))
	nodeLoads := make(map[string]float64, len(req.Nodes))
	for _, n := range req.Nodes {
		load := math.Round(loads[n.ID])
		capacity := n.Capacity.Float()
		utilization := graph.Utilization(load, capacity)
		baseLatency := n.BaseLatency.Float()

		// Anything above capacity queues.
		queue := 0.0
		if capacity > 0 {
			queue = math.Max(0, load-capacity)
		}
		latency := baseLatency
		if capacity > 0 {
			latency = saturate(baseLatency + (queue/capacity)*100)
		}

		summaries = append(summaries, NodeSummary{
			ID:                 n.ID,
			Load:               load,
			Capacity:           capacity,
			Utilization:        utilization,
			UtilizationPercent: math.Round(saturate(utilization*1000)) / 10,
			Status:             trafficStatus(utilization),
			Queue:              queue,
			Latency:            latency,
		})
		nodeLoads[n.ID] = load
	}

	return &TrafficResult{
		NodeLoads:     nodeLoads,
		NodeSummaries: summaries,
	}, nil
}
