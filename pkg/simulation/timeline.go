package simulation

import (
	"math"

	"architecture-risk-engine/pkg/graph"
)

const (
	DefaultTimeoutMs   = 2000.0
	DefaultRetryRate   = 1.0
	DefaultFailureRate = 0.3

	ReasonQueueOverflow = "queue_overflow"
	ReasonTimeout       = "timeout"
	ReasonOverload      = "overload"
)

type TrafficStep struct {
	T            float64      `json:"t"`
	TotalTraffic graph.Number `json:"total_traffic"`
}

type TimelineRequest struct {
	Steps            []TrafficStep
	EntryNode        string
	Nodes            []graph.Node
	Edges            []graph.Edge
	MaxVisitsPerNode int
	TimeoutMs        float64
	RetryRate        float64
	FailureRate      float64
}

type TimelineNodeResult struct {
	ID              string  `json:"id"`
	IncomingTraffic float64 `json:"incoming_traffic"`
	Capacity        float64 `json:"capacity"`
	Utilization     float64 `json:"utilization"`
	Status          string  `json:"status"`
	Queue           float64 `json:"queue"`
	Latency         float64 `json:"latency"`
}

func (n TimelineNodeResult) failing() bool {
	return n.Status == StatusCritical || n.Utilization > 1 || n.Queue > n.Capacity
}

type TimelineStep struct {
	T                float64              `json:"t"`
	BaseTraffic      float64              `json:"base_traffic"`
	RetryTraffic     float64              `json:"retry_traffic"`
	EffectiveTraffic float64              `json:"effective_traffic"`
	NodeResults      []TimelineNodeResult `json:"node_results"`
}

type FirstFailure struct {
	NodeID    string  `json:"node_id"`
	AtTime    float64 `json:"at_time"`
	AtTraffic float64 `json:"at_traffic"`
	Reason    string  `json:"reason"`
}

type TimelineResult struct {
	Steps        []TimelineStep `json:"steps"`
	StableUntil  *float64       `json:"stable_until"`
	FirstFailure *FirstFailure  `json:"first_failure"`
}

// SimulateTrafficOverTime runs propagation once per step. Queues only grow
// between steps, and nodes whose latency exceeds TimeoutMs generate retry
// traffic that is added to the next step's entry traffic.
func SimulateTrafficOverTime(req TimelineRequest) (*TimelineResult, error) {
	if len(req.Steps) == 0 {
		return nil, invalid("trafficSteps", "trafficSteps must be a non-empty array")
	}
	if err := validateTopology(req.EntryNode, req.Nodes); err != nil {
		return nil, err
	}
	if !validFloat(req.RetryRate) || req.RetryRate < 0 {
		return nil, invalid("retryRate", "retry_rate must be a non-negative number")
	}
	if !validFloat(req.FailureRate) || req.FailureRate < 0 {
		return nil, invalid("failureRate", "failure_rate must be a non-negative number")
	}

	maxVisits, err := visitCap(req.MaxVisitsPerNode)
	if err != nil {
		return nil, err
	}
	timeoutMs := req.TimeoutMs
	if !validFloat(timeoutMs) || timeoutMs <= 0 {
		timeoutMs = DefaultTimeoutMs
	}

	g := graph.BuildSplit(req.Nodes, req.Edges)

	queues := make(map[string]float64, len(req.Nodes))
	result := &TimelineResult{Steps: make([]TimelineStep, 0, len(req.Steps))}
	carryRetry := 0.0

	for _, step := range req.Steps {
		base := step.TotalTraffic.Float()
		effective := saturate(base + carryRetry)
		loads := propagate(req.EntryNode, effective, g, maxVisits)

		stepRetry := 0.0
		nodeResults := make([]TimelineNodeResult, 0, len(req.Nodes))
		for _, n := range req.Nodes {
			load := math.Round(loads[n.ID])
			capacity := n.Capacity.Float()
			utilization := graph.Utilization(load, capacity)
			baseLatency := n.BaseLatency.Float()

			if capacity > 0 {
				queues[n.ID] = saturate(queues[n.ID] + math.Max(0, load-capacity))
			}
			queue := queues[n.ID]

			latency := baseLatency
			if capacity > 0 {
				latency = saturate(baseLatency + (queue/capacity)*100)
			}

			status := trafficStatus(utilization)
			if latency > timeoutMs {
				status = StatusCritical
			}

			if latency > timeoutMs && load > 0 {
				failed := saturate(load * req.FailureRate)
				stepRetry = saturate(stepRetry + failed*req.RetryRate)
			}

			nodeResults = append(nodeResults, TimelineNodeResult{
				ID:              n.ID,
				IncomingTraffic: load,
				Capacity:        capacity,
				Utilization:     utilization,
				Status:          status,
				Queue:           queue,
				Latency:         latency,
			})
		}

		var failing *TimelineNodeResult
		for i := range nodeResults {
			if nodeResults[i].failing() {
				failing = &nodeResults[i]
				break
			}
		}

		if failing == nil {
			stable := effective
			result.StableUntil = &stable
		} else if result.FirstFailure == nil {
			result.FirstFailure = &FirstFailure{
				NodeID:    failing.ID,
				AtTime:    step.T,
				AtTraffic: effective,
				Reason:    failureReason(*failing, timeoutMs),
			}
		}

		result.Steps = append(result.Steps, TimelineStep{
			T:                step.T,
			BaseTraffic:      base,
			RetryTraffic:     stepRetry,
			EffectiveTraffic: effective,
			NodeResults:      nodeResults,
		})

		carryRetry = stepRetry
	}

	return result, nil
}

func failureReason(n TimelineNodeResult, timeoutMs float64) string {
	if n.Queue > n.Capacity {
		return ReasonQueueOverflow
	}
	if n.Latency > timeoutMs {
		return ReasonTimeout
	}
	return ReasonOverload
}
