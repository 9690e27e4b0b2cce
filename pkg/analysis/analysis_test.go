package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"architecture-risk-engine/pkg/graph"
)

func node(id string, capacity, load float64) graph.Node {
	return graph.Node{ID: id, Capacity: graph.Number(capacity), Load: graph.Number(load)}
}

func edge(src, tgt string) graph.Edge {
	return graph.Edge{Source: src, Target: tgt}
}

func latencyEdge(src, tgt string, latency float64) graph.Edge {
	return graph.Edge{Source: src, Target: tgt, Latency: &latency}
}

func chain() ([]graph.Node, []graph.Edge) {
	nodes := []graph.Node{node("A", 100, 10), node("B", 100, 10), node("C", 100, 10)}
	edges := []graph.Edge{edge("A", "B"), edge("B", "C")}
	return nodes, edges
}

func TestStatus_Thresholds(t *testing.T) {
	tests := []struct {
		u    float64
		want string
	}{
		{0, StatusSafe},
		{0.59, StatusSafe},
		{0.6, StatusWarning},
		{0.849, StatusWarning},
		{0.85, StatusDanger},
		{0.99, StatusDanger},
		{1.0, StatusCrashed},
		{3.5, StatusCrashed},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Status(tt.u), "utilization %v", tt.u)
	}
}

func TestDetectBottlenecks(t *testing.T) {
	t.Run("single danger node", func(t *testing.T) {
		got := DetectBottlenecks([]graph.Node{node("A", 100, 90)})
		assert.Equal(t, []BottleneckEntry{{
			Service:     "A",
			Load:        90,
			Capacity:    100,
			Utilization: "90.0%",
			Status:      StatusDanger,
		}}, got)
	})

	t.Run("zero capacity is safe", func(t *testing.T) {
		got := DetectBottlenecks([]graph.Node{node("A", 0, 500)})
		require.Len(t, got, 1)
		assert.Equal(t, "0.0%", got[0].Utilization)
		assert.Equal(t, StatusSafe, got[0].Status)
	})

	t.Run("empty input", func(t *testing.T) {
		got := DetectBottlenecks(nil)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestDetectSPOF_Chain(t *testing.T) {
	nodes, edges := chain()

	got := DetectSPOF(nodes, edges, Options{})

	assert.Equal(t, []SpofEntry{
		{Service: "A", AffectedServices: 2, Risk: RiskCritical},
		{Service: "B", AffectedServices: 1, Risk: RiskCritical},
		{Service: "C", AffectedServices: 0, Risk: RiskLow},
	}, got)
}

func TestDetectSPOF_HighTier(t *testing.T) {
	// gw -> hub -> {a,b,c,d}, gw -> e. Removing hub cuts 4 of 7.
	nodes := []graph.Node{
		node("gw", 1, 0), node("hub", 1, 0), node("a", 1, 0), node("b", 1, 0),
		node("c", 1, 0), node("d", 1, 0), node("e", 1, 0),
	}
	edges := []graph.Edge{
		edge("gw", "hub"), edge("hub", "a"), edge("hub", "b"),
		edge("hub", "c"), edge("hub", "d"), edge("gw", "e"),
	}

	got := DetectSPOF(nodes, edges, Options{})

	require.Len(t, got, 7)
	assert.Equal(t, SpofEntry{Service: "hub", AffectedServices: 4, Risk: RiskHigh}, got[1])
	assert.Equal(t, SpofEntry{Service: "e", AffectedServices: 0, Risk: RiskLow}, got[6])
}

func TestDetectSPOF_EntryIsAlwaysCritical(t *testing.T) {
	nodes, edges := chain()
	for _, entry := range []string{"", "B", "missing"} {
		got := DetectSPOF(nodes, edges, Options{EntryNodeID: entry})
		want := entry
		if entry == "" || entry == "missing" {
			want = "A"
		}
		for _, s := range got {
			if s.Service == want {
				assert.Equal(t, RiskCritical, s.Risk)
				assert.Equal(t, len(nodes)-1, s.AffectedServices)
			}
		}
	}
}

func TestDetectSPOF_IgnoresEdgesToUnknownNodes(t *testing.T) {
	nodes := []graph.Node{node("A", 1, 0), node("B", 1, 0), node("C", 1, 0), node("D", 1, 0)}
	edges := []graph.Edge{edge("A", "B"), edge("A", "ghost"), edge("ghost", "C"), edge("B", "C"), edge("A", "D")}

	got := DetectSPOF(nodes, edges, Options{})

	assert.Equal(t, SpofEntry{Service: "B", AffectedServices: 1, Risk: RiskLow}, got[1])
}

func TestDetectSPOF_Empty(t *testing.T) {
	assert.Empty(t, DetectSPOF(nil, nil, Options{}))
}

func TestRunCascadeAnalysis(t *testing.T) {
	nodes, edges := chain()

	got := RunCascadeAnalysis(nodes, edges)

	assert.Equal(t, []CascadeEntry{
		{InitialFailure: "A", CascadedFailures: []string{}, TotalAffected: 1},
		{InitialFailure: "B", CascadedFailures: []string{"A"}, TotalAffected: 2},
		{InitialFailure: "C", CascadedFailures: []string{"A", "B"}, TotalAffected: 3},
	}, got)
}

func TestRunCascadeAnalysis_Invariants(t *testing.T) {
	nodes := []graph.Node{node("a", 1, 0), node("b", 1, 0), node("c", 1, 0), node("d", 1, 0)}
	edges := []graph.Edge{edge("a", "b"), edge("b", "c"), edge("c", "a"), edge("c", "d"), edge("a", "d")}

	for _, report := range RunCascadeAnalysis(nodes, edges) {
		assert.Equal(t, len(report.CascadedFailures)+1, report.TotalAffected)
		assert.NotContains(t, report.CascadedFailures, report.InitialFailure)

		seen := map[string]bool{}
		for _, id := range report.CascadedFailures {
			assert.False(t, seen[id], "duplicate %s in %s", id, report.InitialFailure)
			seen[id] = true
		}
	}
}

func TestSimulateCascade_CycleDoesNotLoop(t *testing.T) {
	nodes := []graph.Node{node("a", 1, 0), node("b", 1, 0)}
	edges := []graph.Edge{edge("a", "b"), edge("b", "a")}

	got := SimulateCascade(nodes, edges, "a")
	assert.Equal(t, []string{"b"}, got.CascadedFailures)
}

func TestDetectLatencyRisk(t *testing.T) {
	t.Run("single edge", func(t *testing.T) {
		nodes := []graph.Node{node("A", 1, 0), node("B", 1, 0)}
		got := DetectLatencyRisk(nodes, []graph.Edge{latencyEdge("A", "B", 50)}, Options{})
		assert.Equal(t, 50.0, got.CriticalPathLatency)
		assert.Equal(t, RiskLow, got.Risk)
		assert.Equal(t, "A", got.EntryNode)
	})

	t.Run("prefers api-gateway", func(t *testing.T) {
		nodes := []graph.Node{node("db", 1, 0), node("api-gateway", 1, 0), node("svc", 1, 0)}
		edges := []graph.Edge{latencyEdge("api-gateway", "svc", 130), latencyEdge("svc", "db", 1)}
		got := DetectLatencyRisk(nodes, edges, Options{})
		assert.Equal(t, "api-gateway", got.EntryNode)
		assert.Equal(t, 131.0, got.CriticalPathLatency)
		assert.Equal(t, RiskWarning, got.Risk)
	})

	t.Run("explicit entry wins", func(t *testing.T) {
		nodes := []graph.Node{node("api-gateway", 1, 0), node("svc", 1, 0), node("db", 1, 0)}
		edges := []graph.Edge{latencyEdge("api-gateway", "svc", 130), latencyEdge("svc", "db", 1)}
		got := DetectLatencyRisk(nodes, edges, Options{EntryNodeID: "svc"})
		assert.Equal(t, 1.0, got.CriticalPathLatency)
	})

	t.Run("missing latency uses default", func(t *testing.T) {
		nodes := []graph.Node{node("A", 1, 0), node("B", 1, 0)}
		got := DetectLatencyRisk(nodes, []graph.Edge{edge("A", "B")}, Options{})
		assert.Equal(t, 10.0, got.CriticalPathLatency)

		zero := 0.0
		got = DetectLatencyRisk(nodes, []graph.Edge{edge("A", "B")}, Options{DefaultEdgeLatency: &zero})
		assert.Equal(t, 0.0, got.CriticalPathLatency)
	})

	t.Run("high", func(t *testing.T) {
		nodes := []graph.Node{node("A", 1, 0), node("B", 1, 0), node("C", 1, 0)}
		edges := []graph.Edge{latencyEdge("A", "B", 150), latencyEdge("B", "C", 60)}
		assert.Equal(t, RiskHigh, DetectLatencyRisk(nodes, edges, Options{}).Risk)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, LatencyResult{Risk: RiskLow}, DetectLatencyRisk(nil, nil, Options{}))
	})
}

func TestRunStressTests(t *testing.T) {
	nodes := []graph.Node{node("api", 100, 50), node("db", 100, 80), node("cache", 0, 10)}

	got := RunStressTests(nodes)

	require.Len(t, got, 3)
	assert.Equal(t, "20%", got[0].Increase)
	assert.Equal(t, "50%", got[1].Increase)
	assert.Equal(t, "100%", got[2].Increase)

	// 20%: db 96 -> danger, nothing crashed
	assert.Equal(t, "None", got[0].FirstFailure)
	assert.Equal(t, 96.0, got[0].SimulationResults[1].NewLoad)
	assert.Equal(t, StatusDanger, got[0].SimulationResults[1].Status)
	assert.Equal(t, "96.0%", got[0].SimulationResults[1].Utilization)

	// 50%: db 120 crashes first
	assert.Equal(t, "db", got[1].FirstFailure)

	// 100%: api hits exactly 100 and is first in order
	assert.Equal(t, "api", got[2].FirstFailure)
	assert.Equal(t, StatusSafe, got[2].SimulationResults[2].Status)
}

func TestSimulateLoadIncrease_RoundsLoad(t *testing.T) {
	got := SimulateLoadIncrease([]graph.Node{node("a", 100, 3)}, 50)
	assert.Equal(t, 5.0, got.SimulationResults[0].NewLoad)
	assert.Equal(t, 3.0, got.SimulationResults[0].OriginalLoad)
}

func TestFindWeakestService(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Nil(t, FindWeakestService(nil))
	})

	t.Run("picks least headroom", func(t *testing.T) {
		nodes := []graph.Node{node("a", 100, 10), node("b", 50, 45), node("c", 200, 100)}
		got := FindWeakestService(nodes)
		require.NotNil(t, got)
		assert.Equal(t, WeakPoint{
			WeakestService:    "b",
			RemainingCapacity: 5,
			Utilization:       "90.00%",
			Risk:              RiskLow,
		}, *got)
	})

	t.Run("overloaded is critical", func(t *testing.T) {
		got := FindWeakestService([]graph.Node{node("a", 100, 10), node("b", 50, 60)})
		assert.Equal(t, "b", got.WeakestService)
		assert.Equal(t, -10.0, got.RemainingCapacity)
		assert.Equal(t, RiskCritical, got.Risk)
	})

	t.Run("ties keep first", func(t *testing.T) {
		got := FindWeakestService([]graph.Node{node("a", 10, 5), node("b", 10, 5)})
		assert.Equal(t, "a", got.WeakestService)
	})

	t.Run("zero capacity", func(t *testing.T) {
		got := FindWeakestService([]graph.Node{node("a", 0, 0)})
		assert.Equal(t, "0.00%", got.Utilization)
		assert.Equal(t, RiskCritical, got.Risk)
	})
}

func TestCalculateRiskScore(t *testing.T) {
	bottlenecks := []BottleneckEntry{{Status: StatusDanger}, {Status: StatusWarning}, {Status: StatusCrashed}, {Status: StatusSafe}}
	spofs := []SpofEntry{{Risk: RiskCritical}, {Risk: RiskHigh}, {Risk: RiskLow}}

	got := CalculateRiskScore(bottlenecks, spofs, LatencyResult{Risk: RiskWarning})

	assert.Equal(t, RiskScore{
		RiskScore:   67,
		OverallRisk: OverallMedium,
		Breakdown:   RiskBreakdown{BottleneckRisk: 22, SpofRisk: 30, LatencyRisk: 15},
	}, got)
}

func TestCalculateRiskScore_Bounds(t *testing.T) {
	assert.Equal(t, RiskScore{RiskScore: 0, OverallRisk: OverallLow}, CalculateRiskScore(nil, nil, LatencyResult{Risk: RiskLow}))

	many := make([]BottleneckEntry, 10)
	for i := range many {
		many[i].Status = StatusDanger
	}
	got := CalculateRiskScore(many, nil, LatencyResult{Risk: RiskHigh})
	assert.Equal(t, MaxRiskScore, got.RiskScore)
	assert.Equal(t, OverallHigh, got.OverallRisk)
	assert.Equal(t, 150, got.Breakdown.BottleneckRisk)
}

func TestCalculateRiskScore_Monotonic(t *testing.T) {
	var bottlenecks []BottleneckEntry
	prev := -1
	for i := 0; i < 12; i++ {
		bottlenecks = append(bottlenecks, BottleneckEntry{Status: StatusWarning})
		score := CalculateRiskScore(bottlenecks, []SpofEntry{{Risk: RiskHigh}}, LatencyResult{Risk: RiskLow}).RiskScore
		assert.GreaterOrEqual(t, score, prev)
		assert.LessOrEqual(t, score, MaxRiskScore)
		prev = score
	}
}

func TestOverallLabelBoundaries(t *testing.T) {
	assert.Equal(t, OverallLow, overallLabel(40))
	assert.Equal(t, OverallMedium, overallLabel(41))
	assert.Equal(t, OverallMedium, overallLabel(70))
	assert.Equal(t, OverallHigh, overallLabel(71))
}

func TestGenerateSuggestions(t *testing.T) {
	bottlenecks := []BottleneckEntry{{Service: "db", Status: StatusDanger}, {Service: "api", Status: StatusWarning}}
	spofs := []SpofEntry{{Service: "gw", Risk: RiskCritical}, {Service: "svc", Risk: RiskHigh}}

	got := GenerateSuggestions(bottlenecks, spofs, LatencyResult{Risk: RiskHigh})

	assert.Equal(t, []string{
		"Service db is overloaded. Consider scaling or load balancing.",
		"gw is a single point of failure. Add redundancy or replica.",
		"Critical path latency is high. Optimize service communication or caching.",
	}, got)

	assert.Empty(t, GenerateSuggestions(nil, nil, LatencyResult{Risk: RiskLow}))
}

func TestAnalyze_Idempotent(t *testing.T) {
	d := graph.Diagram{
		Nodes: []graph.Node{node("api-gateway", 100, 90), node("orders", 50, 35), node("db", 80, 20)},
		Edges: []graph.Edge{latencyEdge("api-gateway", "orders", 80), latencyEdge("orders", "db", 70), edge("api-gateway", "db")},
	}

	first := Analyze(d, Options{})
	second := Analyze(d, Options{})

	assert.Equal(t, first, second)
	assert.Equal(t, 150.0, first.LatencyRiskResult.CriticalPathLatency)
	assert.Equal(t, "api-gateway", first.WeakestPoint.WeakestService)
	assert.Equal(t, first.OverallRisk, CalculateRiskScore(first.BottleneckResult, first.SpofResult, first.LatencyRiskResult))
}
