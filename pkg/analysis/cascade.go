package analysis

import "architecture-risk-engine/pkg/graph"

// SimulateCascade treats failed as down and lists every other node whose
// traversal arrives at it, i.e. every service that transitively calls it.
func SimulateCascade(nodes []graph.Node, edges []graph.Edge, failed string) CascadeEntry {
	return simulateCascade(nodes, graph.Build(edges), failed)
}

func simulateCascade(nodes []graph.Node, g graph.Adjacency, failed string) CascadeEntry {
	blocked := map[string]bool{failed: true}
	seen := make(map[string]bool)
	affected := []string{}

	for _, n := range nodes {
		if n.ID == failed || seen[n.ID] {
			continue
		}
		visited := graph.ReachAvoiding(n.ID, g, blocked, nil)
		if visited[failed] {
			seen[n.ID] = true
			affected = append(affected, n.ID)
		}
	}

	return CascadeEntry{
		InitialFailure:   failed,
		CascadedFailures: affected,
		TotalAffected:    len(affected) + 1,
	}
}

// RunCascadeAnalysis produces one cascade report per node, in node order.
func RunCascadeAnalysis(nodes []graph.Node, edges []graph.Edge) []CascadeEntry {
	g := graph.Build(edges)
	out := make([]CascadeEntry, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, simulateCascade(nodes, g, n.ID))
	}
	return out
}
