package analysis

import "architecture-risk-engine/pkg/graph"

// spofEntry picks the configured entry when it names a known node, else the
// first node.
func spofEntry(nodes []graph.Node, entryID string) string {
	if entryID != "" && graph.Contains(nodes, entryID) {
		return entryID
	}
	return nodes[0].ID
}

// DetectSPOF removes each node in turn and counts how many services can no
// longer be reached from the entry point.
func DetectSPOF(nodes []graph.Node, edges []graph.Edge, opts Options) []SpofEntry {
	if len(nodes) == 0 {
		return []SpofEntry{}
	}

	start := spofEntry(nodes, opts.EntryNodeID)
	total := len(nodes)

	out := make([]SpofEntry, 0, total)
	for _, n := range nodes {
		removed := n.ID

		// Removing the entry point disconnects everything else.
		if removed == start {
			out = append(out, SpofEntry{Service: removed, AffectedServices: total - 1, Risk: RiskCritical})
			continue
		}

		g := graph.BuildExcluding(nodes, edges, removed)
		reachable := len(graph.Reach(start, g, nil))
		affected := total - reachable - 1

		out = append(out, SpofEntry{
			Service:          removed,
			AffectedServices: affected,
			Risk:             spofRisk(affected, total),
		})
	}
	return out
}

// spofRisk has no medium tier.
func spofRisk(affected, total int) string {
	if affected >= total-2 {
		return RiskCritical
	}
	if float64(affected) > float64(total)*0.5 {
		return RiskHigh
	}
	return RiskLow
}
