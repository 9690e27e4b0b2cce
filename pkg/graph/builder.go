package graph

// Adjacency maps a source id to its targets in edge input order.
type Adjacency map[string][]string

// LatencyEdge is an outgoing edge weighted by its latency.
type LatencyEdge struct {
	Target  string
	Latency float64
}

type LatencyAdjacency map[string][]LatencyEdge

// SplitEdge is an outgoing edge carrying a share of the source's load.
type SplitEdge struct {
	To         string
	Percentage float64
}

type SplitAdjacency map[string][]SplitEdge

// Build creates the plain adjacency. Sources get an entry lazily on their
// first edge; edges missing either endpoint are skipped.
func Build(edges []Edge) Adjacency {
	g := make(Adjacency)
	for _, e := range edges {
		if e.Source == "" || e.Target == "" {
			continue
		}
		g[e.Source] = append(g[e.Source], e.Target)
	}
	return g
}

// BuildExcluding seeds an entry for every node except excluded and keeps only
// edges that avoid excluded and whose source is a known node.
func BuildExcluding(nodes []Node, edges []Edge, excluded string) Adjacency {
	g := make(Adjacency, len(nodes))
	for _, n := range nodes {
		if n.ID != excluded {
			g[n.ID] = []string{}
		}
	}

	for _, e := range edges {
		if e.Source == "" || e.Target == "" {
			continue
		}
		if e.Source == excluded || e.Target == excluded {
			continue
		}
		if _, ok := g[e.Source]; !ok {
			continue
		}
		g[e.Source] = append(g[e.Source], e.Target)
	}
	return g
}

// BuildWithLatency creates the latency-weighted adjacency. Edges without a
// latency use defaultLatency.
func BuildWithLatency(edges []Edge, defaultLatency float64) LatencyAdjacency {
	g := make(LatencyAdjacency)
	for _, e := range edges {
		if e.Source == "" || e.Target == "" {
			continue
		}
		latency := defaultLatency
		if e.Latency != nil {
			latency = *e.Latency
		}
		g[e.Source] = append(g[e.Source], LatencyEdge{Target: e.Target, Latency: latency})
	}
	return g
}

// BuildSplit creates the traffic-split adjacency used by propagation. Every
// node gets an entry; edges with a non-positive percentage carry nothing and
// are left out.
func BuildSplit(nodes []Node, edges []Edge) SplitAdjacency {
	g := make(SplitAdjacency, len(nodes))
	for _, n := range nodes {
		g[n.ID] = []SplitEdge{}
	}

	for _, e := range edges {
		if e.Source == "" || e.Target == "" {
			continue
		}
		if _, ok := g[e.Source]; !ok {
			g[e.Source] = []SplitEdge{}
		}
		if e.Percentage <= 0 {
			continue
		}
		g[e.Source] = append(g[e.Source], SplitEdge{To: e.Target, Percentage: e.Percentage})
	}
	return g
}
