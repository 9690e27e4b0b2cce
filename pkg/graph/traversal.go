package graph

// Reach runs a depth-first visit from start and returns visited. Nodes without
// an adjacency entry are dead ends and are not recorded. The walk uses an
// explicit stack so deep graphs cannot exhaust the goroutine stack; neighbors
// are pushed in reverse so they are visited in edge order.
func Reach(start string, g Adjacency, visited map[string]bool) map[string]bool {
	if visited == nil {
		visited = make(map[string]bool)
	}

	stack := []string{start}
	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		neighbors, ok := g[curr]
		if !ok || visited[curr] {
			continue
		}
		visited[curr] = true

		for i := len(neighbors) - 1; i >= 0; i-- {
			if !visited[neighbors[i]] {
				stack = append(stack, neighbors[i])
			}
		}
	}
	return visited
}

// ReachAvoiding is Reach that never expands through a node in failed. A failed
// neighbor is still recorded in visited when the walk arrives at it, which is
// how callers learn that the start depends on it. The start node itself is
// always expanded, even when it is failed.
func ReachAvoiding(start string, g Adjacency, failed map[string]bool, visited map[string]bool) map[string]bool {
	if visited == nil {
		visited = make(map[string]bool)
	}

	stack := []string{start}
	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[curr] {
			continue
		}
		visited[curr] = true

		neighbors := g[curr]
		for i := len(neighbors) - 1; i >= 0; i-- {
			next := neighbors[i]
			if failed[next] {
				visited[next] = true
				continue
			}
			if !visited[next] {
				stack = append(stack, next)
			}
		}
	}
	return visited
}

type pathLink struct {
	id   string
	prev *pathLink
}

func (p *pathLink) contains(id string) bool {
	for l := p; l != nil; l = l.prev {
		if l.id == id {
			return true
		}
	}
	return false
}

type latencyFrame struct {
	node    string
	latency float64
	path    *pathLink
}

// LongestLatency returns the largest cumulative latency over every simple path
// starting at start. Each branch tracks its own path, so sibling branches may
// revisit a node another branch already used. Stepping onto a node already on
// the current path ends that branch with the closing edge counted.
//
// Every simple path is enumerated, which is exponential on dense graphs. Inputs
// are expected to be architecture diagrams of a few dozen services.
func LongestLatency(start string, g LatencyAdjacency) float64 {
	longest := 0.0

	stack := []latencyFrame{{node: start}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.latency > longest {
			longest = f.latency
		}
		if f.path.contains(f.node) {
			continue
		}

		path := &pathLink{id: f.node, prev: f.path}
		neighbors := g[f.node]
		for i := len(neighbors) - 1; i >= 0; i-- {
			stack = append(stack, latencyFrame{
				node:    neighbors[i].Target,
				latency: f.latency + neighbors[i].Latency,
				path:    path,
			})
		}
	}
	return longest
}
