// Package graph answers reachability questions over the dependency
// edges of an issue database. Edges point blocker to blocked, so a path
// from A to B means closing A is (transitively) a prerequisite for B.
package graph

// Edge is one blocks relation: From blocks To.
type Edge struct {
	From int64
	To   int64
}

// Graph is an adjacency view over a fixed edge set. It is built per
// operation from a snapshot of the dependencies table and never mutated.
type Graph struct {
	next map[int64][]int64
}

// New builds a graph from the given edges.
func New(edges []Edge) *Graph {
	next := make(map[int64][]int64, len(edges))
	for _, e := range edges {
		next[e.From] = append(next[e.From], e.To)
	}
	return &Graph{next: next}
}

// HasPath reports whether to is reachable from from by following blocks
// edges. A node always reaches itself.
func (g *Graph) HasPath(from, to int64) bool {
	return g.Path(from, to) != nil
}

// Path returns one shortest chain of nodes from from to to, inclusive
// of both ends, or nil when to is unreachable. The visited set keeps
// the walk terminating even on corrupt data that already contains a
// cycle.
func (g *Graph) Path(from, to int64) []int64 {
	if from == to {
		return []int64{from}
	}
	parent := map[int64]int64{from: from}
	queue := []int64{from}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, n := range g.next[current] {
			if _, seen := parent[n]; seen {
				continue
			}
			parent[n] = current
			if n == to {
				var path []int64
				for at := to; at != from; at = parent[at] {
					path = append(path, at)
				}
				path = append(path, from)
				for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
					path[i], path[j] = path[j], path[i]
				}
				return path
			}
			queue = append(queue, n)
		}
	}
	return nil
}

// WouldCycle reports whether adding an edge from blocker to blocked
// would close a loop, which is the case exactly when the blocked issue
// already reaches the blocker.
func (g *Graph) WouldCycle(blocker, blocked int64) bool {
	return g.HasPath(blocked, blocker)
}

// CyclePath returns the chain that would become a loop if the edge
// blocker->blocked were added: the existing route from blocked back to
// blocker. Nil when the edge is safe.
func (g *Graph) CyclePath(blocker, blocked int64) []int64 {
	return g.Path(blocked, blocker)
}
