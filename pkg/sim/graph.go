package sim

import "cyclerc/pkg/memory"

// Graph is the embedder's own object graph. It answers CanReach for the
// cycle detector and is independent of adoption links: an edge may exist
// without a matching Adopt and vice versa.
type Graph struct {
	edges map[memory.ObjectID][]memory.ObjectID
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{edges: make(map[memory.ObjectID][]memory.ObjectID)}
}

// AddEdge records from -> to. Duplicate edges are ignored.
func (g *Graph) AddEdge(from, to memory.ObjectID) {
	for _, id := range g.edges[from] {
		if id == to {
			return
		}
	}
	g.edges[from] = append(g.edges[from], to)
}

// RemoveEdges drops every outgoing edge of from
func (g *Graph) RemoveEdges(from memory.ObjectID) {
	delete(g.edges, from)
}

// Edges returns the outgoing edges of from in insertion order
func (g *Graph) Edges(from memory.ObjectID) []memory.ObjectID {
	return g.edges[from]
}

// Reaches reports whether target can be reached from from by a path of
// at least one edge.
func (g *Graph) Reaches(from, target memory.ObjectID) bool {
	seen := map[memory.ObjectID]bool{from: true}
	queue := []memory.ObjectID{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range g.edges[cur] {
			if next == target {
				return true
			}
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}
