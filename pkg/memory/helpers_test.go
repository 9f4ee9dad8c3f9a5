package memory

import "testing"

// testWorld is a tiny embedder: named objects plus a directed graph
// answering CanReach.
type testWorld struct {
	edges   map[ObjectID][]ObjectID
	next    ObjectID
	dropped map[string]int
}

type testObj struct {
	w    *testWorld
	id   ObjectID
	name string
}

func newTestWorld() *testWorld {
	return &testWorld{
		edges:   make(map[ObjectID][]ObjectID),
		dropped: make(map[string]int),
	}
}

func (w *testWorld) obj(name string) *testObj {
	w.next++
	return &testObj{w: w, id: w.next, name: name}
}

// edge records that from can reach to in the embedder's graph
func (w *testWorld) edge(from, to *testObj) {
	w.edges[from.id] = append(w.edges[from.id], to.id)
}

// mutual records edges in both directions
func (w *testWorld) mutual(a, b *testObj) {
	w.edge(a, b)
	w.edge(b, a)
}

func (w *testWorld) reaches(from, target ObjectID) bool {
	seen := map[ObjectID]bool{from: true}
	queue := []ObjectID{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range w.edges[cur] {
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

func (o *testObj) ObjectID() ObjectID { return o.id }

func (o *testObj) CanReach(target ObjectID) bool { return o.w.reaches(o.id, target) }

func (o *testObj) Drop() { o.w.dropped[o.name]++ }

// plainObj has no destructor
type plainObj struct{ id ObjectID }

func (o plainObj) ObjectID() ObjectID { return o.id }

func (o plainObj) CanReach(ObjectID) bool { return false }

func requireDropped(t *testing.T, w *testWorld, name string, want int) {
	t.Helper()
	if got := w.dropped[name]; got != want {
		t.Fatalf("%s: expected %d drops, got %d", name, want, got)
	}
}
