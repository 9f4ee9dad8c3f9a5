package memory

import (
	"bytes"
	"fmt"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration tests that drive the handle API the way an interpreter would

func TestIntegration_ClosureCapturesScope(t *testing.T) {
	// A scope holds a closure, the closure captures the scope.
	w := newTestWorld()
	heap := NewHeap()
	oscope, oclosure, oarg := w.obj("scope"), w.obj("closure"), w.obj("arg")
	w.mutual(oscope, oclosure)
	w.edge(oscope, oarg)

	scope := NewIn(heap, oscope)
	closure := NewIn(heap, oclosure)
	arg := NewIn(heap, oarg)
	scope.Adopt(closure)
	closure.Adopt(scope)
	scope.Adopt(arg)
	arg.Release()

	// the closure escapes: the caller keeps it after the scope exits
	escaped := closure.Clone()
	scope.Release()
	closure.Release()
	for _, name := range []string{"scope", "closure", "arg"} {
		requireDropped(t, w, name, 0)
	}

	escaped.Release()
	for _, name := range []string{"scope", "closure", "arg"} {
		requireDropped(t, w, name, 1)
	}
	require.Equal(t, 0, heap.Live())
}

func TestIntegration_WeakCacheOverCycle(t *testing.T) {
	w := newTestWorld()
	heap := NewHeap()
	oa, ob := w.obj("a"), w.obj("b")
	w.mutual(oa, ob)

	a, b := NewIn(heap, oa), NewIn(heap, ob)
	a.Adopt(b)
	b.Adopt(a)

	cache := map[string]*Weak[*testObj]{"a": a.Downgrade(), "b": b.Downgrade()}
	a.Release()

	hit, ok := cache["a"].Upgrade()
	require.True(t, ok)
	b.Release()
	requireDropped(t, w, "a", 0)

	hit.Release()
	requireDropped(t, w, "a", 1)
	requireDropped(t, w, "b", 1)
	for _, weak := range cache {
		_, ok := weak.Upgrade()
		assert.False(t, ok)
		weak.Release()
	}
	require.Equal(t, 0, heap.Live())
}

func TestIntegration_HeapLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	heap := NewHeap(WithLogger(logger))

	w := newTestWorld()
	oa, ob := w.obj("a"), w.obj("b")
	w.mutual(oa, ob)
	a, b := NewIn(heap, oa), NewIn(heap, ob)
	a.Adopt(b)
	b.Adopt(a)
	a.Release()
	b.Release()

	out := buf.String()
	assert.Contains(t, out, `msg="cycle detection" clique=2 participants=2 collected=false`)
	assert.Contains(t, out, `msg="cycle detection" clique=2 participants=2 collected=true`)
	assert.Contains(t, out, `msg="cell freed" id=1`)
	assert.Contains(t, out, `msg="cell freed" id=2`)
}

func TestIntegration_NilHeap(t *testing.T) {
	var heap *Heap
	assert.Equal(t, Stats{}, heap.Stats())
	assert.Equal(t, 0, heap.Live())

	w := newTestWorld()
	h := NewIn(heap, w.obj("a"))
	h.Release()
	requireDropped(t, w, "a", 1)
}

// TestIntegration_RandomRings builds rings and trees of random sizes,
// releases handles in random order and checks nothing leaks.
func TestIntegration_RandomRings(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 50; round++ {
		w := newTestWorld()
		heap := NewHeap()

		n := 2 + rng.Intn(8)
		objs := make([]*testObj, n)
		hs := make([]*Handle[*testObj], n)
		for i := range objs {
			objs[i] = w.obj(fmt.Sprintf("n%d", i))
			hs[i] = NewIn(heap, objs[i])
		}
		// ring over every node
		for i := range hs {
			next := (i + 1) % n
			w.edge(objs[i], objs[next])
			hs[i].Adopt(hs[next])
		}
		// acyclic leaves hanging off random ring nodes
		var leaves []*Handle[*testObj]
		nleaves := rng.Intn(4)
		for i := 0; i < nleaves; i++ {
			parent := rng.Intn(n)
			leaf := w.obj(fmt.Sprintf("leaf%d", i))
			lh := NewIn(heap, leaf)
			w.edge(objs[parent], leaf)
			hs[parent].Adopt(lh)
			leaves = append(leaves, lh)
		}

		all := append(append([]*Handle[*testObj](nil), hs...), leaves...)
		rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
		for _, h := range all {
			h.Release()
		}

		require.Equal(t, 0, heap.Live(), "round %d", round)
		for name, drops := range w.dropped {
			require.Equal(t, 1, drops, "round %d: %s", round, name)
		}
		require.Len(t, w.dropped, n+len(leaves), "round %d", round)
	}
}
