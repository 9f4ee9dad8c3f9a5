package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandle_NewCounts(t *testing.T) {
	w := newTestWorld()
	h := New(w.obj("a"))

	require.Equal(t, uint(1), h.StrongCount())
	require.Equal(t, uint(1), h.WeakCount())
	require.Equal(t, 0, h.LinkCount())
	require.Equal(t, "a", h.Value().name)

	h.Release()
	requireDropped(t, w, "a", 1)
}

func TestHandle_AcyclicLifetime(t *testing.T) {
	w := newTestWorld()
	h1 := New(w.obj("a"))
	h2 := h1.Clone()
	h3 := h2.Clone()
	require.Equal(t, uint(3), h1.StrongCount())

	h1.Release()
	requireDropped(t, w, "a", 0)
	h3.Release()
	requireDropped(t, w, "a", 0)
	require.Equal(t, uint(1), h2.StrongCount())

	c := h2.c
	h2.Release()
	requireDropped(t, w, "a", 1)
	assert.True(t, c.freed)
	assert.Nil(t, c.value)
}

func TestHandle_CloneHasNoLink(t *testing.T) {
	w := newTestWorld()
	a := New(w.obj("a"))
	b := a.Clone()
	defer a.Release()
	defer b.Release()

	require.Equal(t, 0, a.LinkCount())
	require.Equal(t, a.ObjectID(), b.ObjectID())
}

func TestHandle_ValueWithoutDropper(t *testing.T) {
	heap := NewHeap()
	h := NewIn(heap, plainObj{id: 7})
	require.Equal(t, ObjectID(7), h.Value().ObjectID())
	h.Release()

	require.Equal(t, 0, heap.Live())
	require.Equal(t, 1, heap.Stats().Destroyed)
}

func TestHandle_DoubleReleasePanics(t *testing.T) {
	w := newTestWorld()
	h := New(w.obj("a"))
	h.Release()

	require.PanicsWithValue(t, "memory: handle released twice", h.Release)
}

func TestHandle_UseAfterReleasePanics(t *testing.T) {
	w := newTestWorld()
	h := New(w.obj("a"))
	h.Release()

	require.PanicsWithValue(t, "memory: use of released handle", func() { h.Value() })
	require.PanicsWithValue(t, "memory: use of released handle", func() { h.Clone() })
	require.PanicsWithValue(t, "memory: use of released handle", func() { h.Downgrade() })
}

func TestAdopt_Idempotent(t *testing.T) {
	w := newTestWorld()
	a := New(w.obj("a"))
	b := New(w.obj("b"))

	a.Adopt(b)
	require.Equal(t, uint(2), b.StrongCount())
	a.Adopt(b)
	require.Equal(t, uint(2), b.StrongCount())
	require.Equal(t, 1, a.LinkCount())

	a.Release()
	b.Release()
	requireDropped(t, w, "a", 1)
	requireDropped(t, w, "b", 1)
}

func TestAdopt_SelfNoop(t *testing.T) {
	w := newTestWorld()
	a := New(w.obj("a"))
	a.Adopt(a)

	require.Equal(t, uint(1), a.StrongCount())
	require.Equal(t, 0, a.LinkCount())

	a.Release()
	requireDropped(t, w, "a", 1)
}

func TestAdopt_ThroughClone(t *testing.T) {
	w := newTestWorld()
	a := New(w.obj("a"))
	b := New(w.obj("b"))
	b2 := b.Clone()

	a.Adopt(b)
	a.Adopt(b2)
	require.Equal(t, uint(3), b.StrongCount())

	b.Release()
	b2.Release()
	requireDropped(t, w, "b", 0)
	a.Release()
	requireDropped(t, w, "a", 1)
	requireDropped(t, w, "b", 1)
}

func TestCounters_Guards(t *testing.T) {
	w := newTestWorld()
	c := newCell[*testObj](nil, w.obj("a"))

	c.strong = 0
	require.PanicsWithValue(t, "memory: strong count out of range", c.incStrong)
	require.PanicsWithValue(t, "memory: strong count underflow", c.decStrong)

	c.strong = maxCount
	require.PanicsWithValue(t, "memory: strong count out of range", c.incStrong)

	c.weak = 0
	require.PanicsWithValue(t, "memory: weak count out of range", c.incWeak)
	require.PanicsWithValue(t, "memory: weak count underflow", c.decWeak)

	c.weak = maxCount
	require.PanicsWithValue(t, "memory: weak count out of range", c.incWeak)
}

func TestCell_DoubleFreePanics(t *testing.T) {
	w := newTestWorld()
	heap := NewHeap()
	c := newCell[*testObj](heap, w.obj("a"))
	c.strong = 0
	c.destroy()
	c.releaseWeak()
	require.True(t, c.freed)
	require.Equal(t, 1, heap.Stats().Freed)

	require.PanicsWithValue(t, "memory: cell freed twice", c.free)
	require.Equal(t, 1, heap.Stats().Freed)
}

func TestCell_LinkOrder(t *testing.T) {
	w := newTestWorld()
	objs := []*testObj{w.obj("a"), w.obj("b"), w.obj("c"), w.obj("d")}
	root := newCell[*testObj](nil, objs[0])
	for _, o := range objs[1:] {
		root.addLink(o.id, newCell[*testObj](nil, o))
	}
	require.Equal(t, []ObjectID{2, 3, 4}, root.order)

	root.removeLink(3)
	require.Equal(t, []ObjectID{2, 4}, root.order)
	require.False(t, root.hasLink(3))
	root.removeLink(3)
	require.Len(t, root.links, 2)

	targets := root.takeLinks()
	require.Len(t, targets, 2)
	require.Equal(t, ObjectID(2), targets[0].id())
	require.Equal(t, ObjectID(4), targets[1].id())
	require.Empty(t, root.order)
}
