package memory

// Handle is a strong, owning reference to a cell. Each Handle must be
// released exactly once.
type Handle[T Reachable] struct {
	c        *cell[T]
	released bool
}

// New allocates a cell holding value and returns its first Handle
func New[T Reachable](value T) *Handle[T] {
	return NewIn(nil, value)
}

// NewIn is like New but accounts the cell in heap
func NewIn[T Reachable](heap *Heap, value T) *Handle[T] {
	return &Handle[T]{c: newCell(heap, value)}
}

func (h *Handle[T]) live() *cell[T] {
	if h.released {
		panic("memory: use of released handle")
	}
	return h.c
}

// Value returns the contained value
func (h *Handle[T]) Value() T {
	return h.live().value
}

// ObjectID returns the contained value's id
func (h *Handle[T]) ObjectID() ObjectID {
	return h.live().id()
}

// Clone returns a new Handle to the same cell. Clones are invisible to
// the cycle detector.
func (h *Handle[T]) Clone() *Handle[T] {
	c := h.live()
	c.incStrong()
	return &Handle[T]{c: c}
}

// Adopt records that h keeps child alive. The child's strong count is
// incremented and an edge is stored in h's cell; the extra unit is only
// given back by the cycle detector or by h's own destruction. Adopting
// self or an already adopted child is a no-op.
func (h *Handle[T]) Adopt(child *Handle[T]) {
	owner, target := h.live(), child.live()
	id := target.id()
	if owner.id() == id || owner.hasLink(id) {
		return
	}
	target.incStrong()
	owner.addLink(id, target)
	owner.heap.onAdopt()
}

// Downgrade returns a Weak handle to the same cell
func (h *Handle[T]) Downgrade() *Weak[T] {
	c := h.live()
	c.incWeak()
	return &Weak[T]{c: c}
}

// StrongCount returns the number of strong units on the cell, adoption
// links included.
func (h *Handle[T]) StrongCount() uint {
	return h.live().strong
}

// WeakCount returns the weak count, including the implicit weak held by
// the strong handles.
func (h *Handle[T]) WeakCount() uint {
	return h.live().weak
}

// LinkCount returns the number of children adopted by this cell
func (h *Handle[T]) LinkCount() int {
	return len(h.live().order)
}

// Release gives up this Handle. The value is destroyed when the last
// strong unit goes away; cells with adoption links run cycle detection.
func (h *Handle[T]) Release() {
	if h.released {
		panic("memory: handle released twice")
	}
	h.released = true
	c := h.c
	h.c = nil
	release(c)
}

// release drops one strong unit from c
func release[T Reachable](c *cell[T]) {
	c.decStrong()
	if len(c.order) == 0 {
		if c.strong == 0 {
			c.destroy()
			c.releaseWeak()
		}
		return
	}
	if collect(c) {
		return
	}
	if c.strong == 0 {
		teardown(c)
	}
}

// teardown destroys a cell nobody owns and gives back the strong units
// its links hold.
func teardown[T Reachable](c *cell[T]) {
	children := c.takeLinks()
	c.destroy()
	for _, child := range children {
		release(child)
	}
	c.releaseWeak()
}
