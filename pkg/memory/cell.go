package memory

import "math"

// Cycle-aware Reference Counting
//
// Every value lives in a cell carrying a strong count, a weak count and
// a table of adoption links. Plain reference counting frees acyclic
// values; cells that carry links are re-examined by the cycle detector
// (cycle.go) whenever one of their handles is released.
//
// - strong: live Handles plus adoption links pointing at the cell
// - weak:   live Weak handles plus one implicit weak for the strong set
// - links:  relation + lookup only; the strong unit added by Adopt is
//           what actually keeps the target alive
//
// Not safe for concurrent use: counts are plain integers.

// ObjectID identifies a live value. Supplied by the value itself and
// stable for the value's lifetime.
type ObjectID uint64

// Reachable is the capability a value must provide to live in a cell.
type Reachable interface {
	// ObjectID returns the same id for the life of the value.
	ObjectID() ObjectID
	// CanReach reports whether this value can eventually reach the value
	// identified by target through the embedder's own object graph.
	CanReach(target ObjectID) bool
}

// Dropper is implemented by values that need a destructor. Drop runs
// exactly once, when the value is destroyed.
type Dropper interface {
	Drop()
}

const maxCount = math.MaxUint

// cell is the shared allocation behind Handle and Weak
type cell[T Reachable] struct {
	strong uint
	weak   uint
	value  T
	oid    ObjectID

	links map[ObjectID]*cell[T]
	order []ObjectID // link keys in insertion order

	heap  *Heap
	freed bool // set once by free; a second free panics
}

func newCell[T Reachable](heap *Heap, value T) *cell[T] {
	c := &cell[T]{
		strong: 1,
		weak:   1,
		value:  value,
		oid:    value.ObjectID(),
		heap:   heap,
	}
	heap.onAlloc()
	return c
}

func (c *cell[T]) id() ObjectID {
	return c.oid
}

func (c *cell[T]) incStrong() {
	if c.strong == 0 || c.strong == maxCount {
		panic("memory: strong count out of range")
	}
	c.strong++
}

func (c *cell[T]) decStrong() {
	if c.strong == 0 {
		panic("memory: strong count underflow")
	}
	c.strong--
}

func (c *cell[T]) incWeak() {
	if c.weak == 0 || c.weak == maxCount {
		panic("memory: weak count out of range")
	}
	c.weak++
}

func (c *cell[T]) decWeak() {
	if c.weak == 0 {
		panic("memory: weak count underflow")
	}
	c.weak--
}

// hasLink reports whether the cell already records an edge to id
func (c *cell[T]) hasLink(id ObjectID) bool {
	_, ok := c.links[id]
	return ok
}

func (c *cell[T]) addLink(id ObjectID, target *cell[T]) {
	if c.links == nil {
		c.links = make(map[ObjectID]*cell[T])
	}
	c.links[id] = target
	c.order = append(c.order, id)
}

func (c *cell[T]) removeLink(id ObjectID) {
	if _, ok := c.links[id]; !ok {
		return
	}
	delete(c.links, id)
	for i, k := range c.order {
		if k == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// takeLinks detaches and returns the link targets in insertion order
func (c *cell[T]) takeLinks() []*cell[T] {
	if len(c.order) == 0 {
		return nil
	}
	targets := make([]*cell[T], 0, len(c.order))
	for _, id := range c.order {
		targets = append(targets, c.links[id])
	}
	c.links = nil
	c.order = nil
	return targets
}

// destroy runs the value's destructor and drops it. strong must already be 0.
func (c *cell[T]) destroy() {
	if d, ok := any(c.value).(Dropper); ok {
		d.Drop()
	}
	var zero T
	c.value = zero
	c.heap.onDestroy()
}

// releaseWeak drops one weak unit and frees the cell when none remain
func (c *cell[T]) releaseWeak() {
	c.decWeak()
	if c.weak == 0 {
		c.free()
	}
}

func (c *cell[T]) free() {
	if c.freed {
		panic("memory: cell freed twice")
	}
	c.freed = true
	c.links = nil
	c.order = nil
	c.heap.onFree(c.oid)
}
