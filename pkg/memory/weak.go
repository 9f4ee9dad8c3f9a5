package memory

// Weak is a non-owning reference to a cell. The zero value is dangling:
// it upgrades to nothing and releasing it has no effect.
type Weak[T Reachable] struct {
	c        *cell[T]
	released bool
}

// NewWeak returns a dangling Weak
func NewWeak[T Reachable]() *Weak[T] {
	return &Weak[T]{}
}

// Dangling reports whether w points at no cell
func (w *Weak[T]) Dangling() bool {
	return w.c == nil
}

// Upgrade returns a new Handle if the value is still alive
func (w *Weak[T]) Upgrade() (*Handle[T], bool) {
	if w.released {
		panic("memory: use of released weak handle")
	}
	if w.c == nil || w.c.strong == 0 {
		return nil, false
	}
	w.c.incStrong()
	return &Handle[T]{c: w.c}, true
}

// StrongCount returns the strong count of the target, or 0 when dangling
func (w *Weak[T]) StrongCount() uint {
	if w.released {
		panic("memory: use of released weak handle")
	}
	if w.c == nil {
		return 0
	}
	return w.c.strong
}

// Clone returns another Weak to the same cell
func (w *Weak[T]) Clone() *Weak[T] {
	if w.released {
		panic("memory: use of released weak handle")
	}
	if w.c == nil {
		return &Weak[T]{}
	}
	w.c.incWeak()
	return &Weak[T]{c: w.c}
}

// Release gives up this Weak. The cell is freed once both counts reach 0.
func (w *Weak[T]) Release() {
	if w.released {
		panic("memory: weak handle released twice")
	}
	if w.c == nil {
		return
	}
	w.released = true
	c := w.c
	w.c = nil
	c.releaseWeak()
}
