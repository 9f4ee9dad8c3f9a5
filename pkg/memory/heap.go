package memory

import "log/slog"

// Heap groups cells for accounting. It never owns cells; the strong/weak
// protocol does. A nil *Heap is valid and records nothing.
type Heap struct {
	stats  Stats
	logger *slog.Logger
}

// Stats tracks counters for cells allocated in a Heap
type Stats struct {
	Allocated           int `json:"allocated"`
	Freed               int `json:"freed"`
	Destroyed           int `json:"destroyed"`
	Adoptions           int `json:"adoptions"`
	Detections          int `json:"detections"`
	DetectionsAborted   int `json:"detections_aborted"`
	CyclesCollected     int `json:"cycles_collected"`
	CycleCellsCollected int `json:"cycle_cells_collected"`
}

// HeapOption configures a Heap
type HeapOption func(*Heap)

// WithLogger sets the logger used for detection and free events
func WithLogger(logger *slog.Logger) HeapOption {
	return func(h *Heap) {
		h.logger = logger
	}
}

// NewHeap creates a new accounting heap
func NewHeap(opts ...HeapOption) *Heap {
	h := &Heap{}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Stats returns a snapshot of the heap counters
func (h *Heap) Stats() Stats {
	if h == nil {
		return Stats{}
	}
	return h.stats
}

// Live returns the number of cells allocated and not yet freed
func (h *Heap) Live() int {
	if h == nil {
		return 0
	}
	return h.stats.Allocated - h.stats.Freed
}

func (h *Heap) onAlloc() {
	if h == nil {
		return
	}
	h.stats.Allocated++
}

func (h *Heap) onFree(id ObjectID) {
	if h == nil {
		return
	}
	h.stats.Freed++
	if h.logger != nil {
		h.logger.Debug("cell freed", "id", uint64(id))
	}
}

func (h *Heap) onDestroy() {
	if h == nil {
		return
	}
	h.stats.Destroyed++
}

func (h *Heap) onAdopt() {
	if h == nil {
		return
	}
	h.stats.Adoptions++
}

func (h *Heap) onDetection(clique, participants int, collected bool) {
	if h == nil {
		return
	}
	h.stats.Detections++
	switch {
	case collected:
		h.stats.CyclesCollected++
		h.stats.CycleCellsCollected += participants
	case participants > 0:
		h.stats.DetectionsAborted++
	}
	if h.logger != nil {
		h.logger.Debug("cycle detection",
			"clique", clique,
			"participants", participants,
			"collected", collected)
	}
}
