package core

import (
	"time"

	"ren/internal/trace"
)

// HeapConfig tunes allocation and collection.
type HeapConfig struct {
	// Ballast is how many bytes may be allocated before a recycle is
	// requested. Zero picks DefaultBallast; negative disables the request.
	Ballast int64
	// MemLimit caps live bytes. Zero means unlimited.
	MemLimit int64
	Tracer   trace.Tracer
}

// DefaultBallast is the allocation budget between automatic recycles.
const DefaultBallast = 4 << 20

// HeapStats is a snapshot of heap bookkeeping.
type HeapStats struct {
	Managed    int
	Manuals    int
	LiveBytes  int64
	Allocated  uint64
	Freed      uint64
	Recycles   uint64
	TotalSwept uint64
	// RecycleTime is the wall time spent in collections.
	RecycleTime time.Duration
}

type guard struct {
	stub *Stub
	cell *Cell
}

// Heap owns every stub an interpreter allocates. It is not safe for use
// from more than one goroutine.
type Heap struct {
	managed []*Stub
	manuals []*Stub
	guards  []guard
	markers []RootMarker

	ballast     int64
	ballastInit int64
	live        int64
	memLimit    int64

	recycling bool
	disabled  int
	signal    bool

	stats  HeapStats
	tracer trace.Tracer
}

// NewHeap creates an empty heap.
func NewHeap(cfg HeapConfig) *Heap {
	ballast := cfg.Ballast
	if ballast == 0 {
		ballast = DefaultBallast
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	return &Heap{
		ballast:     ballast,
		ballastInit: ballast,
		memLimit:    cfg.MemLimit,
		tracer:      tracer,
	}
}

// Stats returns current counters.
func (h *Heap) Stats() HeapStats {
	st := h.stats
	st.Managed = len(h.managed)
	st.Manuals = len(h.manuals)
	st.LiveBytes = h.live
	return st
}

func (h *Heap) reserve(size int64, limited bool) error {
	if limited && h.memLimit > 0 && h.live+size > h.memLimit {
		return NewError(ErrOutOfMemory, "allocation of %d bytes exceeds limit of %d (live %d)", size, h.memLimit, h.live)
	}
	h.live += size
	if h.ballastInit > 0 {
		h.ballast -= size
		if h.ballast <= 0 {
			h.signal = true
		}
	}
	return nil
}

// TryMakeFlex allocates a stub able to hold capacity elements. It returns
// an out-of-memory error instead of failing abruptly.
func (h *Heap) TryMakeFlex(flavor Flavor, capacity int, flags FlexFlags) (*Stub, error) {
	return h.makeFlex(flavor, capacity, flags, true)
}

// MakeFlex is TryMakeFlex that fails abruptly.
func (h *Heap) MakeFlex(flavor Flavor, capacity int, flags FlexFlags) *Stub {
	s, err := h.makeFlex(flavor, capacity, flags, true)
	if err != nil {
		panic(err)
	}
	return s
}

func (h *Heap) makeFlex(flavor Flavor, capacity int, flags FlexFlags, limited bool) (*Stub, error) {
	if flavor >= flavorMax || flavor == FlavorDecayed {
		return nil, NewError(ErrInternal, "cannot allocate flavor %d", flavor)
	}
	if capacity < 0 {
		return nil, NewError(ErrInternal, "negative capacity %d", capacity)
	}
	info := &flavors[flavor]
	size := stubOverhead + int64(capacity)*info.width()
	if err := h.reserve(size, limited); err != nil {
		return nil, err
	}

	s := &Stub{
		base:   BaseNode,
		flavor: flavor,
		flags:  flags &^ (FlexFlagManaged | FlexFlagDynamic),
		size:   size,
	}
	switch info.elems {
	case elemCells:
		if capacity <= 1 {
			s.cells = s.inline[:0:1]
		} else {
			s.cells = make([]Cell, 0, capacity)
			s.flags |= FlexFlagDynamic
		}
	case elemBytes:
		s.bytes = make([]byte, 0, capacity)
		if capacity > cellSize {
			s.flags |= FlexFlagDynamic
		}
	case elemNodes:
		s.nodes = make([]*Stub, 0, capacity)
		s.flags |= FlexFlagDynamic
	}

	h.stats.Allocated++
	switch {
	case flags&FlexFlagUntracked != 0:
		s.base |= BaseManaged
	case flags&FlexFlagManaged != 0:
		s.base |= BaseManaged
		h.managed = append(h.managed, s)
	default:
		h.manuals = append(h.manuals, s)
	}
	return s, nil
}

// ExpandFlexTail grows the used length by delta, erasing the new elements.
// Growth past capacity reallocates, so slices taken from the stub before
// the call must not be used after it.
func (h *Heap) ExpandFlexTail(s *Stub, delta int) error {
	if err := CheckMutable(s); err != nil {
		return err
	}
	if delta < 0 {
		return NewError(ErrInternal, "negative expansion %d", delta)
	}
	n := s.Len()
	if n+delta > s.Cap() {
		if s.flags&FlexFlagFixedSize != 0 {
			return NewError(ErrFixedSize, "%s cannot grow past %d", s.flavor, s.Cap())
		}
		newCap := max(n+delta, 2*s.Cap(), 4)
		info := &flavors[s.flavor]
		extra := int64(newCap-s.Cap()) * info.width()
		if err := h.reserve(extra, true); err != nil {
			return err
		}
		s.size += extra
		switch info.elems {
		case elemCells:
			cells := make([]Cell, n, newCap)
			copy(cells, s.cells)
			s.cells = cells
		case elemBytes:
			b := make([]byte, n, newCap)
			copy(b, s.bytes)
			s.bytes = b
		case elemNodes:
			nodes := make([]*Stub, n, newCap)
			copy(nodes, s.nodes)
			s.nodes = nodes
		}
		s.flags |= FlexFlagDynamic
	}
	switch flavors[s.flavor].elems {
	case elemCells:
		s.cells = s.cells[:n+delta]
		for i := n; i < n+delta; i++ {
			s.cells[i].Erase()
		}
	case elemBytes:
		s.bytes = s.bytes[:n+delta]
		clear(s.bytes[n:])
	case elemNodes:
		s.nodes = s.nodes[:n+delta]
		clear(s.nodes[n:])
	}
	return nil
}

// Manage hands a manual stub to the collector. Managing twice is a no-op.
func (h *Heap) Manage(s *Stub) {
	if s.Managed() {
		return
	}
	h.removeManual(s)
	s.base |= BaseManaged
	h.managed = append(h.managed, s)
}

// Free releases a manual stub immediately.
func (h *Heap) Free(s *Stub) {
	if s.Decayed() {
		Panic(ErrDoubleFree, "stub freed twice")
	}
	if s.Managed() {
		Panic(ErrFreeManaged, "%s is owned by the collector", s.flavor)
	}
	h.removeManual(s)
	h.decay(s)
}

// removeManual searches from the end: the stub freed or managed is almost
// always the newest one.
func (h *Heap) removeManual(s *Stub) {
	for i := len(h.manuals) - 1; i >= 0; i-- {
		if h.manuals[i] == s {
			copy(h.manuals[i:], h.manuals[i+1:])
			h.manuals[len(h.manuals)-1] = nil
			h.manuals = h.manuals[:len(h.manuals)-1]
			return
		}
	}
	Panic(ErrInternal, "%s is not on the manuals list", s.flavor)
}

// ManualsLen is the baseline levels record at push.
func (h *Heap) ManualsLen() int { return len(h.manuals) }

// FreeManualsTo frees every manual stub allocated after the baseline.
func (h *Heap) FreeManualsTo(n int) {
	for len(h.manuals) > n {
		s := h.manuals[len(h.manuals)-1]
		h.manuals[len(h.manuals)-1] = nil
		h.manuals = h.manuals[:len(h.manuals)-1]
		h.decay(s)
	}
}

// CheckManualLeaks reports manual stubs left above the baseline.
func (h *Heap) CheckManualLeaks(n int) error {
	if len(h.manuals) > n {
		return NewError(ErrManualLeak, "%d manual stub(s) leaked, newest is %s",
			len(h.manuals)-n, h.manuals[len(h.manuals)-1].flavor)
	}
	return nil
}

func (h *Heap) decay(s *Stub) {
	if cleanup := flavors[s.flavor].cleanup; cleanup != nil {
		cleanup(s)
	}
	h.live -= s.size
	h.stats.Freed++
	s.flavor = FlavorDecayed
	s.base = (s.base | BaseUnreadable) &^ (BaseMarked | BaseRoot)
	s.cells = nil
	s.bytes = nil
	s.nodes = nil
	s.inline[0].Erase()
	s.obj = nil
	s.Link = Slot{}
	s.Misc = Slot{}
	s.size = 0
}

// PushGuard keeps a stub alive until the matching DropGuard.
func (h *Heap) PushGuard(s *Stub) { h.guards = append(h.guards, guard{stub: s}) }

// PushGuardCell keeps whatever a cell refers to alive.
func (h *Heap) PushGuardCell(c *Cell) { h.guards = append(h.guards, guard{cell: c}) }

// DropGuard removes the newest guard, which must be s.
func (h *Heap) DropGuard(s *Stub) {
	if len(h.guards) == 0 || h.guards[len(h.guards)-1].stub != s {
		Panic(ErrGuardMismatch, "guard dropped out of order")
	}
	h.guards = h.guards[:len(h.guards)-1]
}

// DropGuardCell removes the newest guard, which must be c.
func (h *Heap) DropGuardCell(c *Cell) {
	if len(h.guards) == 0 || h.guards[len(h.guards)-1].cell != c {
		Panic(ErrGuardMismatch, "cell guard dropped out of order")
	}
	h.guards = h.guards[:len(h.guards)-1]
}

// GuardsLen is the baseline levels record at push.
func (h *Heap) GuardsLen() int { return len(h.guards) }

// TruncateGuards drops guards above n after an abrupt failure.
func (h *Heap) TruncateGuards(n int) {
	if n < len(h.guards) {
		clear(h.guards[n:])
		h.guards = h.guards[:n]
	}
}

// AddRootMarker registers a source of roots.
func (h *Heap) AddRootMarker(m RootMarker) { h.markers = append(h.markers, m) }

// RemoveRootMarker unregisters m.
func (h *Heap) RemoveRootMarker(m RootMarker) {
	for i, x := range h.markers {
		if x == m {
			h.markers = append(h.markers[:i], h.markers[i+1:]...)
			return
		}
	}
}

// MakeRoot keeps a managed stub alive regardless of reachability.
func (h *Heap) MakeRoot(s *Stub) { s.base |= BaseRoot }

// Unroot undoes MakeRoot.
func (h *Heap) Unroot(s *Stub) { s.base &^= BaseRoot }
