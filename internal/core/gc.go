package core

import (
	"strconv"
	"time"

	"ren/internal/trace"
)

// RootMarker contributes roots to a collection.
type RootMarker interface {
	MarkRoots(m *Marker)
}

// Marker carries the mark phase. Stubs are queued rather than walked
// recursively, so deeply nested data does not grow the Go stack.
type Marker struct {
	heap    *Heap
	queue   []*Stub
	visited []*Stub
}

// MarkStub queues s if it has not been reached yet. Symbols are immortal
// and shared between heaps, so they are never written to.
func (m *Marker) MarkStub(s *Stub) {
	if s == nil || s.flavor == FlavorSymbol || s.flavor == FlavorDecayed {
		return
	}
	if s.base&BaseMarked != 0 {
		return
	}
	s.base |= BaseMarked
	m.visited = append(m.visited, s)
	m.queue = append(m.queue, s)
}

// MarkCell marks what the cell refers to. References to freed stubs are
// pointed at the shared decayed stub.
func (m *Marker) MarkCell(c *Cell) {
	if c == nil || c.IsErased() {
		return
	}
	if c.node != nil {
		if c.node.Decayed() {
			c.node = decayedStub
		} else {
			m.MarkStub(c.node)
		}
	}
	if c.extra != nil {
		if c.extra.Decayed() {
			c.extra = decayedStub
		} else {
			m.MarkStub(c.extra)
		}
	}
}

func (m *Marker) markSlot(slot *Slot) {
	if slot.Node == nil {
		return
	}
	if slot.Node.Decayed() {
		slot.Node = decayedStub
		return
	}
	m.MarkStub(slot.Node)
}

func (m *Marker) drain() {
	for len(m.queue) > 0 {
		s := m.queue[len(m.queue)-1]
		m.queue = m.queue[:len(m.queue)-1]
		flavors[s.flavor].markChildren(m, s)
	}
}

// decayedStub stands in for every freed stub still referenced by a cell.
var decayedStub = &Stub{base: BaseNode | BaseUnreadable | BaseManaged, flavor: FlavorDecayed, flags: FlexFlagUntracked}

// DecayedStub returns the shared stand-in for freed stubs.
func DecayedStub() *Stub { return decayedStub }

// RecycleStats describes one collection.
type RecycleStats struct {
	Deferred bool
	Marked   int
	Swept    int
	Duration time.Duration
}

// DisableGC defers collections until the matching EnableGC.
func (h *Heap) DisableGC() { h.disabled++ }

// EnableGC undoes DisableGC.
func (h *Heap) EnableGC() {
	if h.disabled == 0 {
		Panic(ErrInternal, "EnableGC without DisableGC")
	}
	h.disabled--
}

// WantsRecycle reports whether a collection was requested, by the ballast
// running out or by a Recycle call that could not run.
func (h *Heap) WantsRecycle() bool { return h.signal && !h.recycling && h.disabled == 0 }

// Recycle marks from every root and frees unreached managed stubs. Manual
// stubs are never freed here; their contents count as roots. A call made
// while collecting or while disabled only leaves a request behind.
func (h *Heap) Recycle() RecycleStats {
	if h.recycling || h.disabled > 0 {
		h.signal = true
		return RecycleStats{Deferred: true}
	}
	h.recycling = true
	defer func() { h.recycling = false }()

	span := trace.Begin(h.tracer, trace.ScopeGC, "recycle", 0)
	start := time.Now()
	m := &Marker{heap: h}

	for _, g := range h.guards {
		if g.stub != nil {
			m.MarkStub(g.stub)
		}
		if g.cell != nil {
			m.MarkCell(g.cell)
		}
		m.drain()
	}
	for _, r := range h.markers {
		r.MarkRoots(m)
		m.drain()
	}
	for _, s := range h.managed {
		if s.base&BaseRoot != 0 {
			m.MarkStub(s)
		}
	}
	m.drain()
	// Manual stubs are not marked but what they hold stays alive.
	for _, s := range h.manuals {
		flavors[s.flavor].markChildren(m, s)
		m.drain()
	}

	kept := h.managed[:0]
	swept := 0
	for _, s := range h.managed {
		if s.base&BaseMarked != 0 {
			kept = append(kept, s)
			continue
		}
		h.decay(s)
		swept++
	}
	clear(h.managed[len(kept):])
	h.managed = kept

	for _, s := range m.visited {
		s.base &^= BaseMarked
	}

	h.signal = false
	h.ballast = h.ballastInit
	h.stats.Recycles++
	h.stats.TotalSwept += uint64(swept) //nolint:gosec // swept is a count

	st := RecycleStats{Marked: len(m.visited), Swept: swept, Duration: time.Since(start)}
	h.stats.RecycleTime += st.Duration
	span.WithExtra("marked", strconv.Itoa(st.Marked)).
		WithExtra("swept", strconv.Itoa(st.Swept)).
		WithExtra("live", strconv.FormatInt(h.live, 10)).
		End("")
	return st
}
