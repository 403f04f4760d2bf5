package core

// FlexFlags are per-stub flags.
type FlexFlags uint16

const (
	// FlexFlagManaged at creation hands the stub straight to the collector.
	FlexFlagManaged FlexFlags = 1 << iota
	FlexFlagFixedSize
	FlexFlagFrozen
	FlexFlagProtected
	FlexFlagDynamic  // content lives outside the stub
	FlexFlagFileLine // link/misc hold file symbol and line
	FlexFlagShared   // keylist used by more than one varlist
	FlexFlagUntracked
)

// Slot is a link or misc field: a node reference, an integer, or both.
type Slot struct {
	Node *Stub
	Int  int64
}

// Stub is the header of every heap object. Element storage depends on the
// flavor: cells, bytes or nodes. A stub of at most one cell keeps it inline.
type Stub struct {
	base   BaseFlags
	flavor Flavor
	flags  FlexFlags
	holds  int32

	Link Slot
	Misc Slot

	inline [1]Cell
	cells  []Cell
	bytes  []byte
	nodes  []*Stub

	size int64 // bytes charged against the heap
	obj  any
}

// Flavor returns the stub subtype.
func (s *Stub) Flavor() Flavor { return s.flavor }

// Base returns the leader flags.
func (s *Stub) Base() BaseFlags { return s.base }

// Has reports whether all of flags are set.
func (s *Stub) Has(flags FlexFlags) bool { return s.flags&flags == flags }

// Set turns flags on.
func (s *Stub) Set(flags FlexFlags) { s.flags |= flags }

// Clear turns flags off.
func (s *Stub) Clear(flags FlexFlags) { s.flags &^= flags }

// Managed reports whether the collector owns the stub.
func (s *Stub) Managed() bool { return s.base&BaseManaged != 0 }

// Decayed reports whether the stub was freed.
func (s *Stub) Decayed() bool { return s.flavor == FlavorDecayed }

// Inline reports whether cell content is stored inside the stub.
func (s *Stub) Inline() bool { return s.flags&FlexFlagDynamic == 0 }

// Obj returns the host payload of handle, error and details stubs.
func (s *Stub) Obj() any { return s.obj }

// SetObj sets the host payload.
func (s *Stub) SetObj(v any) { s.obj = v }

// Len returns the number of elements in use.
func (s *Stub) Len() int {
	switch flavors[s.flavor].elems {
	case elemCells:
		return len(s.cells)
	case elemBytes:
		return len(s.bytes)
	case elemNodes:
		return len(s.nodes)
	}
	return 0
}

// Cap returns the number of elements the stub can hold without growing.
func (s *Stub) Cap() int {
	switch flavors[s.flavor].elems {
	case elemCells:
		return cap(s.cells)
	case elemBytes:
		return cap(s.bytes)
	case elemNodes:
		return cap(s.nodes)
	}
	return 0
}

// Cells returns the cell elements. The slice is invalidated by growth.
func (s *Stub) Cells() []Cell {
	s.mustRead()
	return s.cells
}

// At returns cell i (0-based).
func (s *Stub) At(i int) *Cell {
	s.mustRead()
	if i < 0 || i >= len(s.cells) {
		Panic(ErrIndexOutOfBounds, "index %d out of range for %s of length %d", i, s.flavor, len(s.cells))
	}
	return &s.cells[i]
}

// Bytes returns the byte elements.
func (s *Stub) Bytes() []byte {
	s.mustRead()
	return s.bytes
}

// Nodes returns the node elements.
func (s *Stub) Nodes() []*Stub {
	s.mustRead()
	return s.nodes
}

// SetLen sets the used length within the current capacity. Cells exposed
// by growing start erased; growing past the capacity goes through
// ExpandFlexTail.
func (s *Stub) SetLen(n int) {
	if n < 0 || n > s.Cap() {
		Panic(ErrIndexOutOfBounds, "cannot set length %d on %s of capacity %d", n, s.flavor, s.Cap())
	}
	switch flavors[s.flavor].elems {
	case elemCells:
		for i := n; i < len(s.cells); i++ {
			s.cells[i].Erase()
		}
		old := len(s.cells)
		s.cells = s.cells[:n]
		for i := old; i < n; i++ {
			s.cells[i].Erase()
		}
	case elemBytes:
		old := len(s.bytes)
		s.bytes = s.bytes[:n]
		clear(s.bytes[min(old, n):])
	case elemNodes:
		if n < len(s.nodes) {
			clear(s.nodes[n:])
		}
		old := len(s.nodes)
		s.nodes = s.nodes[:n]
		clear(s.nodes[min(old, n):])
	}
}

// Hold marks the stub as being iterated; mutation fails until released.
func (s *Stub) Hold() { s.holds++ }

// ReleaseHold undoes one Hold.
func (s *Stub) ReleaseHold() {
	if s.holds == 0 {
		Panic(ErrInternal, "hold released on %s that was not held", s.flavor)
	}
	s.holds--
}

// Freeze makes the stub permanently read-only.
func (s *Stub) Freeze() { s.flags |= FlexFlagFrozen }

// Protect makes the stub read-only until Unprotect.
func (s *Stub) Protect() { s.flags |= FlexFlagProtected }

// Unprotect undoes Protect.
func (s *Stub) Unprotect() { s.flags &^= FlexFlagProtected }

// CheckMutable returns the reason the stub may not be modified, or nil.
func CheckMutable(s *Stub) error {
	switch {
	case s.Decayed():
		return NewError(ErrSeriesDecayed, "series was freed")
	case s.flags&FlexFlagFrozen != 0:
		return NewError(ErrSeriesFrozen, "%s is frozen", s.flavor)
	case s.holds > 0:
		return NewError(ErrSeriesHeld, "%s is held for iteration", s.flavor)
	case s.flags&FlexFlagProtected != 0:
		return NewError(ErrSeriesProtected, "%s is protected", s.flavor)
	}
	return nil
}

// PanicIfReadOnly raises CheckMutable's error abruptly.
func PanicIfReadOnly(s *Stub) {
	if err := CheckMutable(s); err != nil {
		panic(err)
	}
}

func (s *Stub) mustRead() {
	if s.Decayed() {
		Panic(ErrSeriesDecayed, "series was freed")
	}
}

// File returns the file symbol recorded on an array, or nil.
func (s *Stub) File() *Stub {
	if s.flags&FlexFlagFileLine == 0 {
		return nil
	}
	return s.Link.Node
}

// Line returns the line recorded on an array, or 0.
func (s *Stub) Line() int {
	if s.flags&FlexFlagFileLine == 0 {
		return 0
	}
	return int(s.Misc.Int)
}

// SetFileLine records where an array was scanned from.
func (s *Stub) SetFileLine(file *Stub, line int) {
	if file == nil && line == 0 {
		return
	}
	s.flags |= FlexFlagFileLine
	s.Link.Node = file
	s.Misc.Int = int64(line)
}
