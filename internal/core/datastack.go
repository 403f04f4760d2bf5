package core

const dataStackChunk = 256

// DataStack is scratch space for building arrays and gathering values.
// Cells are stored in fixed-size chunks that never move, so a pointer
// returned by Push stays valid until the cell is dropped.
type DataStack struct {
	heap   *Heap
	chunks []*Stub
	top    int
	limit  int
}

// NewDataStack creates a data stack on h and registers it as a root. A
// positive limit caps the number of cells.
func NewDataStack(h *Heap, limit int) *DataStack {
	ds := &DataStack{heap: h, limit: limit}
	h.AddRootMarker(ds)
	return ds
}

// Index returns the number of cells pushed. It is the mark callers save
// and later drop or pop back to.
func (ds *DataStack) Index() int { return ds.top }

// Push returns a fresh erased cell on top of the stack.
func (ds *DataStack) Push() *Cell {
	if ds.limit > 0 && ds.top >= ds.limit {
		Panic(ErrStackOverflow, "data stack exceeded %d cells", ds.limit)
	}
	chunk := ds.top / dataStackChunk
	if chunk == len(ds.chunks) {
		s := ds.heap.MakeFlex(FlavorDatastack, dataStackChunk, FlexFlagUntracked|FlexFlagFixedSize)
		s.cells = s.cells[:dataStackChunk]
		ds.chunks = append(ds.chunks, s)
	}
	c := &ds.chunks[chunk].cells[ds.top%dataStackChunk]
	c.Erase()
	ds.top++
	return c
}

// At returns cell i, 1-based from the bottom.
func (ds *DataStack) At(i int) *Cell {
	if i < 1 || i > ds.top {
		Panic(ErrIndexOutOfBounds, "data stack index %d out of range (top %d)", i, ds.top)
	}
	i--
	return &ds.chunks[i/dataStackChunk].cells[i%dataStackChunk]
}

// Top returns the topmost cell.
func (ds *DataStack) Top() *Cell { return ds.At(ds.top) }

// Drop discards the top cell.
func (ds *DataStack) Drop() {
	if ds.top == 0 {
		Panic(ErrBadMark, "drop from an empty data stack")
	}
	ds.At(ds.top).Erase()
	ds.top--
}

// DropTo discards cells above mark. A mark above the top is rejected and
// nothing changes.
func (ds *DataStack) DropTo(mark int) error {
	if mark < 0 || mark > ds.top {
		return NewError(ErrBadMark, "mark %d is above data stack top %d", mark, ds.top)
	}
	for ds.top > mark {
		ds.Drop()
	}
	return nil
}

// PopStackValues moves the cells above mark into a new managed array of
// the given flavor, with optional file and line. Antiforms are refused.
func (ds *DataStack) PopStackValues(mark int, flavor Flavor, flags FlexFlags, file *Stub, line int) (*Stub, error) {
	if mark < 0 || mark > ds.top {
		return nil, NewError(ErrBadMark, "mark %d is above data stack top %d", mark, ds.top)
	}
	n := ds.top - mark
	for i := mark + 1; i <= ds.top; i++ {
		if ds.At(i).IsAntiform() {
			return nil, NewError(ErrBadAntiform, "arrays cannot hold %s", TypeOf(ds.At(i)))
		}
	}
	arr, err := ds.heap.TryMakeFlex(flavor, n, flags|FlexFlagManaged)
	if err != nil {
		return nil, err
	}
	arr.cells = arr.cells[:n]
	for i := 0; i < n; i++ {
		arr.cells[i] = *ds.At(mark + 1 + i)
	}
	arr.SetFileLine(file, line)
	if err := ds.DropTo(mark); err != nil {
		return nil, err
	}
	return arr, nil
}

// MarkRoots keeps everything pushed alive.
func (ds *DataStack) MarkRoots(m *Marker) {
	for i := 1; i <= ds.top; i++ {
		m.MarkCell(ds.At(i))
	}
}
