package core

// MakeArray allocates an empty array.
func (h *Heap) MakeArray(capacity int, flags FlexFlags) *Stub {
	return h.MakeFlex(FlavorArray, capacity, flags)
}

// Append copies v onto the end of arr. Antiforms are refused.
func (h *Heap) Append(arr *Stub, v *Cell) error {
	if v.IsAntiform() {
		return NewError(ErrBadAntiform, "arrays cannot hold %s", TypeOf(v))
	}
	if err := h.ExpandFlexTail(arr, 1); err != nil {
		return err
	}
	arr.cells[len(arr.cells)-1].Copy(v)
	return nil
}

// Poke overwrites element i of arr. Antiforms are refused.
func Poke(arr *Stub, i int, v *Cell) error {
	if v.IsAntiform() {
		return NewError(ErrBadAntiform, "arrays cannot hold %s", TypeOf(v))
	}
	if err := CheckMutable(arr); err != nil {
		return err
	}
	if i < 0 || i >= len(arr.cells) {
		return NewError(ErrIndexOutOfBounds, "index %d out of range for length %d", i, len(arr.cells))
	}
	arr.cells[i].Copy(v)
	return nil
}

// CopyArray makes a managed shallow copy of arr from index.
func (h *Heap) CopyArray(arr *Stub, index int) *Stub {
	src := arr.Cells()
	if index > len(src) {
		index = len(src)
	}
	out := h.MakeFlex(FlavorArray, len(src)-index, FlexFlagManaged)
	out.cells = append(out.cells, src[index:]...)
	return out
}

// ListAt returns the items of a BLOCK! or GROUP! from its index.
func (c *Cell) ListAt() []Cell {
	if !c.Heart().IsList() {
		Panic(ErrBadType, "expected block! or group!, got %s", TypeOf(c))
	}
	items := c.node.Cells()
	if c.Index() >= len(items) {
		return nil
	}
	return items[c.Index():]
}
