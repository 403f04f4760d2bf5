package core

// ArrayImage is a heap-independent copy of an array of scanned values,
// suitable for serialization. Cells keep their header bytes, so quoting,
// quasi lifts, sigils and newline flags survive a round trip.
type ArrayImage struct {
	File  string      `msgpack:"f,omitempty"`
	Line  int         `msgpack:"l"`
	Cells []CellImage `msgpack:"c"`
}

// CellImage is one cell of an ArrayImage. Bits holds integer, decimal and
// rune payloads and the index of series values; Text holds word
// spellings and string contents.
type CellImage struct {
	Header [4]byte     `msgpack:"h"`
	Bits   uint64      `msgpack:"b,omitempty"`
	Text   string      `msgpack:"t,omitempty"`
	Bytes  []byte      `msgpack:"y,omitempty"`
	List   *ArrayImage `msgpack:"a,omitempty"`
}

// imageable lists the hearts the scanner produces.
func imageable(h Heart) bool {
	switch h {
	case HeartBlank, HeartInteger, HeartDecimal, HeartRune, HeartText, HeartTag,
		HeartBinary, HeartWord, HeartSetWord, HeartGetWord, HeartBlock, HeartGroup, HeartComma:
		return true
	}
	return false
}

// ImageOf copies arr and the arrays it contains. Bindings are dropped.
func ImageOf(arr *Stub) (*ArrayImage, error) {
	arr.mustRead()
	img := &ArrayImage{Line: arr.Line(), Cells: make([]CellImage, len(arr.cells))}
	if f := arr.File(); f != nil {
		img.File = Spelling(f)
	}
	for i := range arr.cells {
		c := &arr.cells[i]
		h := c.Heart()
		if !imageable(h) || c.IsAntiform() {
			return nil, NewError(ErrBadType, "cannot image %s", TypeOf(c))
		}
		ci := &img.Cells[i]
		ci.Header = c.header.Bytes()
		switch {
		case h.IsWord():
			ci.Text = Spelling(c.node)
		case h.IsString():
			ci.Text = string(c.node.Bytes())
			ci.Bits = c.bits
		case h == HeartBinary:
			ci.Bytes = append([]byte(nil), c.node.Bytes()...)
			ci.Bits = c.bits
		case h.IsList():
			sub, err := ImageOf(c.node)
			if err != nil {
				return nil, err
			}
			ci.List = sub
			ci.Bits = c.bits
		default:
			ci.Bits = c.bits
		}
	}
	return img, nil
}

// FromImage rebuilds an image as managed arrays on h.
func (h *Heap) FromImage(img *ArrayImage) (*Stub, error) {
	arr := h.MakeArray(len(img.Cells), FlexFlagManaged)
	if img.File != "" {
		arr.SetFileLine(Intern(img.File), img.Line)
	}
	arr.SetLen(len(img.Cells))
	for i := range img.Cells {
		ci := &img.Cells[i]
		hdr := Header{
			base:  BaseNode | BaseCell,
			kind:  ci.Header[1],
			lift:  Lift(ci.Header[2]),
			flags: CellFlags(ci.Header[3]) &^ (CellFlagProtected | CellFlagHidden),
		}
		heart := Heart(hdr.kind & 0x3f)
		if !imageable(heart) || hdr.lift == LiftAntiform {
			return nil, NewError(ErrBadType, "image holds a %s cell", heart)
		}
		c := &arr.cells[i]
		c.header = hdr
		c.bits = ci.Bits
		switch {
		case heart.IsWord():
			if ci.Text == "" {
				return nil, NewError(ErrBadType, "image word has no spelling")
			}
			c.node = Intern(ci.Text)
		case heart.IsString():
			c.node = h.MakeString(ci.Text, FlexFlagManaged)
		case heart == HeartBinary:
			c.node = h.MakeBinary(ci.Bytes, FlexFlagManaged)
		case heart.IsList():
			if ci.List == nil {
				return nil, NewError(ErrBadType, "image list has no array")
			}
			sub, err := h.FromImage(ci.List)
			if err != nil {
				return nil, err
			}
			c.node = sub
		}
	}
	return arr, nil
}
