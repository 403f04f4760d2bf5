package core

import (
	"math"
)

// CellFlags are per-cell flags in the last header byte.
type CellFlags uint8

const (
	CellFlagNewlineBefore CellFlags = 1 << iota // molds on a new line
	CellFlagProtected                           // variable slot refuses assignment
	CellFlagHidden                              // variable slot is not enumerated
)

// Header is the first word of a cell.
type Header struct {
	base  BaseFlags
	kind  uint8 // heart | sigil<<6
	lift  Lift
	flags CellFlags
}

// Bytes returns the header as it would be laid out in memory.
func (h Header) Bytes() [4]byte {
	return [4]byte{byte(h.base), h.kind, byte(h.lift), byte(h.flags)}
}

// Cell is the fixed-size value record: a header, a binding or coupling in
// extra, a payload stub in node, and an integer payload or series index in
// bits.
type Cell struct {
	header Header
	extra  *Stub
	node   *Stub
	bits   uint64
}

// Header returns a copy of the header.
func (c *Cell) Header() Header { return c.header }

// Erase makes the cell unreadable.
func (c *Cell) Erase() { *c = Cell{} }

// IsErased reports whether the cell was never written.
func (c *Cell) IsErased() bool { return c.header.kind&0x3f == uint8(HeartErased) }

func (c *Cell) mustRead() {
	if c.IsErased() {
		Panic(ErrUnreadable, "read of an erased cell")
	}
}

// Heart returns the base type.
func (c *Cell) Heart() Heart {
	c.mustRead()
	return Heart(c.header.kind & 0x3f)
}

// Sigil returns the decoration of words and lists.
func (c *Cell) Sigil() Sigil { return Sigil(c.header.kind >> 6) }

// Lift returns the raw lift byte.
func (c *Cell) Lift() Lift { return c.header.lift }

// SetLiftUnchecked writes the lift byte without validating the result.
// Everything else goes through the coercion and quoting functions.
func (c *Cell) SetLiftUnchecked(l Lift) { c.header.lift = l }

// Flags returns the cell flags.
func (c *Cell) Flags() CellFlags { return c.header.flags }

// SetFlag turns on cell flags.
func (c *Cell) SetFlag(f CellFlags) { c.header.flags |= f }

// ClearFlag turns off cell flags.
func (c *Cell) ClearFlag(f CellFlags) { c.header.flags &^= f }

// IsAntiform reports the antiform state.
func (c *Cell) IsAntiform() bool { return c.header.lift == LiftAntiform }

// IsQuasi reports a plain quasiform (not quoted).
func (c *Cell) IsQuasi() bool { return c.header.lift == LiftQuasi }

// IsQuoted reports one or more quote levels.
func (c *Cell) IsQuoted() bool { return c.header.lift.Depth() > 0 }

// IsPlain reports a cell with no quotes, no quasi and no antiform.
func (c *Cell) IsPlain() bool { return c.header.lift == LiftNoquote }

// QuoteDepth returns the number of quote levels.
func (c *Cell) QuoteDepth() int { return c.header.lift.Depth() }

// Node returns the payload stub.
func (c *Cell) Node() *Stub { return c.node }

// Binding returns the context words and lists resolve through.
func (c *Cell) Binding() *Stub { return c.extra }

// SetBinding sets the binding of a bindable cell.
func (c *Cell) SetBinding(b *Stub) { c.extra = b }

// Index returns the series position.
func (c *Cell) Index() int { return int(c.bits) } //nolint:gosec // index fits

// SetIndex moves the series position.
func (c *Cell) SetIndex(i int) { c.bits = uint64(i) } //nolint:gosec // index is non-negative

// Int64 returns an INTEGER! payload.
func (c *Cell) Int64() int64 { return int64(c.bits) } //nolint:gosec // bit pattern

// Float64 returns a DECIMAL! payload.
func (c *Cell) Float64() float64 { return math.Float64frombits(c.bits) }

// Rune returns a RUNE! payload.
func (c *Cell) Rune() rune { return rune(c.bits) } //nolint:gosec // stored from a rune

// Symbol returns the symbol of a word.
func (c *Cell) Symbol() *Stub { return c.node }

// Datatype returns the payload of a DATATYPE!.
func (c *Cell) Datatype() Type { return Type(c.bits) }

// Coupling returns the object an action is coupled to.
func (c *Cell) Coupling() *Stub { return c.extra }

// Copy overwrites c with src. Slot protection stays with the slot.
func (c *Cell) Copy(src *Cell) {
	protected := c.header.flags & CellFlagProtected
	*c = *src
	c.header.flags = (c.header.flags &^ CellFlagProtected) | protected
}

func (c *Cell) reset(h Heart) *Cell {
	c.header = Header{base: BaseNode | BaseCell, kind: uint8(h), lift: LiftNoquote}
	c.extra = nil
	c.node = nil
	c.bits = 0
	return c
}

// SetSigil decorates a word or list.
func (c *Cell) SetSigil(s Sigil) *Cell {
	c.header.kind = c.header.kind&0x3f | uint8(s)<<6
	return c
}

// InitBlank writes _.
func InitBlank(c *Cell) *Cell { return c.reset(HeartBlank) }

// InitInteger writes an INTEGER!.
func InitInteger(c *Cell, i int64) *Cell {
	c.reset(HeartInteger)
	c.bits = uint64(i) //nolint:gosec // bit pattern
	return c
}

// InitDecimal writes a DECIMAL!.
func InitDecimal(c *Cell, f float64) *Cell {
	c.reset(HeartDecimal)
	c.bits = math.Float64bits(f)
	return c
}

// InitRune writes a RUNE!.
func InitRune(c *Cell, r rune) *Cell {
	c.reset(HeartRune)
	c.bits = uint64(r) //nolint:gosec // runes are non-negative
	return c
}

// InitText writes a TEXT! at the head of a string stub.
func InitText(c *Cell, s *Stub) *Cell {
	c.reset(HeartText)
	c.node = s
	return c
}

// InitTag writes a TAG!.
func InitTag(c *Cell, s *Stub) *Cell {
	c.reset(HeartTag)
	c.node = s
	return c
}

// InitBinary writes a BINARY!.
func InitBinary(c *Cell, s *Stub) *Cell {
	c.reset(HeartBinary)
	c.node = s
	return c
}

// InitAnyWord writes a word of the given heart.
func InitAnyWord(c *Cell, h Heart, sym *Stub) *Cell {
	if !h.IsWord() {
		Panic(ErrInternal, "%s is not a word heart", h)
	}
	c.reset(h)
	c.node = sym
	return c
}

// InitWord writes an unbound WORD!.
func InitWord(c *Cell, sym *Stub) *Cell { return InitAnyWord(c, HeartWord, sym) }

// InitSetWord writes an unbound SET-WORD!.
func InitSetWord(c *Cell, sym *Stub) *Cell { return InitAnyWord(c, HeartSetWord, sym) }

// InitGetWord writes an unbound GET-WORD!.
func InitGetWord(c *Cell, sym *Stub) *Cell { return InitAnyWord(c, HeartGetWord, sym) }

// InitList writes a BLOCK! or GROUP! at index with a binding.
func InitList(c *Cell, h Heart, arr *Stub, index int, binding *Stub) *Cell {
	if !h.IsList() {
		Panic(ErrInternal, "%s is not a list heart", h)
	}
	c.reset(h)
	c.node = arr
	c.extra = binding
	c.SetIndex(index)
	return c
}

// InitBlock writes an unbound BLOCK! at the head of arr.
func InitBlock(c *Cell, arr *Stub) *Cell { return InitList(c, HeartBlock, arr, 0, nil) }

// InitGroup writes an unbound GROUP! at the head of arr.
func InitGroup(c *Cell, arr *Stub) *Cell { return InitList(c, HeartGroup, arr, 0, nil) }

// InitComma writes a COMMA!.
func InitComma(c *Cell) *Cell { return c.reset(HeartComma) }

// InitFrame writes a FRAME! for action details or a running varlist.
func InitFrame(c *Cell, s *Stub, coupling *Stub) *Cell {
	c.reset(HeartFrame)
	c.node = s
	c.extra = coupling
	return c
}

// InitObject writes an OBJECT! for a varlist.
func InitObject(c *Cell, varlist *Stub) *Cell {
	c.reset(HeartObject)
	c.node = varlist
	return c
}

// InitError writes an ERROR! for an error stub.
func InitError(c *Cell, s *Stub) *Cell {
	c.reset(HeartError)
	c.node = s
	return c
}

// InitHandle writes a HANDLE!.
func InitHandle(c *Cell, s *Stub) *Cell {
	c.reset(HeartHandle)
	c.node = s
	return c
}

// InitDatatype writes a DATATYPE!.
func InitDatatype(c *Cell, t Type) *Cell {
	c.reset(HeartDatatype)
	c.bits = uint64(t)
	return c
}

func mustCoerce(c *Cell) *Cell {
	if err := TrapCoerceToAntiform(c); err != nil {
		panic(err)
	}
	return c
}

// InitNull writes the ~null~ antiform.
func InitNull(c *Cell) *Cell { return mustCoerce(InitWord(c, SymbolNull)) }

// InitOkay writes the ~okay~ antiform.
func InitOkay(c *Cell) *Cell { return mustCoerce(InitWord(c, SymbolOkay)) }

// InitLogic writes ~okay~ or ~null~.
func InitLogic(c *Cell, b bool) *Cell {
	if b {
		return InitOkay(c)
	}
	return InitNull(c)
}

// InitTrash writes the antiform blank, the state of an unset variable.
func InitTrash(c *Cell) *Cell { return mustCoerce(InitBlank(c)) }

// InitGhost writes the antiform comma, the result of vanishing code.
func InitGhost(c *Cell) *Cell { return mustCoerce(InitComma(c)) }

// InitPack writes an antiform block over an array of lifted values.
func InitPack(c *Cell, arr *Stub) *Cell { return mustCoerce(InitBlock(c, arr)) }

// InitSplice writes an antiform group over arr.
func InitSplice(c *Cell, arr *Stub) *Cell { return mustCoerce(InitGroup(c, arr)) }

// InitRaised writes an antiform error.
func InitRaised(c *Cell, s *Stub) *Cell { return mustCoerce(InitError(c, s)) }

// InitAction writes an antiform frame: an action ready to run.
func InitAction(c *Cell, details *Stub, coupling *Stub) *Cell {
	return mustCoerce(InitFrame(c, details, coupling))
}

// IsKeyword reports an antiform word with the given symbol id.
func (c *Cell) IsKeyword(id SymID) bool {
	return c.IsAntiform() && c.Heart() == HeartWord && SymIDOf(c.node) == id
}

// IsNull reports ~null~ antiform.
func (c *Cell) IsNull() bool { return !c.IsErased() && c.IsKeyword(SymNull) }

// IsOkay reports ~okay~ antiform.
func (c *Cell) IsOkay() bool { return !c.IsErased() && c.IsKeyword(SymOkay) }

func (c *Cell) isAnti(h Heart) bool {
	return !c.IsErased() && c.IsAntiform() && c.Heart() == h
}

// IsTrash reports antiform blank.
func (c *Cell) IsTrash() bool { return c.isAnti(HeartBlank) }

// IsGhost reports antiform comma.
func (c *Cell) IsGhost() bool { return c.isAnti(HeartComma) }

// IsPack reports antiform block.
func (c *Cell) IsPack() bool { return c.isAnti(HeartBlock) }

// IsSplice reports antiform group.
func (c *Cell) IsSplice() bool { return c.isAnti(HeartGroup) }

// IsAction reports antiform frame.
func (c *Cell) IsAction() bool { return c.isAnti(HeartFrame) }

// IsRaised reports antiform error.
func (c *Cell) IsRaised() bool { return c.isAnti(HeartError) }

// IsStable reports anything but packs, ghosts and raised errors.
func (c *Cell) IsStable() bool {
	if !c.IsAntiform() {
		return true
	}
	switch c.Heart() {
	case HeartBlock, HeartComma, HeartError:
		return false
	}
	return true
}

// Is reports a plain cell of heart h.
func (c *Cell) Is(h Heart) bool {
	return !c.IsErased() && c.IsPlain() && c.Heart() == h
}

// ErrorOf returns the payload of an ERROR! or raised error.
func (c *Cell) ErrorOf() *Error {
	if c.Heart() != HeartError {
		Panic(ErrBadType, "expected error!, got %s", TypeOf(c))
	}
	if c.node.Decayed() {
		Panic(ErrSeriesDecayed, "error was freed")
	}
	e, _ := c.node.obj.(*Error)
	return e
}

// HeartOf returns the heart; it fails only on erased cells.
func HeartOf(c *Cell) Heart { return c.Heart() }

// TypeOf reports what TYPE-OF would.
func TypeOf(c *Cell) Type {
	h := c.Heart()
	switch l := c.header.lift; {
	case l == LiftAntiform:
		return antiformType(h)
	case l.Depth() > 0:
		return TypeQuoted
	case l == LiftQuasi:
		return TypeQuasiform
	}
	return Type(h)
}
