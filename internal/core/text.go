package core

import (
	"unicode/utf8"
)

// MakeString allocates a string stub holding text. Link.Int and Misc.Int
// cache the last codepoint index looked up and its byte offset.
func (h *Heap) MakeString(text string, flags FlexFlags) *Stub {
	s := h.MakeFlex(FlavorString, len(text), flags)
	s.bytes = append(s.bytes, text...)
	return s
}

// MakeBinary allocates a binary stub holding a copy of b.
func (h *Heap) MakeBinary(b []byte, flags FlexFlags) *Stub {
	s := h.MakeFlex(FlavorBinary, len(b), flags)
	s.bytes = append(s.bytes, b...)
	return s
}

// AppendString adds text to the end of a string stub.
func (h *Heap) AppendString(s *Stub, text string) error {
	n := len(s.bytes)
	if err := h.ExpandFlexTail(s, len(text)); err != nil {
		return err
	}
	copy(s.bytes[n:], text)
	return nil
}

// StringLen returns the length in codepoints.
func StringLen(s *Stub) int {
	s.mustRead()
	return utf8.RuneCount(s.bytes)
}

// StringByteOffset converts a codepoint index to a byte offset, starting
// from the bookmark when it lies before the index.
func StringByteOffset(s *Stub, index int) int {
	s.mustRead()
	cp, off := 0, 0
	if bm := int(s.Link.Int); bm > 0 && bm <= index && int(s.Misc.Int) <= len(s.bytes) {
		cp, off = bm, int(s.Misc.Int)
	}
	for cp < index && off < len(s.bytes) {
		_, size := utf8.DecodeRune(s.bytes[off:])
		off += size
		cp++
	}
	s.Link.Int = int64(cp)
	s.Misc.Int = int64(off)
	return off
}

// StringAt returns the text of a string stub from a codepoint index.
func StringAt(s *Stub, index int) string {
	return string(s.bytes[StringByteOffset(s, index):])
}

// Text returns the text of a TEXT! or TAG! from its index.
func (c *Cell) Text() string {
	if !c.Heart().IsString() {
		Panic(ErrBadType, "expected text!, got %s", TypeOf(c))
	}
	return StringAt(c.node, c.Index())
}

// MakeHandle wraps host data. cleanup runs when the handle is swept.
func (h *Heap) MakeHandle(v any, cleanup func(any)) *Stub {
	s := h.MakeFlex(FlavorHandle, 0, FlexFlagManaged)
	s.obj = &HandleData{Value: v, Cleanup: cleanup}
	return s
}

// MakeErrorStub wraps an error for an ERROR! cell. It is exempt from the
// memory limit so out-of-memory can still be reported.
func (h *Heap) MakeErrorStub(e *Error) *Stub {
	s, err := h.makeFlex(FlavorError, 0, FlexFlagManaged, false)
	if err != nil {
		panic(err)
	}
	s.obj = e
	return s
}
