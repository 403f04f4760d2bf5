package core

import "testing"

func TestInternIsCaseInsensitive(t *testing.T) {
	a := Intern("Append")
	b := Intern("append")
	c := Intern("Append")
	if a != c {
		t.Fatalf("same spelling interned twice")
	}
	if a == b {
		t.Fatalf("different spellings share a stub")
	}
	if !SameSymbol(a, b) {
		t.Fatalf("case variants must share an id")
	}
	if Canon(b) != a {
		t.Fatalf("canon should be the first spelling")
	}
	ring := Synonyms(a)
	if len(ring) != 2 {
		t.Fatalf("synonym ring has %d entries", len(ring))
	}
	if SymIDOf(Intern("null")) != SymNull {
		t.Fatalf("builtin id not preserved")
	}
}

func TestInternNormalizesNFC(t *testing.T) {
	composed := Intern("caf\u00e9")
	decomposed := Intern("cafe\u0301")
	if composed != decomposed {
		t.Fatalf("NFC variants interned separately")
	}
}

func TestStringBookmark(t *testing.T) {
	h := NewHeap(HeapConfig{})
	s := h.MakeString("añb€c", FlexFlagManaged)
	if StringLen(s) != 5 {
		t.Fatalf("length %d", StringLen(s))
	}
	if got := StringAt(s, 3); got != "€c" {
		t.Fatalf("StringAt(3) = %q", got)
	}
	if s.Link.Int != 3 || s.Misc.Int != 4 {
		t.Fatalf("bookmark not cached: %d/%d", s.Link.Int, s.Misc.Int)
	}
	if got := StringAt(s, 1); got != "ñb€c" {
		t.Fatalf("StringAt(1) = %q", got)
	}
	if got := StringAt(s, 4); got != "c" {
		t.Fatalf("StringAt(4) = %q", got)
	}
}
