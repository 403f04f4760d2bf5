package core

import (
	"errors"
	"testing"
)

func codeOf(t *testing.T, err error) ErrorCode {
	t.Helper()
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *Error, got %T (%v)", err, err)
	}
	return e.Code
}

func expectCode(t *testing.T, err error, want ErrorCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s (%s), got nil", want, want.ID())
	}
	if got := codeOf(t, err); got != want {
		t.Fatalf("expected %s (%s), got %s: %v", want, want.ID(), got, err)
	}
}

// expectPanic runs fn and returns the *Error it panicked with.
func expectPanic(t *testing.T, want ErrorCode, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("expected panic %s, got none", want)
		}
		e, ok := AsError(r)
		if !ok {
			t.Fatalf("expected *Error panic, got %T (%v)", r, r)
		}
		if e.Code != want {
			t.Fatalf("expected panic %s, got %s: %v", want, e.Code, e)
		}
	}()
	fn()
}

// sampleCell builds a plain cell of every heart.
func sampleCell(h *Heap, heart Heart) Cell {
	var c Cell
	switch heart {
	case HeartBlank:
		InitBlank(&c)
	case HeartInteger:
		InitInteger(&c, 42)
	case HeartDecimal:
		InitDecimal(&c, 1.5)
	case HeartRune:
		InitRune(&c, 'x')
	case HeartText:
		InitText(&c, h.MakeString("abc", FlexFlagManaged))
	case HeartTag:
		InitTag(&c, h.MakeString("tag", FlexFlagManaged))
	case HeartBinary:
		InitBinary(&c, h.MakeBinary([]byte{1, 2}, FlexFlagManaged))
	case HeartWord, HeartSetWord, HeartGetWord:
		InitAnyWord(&c, heart, SymbolNull)
	case HeartBlock, HeartGroup:
		InitList(&c, heart, h.MakeArray(0, FlexFlagManaged), 0, nil)
	case HeartComma:
		InitComma(&c)
	case HeartFrame:
		InitFrame(&c, h.MakeFlex(FlavorDetails, 0, FlexFlagManaged), nil)
	case HeartObject:
		InitObject(&c, h.MakeContext(HeartObject, 0, nil, FlexFlagManaged))
	case HeartError:
		InitError(&c, h.MakeErrorStub(NewError(ErrUser, "boom")))
	case HeartHandle:
		InitHandle(&c, h.MakeHandle(1, nil))
	case HeartDatatype:
		InitDatatype(&c, TypeQuoted)
	}
	return c
}
