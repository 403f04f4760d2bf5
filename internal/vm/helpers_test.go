package vm_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"ren/internal/core"
	"ren/internal/vm"
)

// newInterp creates an interpreter printing to a buffer and checks at
// cleanup that nothing manual leaked.
func newInterp(t *testing.T, cfg vm.Config) (*vm.Interp, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	if cfg.Stdout == nil {
		cfg.Stdout = &out
	}
	in := vm.New(cfg)
	t.Cleanup(func() {
		if err := in.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return in, &out
}

// evalMold evaluates parts and molds the result.
func evalMold(t *testing.T, in *vm.Interp, parts ...any) string {
	t.Helper()
	v, err := in.Eval(context.Background(), parts...)
	if err != nil {
		t.Fatalf("Eval(%v): %v", parts, err)
	}
	s := in.Mold(v)
	if v != nil {
		in.Release(v)
	}
	return s
}

func codeOf(t *testing.T, err error) core.ErrorCode {
	t.Helper()
	var e *core.Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *core.Error, got %T (%v)", err, err)
	}
	return e.Code
}

func expectPanic(t *testing.T, want core.ErrorCode, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("expected panic %s, got none", want)
		}
		e, ok := core.AsError(r)
		if !ok {
			t.Fatalf("expected *core.Error panic, got %T (%v)", r, r)
		}
		if e.Code != want {
			t.Fatalf("expected panic %s, got %s: %v", want, e.Code, e)
		}
	}()
	fn()
}

// expectBalanced checks that an evaluation left no levels, stack cells or
// throw behind.
func expectBalanced(t *testing.T, in *vm.Interp) {
	t.Helper()
	if d := in.Depth(); d != 0 {
		t.Errorf("level depth = %d, want 0", d)
	}
	if n := in.DataStack().Index(); n != 0 {
		t.Errorf("data stack index = %d, want 0", n)
	}
	if in.Throwing() {
		t.Errorf("throw still in flight")
	}
}
