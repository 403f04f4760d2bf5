package vm

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"ren/internal/core"
)

func newTestInterp(t *testing.T) *Interp {
	t.Helper()
	in := New(Config{Stdout: io.Discard})
	t.Cleanup(func() {
		if err := in.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return in
}

func drain(f *Feed) []string {
	var got []string
	for !f.AtEnd() {
		got = append(got, core.Mold(f.At()))
		f.Fetch()
	}
	return got
}

func TestVariadicFeedReads(t *testing.T) {
	in := newTestInterp(t)
	v := in.Integer(7)
	defer in.Release(v)

	parts := []any{"a b", v, "", "[c d]"}
	f := in.NewVariadicFeed(parts, in.user)
	got := drain(f)
	f.Release()
	if want := []string{"a", "b", "7", "[c d]"}; strings.Join(got, " ") != strings.Join(want, " ") {
		t.Fatalf("feed = %q, want %q", got, want)
	}
	if f.Reads() != len(parts) {
		t.Errorf("Reads = %d, want %d", f.Reads(), len(parts))
	}

	// The same parts yield the same values.
	again := in.NewVariadicFeed(parts, in.user)
	if got2 := drain(again); strings.Join(got2, " ") != strings.Join(got, " ") {
		t.Errorf("second walk = %q, first %q", got2, got)
	}
	again.Release()
}

func TestVariadicFeedReleaseDrains(t *testing.T) {
	in := newTestInterp(t)
	a, b := in.Integer(1), in.Integer(2)
	f := in.NewVariadicFeed([]any{"x", in.R(a), in.R(b)}, in.user)
	if core.Mold(f.At()) != "x" {
		t.Fatalf("first value = %s", core.Mold(f.At()))
	}
	f.Release()
	if f.Reads() != 3 {
		t.Errorf("Reads after release = %d, want 3", f.Reads())
	}
	if !a.expired || !b.expired {
		t.Errorf("unread R() values not released: %v %v", a.expired, b.expired)
	}
	if !f.AtEnd() {
		t.Errorf("released feed not at end")
	}
}

func TestFeedPollingDoesNotAdvance(t *testing.T) {
	in := newTestInterp(t)
	code, err := in.Transcode("1 2 3", "poll.r")
	if err != nil {
		t.Fatal(err)
	}
	defer in.Release(code)

	feeds := map[string]func() *Feed{
		"array":    func() *Feed { return in.NewArrayFeed(code.Cell().Node(), 0, in.user) },
		"variadic": func() *Feed { return in.NewVariadicFeed([]any{"1 2", "3"}, in.user) },
	}
	for name, mk := range feeds {
		f := mk()
		var got []string
		for {
			first := f.At()
			molded := ""
			if first != nil {
				molded = core.Mold(first)
			}
			for range 5 {
				if f.AtEnd() != (first == nil) {
					t.Fatalf("%s: AtEnd disagrees with At", name)
				}
				if f.At() != first || (first != nil && core.Mold(f.At()) != molded) {
					t.Fatalf("%s: At moved while polling", name)
				}
			}
			if f.AtEnd() {
				break
			}
			got = append(got, molded)
			f.Fetch()
		}
		if strings.Join(got, " ") != "1 2 3" {
			t.Errorf("%s feed = %q, want 1 2 3", name, got)
		}
		if !f.AtEnd() || f.At() != nil {
			t.Errorf("%s feed left its end", name)
		}
		f.Release()
	}
}

func TestArrayFeedHold(t *testing.T) {
	in := newTestInterp(t)
	code, err := in.Transcode("1 2", "h.r")
	if err != nil {
		t.Fatal(err)
	}
	defer in.Release(code)
	arr := code.Cell().Node()
	f := in.NewArrayFeed(arr, 0, in.user)
	if err := core.CheckMutable(arr); err == nil {
		t.Errorf("array not held while fed")
	}
	if got := strings.Join(drain(f), " "); got != "1 2" {
		t.Errorf("feed = %q", got)
	}
	f.Release()
	if err := core.CheckMutable(arr); err != nil {
		t.Errorf("array still held after release: %v", err)
	}
}

func TestThrowPairing(t *testing.T) {
	in := newTestInterp(t)
	var label, arg, out core.Cell
	core.InitWord(&label, core.Intern("done"))
	core.InitInteger(&arg, 10)

	expectCode(t, core.ErrNoThrow, func() { in.CatchThrown(&out) })
	expectCode(t, core.ErrNoThrow, func() { in.ThrownLabel() })

	in.InitThrown(&label, &arg)
	if !in.Throwing() {
		t.Fatal("throw not in flight")
	}
	expectCode(t, core.ErrThrowInFlight, func() { in.InitThrown(&label, &arg) })
	if !sameLabel(in.ThrownLabel(), &label) {
		t.Errorf("label = %s", core.Mold(in.ThrownLabel()))
	}
	in.CatchThrown(&out)
	if in.Throwing() || core.Mold(&out) != "10" {
		t.Errorf("after catch: throwing=%v out=%s", in.Throwing(), core.Mold(&out))
	}
}

func TestUncaughtThrowBecomesNoCatch(t *testing.T) {
	in := newTestInterp(t)
	var label, arg core.Cell
	core.InitWord(&label, core.Intern("nowhere"))
	core.InitTrash(&arg)
	in.InitThrown(&label, &arg)
	e := in.takeThrownError()
	if e.Code != core.ErrNoCatch || in.Throwing() {
		t.Fatalf("takeThrownError = %v, throwing=%v", e, in.Throwing())
	}
}

func TestStepTracer(t *testing.T) {
	var buf bytes.Buffer
	in := New(Config{Stdout: io.Discard, Steps: NewStepTracer(&buf, 0)})
	defer in.Close()
	code, err := in.Transcode("f: func [x] [x + 1]\nf 2", "steps.r")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := in.Eval(t.Context(), "do", in.R(code)); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"do f: @ steps.r:1", "f x @ steps.r:1", "[depth="} {
		if !strings.Contains(out, want) {
			t.Errorf("trace missing %q:\n%s", want, out)
		}
	}
}

func expectCode(t *testing.T, want core.ErrorCode, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		e, ok := core.AsError(recover())
		if !ok || e.Code != want {
			t.Fatalf("expected panic %s, got %v", want, e)
		}
	}()
	fn()
}
