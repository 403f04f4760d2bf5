package vm_test

import (
	"context"
	"testing"

	"ren/internal/core"
	"ren/internal/vm"
)

func TestDeepRecursion(t *testing.T) {
	in, _ := newInterp(t, vm.Config{})
	got := evalMold(t, in, "f: func [n] [either n = 0 [0] [1 + f n - 1]] f 5000")
	if got != "5000" {
		t.Fatalf("f 5000 = %s", got)
	}
	expectBalanced(t, in)
}

func TestStackOverflow(t *testing.T) {
	in, _ := newInterp(t, vm.Config{MaxDepth: 1000})
	_, err := in.Eval(context.Background(), "f: func [] [f] f")
	if codeOf(t, err) != core.ErrStackOverflow {
		t.Fatalf("expected stack overflow, got %v", err)
	}
	expectBalanced(t, in)
	if got := evalMold(t, in, "1 + 1"); got != "2" {
		t.Fatalf("after overflow: %s", got)
	}
}

func TestRescueSkipsFatal(t *testing.T) {
	in, _ := newInterp(t, vm.Config{MaxDepth: 1000})
	_, err := in.Eval(context.Background(), "f: func [] [f] rescue [f]")
	if codeOf(t, err) != core.ErrStackOverflow {
		t.Fatalf("rescue caught a fatal error: %v", err)
	}
	expectBalanced(t, in)
}

func TestRecycleDuringLoop(t *testing.T) {
	in, _ := newInterp(t, vm.Config{Ballast: 4096})
	src := `n: 0 keep: [] while [n < 2000] [n: n + 1 tmp: reduce [n "x" [a b]] if n = 1000 [keep: tmp]] keep`
	if got := evalMold(t, in, src); got != `[1000 "x" [a b]]` {
		t.Fatalf("kept block = %s", got)
	}
	st := in.Heap().Stats()
	if st.Recycles == 0 {
		t.Errorf("expected automatic recycles, stats %+v", st)
	}
	if st.Manuals != 0 {
		t.Errorf("manual stubs left: %d", st.Manuals)
	}
	expectBalanced(t, in)
}

func TestRecycleNative(t *testing.T) {
	in, _ := newInterp(t, vm.Config{})
	v := in.Text("kept")
	evalMold(t, in, "reduce [1 2 3]")
	n, err := in.UnboxInteger(context.Background(), "recycle")
	if err != nil {
		t.Fatal(err)
	}
	if n < 0 {
		t.Errorf("recycle swept %d", n)
	}
	if got := in.Mold(v); got != `"kept"` {
		t.Errorf("API value after recycle = %s", got)
	}
	in.Release(v)
}

func TestClosedLoopState(t *testing.T) {
	in, _ := newInterp(t, vm.Config{})
	for i := 0; i < 50; i++ {
		if _, err := in.Eval(context.Background(), `fail "again"`); codeOf(t, err) != core.ErrUser {
			t.Fatalf("iteration %d: %v", i, err)
		}
	}
	expectBalanced(t, in)
	if in.Runs() != 50 {
		t.Errorf("Runs = %d, want 50", in.Runs())
	}
}
