package vm_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ren/internal/core"
	"ren/internal/vm"
)

func TestEvalResults(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2", "3"},
		{"1 + 2 * 3", "9"},
		{"add 1 2", "3"},
		{"x: 10 x + 1", "11"},
		{"x: 1 x: x + 1 x", "2"},
		{"divide 6 3", "2"},
		{"divide 1 2", "0.5"},
		{"1.5 + 1", "2.5"},
		{"(1 + 2) * 2", "6"},
		{"'foo", "foo"},
		{"''foo", "'foo"},
		{"@foo", "@foo"},
		{"$foo", "foo"},
		{"[a b]", "[a b]"},
		{"1, 2", "2"},
		{"comment [ignored] 7", "7"},
		{"7 elide 8", "7"},
		{"if 1 < 2 [10]", "10"},
		{"if 1 > 2 [10]", "~null~"},
		{"either 1 > 2 [10] [20]", "20"},
		{"n: 0 while [n < 5] [n: n + 1]", "5"},
		{"reduce [1 + 1 2 * 3]", "[2 6]"},
		{"reduce [1 spread [2 3] 4]", "[1 2 3 4]"},
		{"reduce [1 comment 2 3]", "[1 3]"},
		{"reduce [1 veto 3]", "~null~"},
		{"reduce [1 2 done 3 + 4]", "[1 2]"},
		{"x: 0 reduce [1 done x: 5] x", "0"},
		{"reduce [done]", "[]"},
		{"pack [1 2]", "1"},
		{"x: pack [1 2] x", "1"},
		{"f: func [x] [x * 2] f 21", "42"},
		{"f: func [x] [return x + 1 99] f 1", "2"},
		{"f: func [x <local> y] [y: x y] f 3", "3"},
		{"f: func ['w] [w] f foo", "foo"},
		{"f: func [:w] [w] f (1 + 1)", "2"},
		{"f: func [^v] [v] f null", "~null~"},
		{"catch [throw 5 10]", "5"},
		{"catch [10]", "10"},
		{"catch-named 'a [catch-named 'b [throw-named 'a 1] 2]", "1"},
		{"lift 1", "'1"},
		{"lift null", "~null~"},
		{"unlift lift 1", "1"},
		{"quote 1", "'1"},
		{"unquote quote 1", "1"},
		{"type-of 1", "integer!"},
		{"type-of null", "keyword!"},
		{"null? null", "~okay~"},
		{"null? 1", "~null~"},
		{"not null", "~okay~"},
		{"1 = 1.0", "~okay~"},
		{`"a" < "b"`, "~okay~"},
		{`do "1 + 1"`, "2"},
		{"do [3 * 3]", "9"},
		{`try fail "x"`, "~null~"},
		{"try 1", "1"},
		{`type-of rescue [panic "boom"]`, "error!"},
		{"rescue [1]", "~null~"},
		{"mold [a 'b]", `"[a 'b]"`},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			in, _ := newInterp(t, vm.Config{})
			if got := evalMold(t, in, tt.src); got != tt.want {
				t.Errorf("%s = %s, want %s", tt.src, got, tt.want)
			}
			expectBalanced(t, in)
		})
	}
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		src  string
		code core.ErrorCode
	}{
		{"1 +", core.ErrNoArg},
		{"+ 1", core.ErrNoLeft},
		{"undefined-word", core.ErrNotBound},
		{`add "a" 1`, core.ErrExpectArg},
		{"divide 1 0", core.ErrZeroDivide},
		{"9223372036854775807 + 1", core.ErrOverflow},
		{"throw 1", core.ErrNoCatch},
		{"return 1", core.ErrNoCatch},
		{`panic "x"`, core.ErrUser},
		{`fail "x" 1`, core.ErrUser},
		{`x: fail "x"`, core.ErrUser},
		{"x: ~ x", core.ErrNoValue},
		{"add: 1", core.ErrProtectedWord},
		{"halt", core.ErrHalt},
		{"rescue [halt]", core.ErrHalt},
		{"[1 2", core.ErrScanMissing},
		{"1 ]", core.ErrScanExtra},
		{"(1 ]", core.ErrScanMismatch},
		{"if ~ [1]", core.ErrNoValue},
		{"f: func [x [integer!]] [x] f 'a", core.ErrExpectArg},
		{"f: func [x x] [x]", core.ErrBadFuncSpec},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			in, _ := newInterp(t, vm.Config{})
			v, err := in.Eval(context.Background(), tt.src)
			if err == nil {
				in.Release(v)
				t.Fatalf("%s: expected %s, got %s", tt.src, tt.code, in.Mold(v))
			}
			if got := codeOf(t, err); got != tt.code {
				t.Fatalf("%s: expected %s, got %s: %v", tt.src, tt.code, got, err)
			}
			expectBalanced(t, in)

			// The interpreter stays usable after a failure.
			if got := evalMold(t, in, "1 + 1"); got != "2" {
				t.Fatalf("after failure: 1 + 1 = %s", got)
			}
		})
	}
}

func TestErrorLocation(t *testing.T) {
	in, _ := newInterp(t, vm.Config{})
	code, err := in.Transcode("x: 1\nundefined-word 2", "t.r")
	if err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	_, err = in.Eval(context.Background(), "do", in.R(code))
	var e *core.Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *core.Error, got %v", err)
	}
	if e.Code != core.ErrNotBound {
		t.Fatalf("code = %s, want %s", e.Code, core.ErrNotBound)
	}
	if e.File != "t.r" || e.Line != 1 {
		t.Errorf("location = %s:%d, want t.r:1", e.File, e.Line)
	}
	if !strings.Contains(e.Near, "undefined-word") || !strings.HasSuffix(e.Near, "**") {
		t.Errorf("near = %q", e.Near)
	}
	expectBalanced(t, in)
}

func TestBacktraceNamesActions(t *testing.T) {
	in, _ := newInterp(t, vm.Config{})
	_, err := in.Eval(context.Background(), `inner: func [] [panic "deep"] outer: func [] [inner] outer`)
	var e *core.Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *core.Error, got %v", err)
	}
	want := []string{"panic", "inner", "outer"}
	if len(e.Backtrace) < len(want) {
		t.Fatalf("backtrace = %v, want prefix %v", e.Backtrace, want)
	}
	for i, w := range want {
		if e.Backtrace[i] != w {
			t.Fatalf("backtrace = %v, want prefix %v", e.Backtrace, want)
		}
	}
}

func TestPrint(t *testing.T) {
	in, out := newInterp(t, vm.Config{})
	if err := in.Elide(context.Background(), `print "hi" print ["a" 1 + 1] probe [x]`); err != nil {
		t.Fatalf("Elide: %v", err)
	}
	if got, want := out.String(), "hi\na 2\n[x]\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}
