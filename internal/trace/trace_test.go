package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelScopes(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeSession, false},
		{LevelError, ScopeSession, false},
		{LevelPhase, ScopeEval, true},
		{LevelPhase, ScopeGC, false},
		{LevelDetail, ScopeGC, true},
		{LevelDetail, ScopeLevel, false},
		{LevelDebug, ScopeLevel, true},
	}
	for _, tc := range cases {
		if got := tc.level.ShouldEmit(tc.scope); got != tc.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", tc.level, tc.scope, got, tc.want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("ParseLevel accepted an unknown level")
	}
}

func TestRingKeepsNewestEvents(t *testing.T) {
	ring := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(ring, ScopeLevel, name, "")
	}
	events := ring.Snapshot()
	if len(events) != 3 {
		t.Fatalf("snapshot has %d events, want 3", len(events))
	}
	for i, want := range []string{"c", "d", "e"} {
		if events[i].Name != want {
			t.Fatalf("event %d = %q, want %q", i, events[i].Name, want)
		}
	}
	if events[0].Seq >= events[2].Seq {
		t.Fatal("sequence numbers are not increasing")
	}
}

func TestSpanNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatNDJSON)
	parent := Begin(tr, ScopeSession, "run", 0)
	child := Begin(tr, ScopeEval, "eval", parent.ID())
	child.WithExtra("file", "fib.r").End("ok")
	Begin(tr, ScopeGC, "recycle", child.ID()).End("")
	parent.End("")
	if err := tr.Flush(); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d events, want 4 (gc filtered):\n%s", len(lines), buf.String())
	}
	var end struct {
		Kind     string            `json:"kind"`
		Name     string            `json:"name"`
		ParentID uint64            `json:"parent_id"`
		Detail   string            `json:"detail"`
		Extra    map[string]string `json:"extra"`
	}
	if err := json.Unmarshal([]byte(lines[2]), &end); err != nil {
		t.Fatal(err)
	}
	if end.Kind != "end" || end.Name != "eval" || end.ParentID != parent.ID() || end.Detail != "ok" || end.Extra["file"] != "fib.r" {
		t.Fatalf("unexpected end event %+v", end)
	}
}

func TestNewPicksStorage(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr != Nop {
		t.Fatalf("off level: %v, %v", tr, err)
	}
	tr, err = New(Config{Level: LevelDebug, Mode: ModeRing, RingSize: 8})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := tr.(*RingTracer); !ok {
		t.Fatalf("ring mode built %T", tr)
	}
	var buf bytes.Buffer
	tr, err = New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	multi, ok := tr.(*MultiTracer)
	if !ok || multi.Ring() == nil {
		t.Fatalf("both mode built %T", tr)
	}
	Point(tr, ScopeSession, "hello", "")
	if !strings.Contains(buf.String(), "hello") || len(multi.Ring().Snapshot()) != 1 {
		t.Fatal("event did not reach both tracers")
	}
}

func TestContextCarriesTracerAndSpan(t *testing.T) {
	ctx := context.Background()
	if FromContext(ctx) != Nop || ParentSpan(ctx) != 0 {
		t.Fatal("empty context should yield Nop and no span")
	}
	ring := NewRingTracer(4, LevelDebug)
	ctx = WithParentSpan(WithTracer(ctx, ring), 42)
	if FromContext(ctx) != Tracer(ring) || ParentSpan(ctx) != 42 {
		t.Fatal("context lost the tracer or span")
	}
}

func TestLaneLabelsEvents(t *testing.T) {
	var buf bytes.Buffer
	base := NewStreamTracer(&buf, LevelPhase, FormatText)
	Point(WithLane(base, "fib.r"), ScopeEval, "throw", "done")
	if got := buf.String(); !strings.Contains(got, "<fib.r>") || !strings.Contains(got, "throw (done)") {
		t.Fatalf("text event %q lacks lane or detail", got)
	}
	if WithLane(Nop, "x") != Nop {
		t.Fatal("disabled tracer should come back unchanged")
	}
}
