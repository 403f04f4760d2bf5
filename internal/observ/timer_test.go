package observ

import (
	"strings"
	"testing"
	"time"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	scan := tm.Begin(PhaseScan)
	tm.End(scan, "3 arrays")
	tm.Add(PhaseEval, 4*time.Millisecond, "")
	tm.Add(PhaseRecycle, time.Millisecond, "swept 10")
	tm.End(99, "ignored")

	r := tm.Report()
	if len(r.Phases) != 3 {
		t.Fatalf("phases = %d, want 3", len(r.Phases))
	}
	if r.Phases[0].Note != "3 arrays" {
		t.Errorf("scan note = %q", r.Phases[0].Note)
	}
	if r.TotalMS < 4 || r.TotalMS >= 5 {
		t.Errorf("total = %.3f, want eval plus scan without recycle", r.TotalMS)
	}
	if got := tm.Total(PhaseRecycle); got != time.Millisecond {
		t.Errorf("recycle total = %v", got)
	}
	s := tm.Summary()
	for _, want := range []string{"timings:", "eval", "// swept 10", "total"} {
		if !strings.Contains(s, want) {
			t.Errorf("summary missing %q:\n%s", want, s)
		}
	}
}

func TestEmptyReport(t *testing.T) {
	if r := NewTimer().Report(); r.TotalMS != 0 || r.Phases != nil {
		t.Errorf("empty report = %+v", r)
	}
}
