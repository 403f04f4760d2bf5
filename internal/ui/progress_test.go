package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"

	"ren/internal/driver"
)

func TestProgressModelEvents(t *testing.T) {
	m := NewProgressModel("run", []string{"a.r", "b.r"}, nil).(*progressModel)
	m.applyEvent(driver.Event{File: "a.r", Stage: driver.StageScan, Status: driver.StatusWorking})
	if m.items[0].status != "scanning" {
		t.Errorf("status = %q", m.items[0].status)
	}
	if p := m.percent(); p <= 0 || p >= 0.5 {
		t.Errorf("percent while scanning = %f", p)
	}
	m.applyEvent(driver.Event{File: "a.r", Stage: driver.StageEval, Status: driver.StatusDone, Elapsed: 3 * time.Millisecond})
	m.applyEvent(driver.Event{File: "b.r", Stage: driver.StageEval, Status: driver.StatusError, Err: errors.New("boom\nmore")})
	m.applyEvent(driver.Event{File: "other.r", Status: driver.StatusDone})
	if p := m.percent(); p != 1 {
		t.Errorf("percent when finished = %f", p)
	}

	view := m.View()
	for _, want := range []string{"run", "a.r", "done", "error", "boom", "3ms"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if strings.Contains(view, "more") {
		t.Errorf("view shows more than the first error line:\n%s", view)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdefgh", 6); got != "abc..." {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("日本語のファイル", 7); got != "日本..." || runewidth.StringWidth(got) > 7 {
		t.Errorf("truncate wide = %q", got)
	}
	if got := truncate("abcdef", 2); got != "ab" {
		t.Errorf("truncate narrow = %q", got)
	}
	if got := truncate("short", 0); got != "short" {
		t.Errorf("truncate zero width = %q", got)
	}
}
