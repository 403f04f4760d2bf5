package driver_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"ren/internal/core"
	"ren/internal/driver"
	"ren/internal/vm"
)

func writeScripts(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

type recordSink struct {
	mu     sync.Mutex
	events []driver.Event
}

func (s *recordSink) OnEvent(e driver.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func TestRunFiles(t *testing.T) {
	dir := writeScripts(t, map[string]string{
		"a.r":       "print \"from a\"\n1 + 2\n",
		"b.r":       "f: func [n] [either n = 0 [0] [n + f n - 1]]\nf 10\n",
		"sub/bad.r": "x: 1\nfail \"broken\"\n",
		"notes.txt": "not a script",
	})
	paths, err := driver.ListScripts(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 3 {
		t.Fatalf("ListScripts = %v", paths)
	}

	var out bytes.Buffer
	sink := &recordSink{}
	results, err := driver.RunFiles(context.Background(), paths, driver.Options{
		Jobs:    2,
		Runtime: vm.Config{Ballast: 1 << 12},
		Stdout:  &out,
		Sink:    sink,
	})
	if err != nil {
		t.Fatal(err)
	}
	byName := map[string]driver.Result{}
	for _, r := range results {
		byName[filepath.Base(r.Path)] = r
	}
	if r := byName["a.r"]; r.Err != nil || r.Value != "3" {
		t.Errorf("a.r = %q, %v", r.Value, r.Err)
	}
	if r := byName["b.r"]; r.Err != nil || r.Value != "55" {
		t.Errorf("b.r = %q, %v", r.Value, r.Err)
	}
	bad := byName["bad.r"]
	var e *core.Error
	if bad.Err == nil || !errors.As(bad.Err, &e) || e.Code != core.ErrUser {
		t.Fatalf("bad.r error = %v", bad.Err)
	}
	if e.Line != 1 || !strings.HasSuffix(e.File, "bad.r") {
		t.Errorf("bad.r location %s:%d", e.File, e.Line)
	}
	if out.String() != "from a\n" {
		t.Errorf("stdout = %q", out.String())
	}
	if len(byName["a.r"].Timing.Phases) == 0 {
		t.Errorf("no timings recorded")
	}

	var done, failed int
	for _, ev := range sink.events {
		switch {
		case ev.File != "" && ev.Status == driver.StatusDone:
			done++
		case ev.File != "" && ev.Status == driver.StatusError:
			failed++
		}
	}
	if done != 2 || failed != 1 {
		t.Errorf("events: %d done, %d failed", done, failed)
	}
}

func TestRunFilesCache(t *testing.T) {
	dir := writeScripts(t, map[string]string{"c.r": "x: [1 'a ~q~ @b]\nx\n"})
	cache, err := driver.OpenDiskCacheAt(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "c.r")
	opts := driver.Options{Cache: cache, Stdout: &bytes.Buffer{}}

	first, err := driver.RunFiles(context.Background(), []string{path}, opts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := driver.RunFiles(context.Background(), []string{path}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first[0].Cached || !second[0].Cached {
		t.Fatalf("cached: first %v, second %v", first[0].Cached, second[0].Cached)
	}
	if first[0].Value != second[0].Value || second[0].Value != "[1 'a ~q~ @b]" {
		t.Errorf("values %q / %q", first[0].Value, second[0].Value)
	}

	scanned, err := driver.Scan(path, opts)
	if err != nil || !scanned.Cached || scanned.Molded != "[x: [1 'a ~q~ @b]\nx]" {
		t.Errorf("Scan = %+v, %v", scanned, err)
	}

	if err := cache.DropAll(); err != nil {
		t.Fatal(err)
	}
	third, err := driver.RunFiles(context.Background(), []string{path}, opts)
	if err != nil || third[0].Cached {
		t.Errorf("after DropAll cached=%v err=%v", third[0].Cached, err)
	}
}

func TestRunFilesMissing(t *testing.T) {
	results, err := driver.RunFiles(context.Background(), []string{filepath.Join(t.TempDir(), "nope.r")}, driver.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Err == nil || !strings.Contains(results[0].Err.Error(), "load") {
		t.Fatalf("missing file error = %v", results[0].Err)
	}
}

func TestRunFilesCancelled(t *testing.T) {
	dir := writeScripts(t, map[string]string{"loop.r": "while [okay] []\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := driver.RunFiles(ctx, []string{filepath.Join(dir, "loop.r")}, driver.Options{})
	if err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestChannelSink(t *testing.T) {
	ch := make(chan driver.Event, 1)
	driver.ChannelSink{Ch: ch}.OnEvent(driver.Event{File: "x.r", Status: driver.StatusDone})
	if ev := <-ch; ev.File != "x.r" {
		t.Errorf("event = %+v", ev)
	}
	driver.ChannelSink{}.OnEvent(driver.Event{})
}
