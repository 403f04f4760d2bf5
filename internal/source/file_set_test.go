package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("test.r", []byte("print 1"), 0)
	id2 := fs.Add("./test.r", []byte("print 2"), 0)
	if id1 == id2 {
		t.Fatalf("re-adding a path must create a new id")
	}
	latest, ok := fs.GetLatest("test.r")
	if !ok || latest != id2 {
		t.Fatalf("expected latest id %d, got %d (%v)", id2, latest, ok)
	}
	if string(fs.Get(id1).Content) != "print 1" {
		t.Errorf("old version lost")
	}
	if fs.Get(99) != nil {
		t.Errorf("unknown id should return nil")
	}
	if fs.Len() != 2 {
		t.Errorf("expected 2 files, got %d", fs.Len())
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("v", []byte("one\ntwo\n\nfour"))
	f := fs.Get(id)

	tests := []struct {
		line uint32
		want string
	}{
		{0, ""},
		{1, "one"},
		{2, "two"},
		{3, ""},
		{4, "four"},
		{5, ""},
	}
	for _, tt := range tests {
		if got := f.GetLine(tt.line); got != tt.want {
			t.Errorf("GetLine(%d) = %q, want %q", tt.line, got, tt.want)
		}
	}
	if f.Flags&FileVirtual == 0 {
		t.Errorf("virtual flag not set")
	}
}

func TestPosition(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("v", []byte("ab\ncd\ne")))

	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{1, LineCol{1, 2}},
		{2, LineCol{1, 3}}, // the newline itself
		{3, LineCol{2, 1}},
		{6, LineCol{3, 1}},
	}
	for _, tt := range tests {
		if got := f.Position(tt.off); got != tt.want {
			t.Errorf("Position(%d) = %+v, want %+v", tt.off, got, tt.want)
		}
	}
}

func TestLoadNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crlf.r")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFa\r\nb\r\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	f := fs.Get(id)
	if string(f.Content) != "a\nb\n" {
		t.Fatalf("content not normalized: %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("flags not recorded: %v", f.Flags)
	}
	if _, ok := fs.GetByPath(path); !ok {
		t.Fatalf("GetByPath failed")
	}
}
