package project

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ren/internal/vm"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLoadWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), `
[package]
name = "demo"

[run]
main = "src/main.r"

[runtime]
ballast = 8192
max-depth = 500
checked = false

[trace]
level = "phase"
mode = "ring"
`)
	writeFile(t, filepath.Join(root, "src", "main.r"), "print 1\n")
	deep := filepath.Join(root, "src", "a", "b")
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatal(err)
	}

	m, ok, err := Load(deep)
	if err != nil || !ok {
		t.Fatalf("Load = %v, %v", ok, err)
	}
	if m.Config.Package.Name != "demo" || m.Root != root {
		t.Errorf("manifest = %+v", m)
	}
	main, err := m.MainPath()
	if err != nil || main != filepath.Join(root, "src", "main.r") {
		t.Errorf("MainPath = %q, %v", main, err)
	}

	cfg := vm.Config{MaxDepth: 10, MemLimit: 1 << 20}
	m.Config.Runtime.Apply(&cfg)
	if cfg.Ballast != 8192 || cfg.MaxDepth != 500 || !cfg.Unchecked || cfg.MemLimit != 1<<20 {
		t.Errorf("applied config = %+v", cfg)
	}
}

func TestLoadNone(t *testing.T) {
	_, ok, err := Load(t.TempDir())
	if err != nil || ok {
		t.Fatalf("Load without manifest = %v, %v", ok, err)
	}
}

func TestLoadFileErrors(t *testing.T) {
	cases := []struct {
		name, body, want string
	}{
		{"no package", "[run]\nmain = \"x.r\"\n", "missing [package]"},
		{"unknown key", "[package]\nname = \"x\"\ncolour = 1\n", "unknown keys: package.colour"},
		{"bad depth", "[package]\n[runtime]\nmax-depth = -1\n", "max-depth"},
		{"bad level", "[package]\n[trace]\nlevel = \"loud\"\n", "[trace].level"},
		{"bad toml", "[package\n", "failed to parse TOML"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ManifestName)
			writeFile(t, path, tc.body)
			_, err := LoadFile(path)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("LoadFile = %v, want %q", err, tc.want)
			}
		})
	}
}

func TestMissingPackageIs(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestName)
	writeFile(t, path, "")
	if _, err := LoadFile(path); !errors.Is(err, ErrPackageSectionMissing) {
		t.Fatalf("LoadFile = %v", err)
	}
}

func TestMainPathMissing(t *testing.T) {
	m := &Manifest{Path: "ren.toml", Root: t.TempDir()}
	if _, err := m.MainPath(); err == nil {
		t.Fatal("expected error for empty [run].main")
	}
	m.Config.Run.Main = "nope.r"
	if _, err := m.MainPath(); err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("MainPath = %v", err)
	}
}

func TestCombine(t *testing.T) {
	var d Digest
	a := Combine(d, []byte("v1"))
	b := Combine(d, []byte("v2"))
	if a == b || a != Combine(d, []byte("v1")) {
		t.Fatal("Combine must depend on salts and be deterministic")
	}
}
