package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"ren/internal/trace"
	"ren/internal/vm"
)

// ErrPackageSectionMissing reports a ren.toml without [package].
var ErrPackageSectionMissing = errors.New("missing [package]")

// Manifest is a loaded ren.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the sections of ren.toml.
type Config struct {
	Package PackageConfig `toml:"package"`
	Run     RunConfig     `toml:"run"`
	Runtime RuntimeConfig `toml:"runtime"`
	Trace   TraceConfig   `toml:"trace"`
}

// PackageConfig is [package].
type PackageConfig struct {
	Name string `toml:"name"`
}

// RunConfig is [run]: the script `ren run` starts with no arguments.
type RunConfig struct {
	Main string `toml:"main"`
}

// RuntimeConfig is [runtime]. Zero values keep the interpreter defaults.
type RuntimeConfig struct {
	Ballast      int64 `toml:"ballast"`
	MemLimit     int64 `toml:"mem-limit"`
	MaxDepth     int   `toml:"max-depth"`
	MaxDataStack int   `toml:"max-data-stack"`
	Checked      *bool `toml:"checked"`
}

// TraceConfig is [trace]; command-line flags override it.
type TraceConfig struct {
	Level  string `toml:"level"`
	Mode   string `toml:"mode"`
	Output string `toml:"output"`
}

// Load finds and parses the ren.toml above startDir. ok is false when
// there is none.
func Load(startDir string) (*Manifest, bool, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := LoadFile(path)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

// LoadFile parses the manifest at path.
func LoadFile(path string) (*Manifest, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return nil, fmt.Errorf("%s: %w", path, ErrPackageSectionMissing)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Runtime.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if cfg.Trace.Level != "" {
		if _, err := trace.ParseLevel(cfg.Trace.Level); err != nil {
			return nil, fmt.Errorf("%s: [trace].level: %w", path, err)
		}
	}
	if cfg.Trace.Mode != "" {
		if _, err := trace.ParseMode(cfg.Trace.Mode); err != nil {
			return nil, fmt.Errorf("%s: [trace].mode: %w", path, err)
		}
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, nil
}

func (r RuntimeConfig) validate() error {
	switch {
	case r.MemLimit < 0:
		return errors.New("[runtime].mem-limit must not be negative")
	case r.MaxDepth < 0:
		return errors.New("[runtime].max-depth must not be negative")
	case r.MaxDataStack < 0:
		return errors.New("[runtime].max-data-stack must not be negative")
	}
	return nil
}

// Apply copies the settings given in [runtime] onto cfg.
func (r RuntimeConfig) Apply(cfg *vm.Config) {
	if r.Ballast != 0 {
		cfg.Ballast = r.Ballast
	}
	if r.MemLimit != 0 {
		cfg.MemLimit = r.MemLimit
	}
	if r.MaxDepth != 0 {
		cfg.MaxDepth = r.MaxDepth
	}
	if r.MaxDataStack != 0 {
		cfg.MaxDataStack = r.MaxDataStack
	}
	if r.Checked != nil {
		cfg.Unchecked = !*r.Checked
	}
}

// MainPath resolves [run].main against the project root.
func (m *Manifest) MainPath() (string, error) {
	main := strings.TrimSpace(m.Config.Run.Main)
	if main == "" {
		return "", fmt.Errorf("%s: missing [run].main", m.Path)
	}
	if filepath.IsAbs(main) {
		return "", fmt.Errorf("%s: [run].main %q must be relative", m.Path, main)
	}
	p := filepath.Join(m.Root, filepath.FromSlash(main))
	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%s: [run].main does not exist: %s", m.Path, p)
		}
		return "", fmt.Errorf("%s: failed to stat [run].main: %w", m.Path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s: [run].main must be a file", m.Path)
	}
	return p, nil
}
