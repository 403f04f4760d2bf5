package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestCurrent(t *testing.T) {
	orig, origCommit := Version, GitCommit
	t.Cleanup(func() { Version, GitCommit = orig, origCommit })

	Version, GitCommit = "  ", " abc123 "
	info := Current()
	if info.Version != "dev" || info.GitCommit != "abc123" {
		t.Errorf("Current = %+v", info)
	}
}

func TestColored(t *testing.T) {
	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	tests := map[string]string{
		"0.1.0-dev":      "0.1.0-dev",
		"1.2.3+build.5":  "1.2.3+build.5",
		"dev":            "dev",
		"1.2.3-rc.1+b.2": "1.2.3-rc.1+b.2",
	}
	for in, want := range tests {
		if got := (Info{Version: in}).Colored(); got != want {
			t.Errorf("Colored(%q) = %q, want %q", in, got, want)
		}
	}

	color.NoColor = false
	if got := (Info{Version: "1.2.3"}).Colored(); got == "1.2.3" {
		t.Errorf("Colored with color enabled returned plain text")
	}
}
