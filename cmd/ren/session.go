package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ren/internal/project"
)

// session is the per-invocation state set up before a command runs.
var session struct {
	manifest *project.Manifest
	cleanups []func()
}

func setupSession(cmd *cobra.Command) error {
	if err := setupColor(cmd); err != nil {
		return err
	}
	manifest, err := loadManifest(cmd)
	if err != nil {
		return err
	}
	session.manifest = manifest

	stopTrace, err := setupTracing(cmd, manifest)
	if err != nil {
		return err
	}
	session.cleanups = append(session.cleanups, stopTrace)

	stopProf, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	session.cleanups = append(session.cleanups, stopProf)
	return nil
}

// teardownSession runs cleanups in reverse order. It is safe to call more
// than once.
func teardownSession() {
	for i := len(session.cleanups) - 1; i >= 0; i-- {
		session.cleanups[i]()
	}
	session.cleanups = nil
}

func setupColor(cmd *cobra.Command) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(os.Stdout) || !isTerminal(os.Stderr)
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
	return nil
}

func loadManifest(cmd *cobra.Command) (*project.Manifest, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path != "" {
		return project.LoadFile(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	m, _, err := project.Load(wd)
	return m, err
}

func quiet(cmd *cobra.Command) bool {
	q, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	return q
}
