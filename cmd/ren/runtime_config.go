package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ren/internal/trace"
	"ren/internal/vm"
)

// addRuntimeFlags registers the interpreter limits shared by the commands
// that evaluate code.
func addRuntimeFlags(cmd *cobra.Command) {
	cmd.Flags().Int64("ballast", 0, "bytes allocated between automatic recycles (0 = default)")
	cmd.Flags().Int64("mem-limit", 0, "cap on live heap bytes (0 = unlimited)")
	cmd.Flags().Int("max-depth", 0, "level stack limit (0 = default)")
	cmd.Flags().Int("max-data-stack", 0, "data stack cell limit (0 = unlimited)")
	cmd.Flags().Bool("unchecked", false, "skip balance checks when levels complete")
	cmd.Flags().Bool("trace-steps", false, "print every evaluation step to stderr")
}

// runtimeConfig builds an interpreter config: ren.toml [runtime] first,
// then any flags given on the command line.
func runtimeConfig(cmd *cobra.Command) (vm.Config, error) {
	cfg := vm.Config{Tracer: trace.FromContext(cmd.Context())}
	if session.manifest != nil {
		session.manifest.Config.Runtime.Apply(&cfg)
	}
	flags := cmd.Flags()
	var err error
	if flags.Changed("ballast") {
		if cfg.Ballast, err = flags.GetInt64("ballast"); err != nil {
			return cfg, fmt.Errorf("failed to get ballast flag: %w", err)
		}
	}
	if flags.Changed("mem-limit") {
		if cfg.MemLimit, err = flags.GetInt64("mem-limit"); err != nil {
			return cfg, fmt.Errorf("failed to get mem-limit flag: %w", err)
		}
	}
	if flags.Changed("max-depth") {
		if cfg.MaxDepth, err = flags.GetInt("max-depth"); err != nil {
			return cfg, fmt.Errorf("failed to get max-depth flag: %w", err)
		}
	}
	if flags.Changed("max-data-stack") {
		if cfg.MaxDataStack, err = flags.GetInt("max-data-stack"); err != nil {
			return cfg, fmt.Errorf("failed to get max-data-stack flag: %w", err)
		}
	}
	if flags.Changed("unchecked") {
		if cfg.Unchecked, err = flags.GetBool("unchecked"); err != nil {
			return cfg, fmt.Errorf("failed to get unchecked flag: %w", err)
		}
	}
	steps, err := flags.GetBool("trace-steps")
	if err != nil {
		return cfg, fmt.Errorf("failed to get trace-steps flag: %w", err)
	}
	if steps {
		cfg.Steps = vm.NewStepTracer(os.Stderr, 0)
	}
	if cfg.MemLimit < 0 || cfg.MaxDepth < 0 || cfg.MaxDataStack < 0 {
		return cfg, fmt.Errorf("runtime limits must not be negative")
	}
	return cfg, nil
}
