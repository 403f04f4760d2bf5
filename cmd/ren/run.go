package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ren/internal/driver"
	"ren/internal/source"
	"ren/internal/ui"
)

const noTargetMessage = "no script given and no ren.toml with [run].main found\nplease name a script, e.g.:\n  ren run path/to/main.r"

var runCmd = &cobra.Command{
	Use:   "run [flags] [file.r|dir ...]",
	Short: "Run scripts",
	Long: `Run evaluates each script in its own interpreter. Directories are
searched for *.r files. With no arguments the [run].main script of the
enclosing ren.toml is run.`,
	RunE: runScripts,
}

func init() {
	addRuntimeFlags(runCmd)
	runCmd.Flags().Int("jobs", 0, "scripts run at once (0 = GOMAXPROCS)")
	runCmd.Flags().String("ui", "auto", "progress view for batches (auto|on|off)")
	runCmd.Flags().Bool("cache", false, "reuse scanned scripts from the disk cache")
	runCmd.Flags().Bool("print-result", false, "print the molded result of each script")
}

func runScripts(cmd *cobra.Command, args []string) error {
	paths, err := resolveTargets(args)
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}
	useCache, err := cmd.Flags().GetBool("cache")
	if err != nil {
		return fmt.Errorf("failed to get cache flag: %w", err)
	}
	printResult, err := cmd.Flags().GetBool("print-result")
	if err != nil {
		return fmt.Errorf("failed to get print-result flag: %w", err)
	}
	cfg, err := runtimeConfig(cmd)
	if err != nil {
		return err
	}

	opts := driver.Options{
		Jobs:    jobs,
		Runtime: cfg,
		Stdout:  cmd.OutOrStdout(),
		Files:   source.NewFileSet(),
	}
	if useCache {
		if opts.Cache, err = driver.OpenDiskCache("ren"); err != nil {
			return fmt.Errorf("failed to open scan cache: %w", err)
		}
	}

	var results []driver.Result
	var runErr error
	if shouldUseTUI(mode, len(paths)) {
		var buffered bytes.Buffer
		opts.Stdout = &buffered
		results, runErr = runWithUI(cmd.Context(), paths, opts)
		_, _ = cmd.OutOrStdout().Write(buffered.Bytes())
	} else {
		results, runErr = driver.RunFiles(cmd.Context(), paths, opts)
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			printError(cmd.ErrOrStderr(), r.Err, opts.Files)
			continue
		}
		if printResult {
			if len(results) > 1 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: == %s\n", r.Path, r.Value)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "== %s\n", r.Value)
			}
		}
	}
	if timings, _ := cmd.Root().PersistentFlags().GetBool("timings"); timings {
		printTimings(cmd.ErrOrStderr(), results)
	}
	if !quiet(cmd) && len(results) > 1 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d scripts, %d failed\n", len(results), failed)
	}

	switch {
	case errors.Is(runErr, context.Canceled):
		return exitError{code: 130}
	case runErr != nil:
		return runErr
	case failed > 0:
		return exitError{code: 1}
	}
	return nil
}

// resolveTargets expands directories to their scripts and falls back to
// the manifest's main script.
func resolveTargets(args []string) ([]string, error) {
	if len(args) == 0 {
		if session.manifest == nil {
			return nil, errors.New(noTargetMessage)
		}
		main, err := session.manifest.MainPath()
		if err != nil {
			return nil, err
		}
		return []string{main}, nil
	}
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		found, err := driver.ListScripts(arg)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("%s: no %s files", arg, driver.ScriptExt)
		}
		paths = append(paths, found...)
	}
	return paths, nil
}

type runOutcome struct {
	results []driver.Result
	err     error
}

func runWithUI(ctx context.Context, paths []string, opts driver.Options) ([]driver.Result, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan runOutcome, 1)
	go func() {
		opts.Sink = driver.ChannelSink{Ch: events}
		res, err := driver.RunFiles(ctx, paths, opts)
		outcomeCh <- runOutcome{results: res, err: err}
		close(events)
	}()
	uiErr := ui.Run(ctx, "running", paths, events)
	if uiErr != nil {
		// Keep draining so the runner never blocks on a full channel.
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil && !errors.Is(uiErr, context.Canceled) {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
