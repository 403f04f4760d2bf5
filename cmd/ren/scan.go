package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"ren/internal/driver"
	"ren/internal/scan"
	"ren/internal/source"
)

var scanCmd = &cobra.Command{
	Use:   "scan [flags] file.r",
	Short: "Scan a script without running it",
	Long:  `Scan prints the block a script scans to, or its tokens.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().String("format", "mold", "output format (mold|tokens|json)")
	scanCmd.Flags().Bool("cache", false, "read and fill the disk scan cache")
}

type tokenJSON struct {
	Kind string `json:"kind"`
	Text string `json:"text,omitempty"`
	Line int    `json:"line"`
	Col  uint32 `json:"col"`
}

func runScan(cmd *cobra.Command, args []string) error {
	path := args[0]
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	useCache, err := cmd.Flags().GetBool("cache")
	if err != nil {
		return fmt.Errorf("failed to get cache flag: %w", err)
	}
	files := source.NewFileSet()

	switch format {
	case "mold":
		opts := driver.Options{Files: files}
		if useCache {
			if opts.Cache, err = driver.OpenDiskCache("ren"); err != nil {
				return fmt.Errorf("failed to open scan cache: %w", err)
			}
		}
		res, err := driver.Scan(path, opts)
		if err != nil {
			printError(cmd.ErrOrStderr(), err, files)
			return exitError{code: 1}
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Molded)
		if res.Cached && !quiet(cmd) {
			fmt.Fprintln(cmd.ErrOrStderr(), "(from cache)")
		}
		return nil
	case "tokens", "json":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	id, err := files.Load(path)
	if err != nil {
		return err
	}
	file := files.Get(id)
	toks, scanErr := scan.Tokenize(file.Content, file.Path)
	if format == "json" {
		out := make([]tokenJSON, len(toks))
		for i, t := range toks {
			out[i] = tokenJSON{Kind: t.Kind.String(), Text: t.Text, Line: t.Line, Col: t.Position(file).Col}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
	} else {
		for _, t := range toks {
			pos := t.Position(file)
			fmt.Fprintf(cmd.OutOrStdout(), "%4d:%-3d %-10s %s\n", pos.Line, pos.Col, t.Kind, file.Content[t.Start:t.End])
		}
	}
	if scanErr != nil {
		printError(cmd.ErrOrStderr(), scanErr, files)
		return exitError{code: 1}
	}
	return nil
}
