package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ren/internal/core"
	"ren/internal/vm"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Read, evaluate and print interactively",
	Long: `Repl evaluates one line at a time in a single interpreter, so words
set on one line stay visible on the next. A line with an unclosed block or
group continues on the following line; a blank line gives up on it.`,
	Args: cobra.NoArgs,
	RunE: runREPL,
}

func init() {
	addRuntimeFlags(replCmd)
}

const (
	replPrompt     = ">> "
	replContinue   = ".. "
	replResultMark = "== "
)

func runREPL(cmd *cobra.Command, _ []string) error {
	cfg, err := runtimeConfig(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	cfg.Stdout = out
	in := vm.New(cfg)
	defer func() { _ = in.Close() }()

	interactive := isTerminal(os.Stdin)
	r := bufio.NewReader(cmd.InOrStdin())
	var pending strings.Builder
	line := 0
	for {
		if interactive {
			if pending.Len() == 0 {
				fmt.Fprint(out, replPrompt)
			} else {
				fmt.Fprint(out, replContinue)
			}
		}
		text, readErr := r.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return readErr
		}
		if text != "" {
			line++
			pending.WriteString(text)
		}
		src := pending.String()
		if strings.TrimSpace(src) == "" {
			pending.Reset()
			if readErr != nil {
				return nil
			}
			continue
		}

		code, err := in.Transcode(src, fmt.Sprintf("<repl:%d>", line))
		if err != nil {
			var e *core.Error
			if errors.As(err, &e) && e.Code == core.ErrScanMissing && readErr == nil && strings.TrimSpace(text) != "" {
				continue
			}
			pending.Reset()
			printError(cmd.ErrOrStderr(), err, in.Files())
			if readErr != nil {
				return nil
			}
			continue
		}
		pending.Reset()

		v, err := in.Eval(cmd.Context(), "do", in.R(code))
		switch {
		case err != nil:
			printError(cmd.ErrOrStderr(), err, in.Files())
			var e *core.Error
			if errors.As(err, &e) && e.Code == core.ErrHalt {
				return exitError{code: 130}
			}
		case v != nil:
			fmt.Fprintln(out, replResultMark+in.Mold(v))
			in.Release(v)
		}
		if readErr != nil {
			return nil
		}
	}
}
