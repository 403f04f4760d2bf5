package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ren/internal/vm"
)

var evalCmd = &cobra.Command{
	Use:   "eval [flags] <code...>",
	Short: "Evaluate code given on the command line",
	Long:  `Eval joins its arguments with spaces, evaluates them and prints the molded result.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runEval,
}

func init() {
	addRuntimeFlags(evalCmd)
}

func runEval(cmd *cobra.Command, args []string) error {
	cfg, err := runtimeConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Stdout = cmd.OutOrStdout()
	in := vm.New(cfg)
	defer func() { _ = in.Close() }()

	code, err := in.Transcode(strings.Join(args, " "), "<eval>")
	if err != nil {
		printError(cmd.ErrOrStderr(), err, in.Files())
		return exitError{code: 1}
	}
	v, err := in.Eval(cmd.Context(), "do", in.R(code))
	if err != nil {
		printError(cmd.ErrOrStderr(), err, in.Files())
		return exitError{code: 1}
	}
	fmt.Fprintln(cmd.OutOrStdout(), in.Mold(v))
	if v != nil {
		in.Release(v)
	}
	return nil
}
