package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"ren/internal/core"
	"ren/internal/source"
)

var (
	errHeadColor  = color.New(color.FgRed, color.Bold)
	errWhereColor = color.New(color.FgCyan)
	errDimColor   = color.New(color.Faint)
)

// printError writes err to w. Interpreter errors get their source line and
// backtrace; the first line is highlighted.
func printError(w io.Writer, err error, files *source.FileSet) {
	var e *core.Error
	if !errors.As(err, &e) {
		fmt.Fprintf(w, "%s %v\n", errHeadColor.Sprint("error:"), err)
		return
	}
	text := strings.TrimRight(e.FormatWithFiles(files), "\n")
	for i, line := range strings.Split(text, "\n") {
		switch {
		case i == 0:
			line = errHeadColor.Sprint(line)
		case strings.HasPrefix(line, "at "), strings.HasPrefix(line, "  | "):
			line = errWhereColor.Sprint(line)
		case strings.HasPrefix(line, "backtrace:"), strings.HasPrefix(line, "  "):
			line = errDimColor.Sprint(line)
		}
		fmt.Fprintln(w, line)
	}
}
