package main

import (
	"fmt"
	"io"

	"ren/internal/driver"
)

func printTimings(out io.Writer, results []driver.Result) {
	for _, r := range results {
		if len(r.Timing.Phases) == 0 {
			continue
		}
		fmt.Fprintf(out, "%s:\n", r.Path)
		for _, p := range r.Timing.Phases {
			fmt.Fprintf(out, "  %-8s %8.2f ms", p.Name, p.DurationMS)
			if p.Note != "" {
				fmt.Fprintf(out, "  // %s", p.Note)
			}
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "  %-8s %8.2f ms  // %d live bytes, %d managed stubs\n",
			"total", r.Timing.TotalMS, r.Stats.LiveBytes, r.Stats.Managed)
	}
}
