package vm

import (
	"fmt"
	"io"

	"ren/internal/core"
)

// StepTracer prints each evaluation step as it starts.
// Format: [depth=N] <label> <value> @ <file>:<line>
type StepTracer struct {
	w     io.Writer
	limit int
}

// NewStepTracer creates a tracer that writes to w. Values are molded up
// to limit bytes; 0 picks a default.
func NewStepTracer(w io.Writer, limit int) *StepTracer {
	if limit <= 0 {
		limit = 60
	}
	return &StepTracer{w: w, limit: limit}
}

func (t *StepTracer) step(depth int, L *Level) {
	if t == nil || t.w == nil || L.feed == nil || L.feed.AtEnd() {
		return
	}
	caller := "top"
	for p := L.prior; p != nil; p = p.prior {
		if p.executor == ActionExecutor {
			caller = p.Label()
			break
		}
	}
	fmt.Fprintf(t.w, "[depth=%d] %s %s @ %s\n",
		depth, caller, core.MoldLimit(L.feed.At(), t.limit), t.where(L.feed))
}

func (t *StepTracer) where(f *Feed) string {
	if f.array == nil || f.array.Decayed() {
		return "<host>"
	}
	file := f.array.File()
	if file == nil {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d", core.Spelling(file), f.array.Line())
}
