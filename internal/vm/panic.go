package vm

import (
	"strings"

	"ren/internal/core"
)

const (
	backtraceLimit = 32
	nearLimit      = 60
)

// backtrace lists the labels of the running levels, innermost first.
// Executor-only levels are folded into the action or group they serve.
func (in *Interp) backtrace() []string {
	var out []string
	for L := in.top; L != nil && len(out) < backtraceLimit; L = L.prior {
		if L.executor != ActionExecutor {
			continue
		}
		out = append(out, L.Label())
	}
	return out
}

// locate fills in file, line and near text from the innermost level
// whose feed walks a scanned array.
func (in *Interp) locate(e *core.Error) {
	for L := in.top; L != nil; L = L.prior {
		f := L.feed
		if f == nil || f.array == nil || f.array.Decayed() {
			continue
		}
		if file := f.array.File(); file != nil {
			e.File = core.Spelling(file)
			e.Line = f.array.Line()
		}
		if e.Near == "" {
			e.Near = nearText(f)
		}
		if e.File != "" {
			return
		}
	}
}

// nearText molds the few values before the feed position, which is where
// the failing expression started.
func nearText(f *Feed) string {
	cells := f.array.Cells()
	end := min(f.index, len(cells))
	start := max(0, end-3)
	var sb strings.Builder
	for i := start; i < end; i++ {
		if i > start {
			sb.WriteByte(' ')
		}
		sb.WriteString(core.MoldLimit(&cells[i], nearLimit))
		if sb.Len() > nearLimit {
			break
		}
	}
	if end < len(cells) {
		sb.WriteString(" **")
	}
	return sb.String()
}
