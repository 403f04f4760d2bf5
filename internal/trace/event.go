package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	// KindSpanBegin marks the start of a logical operation.
	KindSpanBegin Kind = iota + 1
	// KindSpanEnd marks the end of a logical operation.
	KindSpanEnd
	// KindPoint represents an instant event.
	KindPoint
	KindHeartbeat // periodic liveness signal
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	case KindHeartbeat:
		return "heartbeat"
	default:
		return "unknown"
	}
}

// Scope indicates the granularity of the event.
// Lower numeric values are coarser.
type Scope uint8

const (
	// ScopeSession covers a whole command or embedding session.
	ScopeSession Scope = iota + 1
	// ScopeEval covers one trampoline run.
	ScopeEval
	// ScopeGC covers recycle cycles.
	ScopeGC
	ScopeLevel // level push/drop and unwinding
)

// String returns the string representation of Scope.
func (s Scope) String() string {
	switch s {
	case ScopeSession:
		return "session"
	case ScopeEval:
		return "eval"
	case ScopeGC:
		return "gc"
	case ScopeLevel:
		return "level"
	default:
		return "unknown"
	}
}

// Event represents a single trace event.
type Event struct {
	Time     time.Time         // wall-clock timestamp
	Seq      uint64            // global sequence number (monotonic)
	Kind     Kind              // event kind
	Scope    Scope             // granularity
	SpanID   uint64            // unique span identifier
	ParentID uint64            // parent span (0 if root)
	Lane     string            // script the event came from in batch runs
	Name     string            // e.g. "eval", "recycle", "push:action"
	Detail   string            // optional detail message
	Extra    map[string]string // extensible key-value pairs
}
