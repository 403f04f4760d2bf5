package vm

import (
	"io"
	"os"
	"sync/atomic"

	"ren/internal/core"
	"ren/internal/source"
	"ren/internal/trace"
)

// DefaultMaxDepth bounds the level stack. Levels live on the heap, so the
// limit is about runaway recursion, not the Go stack.
const DefaultMaxDepth = 100_000

// Config tunes an interpreter.
type Config struct {
	Ballast      int64 // bytes allocated between automatic recycles
	MemLimit     int64 // live byte cap; 0 is unlimited
	MaxDepth     int   // level stack limit; 0 picks DefaultMaxDepth
	MaxDataStack int   // data stack cell limit; 0 is unlimited
	// Unchecked skips the data stack, guard and manual balance checks made
	// when a level completes.
	Unchecked bool
	Stdout    io.Writer
	Tracer    trace.Tracer
	Files     *source.FileSet
	// Steps, when set, prints every evaluation step.
	Steps *StepTracer
}

// Interp is one interpreter: a heap, a data stack, a level stack, and the
// throw state. An Interp must only be used by one goroutine at a time;
// separate Interps share nothing but the immortal symbol table.
type Interp struct {
	heap  *core.Heap
	stack *core.DataStack

	top   *Level
	depth int
	pool  []*Level

	throw ThrowState
	halt  atomic.Bool

	lib  *core.Stub
	user *core.Stub
	apis []*Value // values not owned by any level

	maxDepth int
	checked  bool
	stdout   io.Writer
	tracer   trace.Tracer
	steps    *StepTracer
	files    *source.FileSet
	runs     uint64
}

// New creates an interpreter with its lib context populated.
func New(cfg Config) *Interp {
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	heap := core.NewHeap(core.HeapConfig{
		Ballast:  cfg.Ballast,
		MemLimit: cfg.MemLimit,
		Tracer:   tracer,
	})
	in := &Interp{
		heap:     heap,
		stack:    core.NewDataStack(heap, cfg.MaxDataStack),
		maxDepth: cfg.MaxDepth,
		checked:  !cfg.Unchecked,
		stdout:   cfg.Stdout,
		tracer:   tracer,
		steps:    cfg.Steps,
		files:    cfg.Files,
	}
	if in.maxDepth <= 0 {
		in.maxDepth = DefaultMaxDepth
	}
	if in.stdout == nil {
		in.stdout = os.Stdout
	}
	if in.files == nil {
		in.files = source.NewFileSet()
	}
	heap.AddRootMarker(in)

	in.lib = heap.MakeContext(core.HeartObject, len(natives), nil, core.FlexFlagManaged)
	heap.MakeRoot(in.lib)
	in.user = heap.MakeContext(core.HeartObject, 0, in.lib, core.FlexFlagManaged)
	heap.MakeRoot(in.user)
	in.registerNatives()
	return in
}

// Heap returns the interpreter's heap.
func (in *Interp) Heap() *core.Heap { return in.heap }

// DataStack returns the interpreter's data stack.
func (in *Interp) DataStack() *core.DataStack { return in.stack }

// Files returns the file set scripts are registered in.
func (in *Interp) Files() *source.FileSet { return in.files }

// Lib returns the context natives live in.
func (in *Interp) Lib() *core.Stub { return in.lib }

// User returns the context top-level code binds to.
func (in *Interp) User() *core.Stub { return in.user }

// Depth returns the number of levels on the stack.
func (in *Interp) Depth() int { return in.depth }

// Runs returns how many API evaluations have been started.
func (in *Interp) Runs() uint64 { return in.runs }

// Top returns the running level, or nil.
func (in *Interp) Top() *Level { return in.top }

// RequestHalt asks interruptible evaluations to stop. It may be called
// from any goroutine, e.g. a signal handler.
func (in *Interp) RequestHalt() { in.halt.Store(true) }

// Recycle runs a collection now.
func (in *Interp) Recycle() core.RecycleStats { return in.heap.Recycle() }

// MarkRoots keeps alive what the level stack, the throw state and the
// unowned API values refer to.
func (in *Interp) MarkRoots(m *core.Marker) {
	for L := in.top; L != nil; L = L.prior {
		L.markRoots(m)
	}
	m.MarkCell(&in.throw.label)
	m.MarkCell(&in.throw.arg)
	for _, v := range in.apis {
		m.MarkStub(v.stub)
	}
}

// Close releases the values still held by the host and reports manual
// stubs nobody freed.
func (in *Interp) Close() error {
	for len(in.apis) > 0 {
		in.Release(in.apis[len(in.apis)-1])
	}
	in.heap.RemoveRootMarker(in)
	in.heap.RemoveRootMarker(in.stack)
	if err := in.heap.CheckManualLeaks(0); err != nil {
		return err
	}
	return nil
}
