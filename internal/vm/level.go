package vm

import (
	"ren/internal/core"
	"ren/internal/trace"
)

// LevelFlags modify how the trampoline treats a level.
type LevelFlags uint16

const (
	// LevelFlagRoot marks the level a trampoline run was started for.
	LevelFlagRoot LevelFlags = 1 << iota
	// LevelFlagCatchesThrows gets the level called back while a THROW or
	// RETURN is in flight.
	LevelFlagCatchesThrows
	// LevelFlagCatchesPanics gets the level called back while a non-fatal
	// error is in flight.
	LevelFlagCatchesPanics
	// LevelFlagInterruptible lets a halt request stop the level.
	LevelFlagInterruptible
	// LevelFlagDelegated is set by the trampoline when the executor
	// returned BounceDelegate; the level completes with its sub-level.
	LevelFlagDelegated
	// LevelFlagNoLookahead stops a stepper from continuing into an infix
	// action, so infix arguments take one step only.
	LevelFlagNoLookahead
	// LevelFlagInfix tells the action executor its first argument is
	// already in out.
	LevelFlagInfix
	// LevelFlagOwnsFeed releases the feed when the level is dropped.
	LevelFlagOwnsFeed
)

// State is the executor's program counter. Every executor starts at
// StateInitial; action dispatchers get states from StateDispatch up.
type State uint8

const (
	StateInitial  State = 0
	StateDispatch State = 16
)

// Executor is a state machine that runs a level until it has a result or
// needs another level to run first.
type Executor struct {
	name string
	run  func(in *Interp, L *Level) Bounce
}

// Name returns the executor's name, used in backtraces and traces.
func (e *Executor) Name() string { return e.name }

// The executors. Their run functions refer to each other, so they are
// filled in by init.
var (
	Evaluator      = &Executor{name: "evaluator"}
	Stepper        = &Executor{name: "stepper"}
	ActionExecutor = &Executor{name: "action"}
	Scanner        = &Executor{name: "scanner"}
	Reducer        = &Executor{name: "reducer"}
)

func init() {
	Evaluator.run = evaluatorExecutor
	Stepper.run = stepperExecutor
	ActionExecutor.run = actionExecutor
	Scanner.run = scannerExecutor
	Reducer.run = reducerExecutor
}

// Level is one evaluation in progress. Everything needed to resume it is
// here, so the Go stack does not grow with nesting.
type Level struct {
	executor *Executor
	state    State
	flags    LevelFlags
	feed     *Feed
	out      *core.Cell
	spare    core.Cell
	scratch  core.Cell

	varlist *core.Stub
	action  *Action
	label   *core.Stub
	prior   *Level

	baseStack   int
	baseManuals int
	baseGuards  int
	apis        []*Value

	param int // next parameter to fulfill
	mark  int // data stack mark kept across continuations
	mode  uint8
	scan  *scanState
}

// State returns the executor's program counter.
func (L *Level) State() State { return L.state }

// Flags returns the level's flags.
func (L *Level) Flags() LevelFlags { return L.flags }

// Feed returns the level's input.
func (L *Level) Feed() *Feed { return L.feed }

// Out returns the cell the level's result goes to.
func (L *Level) Out() *core.Cell { return L.out }

// Executor returns the state machine running the level.
func (L *Level) Executor() *Executor { return L.executor }

// Prior returns the level below, or nil.
func (L *Level) Prior() *Level { return L.prior }

// Varlist returns the frame of an action level once it exists.
func (L *Level) Varlist() *core.Stub { return L.varlist }

// Label returns the word an action was invoked through, or a name for
// the executor.
func (L *Level) Label() string {
	if L.label != nil {
		return core.Spelling(L.label)
	}
	if L.action != nil {
		return L.action.Name
	}
	return L.executor.name
}

// Arg returns argument i (1-based) of an action level.
func (L *Level) Arg(i int) *core.Cell { return core.ContextVar(L.varlist, i) }

func (L *Level) markRoots(m *core.Marker) {
	if L.out != nil {
		m.MarkCell(L.out)
	}
	m.MarkCell(&L.spare)
	m.MarkCell(&L.scratch)
	if L.feed != nil {
		L.feed.markRoots(m)
	}
	if L.varlist != nil {
		m.MarkStub(L.varlist)
	}
	if L.action != nil {
		m.MarkStub(L.action.details)
	}
	for _, v := range L.apis {
		m.MarkStub(v.stub)
	}
	if L.scan != nil {
		m.MarkStub(L.scan.file)
	}
}

// makeLevel takes a level from the pool.
func (in *Interp) makeLevel(exec *Executor, feed *Feed, flags LevelFlags) *Level {
	var L *Level
	if n := len(in.pool); n > 0 {
		L = in.pool[n-1]
		in.pool = in.pool[:n-1]
	} else {
		L = &Level{}
	}
	L.executor = exec
	L.feed = feed
	L.flags = flags
	return L
}

// pushLevel makes L the top level, writing its result to out. out must
// be erased or hold a value: the collector reads it.
func (in *Interp) pushLevel(L *Level, out *core.Cell) {
	if in.depth >= in.maxDepth {
		if L.flags&LevelFlagOwnsFeed != 0 {
			L.feed.Release()
		}
		in.recycleLevel(L)
		core.Panic(core.ErrStackOverflow, "level stack exceeded %d", in.maxDepth)
	}
	L.out = out
	L.prior = in.top
	if L.prior != nil {
		L.flags |= L.prior.flags & LevelFlagInterruptible
	}
	L.baseStack = in.stack.Index()
	L.baseManuals = in.heap.ManualsLen()
	L.baseGuards = in.heap.GuardsLen()
	in.top = L
	in.depth++
	trace.Point(in.tracer, trace.ScopeLevel, "push", L.Label())
}

// dropLevel removes a level that completed normally. With checks on, a
// level that leaves data stack cells, guards or manual stubs behind is a
// fatal error; its leftovers are cleaned up either way.
func (in *Interp) dropLevel(L *Level) *core.Error {
	var err *core.Error
	if in.checked {
		switch {
		case in.stack.Index() != L.baseStack:
			err = core.NewError(core.ErrStackLeak, "%s left %d data stack cell(s)",
				L.Label(), in.stack.Index()-L.baseStack)
		case in.heap.GuardsLen() != L.baseGuards:
			err = core.NewError(core.ErrGuardMismatch, "%s left %d guard(s)",
				L.Label(), in.heap.GuardsLen()-L.baseGuards)
		default:
			if leak := in.heap.CheckManualLeaks(L.baseManuals); leak != nil {
				err = leak.(*core.Error)
			}
		}
	}
	in.unwindLevel(L)
	return err
}

// abortLevel removes a level being unwound by a throw or a failure.
func (in *Interp) abortLevel(L *Level) { in.unwindLevel(L) }

func (in *Interp) unwindLevel(L *Level) {
	if in.top != L {
		core.Panic(core.ErrInternal, "dropping %s, which is not the top level", L.Label())
	}
	if in.stack.Index() > L.baseStack {
		_ = in.stack.DropTo(L.baseStack)
	}
	in.heap.FreeManualsTo(L.baseManuals)
	in.heap.TruncateGuards(L.baseGuards)
	for i := len(L.apis) - 1; i >= 0; i-- {
		in.expire(L.apis[i])
	}
	if L.flags&LevelFlagOwnsFeed != 0 {
		L.feed.Release()
	}
	if L.varlist != nil && !L.varlist.Decayed() && L.varlist.Obj() == L {
		L.varlist.SetObj(nil)
	}
	in.top = L.prior
	in.depth--
	trace.Point(in.tracer, trace.ScopeLevel, "drop", L.Label())
	in.recycleLevel(L)
}

func (in *Interp) recycleLevel(L *Level) {
	clear(L.apis)
	*L = Level{apis: L.apis[:0]}
	in.pool = append(in.pool, L)
}
