package vm

import (
	"ren/internal/core"
	"ren/internal/trace"
)

// ThrowState is the in-flight non-local exit. Both cells erased means
// nothing is in flight. An ERROR! label is a failure; any other label is
// a THROW, a named throw, or a RETURN to a frame.
type ThrowState struct {
	label core.Cell
	arg   core.Cell
}

func (t *ThrowState) clear() {
	t.label.Erase()
	t.arg.Erase()
}

// Throwing reports whether a throw or failure is in flight.
func (in *Interp) Throwing() bool { return !in.throw.label.IsErased() }

// InitThrown starts a throw. Only one may be in flight.
func (in *Interp) InitThrown(label, arg *core.Cell) {
	if in.Throwing() {
		core.Panic(core.ErrThrowInFlight, "throw of %s while %s is in flight",
			core.MoldLimit(label, 40), core.MoldLimit(&in.throw.label, 40))
	}
	in.throw.label.Copy(label)
	in.throw.arg.Copy(arg)
	trace.Point(in.tracer, trace.ScopeEval, "throw", core.MoldLimit(label, 60))
}

// ThrownLabel returns the label of the throw in flight.
func (in *Interp) ThrownLabel() *core.Cell {
	if !in.Throwing() {
		core.Panic(core.ErrNoThrow, "no throw in flight")
	}
	return &in.throw.label
}

// CatchThrown moves the thrown argument to out and ends the throw.
func (in *Interp) CatchThrown(out *core.Cell) {
	if !in.Throwing() {
		core.Panic(core.ErrNoThrow, "no throw in flight")
	}
	out.Copy(&in.throw.arg)
	in.throw.clear()
}

// thrownError returns the error of a failure in flight, or nil for a
// plain throw.
func (in *Interp) thrownError() *core.Error {
	label := &in.throw.label
	if label.IsErased() || !label.IsPlain() || label.Heart() != core.HeartError {
		return nil
	}
	return label.ErrorOf()
}

// takeThrownError ends a failure in flight and returns its error. A plain
// throw that nothing caught becomes a no-catch error.
func (in *Interp) takeThrownError() *core.Error {
	if e := in.thrownError(); e != nil {
		in.throw.clear()
		return e
	}
	label := core.MoldLimit(&in.throw.label, 40)
	in.throw.clear()
	return core.NewError(core.ErrNoCatch, "no catch for throw: %s", label)
}

// raise turns an error into the failure in flight. A failure replaces a
// throw that was being unwound when it happened.
func (in *Interp) raise(e *core.Error) {
	if len(e.Backtrace) == 0 {
		e.Backtrace = in.backtrace()
	}
	if e.File == "" {
		in.locate(e)
	}
	if in.Throwing() {
		in.throw.clear()
	}
	core.InitError(&in.throw.label, in.heap.MakeErrorStub(e))
	core.InitTrash(&in.throw.arg)
	trace.Point(in.tracer, trace.ScopeEval, "fail", e.Error())
}

// catches reports whether L wants to see the throw in flight.
func (in *Interp) catches(L *Level) bool {
	if L.flags&LevelFlagDelegated != 0 {
		return false
	}
	if e := in.thrownError(); e != nil {
		return !e.Fatal() && L.flags&LevelFlagCatchesPanics != 0
	}
	return L.flags&LevelFlagCatchesThrows != 0
}

// sameLabel compares throw labels: words by symbol, frames and other
// series by identity, everything else by molded form.
func sameLabel(a, b *core.Cell) bool {
	if a.IsErased() || b.IsErased() {
		return a.IsErased() && b.IsErased()
	}
	if a.Lift() != b.Lift() || a.Heart() != b.Heart() {
		return false
	}
	switch h := a.Heart(); {
	case h.IsWord():
		return core.SameSymbol(a.Symbol(), b.Symbol())
	case h == core.HeartFrame || h == core.HeartObject || h == core.HeartError:
		return a.Node() == b.Node()
	}
	return core.Mold(a) == core.Mold(b)
}
