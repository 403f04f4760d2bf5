package vm

import (
	"ren/internal/core"
)

// trampoline runs levels until root completes. It returns true when a
// throw or failure reached root uncaught; the throw stays in flight for
// the caller. root itself is never dropped here.
func (in *Interp) trampoline(root *Level) (thrown bool) {
	root.flags |= LevelFlagRoot
	for {
		L := in.top
		if in.heap.WantsRecycle() {
			in.heap.Recycle()
		}

		var b Bounce
		switch {
		case L.flags&LevelFlagInterruptible != 0 && in.halt.CompareAndSwap(true, false):
			in.raise(core.NewError(core.ErrHalt, "halted"))
			b = BounceThrown
		case L.flags&LevelFlagDelegated != 0:
			b = BounceOut
		default:
			if in.steps != nil && L.executor == Stepper && L.state == StateInitial {
				in.steps.step(in.depth, L)
			}
			b = in.call(L)
		}

		switch b {
		case BounceOut:
			if L == root {
				return false
			}
			if err := in.dropLevel(L); err != nil {
				in.raise(err)
				if !in.unwind(in.top, root) {
					return true
				}
			}
		case BounceContinue:
		case BounceDelegate:
			if in.top == L {
				core.Panic(core.ErrInternal, "%s delegated without pushing a level", L.Label())
			}
			L.flags |= LevelFlagDelegated
		case BounceThrown:
			if !in.Throwing() {
				core.Panic(core.ErrInternal, "%s returned thrown with nothing in flight", L.Label())
			}
			for in.top != L {
				in.abortLevel(in.top)
			}
			if L == root {
				return true
			}
			in.abortLevel(L)
			if !in.unwind(in.top, root) {
				return true
			}
		}
	}
}

// unwind drops levels from L down until one catches the throw in flight.
// It returns false when root is reached without a catcher.
func (in *Interp) unwind(L, root *Level) bool {
	for {
		if in.catches(L) {
			return true
		}
		if L == root {
			return false
		}
		in.abortLevel(L)
		L = in.top
	}
}

// call runs one executor step. An abrupt failure inside it becomes the
// failure in flight.
func (in *Interp) call(L *Level) (b Bounce) {
	defer func() {
		if r := recover(); r != nil {
			e, ok := core.AsError(r)
			if !ok {
				panic(r)
			}
			in.raise(e)
			b = BounceThrown
		}
	}()
	return L.executor.run(in, L)
}

// run pushes L, runs it to completion and drops it. An uncaught throw or
// failure is returned as an error; a plain throw becomes no-catch.
func (in *Interp) run(L *Level, out *core.Cell) (err *core.Error) {
	in.pushLevel(L, out)
	thrown := in.trampoline(L)
	if thrown {
		in.abortLevel(L)
		return in.takeThrownError()
	}
	if err := in.dropLevel(L); err != nil {
		return err
	}
	return nil
}
