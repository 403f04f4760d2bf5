package vm

import (
	"ren/internal/core"
)

const stateCatchBody = StateDispatch + 1

// nativeCatch evaluates a block and catches throws aimed at it: unnamed
// throws for CATCH, throws with the same name for CATCH-NAMED. The
// result is the thrown value, or the block's result if nothing was
// thrown.
func nativeCatch(in *Interp, L *Level) Bounce {
	named := L.action.Name == "catch-named"
	switch L.state {
	case StateDispatch:
		block := L.Arg(1)
		if named {
			L.scratch.Copy(L.Arg(1))
			block = L.Arg(2)
		} else {
			core.InitBlank(&L.scratch)
		}
		L.flags |= LevelFlagCatchesThrows
		L.state = stateCatchBody
		in.evalBlock(block, L.feed.binding, L.out, 0)
		return BounceContinue
	case stateCatchBody:
		if !in.Throwing() {
			return BounceOut
		}
		if sameLabel(in.ThrownLabel(), &L.scratch) {
			in.CatchThrown(L.out)
			return BounceOut
		}
		return BounceThrown
	}
	core.Panic(core.ErrInternal, "%s in state %d", L.Label(), L.state)
	return BounceThrown
}

// nativeThrow throws a value to the nearest CATCH, or with a name to the
// nearest CATCH-NAMED with that name.
func nativeThrow(in *Interp, L *Level) Bounce {
	var label core.Cell
	value := L.Arg(1)
	if L.action.Name == "throw-named" {
		label.Copy(L.Arg(1))
		label.SetBinding(nil)
		value = L.Arg(2)
	} else {
		core.InitBlank(&label)
	}
	in.InitThrown(&label, value)
	return BounceThrown
}

const stateRescueBody = StateDispatch + 1

// nativeRescue evaluates a block and returns the ERROR! of a failure in
// it, whether abrupt or a raised result. It returns null when the block
// did not fail. Fatal errors are not rescued.
func nativeRescue(in *Interp, L *Level) Bounce {
	switch L.state {
	case StateDispatch:
		L.flags |= LevelFlagCatchesPanics
		L.state = stateRescueBody
		in.evalBlock(L.Arg(1), L.feed.binding, L.out, 0)
		return BounceContinue
	case stateRescueBody:
		if in.Throwing() {
			if in.thrownError() == nil {
				return BounceThrown
			}
			L.out.Copy(&in.throw.label)
			in.throw.clear()
			return BounceOut
		}
		if L.out.IsRaised() {
			core.InitError(L.out, L.out.Node())
			return BounceOut
		}
		core.InitNull(L.out)
		return BounceOut
	}
	core.Panic(core.ErrInternal, "rescue in state %d", L.state)
	return BounceThrown
}

// nativeTry turns a raised error into null and passes anything else on.
func nativeTry(_ *Interp, L *Level) Bounce {
	v := L.Arg(1)
	if v.IsQuasi() && v.Heart() == core.HeartError {
		core.InitNull(L.out)
		return BounceOut
	}
	L.out.Copy(v)
	if err := core.Unlift(L.out); err != nil {
		panic(err)
	}
	return BounceOut
}

func reasonError(in *Interp, reason *core.Cell) *core.Error {
	if reason.Is(core.HeartError) {
		return reason.ErrorOf()
	}
	e := core.NewError(core.ErrUser, "%s", reason.Text())
	e.Backtrace = in.backtrace()
	return e
}

// nativeFail returns a raised error. It becomes an abrupt failure when
// something tries to use it as a value, unless TRY or RESCUE see it first.
func nativeFail(in *Interp, L *Level) Bounce {
	e := reasonError(in, L.Arg(1))
	in.locate(e)
	core.InitRaised(L.out, in.heap.MakeErrorStub(e))
	return BounceOut
}

// nativePanic fails abruptly.
func nativePanic(in *Interp, L *Level) Bounce {
	panic(reasonError(in, L.Arg(1)))
}

func nativeHalt(*Interp, *Level) Bounce {
	core.Panic(core.ErrHalt, "halted")
	return BounceThrown
}
