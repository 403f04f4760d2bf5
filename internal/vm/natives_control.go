package vm

import (
	"ren/internal/core"
)

func truthy(c *core.Cell) bool {
	if c.IsRaised() {
		panic(c.ErrorOf())
	}
	if err := core.DecayIfUnstable(c); err != nil && !c.IsGhost() {
		panic(err)
	}
	ok, err := core.TrapTestConditional(c)
	if err != nil {
		panic(err)
	}
	return ok
}

func nativeIf(in *Interp, L *Level) Bounce {
	if !truthy(L.Arg(1)) {
		core.InitNull(L.out)
		return BounceOut
	}
	in.evalBlock(L.Arg(2), L.feed.binding, L.out, 0)
	return BounceDelegate
}

func nativeEither(in *Interp, L *Level) Bounce {
	branch := L.Arg(3)
	if truthy(L.Arg(1)) {
		branch = L.Arg(2)
	}
	in.evalBlock(branch, L.feed.binding, L.out, 0)
	return BounceDelegate
}

const (
	stateWhileCondition = StateDispatch + 1
	stateWhileBody      = StateDispatch + 2
)

// nativeWhile evaluates body while condition is truthy. The result is
// the last body result that was not a ghost, or null.
func nativeWhile(in *Interp, L *Level) Bounce {
	switch L.state {
	case StateDispatch:
		core.InitNull(L.out)
	case stateWhileCondition:
		if !truthy(&L.spare) {
			L.spare.Erase()
			return BounceOut
		}
		L.spare.Erase()
		L.state = stateWhileBody
		in.evalBlock(L.Arg(2), L.feed.binding, &L.scratch, 0)
		return BounceContinue
	case stateWhileBody:
		if L.scratch.IsRaised() {
			panic(L.scratch.ErrorOf())
		}
		if !L.scratch.IsGhost() {
			L.out.Copy(&L.scratch)
		}
		L.scratch.Erase()
	}
	L.state = stateWhileCondition
	in.evalBlock(L.Arg(1), L.feed.binding, &L.spare, 0)
	return BounceContinue
}

// nativeDo evaluates a block, or scans and evaluates text in the user
// context.
func nativeDo(in *Interp, L *Level) Bounce {
	src := L.Arg(1)
	if src.Is(core.HeartText) {
		if err := in.scanAll([]byte(src.Text()), "", &L.spare); err != nil {
			panic(err)
		}
		in.evalBlock(&L.spare, in.user, L.out, 0)
		return BounceDelegate
	}
	in.evalBlock(src, L.feed.binding, L.out, 0)
	return BounceDelegate
}

func nativeReduce(in *Interp, L *Level) Bounce {
	in.pushReducer(L.Arg(1), L.feed.binding, L.out, reduceBlock)
	return BounceDelegate
}

func nativePack(in *Interp, L *Level) Bounce {
	in.pushReducer(L.Arg(1), L.feed.binding, L.out, reducePack)
	return BounceDelegate
}

// nativeSpread makes a splice of the block's items from its index.
func nativeSpread(in *Interp, L *Level) Bounce {
	b := L.Arg(1)
	core.InitSplice(L.out, in.heap.CopyArray(b.Node(), b.Index()))
	return BounceOut
}

// nativeElide evaluates its argument and vanishes. COMMENT shares it but
// takes its argument literally.
func nativeElide(_ *Interp, L *Level) Bounce {
	core.InitGhost(L.out)
	return BounceOut
}

func nativeQuote(_ *Interp, L *Level) Bounce {
	L.out.Copy(L.Arg(1))
	if err := core.Quote(L.out, 1); err != nil {
		panic(err)
	}
	return BounceOut
}

func nativeUnquote(_ *Interp, L *Level) Bounce {
	L.out.Copy(L.Arg(1))
	if err := core.Unquote(L.out, 1); err != nil {
		panic(err)
	}
	return BounceOut
}

// nativeLift returns its argument as it was received: already lifted.
func nativeLift(_ *Interp, L *Level) Bounce {
	L.out.Copy(L.Arg(1))
	return BounceOut
}

func nativeUnlift(_ *Interp, L *Level) Bounce {
	L.out.Copy(L.Arg(1))
	if err := core.Unlift(L.out); err != nil {
		panic(err)
	}
	return BounceOut
}

// nativeNullQ tests for null without failing on other antiforms.
func nativeNullQ(_ *Interp, L *Level) Bounce {
	v := L.Arg(1)
	core.InitLogic(L.out, v.IsQuasi() && v.Heart() == core.HeartWord && core.SymIDOf(v.Symbol()) == core.SymNull)
	return BounceOut
}

func nativeNot(_ *Interp, L *Level) Bounce {
	core.InitLogic(L.out, !truthy(L.Arg(1)))
	return BounceOut
}

// nativeVeto raises a veto error. REDUCE turns it into a null result.
func nativeVeto(in *Interp, L *Level) Bounce {
	core.InitRaised(L.out, in.heap.MakeErrorStub(core.NewError(core.ErrVeto, "veto")))
	return BounceOut
}

// nativeDone raises a done error. REDUCE stops at it and keeps what it
// had gathered.
func nativeDone(in *Interp, L *Level) Bounce {
	core.InitRaised(L.out, in.heap.MakeErrorStub(core.NewError(core.ErrDone, "done")))
	return BounceOut
}
