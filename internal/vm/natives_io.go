package vm

import (
	"fmt"

	"ren/internal/core"
)

// nativeRecycle runs a collection and returns how many stubs it freed.
func nativeRecycle(in *Interp, L *Level) Bounce {
	st := in.Recycle()
	core.InitInteger(L.out, int64(st.Swept))
	return BounceOut
}

const statePrintReduced = StateDispatch + 1

// nativePrint writes a value's formed text and a newline. Blocks are
// reduced first.
func nativePrint(in *Interp, L *Level) Bounce {
	switch L.state {
	case StateDispatch:
		v := L.Arg(1)
		if v.Is(core.HeartBlock) {
			L.state = statePrintReduced
			in.pushReducer(v, L.feed.binding, &L.spare, reduceBlock)
			return BounceContinue
		}
		in.println(core.Form(v))
	case statePrintReduced:
		if !L.spare.IsNull() {
			in.println(core.Form(&L.spare))
		}
		L.spare.Erase()
	}
	core.InitTrash(L.out)
	return BounceOut
}

func (in *Interp) println(s string) {
	if _, err := fmt.Fprintln(in.stdout, s); err != nil {
		core.Panic(core.ErrInternal, "print: %v", err)
	}
}

// nativeProbe prints the molded value and returns it.
func nativeProbe(in *Interp, L *Level) Bounce {
	L.out.Copy(L.Arg(1))
	if err := core.Unlift(L.out); err != nil {
		panic(err)
	}
	in.println(core.Mold(L.out))
	return BounceOut
}

func nativeMold(in *Interp, L *Level) Bounce {
	core.InitText(L.out, in.heap.MakeString(core.Mold(L.Arg(1)), core.FlexFlagManaged))
	return BounceOut
}

func nativeTypeOf(_ *Interp, L *Level) Bounce {
	var v core.Cell
	v.Copy(L.Arg(1))
	if err := core.Unlift(&v); err != nil {
		panic(err)
	}
	core.InitDatatype(L.out, core.TypeOf(&v))
	return BounceOut
}

// nativeContextOf returns the object or frame a word resolves in, or
// null if it does not resolve.
func nativeContextOf(_ *Interp, L *Level) Bounce {
	w := L.Arg(1)
	ctx, _ := core.Lookup(wordBinding(w, L.feed.binding), w.Symbol())
	if ctx == nil {
		core.InitNull(L.out)
		return BounceOut
	}
	L.out.Copy(core.ContextArchetype(ctx))
	return BounceOut
}
