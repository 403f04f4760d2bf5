package vm

import (
	"ren/internal/core"
)

// native is a lib function written in Go. spec uses the FUNC spec
// dialect, so natives typecheck their arguments like user functions.
type native struct {
	name     string
	spec     string
	infix    bool
	dispatch Dispatcher
}

var natives = []native{
	// math
	{"add", `[value1 [integer! decimal!] value2 [integer! decimal!]]`, false, nativeAdd},
	{"subtract", `[value1 [integer! decimal!] value2 [integer! decimal!]]`, false, nativeSubtract},
	{"multiply", `[value1 [integer! decimal!] value2 [integer! decimal!]]`, false, nativeMultiply},
	{"divide", `[value1 [integer! decimal!] value2 [integer! decimal!]]`, false, nativeDivide},
	{"+", `[value1 [integer! decimal!] value2 [integer! decimal!]]`, true, nativeAdd},
	{"-", `[value1 [integer! decimal!] value2 [integer! decimal!]]`, true, nativeSubtract},
	{"*", `[value1 [integer! decimal!] value2 [integer! decimal!]]`, true, nativeMultiply},
	{"/", `[value1 [integer! decimal!] value2 [integer! decimal!]]`, true, nativeDivide},
	{"=", `[value1 [~null~] value2 [~null~]]`, true, nativeEqual},
	{"<", `[value1 [integer! decimal! text!] value2 [integer! decimal! text!]]`, true, nativeLesser},
	{">", `[value1 [integer! decimal! text!] value2 [integer! decimal! text!]]`, true, nativeGreater},

	// control
	{"if", `[condition [~null~] branch [block!]]`, false, nativeIf},
	{"either", `[condition [~null~] true-branch [block!] false-branch [block!]]`, false, nativeEither},
	{"while", `[condition [block!] body [block!]]`, false, nativeWhile},
	{"do", `[source [block! text!]]`, false, nativeDo},
	{"reduce", `[block [block!]]`, false, nativeReduce},
	{"elide", `[^discarded]`, false, nativeElide},
	{"comment", `['discarded]`, false, nativeElide},
	{"quote", `[value]`, false, nativeQuote},
	{"unquote", `[value [quoted!]]`, false, nativeUnquote},
	{"lift", `[^value]`, false, nativeLift},
	{"unlift", `[value [quoted! quasiform!]]`, false, nativeUnlift},
	{"pack", `[block [block!]]`, false, nativePack},
	{"spread", `[block [block!]]`, false, nativeSpread},
	{"func", `[spec [block!] body [block!]]`, false, nativeFunc},
	{"return", `[value [~null~]]`, false, nativeReturn},
	{"null?", `[^value]`, false, nativeNullQ},
	{"not", `[value [~null~]]`, false, nativeNot},
	{"veto", `[]`, false, nativeVeto},
	{"done", `[]`, false, nativeDone},

	// throws and errors
	{"catch", `[block [block!]]`, false, nativeCatch},
	{"throw", `[value [~null~]]`, false, nativeThrow},
	{"catch-named", `[name [word!] block [block!]]`, false, nativeCatch},
	{"throw-named", `[name [word!] value [~null~]]`, false, nativeThrow},
	{"rescue", `[block [block!]]`, false, nativeRescue},
	{"try", `[^value]`, false, nativeTry},
	{"fail", `[reason [text! error!]]`, false, nativeFail},
	{"panic", `[reason [text! error!]]`, false, nativePanic},
	{"halt", `[]`, false, nativeHalt},

	// system
	{"recycle", `[]`, false, nativeRecycle},
	{"print", `[value]`, false, nativePrint},
	{"probe", `[^value]`, false, nativeProbe},
	{"mold", `[value]`, false, nativeMold},
	{"type-of", `[^value]`, false, nativeTypeOf},
	{"context-of", `['word [word!]]`, false, nativeContextOf},
}

// registerNatives fills the lib context. Native words are protected so
// code cannot overwrite them by accident.
func (in *Interp) registerNatives() {
	var spec core.Cell
	for i := range natives {
		n := &natives[i]
		if err := in.scanAll([]byte(n.spec), "", &spec); err != nil {
			panic(err)
		}
		params, err := parseFuncSpec(spec.ListAt()[0].ListAt())
		if err != nil {
			panic(err)
		}
		act := &Action{Name: n.name, Params: params, Infix: n.infix, Dispatch: n.dispatch}
		details := in.makeAction(act, nil, nil)
		in.libSet(n.name, core.InitAction(&spec, details, nil))
	}
	var c core.Cell
	in.libSet("null", core.InitNull(&c))
	in.libSet("okay", core.InitOkay(&c))
	spec.Erase()
}

func (in *Interp) libSet(name string, v *core.Cell) {
	slot, err := in.heap.ContextAppend(in.lib, core.Intern(name))
	if err != nil {
		panic(err)
	}
	slot.Copy(v)
	slot.SetFlag(core.CellFlagProtected)
}

// parseFuncSpec reads a parameter list: x is evaluated, 'x is literal,
// :x is literal unless a group or get-word, ^x is lifted. A block after a
// parameter lists its types, where ~null~ makes it optional. Words after
// <local> are locals. Text is description and ignored.
func parseFuncSpec(items []core.Cell) ([]Param, error) {
	var params []Param
	local := false
	for i := range items {
		c := &items[i]
		switch {
		case c.Is(core.HeartText):
			continue
		case c.Is(core.HeartTag):
			if c.Text() != "local" {
				return nil, core.NewError(core.ErrBadFuncSpec, "unknown spec tag <%s>", c.Text())
			}
			local = true
			continue
		case c.Is(core.HeartBlock):
			if len(params) == 0 || local {
				return nil, core.NewError(core.ErrBadFuncSpec, "type block %s has no parameter", core.MoldLimit(c, 40))
			}
			if err := parseTypes(&params[len(params)-1], c.ListAt()); err != nil {
				return nil, err
			}
			continue
		}

		p := Param{Class: ParamNormal}
		switch {
		case c.IsPlain() && c.Heart() == core.HeartWord && c.Sigil() == core.SigilNone:
		case c.IsPlain() && c.Heart() == core.HeartWord && c.Sigil() == core.SigilMeta:
			p.Class = ParamMeta
		case c.QuoteDepth() == 1 && c.Heart() == core.HeartWord && c.Sigil() == core.SigilNone:
			p.Class = ParamHard
		case c.Is(core.HeartGetWord):
			p.Class = ParamSoft
		default:
			return nil, core.NewError(core.ErrBadFuncSpec, "bad parameter %s", core.MoldLimit(c, 40))
		}
		if local {
			if p.Class != ParamNormal {
				return nil, core.NewError(core.ErrBadFuncSpec, "local %s cannot be decorated", core.MoldLimit(c, 40))
			}
			p.Class = ParamLocal
		}
		p.Symbol = c.Symbol()
		params = append(params, p)
	}
	return params, nil
}

func parseTypes(p *Param, items []core.Cell) error {
	for i := range items {
		c := &items[i]
		if c.Heart() != core.HeartWord || c.Sigil() != core.SigilNone {
			return core.NewError(core.ErrBadFuncSpec, "bad type %s", core.MoldLimit(c, 40))
		}
		if c.IsQuasi() && core.SymIDOf(c.Symbol()) == core.SymNull {
			p.Optional = true
			continue
		}
		if !c.IsPlain() {
			return core.NewError(core.ErrBadFuncSpec, "bad type %s", core.MoldLimit(c, 40))
		}
		t, ok := core.TypeByName(core.Spelling(c.Symbol()))
		if !ok {
			return core.NewError(core.ErrBadFuncSpec, "unknown type %s", core.Spelling(c.Symbol()))
		}
		p.Types = append(p.Types, t)
	}
	return nil
}

// nativeFunc makes a user function. The body's binding is where the
// function's words fall back to, so a function made inside another sees
// the outer frame.
func nativeFunc(in *Interp, L *Level) Bounce {
	spec, body := L.Arg(1), L.Arg(2)
	params, err := parseFuncSpec(spec.ListAt())
	if err != nil {
		panic(err)
	}
	binding := body.Binding()
	if binding == nil {
		binding = L.feed.binding
	}
	act := &Action{Name: "func", Params: params, Dispatch: funcDispatcher}
	core.InitAction(L.out, in.makeAction(act, body, binding), nil)
	return BounceOut
}

const stateFuncBody = StateDispatch + 1

// funcDispatcher runs a user function's body with the frame as its
// binding, and catches RETURNs aimed at that frame.
func funcDispatcher(in *Interp, L *Level) Bounce {
	switch L.state {
	case StateDispatch:
		body := L.action.details.At(0)
		L.flags |= LevelFlagCatchesThrows
		L.state = stateFuncBody
		sub := in.makeLevel(Evaluator, in.NewArrayFeed(body.Node(), body.Index(), L.varlist), LevelFlagOwnsFeed)
		in.pushLevel(sub, L.out)
		return BounceContinue
	case stateFuncBody:
		if !in.Throwing() {
			return BounceOut
		}
		label := in.ThrownLabel()
		if label.Is(core.HeartFrame) && label.Node() == L.varlist {
			in.CatchThrown(L.out)
			return BounceOut
		}
		return BounceThrown
	}
	core.Panic(core.ErrInternal, "function in state %d", L.state)
	return BounceThrown
}

// nativeReturn throws to the nearest function frame on the binding chain
// of the code that called it.
func nativeReturn(in *Interp, L *Level) Bounce {
	for ctx := L.feed.binding; ctx != nil; ctx = core.ContextParent(ctx) {
		if ctx.Flavor() != core.FlavorVarlist || core.ContextArchetype(ctx).Heart() != core.HeartFrame {
			continue
		}
		if ctx.Obj() == nil {
			core.Panic(core.ErrFrameExpired, "return from a function that already finished")
		}
		var label core.Cell
		core.InitFrame(&label, ctx, nil)
		in.InitThrown(&label, L.Arg(1))
		return BounceThrown
	}
	core.Panic(core.ErrNoCatch, "return outside of a function")
	return BounceThrown
}
