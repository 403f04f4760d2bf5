package vm

import (
	"ren/internal/core"
)

const (
	stateStepLookahead State = 1 // out holds a value; check for infix
	stateStepSetWord   State = 2 // right-hand side evaluated into out
	stateStepGroup     State = 3
	stateStepMetaGroup State = 4
)

// stepperExecutor evaluates one expression from the feed into out. A
// value followed by an infix action is passed to that action as its left
// argument, one operator at a time, so 1 + 2 * 3 is (1 + 2) * 3.
func stepperExecutor(in *Interp, L *Level) Bounce {
	switch L.state {
	case StateInitial:
		return in.step(L)
	case stateStepSetWord:
		in.assign(L)
		return BounceOut
	case stateStepMetaGroup:
		if err := core.LiftCell(L.out); err != nil {
			panic(err)
		}
	case stateStepGroup, stateStepLookahead:
	default:
		core.Panic(core.ErrInternal, "stepper in state %d", L.state)
	}
	return in.lookahead(L)
}

func (in *Interp) step(L *Level) Bounce {
	f := L.feed
	if f.AtEnd() {
		core.InitGhost(L.out)
		return BounceOut
	}
	v := f.At()

	switch {
	case v.IsAntiform():
		// Only a host can put an antiform here, and only an action.
		if !f.inert || !v.IsAction() {
			core.Panic(core.ErrBadAntiform, "cannot evaluate %s", core.TypeOf(v))
		}
		var act core.Cell
		act.Copy(v)
		f.Fetch()
		return in.invoke(L, &act, nil, 0)
	case v.IsQuoted():
		L.out.Copy(v)
		f.Fetch()
		if err := core.Unquote(L.out, 1); err != nil {
			panic(err)
		}
		return in.lookahead(L)
	case v.IsQuasi():
		L.out.Copy(v)
		f.Fetch()
		if err := core.TrapCoerceToAntiform(L.out); err != nil {
			panic(err)
		}
		return in.lookahead(L)
	}

	switch v.Heart() {
	case core.HeartWord:
		return in.stepWord(L, v)

	case core.HeartSetWord:
		L.scratch.Copy(v)
		L.scratch.SetBinding(wordBinding(v, f.binding))
		f.Fetch()
		if f.AtEnd() {
			core.Panic(core.ErrNoArg, "%s: needs a value", core.Spelling(L.scratch.Symbol()))
		}
		sub := in.makeLevel(Stepper, f, 0)
		L.state = stateStepSetWord
		in.pushLevel(sub, L.out)
		return BounceContinue

	case core.HeartGetWord:
		L.out.Copy(in.lookupVar(v, f.binding))
		f.Fetch()
		return in.lookahead(L)

	case core.HeartGroup:
		var group core.Cell
		group.Copy(v)
		f.Fetch()
		binding := wordBinding(&group, f.binding)
		switch group.Sigil() {
		case core.SigilPin:
			L.out.Copy(&group)
			return in.lookahead(L)
		case core.SigilTie:
			L.out.Copy(&group)
			L.out.SetBinding(binding)
			return in.lookahead(L)
		case core.SigilMeta:
			L.state = stateStepMetaGroup
		default:
			L.state = stateStepGroup
		}
		sub := in.makeLevel(Evaluator, in.NewArrayFeed(group.Node(), group.Index(), binding), LevelFlagOwnsFeed)
		in.pushLevel(sub, L.out)
		return BounceContinue

	case core.HeartBlock:
		L.out.Copy(v)
		if L.out.Binding() == nil {
			L.out.SetBinding(f.binding)
		}
		f.Fetch()
		return in.lookahead(L)

	case core.HeartComma:
		core.InitGhost(L.out)
		f.Fetch()
		return BounceOut
	}

	L.out.Copy(v)
	f.Fetch()
	return in.lookahead(L)
}

func (in *Interp) stepWord(L *Level, w *core.Cell) Bounce {
	f := L.feed
	switch w.Sigil() {
	case core.SigilPin:
		L.out.Copy(w)
		f.Fetch()
		return in.lookahead(L)
	case core.SigilTie:
		L.out.Copy(w)
		L.out.SetSigil(core.SigilNone)
		L.out.SetBinding(wordBinding(w, f.binding))
		f.Fetch()
		return in.lookahead(L)
	case core.SigilMeta:
		L.out.Copy(in.lookupVar(w, f.binding))
		f.Fetch()
		if err := core.LiftCell(L.out); err != nil {
			panic(err)
		}
		return in.lookahead(L)
	}

	sym := w.Symbol()
	val, ok := f.Gotten()
	if !ok {
		core.Panic(core.ErrNotBound, "%s has no binding", core.Spelling(sym))
	}
	if val.IsAction() {
		act := actionOf(val)
		if act.Infix {
			core.Panic(core.ErrNoLeft, "%s has no left argument", core.Spelling(sym))
		}
		var c core.Cell
		c.Copy(val)
		f.Fetch()
		return in.invoke(L, &c, sym, 0)
	}
	if val.IsTrash() {
		core.Panic(core.ErrNoValue, "%s has no value", core.Spelling(sym))
	}
	L.out.Copy(val)
	f.Fetch()
	return in.lookahead(L)
}

// lookupVar returns the variable a word refers to.
func (in *Interp) lookupVar(w *core.Cell, fallback *core.Stub) *core.Cell {
	ctx, i := core.Lookup(wordBinding(w, fallback), w.Symbol())
	if ctx == nil {
		core.Panic(core.ErrNotBound, "%s has no binding", core.Spelling(w.Symbol()))
	}
	return core.ContextVar(ctx, i)
}

// lookahead passes out to an infix action that follows it, if any.
func (in *Interp) lookahead(L *Level) Bounce {
	f := L.feed
	if L.flags&LevelFlagNoLookahead != 0 || f.AtEnd() || L.out.IsGhost() {
		return BounceOut
	}
	val, ok := f.Gotten()
	if !ok || !val.IsAction() || !actionOf(val).Infix {
		return BounceOut
	}
	sym := f.At().Symbol()
	var c core.Cell
	c.Copy(val)
	f.Fetch()
	L.state = stateStepLookahead
	return in.invoke(L, &c, sym, LevelFlagInfix)
}

// invoke pushes an action level reading its arguments from L's feed and
// writing its result to L's out.
func (in *Interp) invoke(L *Level, act *core.Cell, label *core.Stub, flags LevelFlags) Bounce {
	sub := in.makeLevel(ActionExecutor, L.feed, flags)
	sub.action = actionOf(act)
	sub.label = label
	if L.state == StateInitial {
		L.state = stateStepLookahead
	}
	in.pushLevel(sub, L.out)
	return BounceContinue
}

// assign stores the value evaluated for a set-word.
func (in *Interp) assign(L *Level) {
	sym := L.scratch.Symbol()
	switch {
	case L.out.IsRaised():
		panic(L.out.ErrorOf())
	case L.out.IsGhost():
		core.Panic(core.ErrNoValue, "%s: right side has no value", core.Spelling(sym))
	}
	if err := core.DecayIfUnstable(L.out); err != nil {
		panic(err)
	}
	ctx, i := core.Lookup(L.scratch.Binding(), sym)
	if ctx == nil {
		slot, err := in.heap.ContextAppend(in.user, sym)
		if err != nil {
			panic(err)
		}
		slot.Copy(L.out)
		return
	}
	if err := core.ContextSet(ctx, i, L.out); err != nil {
		panic(err)
	}
}

// actionOf returns the Action behind an action or FRAME! cell.
func actionOf(c *core.Cell) *Action {
	act, ok := c.Node().Obj().(*Action)
	if !ok {
		core.Panic(core.ErrNotAction, "%s is not an action", core.TypeOf(c))
	}
	return act
}
