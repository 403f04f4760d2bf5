package vm

import (
	"slices"

	"ren/internal/core"
)

// ParamClass says how an argument is taken from the feed.
type ParamClass uint8

const (
	ParamNormal ParamClass = iota // evaluated
	ParamHard                     // taken literally: 'x
	ParamSoft                     // literal unless a group or get-word: :x
	ParamMeta                     // evaluated and lifted, so anything fits: ^x
	ParamLocal                    // not an argument; starts as trash
)

// Param describes one slot of an action's frame.
type Param struct {
	Symbol   *core.Stub
	Class    ParamClass
	Types    []core.Type // empty accepts any type
	Optional bool        // null is accepted, and so is a missing argument
}

// Dispatcher runs an action once its frame is filled. It is called again
// with the level's state when a sub-level it pushed completes.
type Dispatcher func(in *Interp, L *Level) Bounce

// Action is a native or user function.
type Action struct {
	Name     string
	Params   []Param
	Infix    bool
	Dispatch Dispatcher

	details *core.Stub
	keylist *core.Stub
}

// Label names the action in molds and backtraces.
func (a *Action) Label() string { return a.Name }

// Details returns the stub action cells point to.
func (a *Action) Details() *core.Stub { return a.details }

// makeAction builds the details stub for an action. body, when not nil,
// is kept in the details so the collector sees it; binding is where the
// frame's words fall back to.
func (in *Interp) makeAction(act *Action, body *core.Cell, binding *core.Stub) *core.Stub {
	syms := make([]*core.Stub, len(act.Params))
	for i := range act.Params {
		syms[i] = act.Params[i].Symbol
	}
	keylist, err := in.heap.NewKeylist(syms)
	if err != nil {
		panic(err)
	}
	details := in.heap.MakeFlex(core.FlavorDetails, 1, core.FlexFlagManaged)
	if body != nil {
		details.SetLen(1)
		details.At(0).Copy(body)
	}
	details.Link.Node = keylist
	details.Misc.Node = binding
	details.SetObj(act)
	act.details = details
	act.keylist = keylist
	return details
}

const (
	stateActionFulfill State = 1
	stateActionArg     State = 2
)

// actionExecutor fills the frame of L.action from the feed, then hands
// over to the action's dispatcher.
func actionExecutor(in *Interp, L *Level) Bounce {
	act := L.action
	switch L.state {
	case StateInitial:
		details := act.details
		L.varlist = in.heap.MakeVarlist(core.HeartFrame, act.keylist, details.Misc.Node, 0)
		L.varlist.SetObj(L)
		L.param = 0
		if L.flags&LevelFlagInfix != 0 {
			i := firstArg(act)
			if i < 0 {
				core.Panic(core.ErrBadFuncSpec, "infix %s has no argument", act.Name)
			}
			L.spare.Copy(L.out)
			L.param = i
			in.takeStepped(L)
			L.param = i + 1
		}
		L.state = stateActionFulfill
	case stateActionArg:
		if L.spare.IsGhost() && !L.feed.AtEnd() && !atComma(L.feed) {
			L.spare.Erase()
			return in.stepArg(L, &act.Params[L.param])
		}
		in.takeStepped(L)
		L.param++
		L.state = stateActionFulfill
	case stateActionFulfill:
	default:
		if L.state < StateDispatch {
			core.Panic(core.ErrInternal, "%s in state %d", act.Name, L.state)
		}
		return act.Dispatch(in, L)
	}

	for L.param < len(act.Params) {
		p := &act.Params[L.param]
		f := L.feed
		if p.Class == ParamLocal {
			L.param++
			continue
		}
		if f.AtEnd() || atComma(f) {
			if !p.Optional {
				core.Panic(core.ErrNoArg, "%s is missing its %s argument", L.Label(), core.Spelling(p.Symbol))
			}
			var null core.Cell
			in.takeArg(L, L.param, core.InitNull(&null))
			L.param++
			continue
		}
		v := f.At()
		switch p.Class {
		case ParamHard:
			in.takeArg(L, L.param, v)
			f.Fetch()
			L.param++
			continue
		case ParamSoft:
			if !v.Is(core.HeartGroup) && !v.Is(core.HeartGetWord) {
				in.takeArg(L, L.param, v)
				f.Fetch()
				L.param++
				continue
			}
		}
		return in.stepArg(L, p)
	}

	in.heap.Manage(L.varlist)
	L.state = StateDispatch
	return act.Dispatch(in, L)
}

// stepArg evaluates one step of the feed into spare for the current
// parameter. An infix action's right argument does not look ahead, so
// infix operators run left to right.
func (in *Interp) stepArg(L *Level, p *Param) Bounce {
	var flags LevelFlags
	if L.action.Infix {
		flags |= LevelFlagNoLookahead
	}
	sub := in.makeLevel(Stepper, L.feed, flags)
	L.state = stateActionArg
	in.pushLevel(sub, &L.spare)
	return BounceContinue
}

// takeStepped stores an evaluated argument.
func (in *Interp) takeStepped(L *Level) {
	p := &L.action.Params[L.param]
	v := &L.spare
	switch {
	case p.Class == ParamMeta:
		if err := core.LiftCell(v); err != nil {
			panic(err)
		}
	case v.IsGhost():
		if !p.Optional {
			core.Panic(core.ErrNoArg, "%s is missing its %s argument", L.Label(), core.Spelling(p.Symbol))
		}
		core.InitNull(v)
	default:
		if err := core.DecayIfUnstable(v); err != nil {
			panic(err)
		}
	}
	in.takeArg(L, L.param, v)
	v.Erase()
}

// takeArg typechecks v and stores it as argument i (0-based).
func (in *Interp) takeArg(L *Level, i int, v *core.Cell) {
	p := &L.action.Params[i]
	if err := typecheck(L, p, v); err != nil {
		panic(err)
	}
	core.ContextVar(L.varlist, i+1).Copy(v)
}

func typecheck(L *Level, p *Param, v *core.Cell) *core.Error {
	if p.Class == ParamMeta {
		return nil
	}
	if v.IsNull() {
		if p.Optional {
			return nil
		}
		return core.NewError(core.ErrExpectArg, "%s does not allow null for its %s argument",
			L.Label(), core.Spelling(p.Symbol))
	}
	if len(p.Types) == 0 || slices.Contains(p.Types, core.TypeOf(v)) {
		return nil
	}
	return core.NewError(core.ErrExpectArg, "%s does not allow %s for its %s argument",
		L.Label(), core.TypeOf(v), core.Spelling(p.Symbol))
}

func firstArg(act *Action) int {
	for i := range act.Params {
		if act.Params[i].Class != ParamLocal {
			return i
		}
	}
	return -1
}

func atComma(f *Feed) bool {
	v := f.At()
	return v != nil && v.Is(core.HeartComma)
}
