package vm

import (
	"ren/internal/core"
)

const (
	reduceBlock uint8 = iota
	reducePack        // lift each result, produce a pack
)

const stateReduceStepped State = 1

// reduceSignal is what collect saw in a step's result.
type reduceSignal uint8

const (
	reduceMore reduceSignal = iota
	reduceVeto              // result becomes null
	reduceDone              // stop early, keep what was collected
)

// reducerExecutor evaluates each expression of its feed and collects the
// results on the data stack. Ghosts are skipped and splices contribute
// their items. A VETO anywhere makes the whole result null; a DONE ends
// the reduction with the items gathered before it.
func reducerExecutor(in *Interp, L *Level) Bounce {
	switch L.state {
	case StateInitial:
		L.mark = in.stack.Index()
	case stateReduceStepped:
		sig := in.collect(L)
		L.spare.Erase()
		switch sig {
		case reduceVeto:
			core.InitNull(L.out)
			return BounceOut
		case reduceDone:
			return in.finishReduce(L)
		}
	}
	if !L.feed.AtEnd() {
		sub := in.makeLevel(Stepper, L.feed, 0)
		L.state = stateReduceStepped
		in.pushLevel(sub, &L.spare)
		return BounceContinue
	}
	return in.finishReduce(L)
}

// finishReduce pops the collected items into the level's result.
func (in *Interp) finishReduce(L *Level) Bounce {
	arr, err := in.stack.PopStackValues(L.mark, core.FlavorArray, 0, nil, 0)
	if err != nil {
		panic(err)
	}
	if L.mode == reducePack {
		core.InitPack(L.out, arr)
	} else {
		core.InitBlock(L.out, arr)
	}
	return BounceOut
}

// collect pushes a step's result. On a VETO it drops what was collected
// so far.
func (in *Interp) collect(L *Level) reduceSignal {
	v := &L.spare
	if L.mode == reducePack {
		if v.IsGhost() {
			return reduceMore
		}
		if err := core.LiftCell(v); err != nil {
			panic(err)
		}
		in.stack.Push().Copy(v)
		return reduceMore
	}
	switch {
	case v.IsGhost():
	case v.IsRaised():
		switch e := v.ErrorOf(); e.Code {
		case core.ErrDone:
			return reduceDone
		case core.ErrVeto:
			if err := in.stack.DropTo(L.mark); err != nil {
				panic(err)
			}
			return reduceVeto
		default:
			panic(e)
		}
	case v.IsSplice():
		items := v.ListAt()
		for i := range items {
			in.stack.Push().Copy(&items[i])
		}
	case v.IsAntiform():
		core.Panic(core.ErrBadAntiform, "cannot reduce to %s", core.TypeOf(v))
	default:
		in.stack.Push().Copy(v)
	}
	return reduceMore
}

// pushReducer reduces the block in c into out.
func (in *Interp) pushReducer(c *core.Cell, fallback *core.Stub, out *core.Cell, mode uint8) {
	binding := c.Binding()
	if binding == nil {
		binding = fallback
	}
	sub := in.makeLevel(Reducer, in.NewArrayFeed(c.Node(), c.Index(), binding), LevelFlagOwnsFeed)
	sub.mode = mode
	in.pushLevel(sub, out)
}
