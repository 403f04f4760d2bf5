package vm

import (
	"ren/internal/core"
)

const stateEvalStepped State = 1

// evaluatorExecutor runs steps until the feed is exhausted. The result
// is the last step that produced something; steps that vanish (COMMENT,
// ELIDE, commas) leave it alone, and a feed of only those yields a ghost.
func evaluatorExecutor(in *Interp, L *Level) Bounce {
	switch L.state {
	case StateInitial:
		core.InitGhost(L.out)
	case stateEvalStepped:
		if !L.spare.IsGhost() {
			if L.spare.IsRaised() && !L.feed.AtEnd() {
				panic(L.spare.ErrorOf())
			}
			L.out.Copy(&L.spare)
		}
		L.spare.Erase()
	}
	if L.feed.AtEnd() {
		return BounceOut
	}
	sub := in.makeLevel(Stepper, L.feed, 0)
	L.state = stateEvalStepped
	in.pushLevel(sub, &L.spare)
	return BounceContinue
}

// evalBlock pushes an evaluator over the block in c, writing to out. The
// block's binding is used, else fallback.
func (in *Interp) evalBlock(c *core.Cell, fallback *core.Stub, out *core.Cell, flags LevelFlags) *Level {
	binding := c.Binding()
	if binding == nil {
		binding = fallback
	}
	sub := in.makeLevel(Evaluator, in.NewArrayFeed(c.Node(), c.Index(), binding), flags|LevelFlagOwnsFeed)
	in.pushLevel(sub, out)
	return sub
}
