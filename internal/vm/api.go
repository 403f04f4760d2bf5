package vm

import (
	"context"

	"ren/internal/core"
	"ren/internal/trace"
)

// Value is a cell handed to the host. It lives in its own root stub and
// belongs to the level that was running when it was made, or to the
// interpreter when none was. It must be released once, unless its owner
// ends first, which releases it.
type Value struct {
	stub    *core.Stub
	owner   *Level
	expired bool
}

// Cell returns the value's cell. Using a released value is an error.
func (v *Value) Cell() *core.Cell {
	if v.expired {
		core.Panic(core.ErrSeriesDecayed, "API value used after release")
	}
	return v.stub.At(0)
}

type instrKind uint8

const (
	instrRelease instrKind = iota
	instrQuote
)

// Instruction wraps a value in a variadic evaluation to change how it is
// fed in. It is used up by the evaluation it appears in.
type Instruction struct {
	stub  *core.Stub
	kind  instrKind
	value *Value
}

func (in *Interp) instruction(kind instrKind, v *Value) *Instruction {
	s := in.heap.MakeFlex(core.FlavorInstruction, 1, core.FlexFlagManaged)
	s.SetLen(1)
	s.At(0).Copy(v.Cell())
	in.heap.MakeRoot(s)
	return &Instruction{stub: s, kind: kind, value: v}
}

// consume hands the instruction's stub to the collector. An instruction
// is used once; feeding it again is an error.
func (ins *Instruction) consume(in *Interp) {
	if ins.stub == nil {
		core.Panic(core.ErrBadVariadic, "instruction used twice")
	}
	in.heap.Unroot(ins.stub)
	ins.stub = nil
}

// R feeds v in and releases it once the evaluator has moved past it.
func (in *Interp) R(v *Value) *Instruction { return in.instruction(instrRelease, v) }

// Q feeds v in quoted, so it evaluates to itself, or to its quasiform if
// it is an antiform.
func (in *Interp) Q(v *Value) *Instruction { return in.instruction(instrQuote, v) }

// newValue makes an API value owned by the top level.
func (in *Interp) newValue(c *core.Cell) *Value {
	s := in.heap.MakeFlex(core.FlavorAPI, 1, core.FlexFlagManaged)
	s.SetLen(1)
	s.At(0).Copy(c)
	in.heap.MakeRoot(s)
	v := &Value{stub: s, owner: in.top}
	if in.top != nil {
		in.top.apis = append(in.top.apis, v)
	} else {
		in.apis = append(in.apis, v)
	}
	return v
}

// Release gives v back. Releasing twice is a fatal error.
func (in *Interp) Release(v *Value) {
	if v.expired {
		core.Panic(core.ErrDoubleRelease, "API value released twice")
	}
	list := &in.apis
	if v.owner != nil {
		list = &v.owner.apis
	}
	for i := len(*list) - 1; i >= 0; i-- {
		if (*list)[i] == v {
			*list = append((*list)[:i], (*list)[i+1:]...)
			break
		}
	}
	in.expire(v)
}

// expire unroots v so the collector can take it.
func (in *Interp) expire(v *Value) {
	if v.expired {
		return
	}
	v.expired = true
	v.owner = nil
	in.heap.Unroot(v.stub)
}

// Integer makes an INTEGER! value.
func (in *Interp) Integer(i int64) *Value {
	var c core.Cell
	return in.newValue(core.InitInteger(&c, i))
}

// Text makes a TEXT! value.
func (in *Interp) Text(s string) *Value {
	var c core.Cell
	return in.newValue(core.InitText(&c, in.heap.MakeString(s, core.FlexFlagManaged)))
}

// LoadImage rebuilds scanned code saved with ImageOf as a BLOCK! value.
func (in *Interp) LoadImage(img *core.ArrayImage) (*Value, error) {
	var result *Value
	err := in.protect(func() {
		arr, err := in.heap.FromImage(img)
		if err != nil {
			panic(err)
		}
		var c core.Cell
		result = in.newValue(core.InitBlock(&c, arr))
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ImageOf copies the array of a BLOCK! value for serialization.
func (in *Interp) ImageOf(v *Value) (*core.ArrayImage, error) {
	c := v.Cell()
	if !c.IsPlain() || c.Heart() != core.HeartBlock {
		return nil, core.NewError(core.ErrBadType, "cannot image %s", core.TypeOf(c))
	}
	return core.ImageOf(c.Node())
}

// Eval evaluates the parts and returns the result, decayed to a single
// stable value. A null result is returned as a nil *Value. Cancelling ctx
// halts the evaluation.
func (in *Interp) Eval(ctx context.Context, parts ...any) (*Value, error) {
	var result *Value
	err := in.evaluate(ctx, parts, func(out *core.Cell) {
		if out.IsNull() || out.IsGhost() {
			return
		}
		result = in.newValue(out)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Elide evaluates the parts for their effects.
func (in *Interp) Elide(ctx context.Context, parts ...any) error {
	return in.evaluate(ctx, parts, func(*core.Cell) {})
}

// UnboxInteger evaluates the parts and returns the INTEGER! result.
func (in *Interp) UnboxInteger(ctx context.Context, parts ...any) (int64, error) {
	var n int64
	err := in.evaluate(ctx, parts, func(out *core.Cell) {
		if !out.Is(core.HeartInteger) {
			core.Panic(core.ErrBadUnbox, "expected integer!, got %s", core.TypeOf(out))
		}
		n = out.Int64()
	})
	return n, err
}

// Spell evaluates the parts and returns the spelling of the TEXT!, TAG!
// or word result.
func (in *Interp) Spell(ctx context.Context, parts ...any) (string, error) {
	var s string
	err := in.evaluate(ctx, parts, func(out *core.Cell) {
		switch {
		case !out.IsPlain():
			core.Panic(core.ErrBadUnbox, "cannot spell %s", core.TypeOf(out))
		case out.Heart().IsString():
			s = out.Text()
		case out.Heart().IsWord():
			s = core.Spelling(out.Symbol())
		default:
			core.Panic(core.ErrBadUnbox, "cannot spell %s", core.TypeOf(out))
		}
	})
	return s, err
}

// Mold renders a value the way PROBE does.
func (in *Interp) Mold(v *Value) string {
	if v == nil {
		return "~null~"
	}
	return core.Mold(v.Cell())
}

// evaluate runs the parts as one evaluation bound to the user context
// and hands the decayed result to take.
func (in *Interp) evaluate(ctx context.Context, parts []any, take func(out *core.Cell)) error {
	in.runs++
	span := trace.Begin(in.tracer, trace.ScopeEval, "eval", trace.ParentSpan(ctx))
	err := in.protect(func() {
		var flags LevelFlags
		if ctx.Done() != nil {
			flags |= LevelFlagInterruptible
			stop := context.AfterFunc(ctx, in.RequestHalt)
			defer stop()
		}
		// Host cells are not API handles; guard them until the feed has
		// read them.
		var guarded []*core.Cell
		for _, p := range parts {
			if c, ok := p.(*core.Cell); ok {
				in.heap.PushGuardCell(c)
				guarded = append(guarded, c)
			}
		}
		feed := in.NewVariadicFeed(parts, in.user)
		L := in.makeLevel(Evaluator, feed, flags|LevelFlagOwnsFeed)
		var out core.Cell
		if err := in.run(L, &out); err != nil {
			panic(err)
		}
		for i := len(guarded) - 1; i >= 0; i-- {
			in.heap.DropGuardCell(guarded[i])
		}
		if err := core.DecayIfUnstable(&out); err != nil && !out.IsGhost() {
			panic(err)
		}
		take(&out)
	})
	if err != nil {
		span.WithExtra("error", err.ID)
		span.End(err.Error())
		return err
	}
	span.End("")
	return nil
}

// protect runs fn, turning an abrupt failure into an error and unwinding
// any levels fn left behind.
func (in *Interp) protect(fn func()) (err *core.Error) {
	base := in.top
	stackBase := in.stack.Index()
	guardBase := in.heap.GuardsLen()
	defer func() {
		if r := recover(); r != nil {
			e, ok := core.AsError(r)
			if !ok {
				panic(r)
			}
			for in.top != base && in.top != nil {
				in.abortLevel(in.top)
			}
			if in.stack.Index() > stackBase {
				_ = in.stack.DropTo(stackBase)
			}
			in.heap.TruncateGuards(guardBase)
			if in.Throwing() {
				in.throw.clear()
			}
			err = e
		}
	}()
	fn()
	return nil
}
