package vm

import (
	"ren/internal/core"
	"ren/internal/scan"
)

// Feed is the input of a level: either an array with an index, or a list
// of host parts (values, cells, source fragments, instructions) consumed
// one at a time. The current value is kept in a one-cell lookahead.
type Feed struct {
	in *Interp

	array   *core.Stub
	index   int
	binding *core.Stub

	parts []any
	pos   int
	lexer *scan.Lexer
	file  string

	fetched core.Cell
	end     bool
	// inert marks a fetched value spliced in from the host rather than
	// scanned: an antiform action among them is run, not just returned.
	inert bool

	gotten    *core.Cell
	gottenFor *core.Stub

	pending  []*Value // released once the current value is consumed
	reads    int
	released bool
}

// NewArrayFeed walks arr from index. Words without a binding of their own
// resolve through binding. The array is held against mutation until the
// feed is released.
func (in *Interp) NewArrayFeed(arr *core.Stub, index int, binding *core.Stub) *Feed {
	arr.Hold()
	f := &Feed{in: in, array: arr, index: index, binding: binding}
	f.Fetch()
	return f
}

// NewVariadicFeed walks host parts. Strings are scanned as source, one
// element per fetch; *Value and *core.Cell parts are spliced as if they
// had been written there, antiforms as their quasiforms; *Instruction
// parts apply to the value they wrap.
func (in *Interp) NewVariadicFeed(parts []any, binding *core.Stub) *Feed {
	f := &Feed{in: in, parts: parts, binding: binding}
	defer func() {
		if r := recover(); r != nil {
			f.Release()
			panic(r)
		}
	}()
	f.Fetch()
	return f
}

// AtEnd reports whether the input is exhausted. Polling does not advance.
func (f *Feed) AtEnd() bool { return f.end }

// At returns the current value, or nil at the end.
func (f *Feed) At() *core.Cell {
	if f.end {
		return nil
	}
	return &f.fetched
}

// Binding returns the context words resolve through.
func (f *Feed) Binding() *core.Stub { return f.binding }

// Index returns the position in an array feed.
func (f *Feed) Index() int { return f.index }

// Reads returns how many host parts have been taken.
func (f *Feed) Reads() int { return f.reads }

// Gotten returns the cached variable of the current word, looking it up
// on first use. The cache lasts until the next Fetch.
func (f *Feed) Gotten() (*core.Cell, bool) {
	if f.end {
		return nil, false
	}
	v := &f.fetched
	if !v.IsPlain() || v.Heart() != core.HeartWord || v.Sigil() != core.SigilNone {
		return nil, false
	}
	if f.gotten != nil && f.gottenFor == v.Symbol() {
		return f.gotten, true
	}
	ctx, i := core.Lookup(wordBinding(v, f.binding), v.Symbol())
	if ctx == nil {
		return nil, false
	}
	f.gotten = core.ContextVar(ctx, i)
	f.gottenFor = v.Symbol()
	return f.gotten, true
}

// Fetch advances to the next value.
func (f *Feed) Fetch() {
	f.releasePending()
	f.gotten, f.gottenFor = nil, nil
	f.inert = false
	if f.array != nil {
		cells := f.array.Cells()
		if f.index >= len(cells) {
			f.setEnd()
			return
		}
		f.fetched.Copy(&cells[f.index])
		f.index++
		return
	}
	for {
		if f.lexer != nil {
			if !f.lexer.AtEnd() {
				var c core.Cell
				f.in.scanOne(f, &c)
				f.fetched.Copy(&c)
				f.inert = false
				return
			}
			f.lexer = nil
		}
		if f.pos >= len(f.parts) {
			f.setEnd()
			return
		}
		part := f.parts[f.pos]
		f.pos++
		f.reads++
		if f.take(part) {
			return
		}
	}
}

// continueList reads the part after the current fragment for a list that
// is still open. A string part replaces the lexer; any other part is
// spliced into fetched. It reports false when no parts are left.
func (f *Feed) continueList() (spliced, more bool) {
	for f.pos < len(f.parts) {
		part := f.parts[f.pos]
		f.pos++
		f.reads++
		if f.take(part) {
			return true, true
		}
		if f.lexer != nil {
			return false, true
		}
	}
	return false, false
}

// take applies one host part. It returns false when the part produced no
// value, e.g. an empty fragment.
func (f *Feed) take(part any) bool {
	switch p := part.(type) {
	case string:
		f.lexer = scan.New([]byte(p), f.file, 1)
		return false
	case *Value:
		f.splice(p.Cell())
	case *core.Cell:
		f.splice(p)
	case *Instruction:
		f.instruction(p)
	case nil:
		core.Panic(core.ErrBadVariadic, "nil part in evaluation")
	default:
		core.Panic(core.ErrBadVariadic, "cannot evaluate a %T", part)
	}
	return true
}

func (f *Feed) splice(c *core.Cell) {
	f.fetched.Copy(c)
	f.inert = true
	if c.IsAntiform() && !c.IsAction() {
		if err := core.TrapCoerceToQuasiform(&f.fetched); err != nil {
			panic(err)
		}
	}
}

func (f *Feed) instruction(ins *Instruction) {
	ins.consume(f.in)
	switch ins.kind {
	case instrRelease:
		f.splice(ins.value.Cell())
		f.pending = append(f.pending, ins.value)
	case instrQuote:
		f.splice(ins.value.Cell())
		if err := core.Quote(&f.fetched, 1); err != nil {
			panic(err)
		}
	}
}

func (f *Feed) setEnd() {
	f.end = true
	f.fetched.Erase()
}

func (f *Feed) releasePending() {
	for len(f.pending) > 0 {
		v := f.pending[len(f.pending)-1]
		f.pending = f.pending[:len(f.pending)-1]
		f.in.Release(v)
	}
}

// Release ends the feed. Host parts not yet read are read now, so R()
// values are released and instructions freed even when evaluation
// stopped early.
func (f *Feed) Release() {
	if f.released {
		return
	}
	f.released = true
	f.releasePending()
	for f.pos < len(f.parts) {
		part := f.parts[f.pos]
		f.pos++
		f.reads++
		if ins, ok := part.(*Instruction); ok && ins.stub != nil {
			ins.consume(f.in)
			if ins.kind == instrRelease {
				f.in.Release(ins.value)
			}
		}
	}
	f.lexer = nil
	if f.array != nil && !f.array.Decayed() {
		f.array.ReleaseHold()
	}
	f.setEnd()
}

func (f *Feed) markRoots(m *core.Marker) {
	m.MarkCell(&f.fetched)
	if f.array != nil {
		m.MarkStub(f.array)
	}
	if f.binding != nil {
		m.MarkStub(f.binding)
	}
}

// wordBinding is the context a word resolves through: its own binding
// if it has one, else the binding of the code it appears in.
func wordBinding(w *core.Cell, fallback *core.Stub) *core.Stub {
	if b := w.Binding(); b != nil {
		return b
	}
	return fallback
}
