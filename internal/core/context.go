package core

// A context is a varlist plus a keylist. Slot 0 of the varlist is the
// archetype cell (OBJECT! or FRAME! of the varlist itself); variables are
// 1-based. The varlist's Misc.Node is the parent context words fall back
// to, which forms the binding chain: function frame, user, lib.

type keyIndex map[SymID]int

// MakeContext allocates a context with room for capacity variables.
func (h *Heap) MakeContext(heart Heart, capacity int, parent *Stub, flags FlexFlags) *Stub {
	keylist := h.MakeFlex(FlavorKeylist, capacity, flags|FlexFlagManaged)
	keylist.obj = keyIndex{}
	return h.MakeVarlist(heart, keylist, parent, flags)
}

// MakeVarlist allocates a varlist over an existing keylist, with every
// variable set to trash. A keylist used by several varlists is marked
// shared and is copied before it is extended.
func (h *Heap) MakeVarlist(heart Heart, keylist *Stub, parent *Stub, flags FlexFlags) *Stub {
	n := len(keylist.nodes)
	varlist := h.MakeFlex(FlavorVarlist, n+1, flags)
	varlist.cells = varlist.cells[:n+1]
	switch heart {
	case HeartObject:
		InitObject(&varlist.cells[0], varlist)
	case HeartFrame:
		InitFrame(&varlist.cells[0], varlist, nil)
	default:
		Panic(ErrInternal, "%s is not a context heart", heart)
	}
	for i := 1; i <= n; i++ {
		InitTrash(&varlist.cells[i])
	}
	if keylist.obj != nil && varlistCountOf(keylist) > 0 {
		keylist.flags |= FlexFlagShared
	}
	keylist.Misc.Int++
	varlist.Link.Node = keylist
	varlist.Misc.Node = parent
	return varlist
}

func varlistCountOf(keylist *Stub) int64 { return keylist.Misc.Int }

// NewKeylist builds a keylist for the given symbols, e.g. an action's
// parameters. Duplicate symbols are an error.
func (h *Heap) NewKeylist(syms []*Stub) (*Stub, error) {
	keylist := h.MakeFlex(FlavorKeylist, len(syms), FlexFlagManaged)
	idx := keyIndex{}
	for i, sym := range syms {
		id := SymIDOf(sym)
		if _, dup := idx[id]; dup {
			return nil, NewError(ErrBadFuncSpec, "duplicate key %s", Spelling(sym))
		}
		idx[id] = i + 1
		keylist.nodes = append(keylist.nodes, sym)
	}
	keylist.obj = idx
	return keylist, nil
}

// ContextKeylist returns the keylist of a varlist.
func ContextKeylist(ctx *Stub) *Stub { return ctx.Link.Node }

// ContextParent returns the context a varlist falls back to.
func ContextParent(ctx *Stub) *Stub { return ctx.Misc.Node }

// SetContextParent replaces the fallback context.
func SetContextParent(ctx, parent *Stub) { ctx.Misc.Node = parent }

// ContextLen returns the number of variables.
func ContextLen(ctx *Stub) int {
	ctx.mustRead()
	return len(ctx.cells) - 1
}

// ContextKey returns the symbol of variable i (1-based).
func ContextKey(ctx *Stub, i int) *Stub {
	return ctx.Link.Node.nodes[i-1]
}

// ContextVar returns variable i (1-based).
func ContextVar(ctx *Stub, i int) *Cell {
	ctx.mustRead()
	if i < 1 || i >= len(ctx.cells) {
		Panic(ErrIndexOutOfBounds, "variable %d out of range", i)
	}
	return &ctx.cells[i]
}

// ContextArchetype returns the cell that stands for the whole context.
func ContextArchetype(ctx *Stub) *Cell { return &ctx.cells[0] }

// ContextFind returns the 1-based index of sym, or 0.
func ContextFind(ctx *Stub, sym *Stub) int {
	if ctx.Decayed() {
		return 0
	}
	keylist := ctx.Link.Node
	if idx, ok := keylist.obj.(keyIndex); ok {
		return idx[SymIDOf(sym)]
	}
	id := SymIDOf(sym)
	for i, k := range keylist.nodes {
		if SymIDOf(k) == id {
			return i + 1
		}
	}
	return 0
}

// ContextAppend adds a variable holding trash and returns it. An existing
// variable with the same symbol is returned as is.
func (h *Heap) ContextAppend(ctx *Stub, sym *Stub) (*Cell, error) {
	if i := ContextFind(ctx, sym); i > 0 {
		return ContextVar(ctx, i), nil
	}
	if err := CheckMutable(ctx); err != nil {
		return nil, err
	}
	keylist := ctx.Link.Node
	if keylist.flags&FlexFlagShared != 0 {
		copied, err := h.NewKeylist(keylist.nodes)
		if err != nil {
			return nil, err
		}
		keylist.Misc.Int--
		copied.Misc.Int = 1
		keylist = copied
		ctx.Link.Node = keylist
	}
	if err := h.ExpandFlexTail(keylist, 1); err != nil {
		return nil, err
	}
	keylist.nodes[len(keylist.nodes)-1] = sym
	if idx, ok := keylist.obj.(keyIndex); ok {
		idx[SymIDOf(sym)] = len(keylist.nodes)
	}
	if err := h.ExpandFlexTail(ctx, 1); err != nil {
		return nil, err
	}
	v := &ctx.cells[len(ctx.cells)-1]
	InitTrash(v)
	return v, nil
}

// ContextSet assigns variable i. Unstable antiforms cannot be stored.
func ContextSet(ctx *Stub, i int, v *Cell) error {
	slot := ContextVar(ctx, i)
	if slot.header.flags&CellFlagProtected != 0 {
		return NewError(ErrProtectedWord, "variable %s is protected", Spelling(ContextKey(ctx, i)))
	}
	if err := CheckMutable(ctx); err != nil {
		return err
	}
	if !v.IsStable() {
		return NewError(ErrBadAntiform, "cannot store %s in variable %s", TypeOf(v), Spelling(ContextKey(ctx, i)))
	}
	slot.Copy(v)
	return nil
}

// Lookup resolves sym through the binding chain starting at binding.
func Lookup(binding *Stub, sym *Stub) (ctx *Stub, index int) {
	for ctx = binding; ctx != nil; ctx = ctx.Misc.Node {
		if ctx.flavor != FlavorVarlist {
			continue
		}
		if i := ContextFind(ctx, sym); i > 0 {
			return ctx, i
		}
	}
	return nil, 0
}
