package core

import "testing"

func TestRecycleKeepsDataStackReachable(t *testing.T) {
	h := NewHeap(HeapConfig{})
	ds := NewDataStack(h, 0)

	mark := ds.Index()
	str := h.MakeString("kept", FlexFlagManaged)
	InitText(ds.Push(), str)

	st := h.Recycle()
	if str.Decayed() {
		t.Fatalf("string referenced from the data stack was swept")
	}
	if st.Marked == 0 {
		t.Fatalf("expected marked stubs")
	}

	ds.Drop()
	if ds.Index() != mark {
		t.Fatalf("data stack not back at mark")
	}
	st = h.Recycle()
	if !str.Decayed() {
		t.Fatalf("unreferenced string survived")
	}
	if st.Swept == 0 {
		t.Fatalf("expected swept stubs")
	}
}

func TestRecycleMarksNestedArrays(t *testing.T) {
	h := NewHeap(HeapConfig{})
	ds := NewDataStack(h, 0)

	// a chain much deeper than any sane recursion limit
	var inner *Stub
	for range 10000 {
		arr := h.MakeArray(1, FlexFlagManaged)
		if inner != nil {
			var c Cell
			InitBlock(&c, inner)
			if err := h.Append(arr, &c); err != nil {
				t.Fatal(err)
			}
		}
		inner = arr
	}
	InitBlock(ds.Push(), inner)
	h.Recycle()
	if got := h.Stats().Managed; got != 10000 {
		t.Fatalf("expected 10000 managed stubs to survive, got %d", got)
	}
	ds.Drop()
	h.Recycle()
	if got := h.Stats().Managed; got != 0 {
		t.Fatalf("expected all stubs swept, got %d", got)
	}
}

func TestRecycleNeverSweepsManuals(t *testing.T) {
	h := NewHeap(HeapConfig{})
	manual := h.MakeArray(0, 0)
	h.Recycle()
	if manual.Decayed() {
		t.Fatalf("manual stub swept")
	}
	h.Free(manual)
}

func TestRecycleKeepsWhatManualsHold(t *testing.T) {
	h := NewHeap(HeapConfig{})
	manual := h.MakeArray(4, 0)
	str := h.MakeString("held", FlexFlagManaged)
	var c Cell
	InitText(&c, str)
	if err := h.Append(manual, &c); err != nil {
		t.Fatal(err)
	}

	h.Recycle()
	if manual.Decayed() || str.Decayed() {
		t.Fatalf("manual decayed=%v, string it holds decayed=%v", manual.Decayed(), str.Decayed())
	}

	h.Free(manual)
	h.Recycle()
	if !str.Decayed() {
		t.Fatalf("string survived after its only holder was freed")
	}
}

func TestRecycleRedirectsStaleReferences(t *testing.T) {
	h := NewHeap(HeapConfig{})
	ds := NewDataStack(h, 0)

	arr := h.MakeArray(0, 0)
	c := ds.Push()
	InitBlock(c, arr)
	h.Free(arr)

	h.Recycle()
	if c.Node() != DecayedStub() {
		t.Fatalf("stale reference not redirected to the decayed stub")
	}
	expectPanic(t, ErrSeriesDecayed, func() { c.ListAt() })
	ds.Drop()
}

func TestRecycleDeferredWhileDisabled(t *testing.T) {
	h := NewHeap(HeapConfig{Ballast: -1})
	str := h.MakeString("x", FlexFlagManaged)

	h.DisableGC()
	if st := h.Recycle(); !st.Deferred {
		t.Fatalf("recycle ran while disabled")
	}
	if str.Decayed() {
		t.Fatalf("stub swept while disabled")
	}
	if h.WantsRecycle() {
		t.Fatalf("request must wait until enabled")
	}
	h.EnableGC()
	if !h.WantsRecycle() {
		t.Fatalf("deferred recycle request was lost")
	}
	h.Recycle()
	if !str.Decayed() {
		t.Fatalf("stub survived the deferred recycle")
	}
}

func TestRecycleRunsHandleCleanup(t *testing.T) {
	h := NewHeap(HeapConfig{})
	released := 0
	h.MakeHandle("fd", func(v any) {
		if v.(string) == "fd" {
			released++
		}
	})
	h.Recycle()
	if released != 1 {
		t.Fatalf("cleanup ran %d times", released)
	}
}

type rootList struct{ cells []Cell }

func (r *rootList) MarkRoots(m *Marker) {
	for i := range r.cells {
		m.MarkCell(&r.cells[i])
	}
}

func TestRootMarkersAndGuards(t *testing.T) {
	h := NewHeap(HeapConfig{})
	roots := &rootList{cells: make([]Cell, 1)}
	h.AddRootMarker(roots)

	viaMarker := h.MakeArray(0, FlexFlagManaged)
	InitBlock(&roots.cells[0], viaMarker)
	viaGuard := h.MakeArray(0, FlexFlagManaged)
	h.PushGuard(viaGuard)
	viaRoot := h.MakeArray(0, FlexFlagManaged)
	h.MakeRoot(viaRoot)

	h.Recycle()
	if viaMarker.Decayed() || viaGuard.Decayed() || viaRoot.Decayed() {
		t.Fatalf("rooted stub swept")
	}

	h.RemoveRootMarker(roots)
	h.DropGuard(viaGuard)
	h.Unroot(viaRoot)
	h.Recycle()
	if !viaMarker.Decayed() || !viaGuard.Decayed() || !viaRoot.Decayed() {
		t.Fatalf("unrooted stub survived")
	}
}

func TestGuardedCell(t *testing.T) {
	h := NewHeap(HeapConfig{})
	var c Cell
	InitText(&c, h.MakeString("guarded", FlexFlagManaged))
	h.PushGuardCell(&c)

	var other Cell
	expectPanic(t, ErrGuardMismatch, func() { h.DropGuardCell(&other) })

	h.Recycle()
	if c.Node().Decayed() {
		t.Fatalf("string behind a guarded cell was swept")
	}
	h.DropGuardCell(&c)
	h.Recycle()
	if !c.Node().Decayed() {
		t.Fatalf("string survived after its guard was dropped")
	}
}

func TestRecycleFollowsContexts(t *testing.T) {
	h := NewHeap(HeapConfig{})
	parent := h.MakeContext(HeartObject, 1, nil, FlexFlagManaged)
	child := h.MakeContext(HeartObject, 1, parent, FlexFlagManaged)
	v, err := h.ContextAppend(child, Intern("s"))
	if err != nil {
		t.Fatal(err)
	}
	str := h.MakeString("in a variable", FlexFlagManaged)
	InitText(v, str)

	h.PushGuard(child)
	h.Recycle()
	if parent.Decayed() || str.Decayed() || ContextKeylist(child).Decayed() {
		t.Fatalf("context parts swept while the child is guarded")
	}
	h.DropGuard(child)
}
