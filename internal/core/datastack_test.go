package core

import "testing"

func TestDataStackBalance(t *testing.T) {
	h := NewHeap(HeapConfig{})
	ds := NewDataStack(h, 0)

	ops := []struct {
		push int
		drop int
		want int
	}{
		{push: 3, want: 3},
		{drop: 1, want: 2},
		{push: 600, want: 602},
		{drop: 300, want: 302},
	}
	for i, op := range ops {
		for range op.push {
			InitInteger(ds.Push(), int64(ds.Index()))
		}
		for range op.drop {
			ds.Drop()
		}
		if ds.Index() != op.want {
			t.Fatalf("step %d: index %d, want %d", i, ds.Index(), op.want)
		}
	}
	for i := 1; i <= ds.Index(); i++ {
		if got := ds.At(i).Int64(); got != int64(i) {
			t.Fatalf("cell %d holds %d", i, got)
		}
	}

	top := ds.Index()
	expectCode(t, ds.DropTo(top+1), ErrBadMark)
	if ds.Index() != top {
		t.Fatalf("rejected DropTo changed the stack")
	}
	if err := ds.DropTo(0); err != nil {
		t.Fatal(err)
	}
	expectPanic(t, ErrBadMark, func() { ds.Drop() })
}

func TestDataStackPointersAreStable(t *testing.T) {
	h := NewHeap(HeapConfig{})
	ds := NewDataStack(h, 0)
	first := ds.Push()
	InitInteger(first, 99)
	for range 3 * dataStackChunk {
		InitBlank(ds.Push())
	}
	if first != ds.At(1) || first.Int64() != 99 {
		t.Fatalf("pushed cell moved when the stack grew")
	}
}

func TestDataStackLimit(t *testing.T) {
	h := NewHeap(HeapConfig{})
	ds := NewDataStack(h, 2)
	ds.Push()
	ds.Push()
	expectPanic(t, ErrStackOverflow, func() { ds.Push() })
}

func TestPopStackValues(t *testing.T) {
	h := NewHeap(HeapConfig{})
	ds := NewDataStack(h, 0)
	InitInteger(ds.Push(), 0)
	mark := ds.Index()
	for i := 1; i <= 3; i++ {
		InitInteger(ds.Push(), int64(i))
	}

	file := Intern("test.r")
	arr, err := ds.PopStackValues(mark, FlavorArray, 0, file, 7)
	if err != nil {
		t.Fatal(err)
	}
	if ds.Index() != mark {
		t.Fatalf("pop left index at %d", ds.Index())
	}
	if !arr.Managed() || arr.Len() != 3 || arr.At(2).Int64() != 3 {
		t.Fatalf("unexpected array: managed=%v len=%d", arr.Managed(), arr.Len())
	}
	if arr.File() != file || arr.Line() != 7 {
		t.Fatalf("file/line not recorded")
	}

	InitNull(ds.Push())
	_, err = ds.PopStackValues(mark, FlavorArray, 0, nil, 0)
	expectCode(t, err, ErrBadAntiform)
	ds.Drop()
}
