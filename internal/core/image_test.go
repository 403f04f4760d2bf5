package core

import "testing"

func TestImageRoundTrip(t *testing.T) {
	h := NewHeap(HeapConfig{})
	inner := h.MakeArray(2, FlexFlagManaged)
	inner.SetFileLine(Intern("img.r"), 3)
	var x, bin Cell
	InitWord(&x, Intern("x"))
	x.SetSigil(SigilPin)
	InitBinary(&bin, h.MakeBinary([]byte{1, 2}, FlexFlagManaged))
	for _, c := range []*Cell{&x, &bin} {
		if err := h.Append(inner, c); err != nil {
			t.Fatal(err)
		}
	}

	outer := h.MakeArray(4, FlexFlagManaged)
	outer.SetFileLine(Intern("img.r"), 1)
	var n, txt, quasi, blk Cell
	InitInteger(&n, -7)
	InitText(&txt, h.MakeString("hé", FlexFlagManaged))
	txt.SetFlag(CellFlagNewlineBefore)
	InitWord(&quasi, Intern("okay"))
	if err := TrapCoerceToQuasiform(&quasi); err != nil {
		t.Fatal(err)
	}
	InitGroup(&blk, inner)
	if err := Quote(&blk, 1); err != nil {
		t.Fatal(err)
	}
	for _, c := range []*Cell{&n, &txt, &quasi, &blk} {
		if err := h.Append(outer, c); err != nil {
			t.Fatal(err)
		}
	}

	img, err := ImageOf(outer)
	if err != nil {
		t.Fatal(err)
	}
	back, err := NewHeap(HeapConfig{}).FromImage(img)
	if err != nil {
		t.Fatal(err)
	}
	var a, b Cell
	InitBlock(&a, outer)
	InitBlock(&b, back)
	if Mold(&a) != Mold(&b) {
		t.Fatalf("round trip: %s != %s", Mold(&b), Mold(&a))
	}
	if Spelling(back.File()) != "img.r" || back.Cells()[3].Node().Line() != 3 {
		t.Errorf("file/line lost")
	}
	for i := range outer.Cells() {
		if outer.Cells()[i].Header() != back.Cells()[i].Header() {
			t.Errorf("cell %d header %v != %v", i, back.Cells()[i].Header(), outer.Cells()[i].Header())
		}
	}
}

func TestImageRefusesRuntimeValues(t *testing.T) {
	h := NewHeap(HeapConfig{})
	arr := h.MakeArray(1, FlexFlagManaged)
	var obj Cell
	InitObject(&obj, h.MakeContext(HeartObject, 0, nil, FlexFlagManaged))
	if err := h.Append(arr, &obj); err != nil {
		t.Fatal(err)
	}
	if _, err := ImageOf(arr); err == nil {
		t.Fatal("expected error imaging an object")
	}
	bad := &ArrayImage{Cells: []CellImage{{Header: [4]byte{0, byte(HeartWord), byte(LiftNoquote), 0}}}}
	if _, err := h.FromImage(bad); err == nil {
		t.Fatal("expected error for a word without spelling")
	}
}
