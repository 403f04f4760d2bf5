package core

import "testing"

func TestCoerceToAntiformAllowList(t *testing.T) {
	h := NewHeap(HeapConfig{})
	for heart := HeartBlank; heart < heartMax; heart++ {
		c := sampleCell(h, heart)
		err := TrapCoerceToAntiform(&c)
		if heart.IsIsotopic() {
			if err != nil {
				t.Errorf("%s: unexpected error %v", heart, err)
				continue
			}
			if !c.IsAntiform() {
				t.Errorf("%s: lift not antiform after coercion", heart)
			}
			continue
		}
		expectCode(t, err, ErrNonIsotopic)
		if c.IsAntiform() {
			t.Errorf("%s: failed coercion changed the lift", heart)
		}
	}
}

func TestCoerceToAntiformKeywords(t *testing.T) {
	for _, name := range []string{"null", "okay", "nan", "NULL"} {
		var c Cell
		InitWord(&c, Intern(name))
		if err := TrapCoerceToAntiform(&c); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
	for _, name := range []string{"foo", "true", "none"} {
		var c Cell
		InitWord(&c, Intern(name))
		expectCode(t, TrapCoerceToAntiform(&c), ErrIllegalKeyword)
	}

	var c Cell
	InitWord(&c, SymbolNull).SetSigil(SigilMeta)
	expectCode(t, TrapCoerceToAntiform(&c), ErrNonIsotopic)
}

func TestCoerceToAntiformRejectsQuotedAndStripsBinding(t *testing.T) {
	h := NewHeap(HeapConfig{})
	ctx := h.MakeContext(HeartObject, 0, nil, FlexFlagManaged)

	var c Cell
	InitList(&c, HeartBlock, h.MakeArray(0, FlexFlagManaged), 0, ctx)
	if err := Quote(&c, 1); err != nil {
		t.Fatal(err)
	}
	expectCode(t, TrapCoerceToAntiform(&c), ErrBadAntiform)

	if err := Unquote(&c, 1); err != nil {
		t.Fatal(err)
	}
	if err := TrapCoerceToAntiform(&c); err != nil {
		t.Fatalf("coerce block: %v", err)
	}
	if c.Binding() != nil {
		t.Fatalf("antiform kept its binding")
	}
	expectCode(t, TrapCoerceToAntiform(&c), ErrBadAntiform)
}

func TestTypeOfAntiforms(t *testing.T) {
	h := NewHeap(HeapConfig{})
	tests := []struct {
		heart Heart
		want  Type
	}{
		{HeartWord, TypeKeyword},
		{HeartBlock, TypePack},
		{HeartGroup, TypeSplice},
		{HeartComma, TypeGhost},
		{HeartBlank, TypeTrash},
		{HeartFrame, TypeAction},
		{HeartError, TypeRaised},
	}
	for _, tt := range tests {
		c := sampleCell(h, tt.heart)
		if got := TypeOf(&c); got != Type(tt.heart) {
			t.Errorf("plain %s reports %s", tt.heart, got)
		}
		if err := TrapCoerceToAntiform(&c); err != nil {
			t.Fatalf("%s: %v", tt.heart, err)
		}
		before := c
		if got := TypeOf(&c); got != tt.want {
			t.Errorf("antiform %s reports %s, want %s", tt.heart, got, tt.want)
		}
		if c != before {
			t.Errorf("TypeOf mutated the cell")
		}
	}

	c := sampleCell(h, HeartInteger)
	_ = Quote(&c, 2)
	if TypeOf(&c) != TypeQuoted {
		t.Errorf("quoted integer reports %s", TypeOf(&c))
	}

	var erased Cell
	expectPanic(t, ErrUnreadable, func() { TypeOf(&erased) })
}

func TestTestConditional(t *testing.T) {
	h := NewHeap(HeapConfig{})
	truthy := func(name string, c Cell) {
		t.Helper()
		ok, err := TrapTestConditional(&c)
		if err != nil || !ok {
			t.Errorf("%s: want truthy, got %v %v", name, ok, err)
		}
	}

	var c Cell
	InitNull(&c)
	if ok, err := TrapTestConditional(&c); err != nil || ok {
		t.Errorf("null: want falsey, got %v %v", ok, err)
	}
	InitOkay(&c)
	truthy("okay", c)
	truthy("zero", *InitInteger(&c, 0))
	truthy("blank", *InitBlank(&c))

	quasiNull := *InitWord(&c, SymbolNull)
	_ = TrapCoerceToQuasiform(&quasiNull)
	truthy("quasi null", quasiNull)

	splice := sampleCell(h, HeartGroup)
	_ = TrapCoerceToAntiform(&splice)
	truthy("splice", splice)

	InitWord(&c, SymbolNan)
	_ = TrapCoerceToAntiform(&c)
	_, err := TrapTestConditional(&c)
	expectCode(t, err, ErrBadConditional)

	InitTrash(&c)
	_, err = TrapTestConditional(&c)
	expectCode(t, err, ErrNoValue)

	InitGhost(&c)
	_, err = TrapTestConditional(&c)
	expectCode(t, err, ErrUnstableConditional)
}

func liftedInto(t *testing.T, h *Heap, arr *Stub, v Cell) {
	t.Helper()
	if err := LiftCell(&v); err != nil {
		t.Fatalf("lift: %v", err)
	}
	if err := h.Append(arr, &v); err != nil {
		t.Fatalf("append: %v", err)
	}
}

func TestDecayIfUnstable(t *testing.T) {
	h := NewHeap(HeapConfig{})

	t.Run("stable unchanged", func(t *testing.T) {
		var c Cell
		InitInteger(&c, 5)
		before := c
		if err := DecayIfUnstable(&c); err != nil || c != before {
			t.Fatalf("stable value changed: %v", err)
		}
	})

	t.Run("pack of plain lifted values", func(t *testing.T) {
		arr := h.MakeArray(2, FlexFlagManaged)
		var one, null Cell
		liftedInto(t, h, arr, *InitInteger(&one, 1))
		liftedInto(t, h, arr, *InitNull(&null))
		var c Cell
		InitPack(&c, arr)
		if err := DecayIfUnstable(&c); err != nil {
			t.Fatalf("decay: %v", err)
		}
		if !c.Is(HeartInteger) || c.Int64() != 1 {
			t.Fatalf("expected 1, got %s", Mold(&c))
		}
	})

	t.Run("lifted error in secondary slot", func(t *testing.T) {
		arr := h.MakeArray(2, FlexFlagManaged)
		var one, raised Cell
		liftedInto(t, h, arr, *InitInteger(&one, 1))
		liftedInto(t, h, arr, *InitRaised(&raised, h.MakeErrorStub(NewError(ErrUser, "hidden"))))
		var c Cell
		InitPack(&c, arr)
		expectCode(t, DecayIfUnstable(&c), ErrUndecayable)
	})

	t.Run("empty pack", func(t *testing.T) {
		var c Cell
		InitPack(&c, h.MakeArray(0, FlexFlagManaged))
		expectCode(t, DecayIfUnstable(&c), ErrUndecayable)
	})

	t.Run("nested pack", func(t *testing.T) {
		inner := h.MakeArray(1, FlexFlagManaged)
		var two Cell
		liftedInto(t, h, inner, *InitInteger(&two, 2))
		var innerPack Cell
		InitPack(&innerPack, inner)
		outer := h.MakeArray(1, FlexFlagManaged)
		liftedInto(t, h, outer, innerPack)
		var c Cell
		InitPack(&c, outer)
		if err := DecayIfUnstable(&c); err != nil {
			t.Fatalf("decay: %v", err)
		}
		if c.Int64() != 2 {
			t.Fatalf("expected 2, got %s", Mold(&c))
		}
	})

	t.Run("raised and ghost", func(t *testing.T) {
		var c Cell
		InitRaised(&c, h.MakeErrorStub(NewError(ErrZeroDivide, "x")))
		expectCode(t, DecayIfUnstable(&c), ErrZeroDivide)
		InitGhost(&c)
		expectCode(t, DecayIfUnstable(&c), ErrNoValue)
	})
}
