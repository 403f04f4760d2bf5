package core

// TrapCoerceToAntiform turns a plain or quasi cell into its antiform. It is
// the only way antiforms come to exist: the heart must have an antiform,
// words must be one of the keywords null, okay or nan, and bindings are
// dropped.
func TrapCoerceToAntiform(c *Cell) error {
	if c.IsErased() {
		return NewError(ErrUnreadable, "cannot coerce an erased cell")
	}
	if c.header.lift != LiftNoquote && c.header.lift != LiftQuasi {
		return NewError(ErrBadAntiform, "only plain and quasi values have antiforms, got %s", TypeOf(c))
	}
	h := c.Heart()
	if !h.IsIsotopic() || c.Sigil() != SigilNone {
		return NewError(ErrNonIsotopic, "%s has no antiform", h)
	}
	if h == HeartWord {
		switch SymIDOf(c.node) {
		case SymNull, SymOkay, SymNan:
		default:
			return NewError(ErrIllegalKeyword, "~%s~ is not a keyword", Spelling(c.node))
		}
	}
	if h.IsBindable() {
		c.extra = nil
	}
	c.header.lift = LiftAntiform
	return nil
}

// TrapCoerceToQuasiform turns a plain cell or an antiform into a quasiform.
// Any word may be quasi.
func TrapCoerceToQuasiform(c *Cell) error {
	if c.IsErased() {
		return NewError(ErrUnreadable, "cannot coerce an erased cell")
	}
	if c.header.lift != LiftNoquote && c.header.lift != LiftAntiform {
		return NewError(ErrBadAntiform, "cannot make a quasiform from %s", TypeOf(c))
	}
	h := c.Heart()
	if !h.IsIsotopic() || c.Sigil() != SigilNone {
		return NewError(ErrNonIsotopic, "%s has no quasiform", h)
	}
	c.header.lift = LiftQuasi
	return nil
}

// Quote adds n quote levels. Antiforms cannot be quoted; Lift them instead.
func Quote(c *Cell, n int) error {
	if c.IsErased() {
		return NewError(ErrUnreadable, "cannot quote an erased cell")
	}
	if c.IsAntiform() {
		return NewError(ErrBadAntiform, "antiforms cannot be quoted")
	}
	d := c.header.lift.Depth() + n
	if n < 0 || d > MaxQuoteDepth {
		return NewError(ErrQuoteDepth, "quote depth %d out of range", d)
	}
	c.header.lift = makeLift(d, c.header.lift.Quasi())
	return nil
}

// Unquote removes n quote levels.
func Unquote(c *Cell, n int) error {
	if c.IsErased() {
		return NewError(ErrUnreadable, "cannot unquote an erased cell")
	}
	d := c.header.lift.Depth()
	if c.IsAntiform() || n < 0 || n > d {
		return NewError(ErrBadUnquote, "cannot unquote %s %d time(s)", TypeOf(c), n)
	}
	c.header.lift = makeLift(d-n, c.header.lift.Quasi())
	return nil
}

// LiftCell makes any value storable: antiforms become quasiforms and
// everything else gains a quote level.
func LiftCell(c *Cell) error {
	if c.IsAntiform() {
		c.header.lift = LiftQuasi
		return nil
	}
	return Quote(c, 1)
}

// Unlift undoes LiftCell: quasiforms become antiforms, quoted values lose a
// level. Plain values were never lifted.
func Unlift(c *Cell) error {
	if c.IsErased() {
		return NewError(ErrUnreadable, "cannot unlift an erased cell")
	}
	switch {
	case c.header.lift == LiftQuasi:
		c.header.lift = LiftNoquote
		if err := TrapCoerceToAntiform(c); err != nil {
			c.header.lift = LiftQuasi
			return err
		}
		return nil
	case c.header.lift.Depth() > 0:
		return Unquote(c, 1)
	}
	return NewError(ErrBadUnquote, "%s is not lifted", TypeOf(c))
}

// TrapTestConditional reports the truth of a value. ~null~ is the only
// false value; ~okay~ is true; other keywords, trash and unstable antiforms
// cannot be tested. Every other value is true.
func TrapTestConditional(c *Cell) (bool, error) {
	if c.IsErased() {
		return false, NewError(ErrUnreadable, "cannot test an erased cell")
	}
	if !c.IsAntiform() {
		return true, nil
	}
	switch c.Heart() {
	case HeartWord:
		switch SymIDOf(c.node) {
		case SymNull:
			return false, nil
		case SymOkay:
			return true, nil
		}
		return false, NewError(ErrBadConditional, "~%s~ cannot be tested for truth", Spelling(c.node))
	case HeartBlank:
		return false, NewError(ErrNoValue, "trash cannot be tested for truth")
	case HeartBlock, HeartComma, HeartError:
		return false, NewError(ErrUnstableConditional, "%s cannot be tested for truth", TypeOf(c))
	}
	return true, nil
}

// DecayIfUnstable reduces a pack to its first value, turns a raised error
// into a returned error, and refuses ghosts. A pack decays only when
// nothing would be lost: it must not be empty and no slot after the first
// may hold a lifted unstable antiform.
func DecayIfUnstable(c *Cell) error {
	if c.IsErased() {
		return NewError(ErrUnreadable, "cannot decay an erased cell")
	}
	for c.IsAntiform() {
		switch c.Heart() {
		case HeartError:
			return c.ErrorOf()
		case HeartComma:
			return NewError(ErrNoValue, "ghost has no value to decay to")
		case HeartBlock:
			arr := c.node
			if arr.Decayed() {
				return NewError(ErrSeriesDecayed, "pack was freed")
			}
			items := arr.cells[c.Index():]
			if len(items) == 0 {
				return NewError(ErrUndecayable, "empty pack has no first value")
			}
			for i := 1; i < len(items); i++ {
				if isLiftedUnstable(&items[i]) {
					return NewError(ErrUndecayable, "pack slot %d holds %s", i+1, Mold(&items[i]))
				}
			}
			var first Cell
			first.Copy(&items[0])
			if err := Unlift(&first); err != nil {
				return err
			}
			*c = first
		default:
			return nil
		}
	}
	return nil
}

func isLiftedUnstable(c *Cell) bool {
	if c.header.lift != LiftQuasi {
		return false
	}
	switch c.Heart() {
	case HeartBlock, HeartComma, HeartError:
		return true
	}
	return false
}
