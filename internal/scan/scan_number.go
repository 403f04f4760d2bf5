package scan

import (
	"errors"
	"strconv"

	"ren/internal/core"
)

// scanNumber reads 12, -3, +4, 1.5, .5, 1e3 or 2.5E-2. Anything that runs
// into a non-delimiter afterwards is a bad number, so 12ab is not a word.
func (lx *Lexer) scanNumber(tok *Token) error {
	start := lx.off
	if b := lx.peek(); b == '+' || b == '-' {
		lx.off++
	}
	decimal := false
	for isDigit(lx.peek()) {
		lx.off++
	}
	if lx.peek() == '.' {
		decimal = true
		lx.off++
		for isDigit(lx.peek()) {
			lx.off++
		}
	}
	if b := lx.peek(); b == 'e' || b == 'E' {
		decimal = true
		lx.off++
		if b := lx.peek(); b == '+' || b == '-' {
			lx.off++
		}
		if !isDigit(lx.peek()) {
			return lx.badNumber(start, "expected digit after exponent")
		}
		for isDigit(lx.peek()) {
			lx.off++
		}
	}
	if !lx.atDelimiter() {
		for !lx.atDelimiter() {
			lx.advanceRune()
		}
		return lx.badNumber(start, "invalid number")
	}

	text := string(lx.src[start:lx.off])
	if decimal {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return lx.badNumber(start, "invalid decimal")
		}
		tok.Kind = Decimal
		tok.Float = f
		return nil
	}
	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return lx.badNumber(start, "integer out of range")
		}
		return lx.badNumber(start, "invalid integer")
	}
	tok.Kind = Integer
	tok.Int = i
	return nil
}

func (lx *Lexer) badNumber(start int, msg string) error {
	return lx.errorf(core.ErrScanBadNumber, start, "%s: %s", msg, string(lx.src[start:lx.off]))
}
