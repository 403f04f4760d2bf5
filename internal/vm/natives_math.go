package vm

import (
	"math"
	"strings"

	"ren/internal/core"
)

type intOp func(a, b int64) (int64, bool)
type floatOp func(a, b float64) float64

// arith applies an operation to two numbers. Two integers give an integer
// unless it overflows; anything with a decimal gives a decimal.
func arith(L *Level, name string, iop intOp, fop floatOp) Bounce {
	a, b := L.Arg(1), L.Arg(2)
	if a.Is(core.HeartInteger) && b.Is(core.HeartInteger) {
		r, ok := iop(a.Int64(), b.Int64())
		if !ok {
			core.Panic(core.ErrOverflow, "%s: integer overflow", name)
		}
		core.InitInteger(L.out, r)
		return BounceOut
	}
	r := fop(toFloat(a), toFloat(b))
	if math.IsInf(r, 0) || math.IsNaN(r) {
		core.Panic(core.ErrOverflow, "%s: decimal out of range", name)
	}
	core.InitDecimal(L.out, r)
	return BounceOut
}

func toFloat(c *core.Cell) float64 {
	if c.Is(core.HeartInteger) {
		return float64(c.Int64())
	}
	return c.Float64()
}

func nativeAdd(_ *Interp, L *Level) Bounce {
	return arith(L, "add", addChecked, func(a, b float64) float64 { return a + b })
}

func nativeSubtract(_ *Interp, L *Level) Bounce {
	return arith(L, "subtract", subChecked, func(a, b float64) float64 { return a - b })
}

func nativeMultiply(_ *Interp, L *Level) Bounce {
	return arith(L, "multiply", mulChecked, func(a, b float64) float64 { return a * b })
}

// nativeDivide gives an integer when the division is exact.
func nativeDivide(_ *Interp, L *Level) Bounce {
	a, b := L.Arg(1), L.Arg(2)
	if toFloat(b) == 0 {
		core.Panic(core.ErrZeroDivide, "divide by zero")
	}
	if a.Is(core.HeartInteger) && b.Is(core.HeartInteger) {
		x, y := a.Int64(), b.Int64()
		if x == math.MinInt64 && y == -1 {
			core.Panic(core.ErrOverflow, "divide: integer overflow")
		}
		if x%y == 0 {
			core.InitInteger(L.out, x/y)
			return BounceOut
		}
	}
	r := toFloat(a) / toFloat(b)
	if math.IsInf(r, 0) {
		core.Panic(core.ErrOverflow, "divide: decimal out of range")
	}
	core.InitDecimal(L.out, r)
	return BounceOut
}

// compare orders two numbers or two texts.
func compare(a, b *core.Cell) int {
	if a.Is(core.HeartText) && b.Is(core.HeartText) {
		return strings.Compare(a.Text(), b.Text())
	}
	if a.Is(core.HeartText) || b.Is(core.HeartText) {
		core.Panic(core.ErrExpectArg, "cannot compare %s with %s", core.TypeOf(a), core.TypeOf(b))
	}
	if a.Is(core.HeartInteger) && b.Is(core.HeartInteger) {
		x, y := a.Int64(), b.Int64()
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
	x, y := toFloat(a), toFloat(b)
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func nativeLesser(_ *Interp, L *Level) Bounce {
	core.InitLogic(L.out, compare(L.Arg(1), L.Arg(2)) < 0)
	return BounceOut
}

func nativeGreater(_ *Interp, L *Level) Bounce {
	core.InitLogic(L.out, compare(L.Arg(1), L.Arg(2)) > 0)
	return BounceOut
}

// nativeEqual compares numbers by value across integer and decimal, and
// everything else by type and molded form.
func nativeEqual(_ *Interp, L *Level) Bounce {
	a, b := L.Arg(1), L.Arg(2)
	core.InitLogic(L.out, equal(a, b))
	return BounceOut
}

func equal(a, b *core.Cell) bool {
	num := func(c *core.Cell) bool { return c.Is(core.HeartInteger) || c.Is(core.HeartDecimal) }
	if num(a) && num(b) {
		return compare(a, b) == 0
	}
	if core.TypeOf(a) != core.TypeOf(b) {
		return false
	}
	return core.Mold(a) == core.Mold(b)
}
