package core

import (
	"fmt"

	"fortio.org/safecast"
)

// Lift encodes antiform, plain, quasi and quoting depth in one byte:
// 2 + 2*depth + quasi for readable non-antiform cells.
type Lift uint8

const (
	LiftDual     Lift = 0 // only on erased cells
	LiftAntiform Lift = 1
	LiftNoquote  Lift = 2
	LiftQuasi    Lift = 3
)

// MaxQuoteDepth is the deepest quoting the lift byte can hold.
const MaxQuoteDepth = 126

// Depth returns the number of quote levels.
func (l Lift) Depth() int {
	if l < LiftNoquote {
		return 0
	}
	return int(l-LiftNoquote) / 2
}

// Quasi reports whether the innermost form is a quasiform.
func (l Lift) Quasi() bool {
	return l >= LiftNoquote && (l-LiftNoquote)%2 == 1
}

func (l Lift) String() string {
	switch l {
	case LiftDual:
		return "dual"
	case LiftAntiform:
		return "antiform"
	}
	if l.Quasi() {
		return fmt.Sprintf("quasi/%d", l.Depth())
	}
	return fmt.Sprintf("quoted/%d", l.Depth())
}

func makeLift(depth int, quasi bool) Lift {
	v := 2 + 2*depth
	if quasi {
		v++
	}
	b, err := safecast.Conv[uint8](v)
	if err != nil {
		panic(fmt.Errorf("lift overflow: %w", err))
	}
	return Lift(b)
}
