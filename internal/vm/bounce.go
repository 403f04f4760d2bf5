package vm

// Bounce is what an executor returns to the trampoline.
type Bounce uint8

const (
	// BounceOut: the result is in the level's out cell.
	BounceOut Bounce = iota
	// BounceContinue: call the top level next. The executor either pushed
	// a sub-level or wants to be called again.
	BounceContinue
	// BounceDelegate: the executor pushed a sub-level writing to the same
	// out and is finished once that sub-level is.
	BounceDelegate
	// BounceThrown: a throw or failure is in flight; unwind.
	BounceThrown
)

func (b Bounce) String() string {
	switch b {
	case BounceOut:
		return "out"
	case BounceContinue:
		return "continue"
	case BounceDelegate:
		return "delegate"
	case BounceThrown:
		return "thrown"
	}
	return "bounce?"
}
