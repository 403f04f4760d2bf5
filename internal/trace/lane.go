package trace

// laneTracer stamps events with the script they belong to.
type laneTracer struct {
	Tracer
	lane string
}

// WithLane labels every event emitted through the returned tracer with
// lane. Batch runs use the script name so interleaved events from
// concurrent interpreters can be told apart. Disabled tracers come back
// unchanged.
func WithLane(t Tracer, lane string) Tracer {
	if t == nil || !t.Enabled() || lane == "" {
		return t
	}
	return laneTracer{Tracer: t, lane: lane}
}

func (t laneTracer) Emit(ev *Event) {
	if ev != nil && ev.Lane == "" {
		ev.Lane = t.lane
	}
	t.Tracer.Emit(ev)
}
