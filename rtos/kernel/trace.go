package kernel

// TraceKind classifies scheduler trace events.
type TraceKind uint8

const (
	TraceTick TraceKind = iota
	TraceDispatch
	TracePreempt
	TraceYield
	TraceBlock
	TraceWake
	TraceIdle
)

func (k TraceKind) String() string {
	switch k {
	case TraceTick:
		return "tick"
	case TraceDispatch:
		return "dispatch"
	case TracePreempt:
		return "preempt"
	case TraceYield:
		return "yield"
	case TraceBlock:
		return "block"
	case TraceWake:
		return "wake"
	case TraceIdle:
		return "idle"
	default:
		return "unknown"
	}
}

// TraceEvent is one scheduler occurrence. Task is empty for events that
// have no subject task (tick, idle).
type TraceEvent struct {
	Kind TraceKind
	Task string
	Tick uint64
}

// TraceFunc receives scheduler trace events.
//
// It is invoked inside the scheduler's critical section and must neither
// block nor call back into the scheduler.
type TraceFunc func(TraceEvent)

// SetTrace installs a trace hook. Pass nil to disable. Intended for host
// debugging and tests; off by default.
func (s *Sched) SetTrace(fn TraceFunc) {
	s.cs.enter()
	s.trace = fn
	s.cs.exit()
}

func (s *Sched) traceEvent(kind TraceKind, t *Task) {
	if s.trace == nil {
		return
	}
	ev := TraceEvent{Kind: kind, Tick: s.tickCount}
	if t != nil {
		ev.Task = t.name
	}
	s.trace(ev)
}
