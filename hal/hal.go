package hal

import "errors"

// Logger writes newline-delimited log lines.
//
// The kernel only uses it as a fatal-error sink; the rest of the logging
// subsystem lives outside the core.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// TickPeriodMicros is the only tick period the scheduler accepts.
const TickPeriodMicros = 1000

// ErrBadTickPeriod reports a tick source that does not run at 1 ms.
var ErrBadTickPeriod = errors.New("hal: tick source period is not 1ms")

// TickSource is a periodic hardware timer.
//
// One value is delivered on Ticks for every timer interrupt, and the
// scheduler must observe exactly one Tick call per delivered value.
// PeriodMicros must report TickPeriodMicros or the source is rejected
// when it is wired to a scheduler.
type TickSource interface {
	PeriodMicros() uint32
	Ticks() <-chan uint64
	Micros() uint64
}
