package kernel

import "errors"

var (
	// ErrTimeout reports that a blocking operation exceeded its wait budget.
	ErrTimeout = errors.New("kernel: timeout")

	// ErrOwnerMismatch reports an unlock of a mutex by a non-owner task.
	ErrOwnerMismatch = errors.New("kernel: owner mismatch")

	// ErrInvalidState reports a violated scheduler invariant. It is fatal
	// by default; see SetFatalHandler.
	ErrInvalidState = errors.New("kernel: invalid state")

	// ErrNotInitialized reports Start before Initialize.
	ErrNotInitialized = errors.New("kernel: scheduler not initialized")

	// ErrAlreadyStarted reports a second Start on a running scheduler.
	ErrAlreadyStarted = errors.New("kernel: scheduler already started")
)

// Ticks is a duration expressed in 1 ms scheduler ticks.
type Ticks uint32

const (
	// NoWait makes a blocking operation a non-blocking poll.
	NoWait Ticks = 0

	// Forever makes a blocking operation wait indefinitely.
	Forever Ticks = ^Ticks(0)
)
