package kernel

import "sync"

// critical is the scheduler's critical section.
//
// On hardware this is an interrupt mask: every mutation of scheduler state
// happens with interrupts suppressed, and sections stay short and bounded
// because Tick runs in interrupt context. On the host port the mask is a
// mutex shared with the tick pump, which gives the same exclusion.
type critical struct {
	mu sync.Mutex
}

func (c *critical) enter() { c.mu.Lock() }

func (c *critical) exit() { c.mu.Unlock() }
