package hal

// ManualClock is a hand-stepped TickSource for host tests and simulations.
//
// It is not safe for concurrent stepping; tests drive it from one goroutine.
type ManualClock struct {
	ch  chan uint64
	seq uint64
	us  uint64
}

// NewManualClock creates a clock at tick zero.
func NewManualClock() *ManualClock {
	return &ManualClock{ch: make(chan uint64, 1024)}
}

func (c *ManualClock) PeriodMicros() uint32 { return TickPeriodMicros }

func (c *ManualClock) Ticks() <-chan uint64 { return c.ch }

func (c *ManualClock) Micros() uint64 { return c.us }

// Step emits n ticks and advances the microsecond counter accordingly.
func (c *ManualClock) Step(n int) {
	for i := 0; i < n; i++ {
		c.seq++
		c.us += TickPeriodMicros
		select {
		case c.ch <- c.seq:
		default:
		}
	}
}
