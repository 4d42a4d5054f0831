package kernel

// Semaphore is a counting semaphore. A binary semaphore is the max-1
// special case.
type Semaphore struct {
	s       *Sched
	count   uint32
	max     uint32
	waiters waitList
}

// NewSemaphore creates a counting semaphore with the given initial count
// and maximum. The maximum is at least 1; the initial count is clamped.
func NewSemaphore(s *Sched, initial, max uint32) *Semaphore {
	if max == 0 {
		max = 1
	}
	if initial > max {
		initial = max
	}
	return &Semaphore{s: s, count: initial, max: max}
}

// NewBinarySemaphore creates a semaphore with max count 1.
func NewBinarySemaphore(s *Sched, available bool) *Semaphore {
	initial := uint32(0)
	if available {
		initial = 1
	}
	return NewSemaphore(s, initial, 1)
}

// Take decrements the count, blocking up to timeout while it is zero.
func (sem *Semaphore) Take(ctx *Context, timeout Ticks) error {
	s := sem.s
	t := ctx.t
	s.cs.enter()
	dlSet := false
	var hasDL bool
	var dl uint64
	for sem.count == 0 {
		if timeout == NoWait {
			s.cs.exit()
			return ErrTimeout
		}
		if !dlSet {
			hasDL, dl = s.deadline(timeout)
			dlSet = true
		}
		if hasDL && dl <= s.tickCount {
			s.cs.exit()
			return ErrTimeout
		}
		if err := s.waitOn(t, &sem.waiters, hasDL, dl); err != nil {
			s.cs.exit()
			return err
		}
	}
	sem.count--
	s.cs.exit()
	return nil
}

// Give increments the count, bounded by the maximum, and wakes the
// highest-priority waiting task, if any.
func (sem *Semaphore) Give(ctx *Context) {
	s := sem.s
	s.cs.enter()
	if sem.count < sem.max {
		sem.count++
	}
	s.wakeOne(&sem.waiters)
	s.preemptCurrent(ctx.t)
	s.cs.exit()
}

// Count returns the current count.
func (sem *Semaphore) Count() uint32 {
	sem.s.cs.enter()
	v := sem.count
	sem.s.cs.exit()
	return v
}
