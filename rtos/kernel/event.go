package kernel

// EventFlags is a 32-bit flag word tasks can wait on, for any or all bits
// of a submask.
type EventFlags struct {
	s       *Sched
	bits    uint32
	waiters waitList
}

// NewEventFlags creates a flag word with all bits clear.
func NewEventFlags(s *Sched) *EventFlags {
	return &EventFlags{s: s}
}

// Set ORs mask into the flag word and wakes every waiter whose condition
// now holds, in wake order (highest priority first). Waiters that asked
// for clear-on-exit consume their satisfied bits here, atomically with the
// wake, so two waiters cannot claim the same bit.
func (e *EventFlags) Set(ctx *Context, mask uint32) {
	s := e.s
	s.cs.enter()
	e.bits |= mask

	var woken [maxTasks]*Task
	n := 0
	for i := 0; i < e.waiters.n; i++ {
		t := e.waiters.tasks[i]
		sat, got := e.satisfied(t)
		if !sat {
			continue
		}
		t.evGot = got
		if t.evClear {
			e.bits &^= got
		}
		woken[n] = t
		n++
	}
	for i := 0; i < n; i++ {
		t := woken[i]
		e.waiters.remove(t)
		t.waitingOn = nil
		t.waitErr = nil
		s.removeSleeper(t)
		s.readyTask(t)
	}
	s.preemptCurrent(ctx.t)
	s.cs.exit()
}

// WaitAny blocks until any bit of mask is set or timeout elapses. The
// returned word reports the requested bits actually observed set, which on
// ErrTimeout distinguishes partial progress from none.
func (e *EventFlags) WaitAny(ctx *Context, mask uint32, timeout Ticks, clearOnExit bool) (uint32, error) {
	return e.wait(ctx, mask, false, timeout, clearOnExit)
}

// WaitAll blocks until every bit of mask is set or timeout elapses.
func (e *EventFlags) WaitAll(ctx *Context, mask uint32, timeout Ticks, clearOnExit bool) (uint32, error) {
	return e.wait(ctx, mask, true, timeout, clearOnExit)
}

func (e *EventFlags) wait(ctx *Context, mask uint32, all bool, timeout Ticks, clear bool) (uint32, error) {
	s := e.s
	t := ctx.t
	s.cs.enter()
	t.evMask = mask
	t.evAll = all
	t.evClear = clear

	if sat, got := e.satisfied(t); sat {
		if clear {
			e.bits &^= got
		}
		s.cs.exit()
		return got, nil
	}
	if timeout == NoWait {
		obs := e.bits & mask
		s.cs.exit()
		return obs, ErrTimeout
	}

	hasDL, dl := s.deadline(timeout)
	if err := s.waitOn(t, &e.waiters, hasDL, dl); err != nil {
		obs := e.bits & mask
		s.cs.exit()
		return obs, err
	}
	got := t.evGot
	s.cs.exit()
	return got, nil
}

func (e *EventFlags) satisfied(t *Task) (bool, uint32) {
	obs := e.bits & t.evMask
	if t.evAll {
		if obs == t.evMask {
			return true, t.evMask
		}
		return false, 0
	}
	if obs != 0 {
		return true, obs
	}
	return false, 0
}

// Bits returns the current flag word.
func (e *EventFlags) Bits() uint32 {
	e.s.cs.enter()
	v := e.bits
	e.s.cs.exit()
	return v
}
