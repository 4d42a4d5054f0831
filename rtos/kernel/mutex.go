package kernel

// Mutex is a task mutex with priority inheritance: while a higher-priority
// task waits, the owner runs at the waiter's priority, which bounds the
// time a low-priority owner can hold up a high-priority task.
//
// Locking is recursive for the owner; the mutex releases when the depth
// returns to zero. A task may hold up to maxHeldMutexes mutexes and a Lock
// beyond that returns ErrInvalidState; effective
// priority is recomputed from all of them on every release, and inheritance
// propagates through owners that are themselves blocked on another mutex.
type Mutex struct {
	s       *Sched
	owner   *Task
	depth   uint16
	waiters waitList
}

// NewMutex creates an unowned mutex bound to s.
func NewMutex(s *Sched) *Mutex {
	return &Mutex{s: s}
}

// Lock acquires the mutex, blocking up to timeout if it is owned by
// another task. NoWait polls; Forever waits indefinitely.
func (m *Mutex) Lock(ctx *Context, timeout Ticks) error {
	s := m.s
	t := ctx.t
	s.cs.enter()
	if m.owner == t {
		m.depth++
		s.cs.exit()
		return nil
	}
	// Checked before acquiring or waiting so a granted mutex always fits
	// in the held table and inheritance sees every held mutex.
	if t.heldN >= maxHeldMutexes {
		s.cs.exit()
		return ErrInvalidState
	}
	if m.owner == nil {
		m.owner = t
		m.depth = 1
		t.addHeld(m)
		s.cs.exit()
		return nil
	}
	if timeout == NoWait {
		s.cs.exit()
		return ErrTimeout
	}

	hasDL, dl := s.deadline(timeout)
	m.raiseOwner(s, t.eff)
	t.blockedOn = m
	err := s.waitOn(t, &m.waiters, hasDL, dl)
	s.cs.exit()
	return err
}

// Unlock releases one level of ownership. Calling from a task that does
// not own the mutex returns ErrOwnerMismatch. On full release the
// highest-priority waiter, if any, is granted ownership, and the caller's
// effective priority reverts to what its remaining held mutexes justify.
func (m *Mutex) Unlock(ctx *Context) error {
	s := m.s
	t := ctx.t
	s.cs.enter()
	if m.owner != t {
		s.cs.exit()
		return ErrOwnerMismatch
	}
	if m.depth > 1 {
		m.depth--
		s.cs.exit()
		return nil
	}
	m.depth = 0
	t.removeHeld(m)

	next := m.waiters.pop()
	if next == nil {
		m.owner = nil
		s.refreshInheritance(t)
		s.cs.exit()
		return nil
	}
	next.waitingOn = nil
	next.waitErr = nil
	next.blockedOn = nil
	s.removeSleeper(next)
	m.owner = next
	m.depth = 1
	// Cannot fail: Lock rejects waiters with a full held table.
	next.addHeld(m)

	s.refreshInheritance(t)
	s.refreshInheritance(next)
	s.readyTask(next)
	s.preemptCurrent(t)
	s.cs.exit()
	return nil
}

// Owner returns the owning task, or nil.
func (m *Mutex) Owner() *Task {
	m.s.cs.enter()
	o := m.owner
	m.s.cs.exit()
	return o
}

// raiseOwner propagates a waiter's effective priority through the owner
// chain: if the owner is itself blocked on another mutex, that mutex's
// owner inherits too. Bounded at maxInheritHops.
func (m *Mutex) raiseOwner(s *Sched, prio Priority) {
	cur := m
	for hop := 0; hop < maxInheritHops && cur != nil; hop++ {
		o := cur.owner
		if o == nil || o.eff >= prio {
			return
		}
		s.setEffPriority(o, prio)
		cur = o.blockedOn
	}
}

// waiterLeft is the timeout hook: a waiter left the wait collection, so
// the owner's inherited priority may need to drop.
func (m *Mutex) waiterLeft(s *Sched) {
	if m.owner != nil {
		s.refreshInheritance(m.owner)
	}
}

// setEffPriority changes a task's effective priority and keeps the
// scheduler structures consistent: ready tasks move between priority
// levels, blocked tasks are re-sorted inside their wait collection.
func (s *Sched) setEffPriority(t *Task, p Priority) {
	if t.eff == p {
		return
	}
	old := t.eff
	t.eff = p
	switch t.state {
	case StateReady:
		if s.ready[old].remove(t) {
			s.ready[p].push(t)
		}
	case StateBlocked:
		if t.waitingOn != nil {
			t.waitingOn.reposition(t)
		}
	}
}

// refreshInheritance recomputes t's effective priority from its configured
// priority and the waiters of every mutex it still holds, propagating the
// change through the chain when t itself is blocked on a mutex.
func (s *Sched) refreshInheritance(t *Task) {
	for hop := 0; hop < maxInheritHops && t != nil; hop++ {
		p := t.prio
		for i := uint8(0); i < t.heldN; i++ {
			if hp, ok := t.held[i].waiters.highest(); ok && hp > p {
				p = hp
			}
		}
		if p == t.eff {
			return
		}
		s.setEffPriority(t, p)
		if t.blockedOn == nil {
			return
		}
		t = t.blockedOn.owner
	}
}
