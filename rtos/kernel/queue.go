package kernel

// Queue is a fixed-capacity FIFO message queue. The ring is allocated once
// at construction and never grows; a full queue exerts backpressure by
// blocking senders (or timing them out), never by overwriting.
type Queue[T any] struct {
	s *Sched

	slots []T
	head  int
	tail  int
	count int

	sendWait waitList
	recvWait waitList
}

// NewQueue creates a queue holding up to capacity elements.
func NewQueue[T any](s *Sched, capacity int) *Queue[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue[T]{s: s, slots: make([]T, capacity)}
}

// Send copies item into the queue in FIFO order, blocking up to timeout
// while the queue is full. NoWait polls; Forever waits indefinitely.
func (q *Queue[T]) Send(ctx *Context, item T, timeout Ticks) error {
	s := q.s
	t := ctx.t
	s.cs.enter()
	dlSet := false
	var hasDL bool
	var dl uint64
	for q.count == len(q.slots) {
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
		if err := s.waitOn(t, &q.sendWait, hasDL, dl); err != nil {
			s.cs.exit()
			return err
		}
	}
	q.slots[q.tail] = item
	q.tail = (q.tail + 1) % len(q.slots)
	q.count++
	s.wakeOne(&q.recvWait)
	s.preemptCurrent(t)
	s.cs.exit()
	return nil
}

// Receive returns the oldest item, blocking up to timeout while the queue
// is empty.
func (q *Queue[T]) Receive(ctx *Context, timeout Ticks) (T, error) {
	s := q.s
	t := ctx.t
	var zero T
	s.cs.enter()
	dlSet := false
	var hasDL bool
	var dl uint64
	for q.count == 0 {
		if timeout == NoWait {
			s.cs.exit()
			return zero, ErrTimeout
		}
		if !dlSet {
			hasDL, dl = s.deadline(timeout)
			dlSet = true
		}
		if hasDL && dl <= s.tickCount {
			s.cs.exit()
			return zero, ErrTimeout
		}
		if err := s.waitOn(t, &q.recvWait, hasDL, dl); err != nil {
			s.cs.exit()
			return zero, err
		}
	}
	item := q.slots[q.head]
	q.slots[q.head] = zero
	q.head = (q.head + 1) % len(q.slots)
	q.count--
	s.wakeOne(&q.sendWait)
	s.preemptCurrent(t)
	s.cs.exit()
	return item, nil
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.s.cs.enter()
	n := q.count
	q.s.cs.exit()
	return n
}

// Cap returns the fixed capacity.
func (q *Queue[T]) Cap() int { return len(q.slots) }
