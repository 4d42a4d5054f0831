package kernel

const (
	// NumPriorities is the number of priority levels (0..7).
	NumPriorities = 8

	// PriorityIdle is the lowest priority; the idle level.
	PriorityIdle Priority = 0

	// PriorityMax is the highest priority.
	PriorityMax Priority = 7

	maxTasks       = 32
	maxHeldMutexes = 8
	maxInheritHops = 8
)

// Priority is a task priority, 0 = idle, 7 = highest.
type Priority uint8

// State is the scheduling state of a task.
type State uint8

const (
	StateReady State = iota
	StateRunning
	StateBlocked
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// TaskDesc describes one schedulable unit at build time.
type TaskDesc struct {
	Name      string
	Priority  Priority
	StackSize uint32
	Entry     func(*Context)
}

// Task is a task control block. All Task instances live inside a TaskSet
// for the lifetime of the program; none is ever freed.
type Task struct {
	name  string
	prio  Priority // configured priority
	eff   Priority // effective priority (may be inherited)
	stack uint32
	entry func(*Context)

	slot  uint8 // index into the TaskSet arena, used by the port
	state State

	// wakeTick is the absolute tick at which a sleeping task becomes
	// eligible again. Valid only while registered in the sleeper table.
	wakeTick uint64

	// waitingOn is the wait collection the task is parked in, if any.
	waitingOn *waitList
	waitErr   error

	// blockedOn is the mutex the task is blocked on, for inheritance
	// chaining and for timeout cleanup.
	blockedOn *Mutex

	held  [maxHeldMutexes]*Mutex
	heldN uint8

	// event-flags wait bookkeeping
	evMask  uint32
	evAll   bool
	evClear bool
	evGot   uint32
}

// Name returns the task's compile-time name.
func (t *Task) Name() string { return t.name }

// Priority returns the configured priority.
func (t *Task) Priority() Priority { return t.prio }

// EffectivePriority returns the currently effective priority, which may be
// raised above the configured one by priority inheritance.
func (t *Task) EffectivePriority() Priority { return t.eff }

// StackSize returns the task's static stack reservation in bytes.
func (t *Task) StackSize() uint32 { return t.stack }

// State returns the current scheduling state.
func (t *Task) State() State { return t.state }

func (t *Task) addHeld(m *Mutex) bool {
	if t.heldN >= maxHeldMutexes {
		return false
	}
	t.held[t.heldN] = m
	t.heldN++
	return true
}

func (t *Task) removeHeld(m *Mutex) {
	for i := uint8(0); i < t.heldN; i++ {
		if t.held[i] != m {
			continue
		}
		t.heldN--
		t.held[i] = t.held[t.heldN]
		t.held[t.heldN] = nil
		return
	}
}

// Context provides task-local access to scheduler operations. Every task
// entry function receives its own Context and must not share it.
type Context struct {
	s *Sched
	t *Task
}

// Task returns the task this context belongs to.
func (c *Context) Task() *Task { return c.t }

// TickCount returns the scheduler's current tick count.
func (c *Context) TickCount() uint64 { return c.s.TickCount() }

// Micros returns microseconds from the bound tick source.
func (c *Context) Micros() uint64 { return c.s.Micros() }

// Delay blocks the calling task for ms ticks; other tasks run meanwhile.
// Delay(0) is a bare reschedule point.
func (c *Context) Delay(ms uint32) { c.s.delay(c.t, ms) }

// DelayUntil blocks until the absolute tick value. Chaining
// next += interval; DelayUntil(next) gives jitter-free periodic execution.
// A tick value in the past returns immediately.
func (c *Context) DelayUntil(tick uint64) { c.s.delayUntil(c.t, tick) }

// Yield offers the CPU. The task stays ready and is re-queued behind
// equal-priority peers.
func (c *Context) Yield() { c.s.yield(c.t) }
