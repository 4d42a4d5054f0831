package kernel

import (
	"fmt"
	"sync"

	"ember/hal"
)

// Sched is the priority-preemptive scheduler. One instance normally exists
// for the lifetime of the device (see Default); independent instances can
// be constructed for host-side testing.
type Sched struct {
	cs       critical
	idleCond *sync.Cond

	port Port
	ts   *TaskSet
	src  hal.TickSource

	ready   [NumPriorities]taskFIFO
	running *Task

	// sleeping holds every task with a pending wake tick: plain delays
	// and timed waits alike.
	sleeping [maxTasks]*Task

	tickCount uint64

	// wake kicks the dispatch loop out of its idle wait.
	wake chan struct{}

	trace TraceFunc
	sink  hal.Logger
	fatal func(error)

	initialized bool
	started     bool
	stopping    bool
	idle        bool
}

// New creates an independent scheduler using the given context-switch port.
func New(port Port) *Sched {
	s := &Sched{
		port: port,
		wake: make(chan struct{}, 1),
	}
	s.idleCond = sync.NewCond(&s.cs.mu)
	return s
}

var (
	defaultOnce  sync.Once
	defaultSched *Sched
)

// Default returns the process-wide scheduler, creating it on first use.
func Default() *Sched {
	defaultOnce.Do(func() {
		defaultSched = New(NewGoPort())
	})
	return defaultSched
}

// Bind wires a tick source to the scheduler. A source with any period other
// than 1 ms is rejected; the delay arithmetic depends on it.
func (s *Sched) Bind(src hal.TickSource) error {
	if src.PeriodMicros() != hal.TickPeriodMicros {
		return fmt.Errorf("%w: got %dus", hal.ErrBadTickPeriod, src.PeriodMicros())
	}
	s.cs.enter()
	s.src = src
	s.cs.exit()
	return nil
}

// SetFatalSink installs the logger used when an internal invariant fails.
func (s *Sched) SetFatalSink(l hal.Logger) {
	s.cs.enter()
	s.sink = l
	s.cs.exit()
}

// SetFatalHandler overrides the default fatal behavior (log through the
// fatal sink, then halt). The handler must not call back into the scheduler.
func (s *Sched) SetFatalHandler(fn func(error)) {
	s.cs.enter()
	s.fatal = fn
	s.cs.exit()
}

// Initialize places every task of the set into the ready structure and
// prepares its execution context for first dispatch.
func (s *Sched) Initialize(ts *TaskSet) error {
	s.cs.enter()
	defer s.cs.exit()
	if ts == nil || s.initialized {
		return ErrInvalidState
	}
	for i := 0; i < ts.n; i++ {
		t := &ts.tasks[i]
		t.slot = uint8(i)
		t.state = StateReady
		t.eff = t.prio
		ctx := &Context{s: s, t: t}
		entry := t.entry
		s.port.Prepare(t, func() {
			entry(ctx)
			s.taskReturned(ctx.t)
		})
		s.ready[t.prio].push(t)
	}
	s.ts = ts
	s.initialized = true
	return nil
}

// Start runs the dispatch loop. On a device it never returns; on the host
// it returns only after Shutdown.
func (s *Sched) Start() error {
	s.cs.enter()
	if !s.initialized {
		s.cs.exit()
		return ErrNotInitialized
	}
	if s.started {
		s.cs.exit()
		return ErrAlreadyStarted
	}
	s.started = true

	for {
		if s.stopping {
			s.started = false
			s.cs.exit()
			return nil
		}
		t := s.pickNext()
		if t == nil {
			s.idle = true
			s.traceEvent(TraceIdle, nil)
			s.idleCond.Broadcast()
			s.cs.exit()
			<-s.wake
			s.cs.enter()
			s.idle = false
			continue
		}
		t.state = StateRunning
		s.running = t
		s.traceEvent(TraceDispatch, t)
		s.cs.exit()

		s.port.Resume(t)

		s.cs.enter()
	}
}

// Tick advances scheduler time by one period. It is invoked once per tick
// interrupt, runs in bounded time, and never blocks. A non-nil error means
// an internal invariant was violated; the fatal path has already run.
func (s *Sched) Tick() error {
	s.cs.enter()
	s.tickCount++
	s.traceEvent(TraceTick, nil)

	for i := range s.sleeping {
		t := s.sleeping[i]
		if t == nil || t.wakeTick > s.tickCount {
			continue
		}
		s.sleeping[i] = nil
		if w := t.waitingOn; w != nil {
			// Timed wait expired: leave the wait collection with a
			// timeout result.
			w.remove(t)
			t.waitingOn = nil
			t.waitErr = ErrTimeout
			if m := t.blockedOn; m != nil {
				t.blockedOn = nil
				m.waiterLeft(s)
			}
		}
		s.readyTask(t)
	}

	// A wake that outranks the running task preempts it; the port pends
	// the switch against the interrupted task.
	if r := s.running; r != nil && s.highestReady() > int(r.eff) {
		s.port.Preempt(r)
	}

	if err := s.checkInvariants(); err != nil {
		s.cs.exit()
		s.fatalError(err)
		return err
	}
	s.cs.exit()
	return nil
}

// Pump forwards ticks from the bound source to Tick. It returns when the
// source channel closes or a tick reports a fatal error. Host wiring runs
// it on the goroutine standing in for the timer interrupt.
func (s *Sched) Pump() {
	s.cs.enter()
	src := s.src
	s.cs.exit()
	if src == nil {
		return
	}
	for range src.Ticks() {
		if s.Tick() != nil {
			return
		}
	}
}

// TickCount returns the current tick count.
func (s *Sched) TickCount() uint64 {
	s.cs.enter()
	v := s.tickCount
	s.cs.exit()
	return v
}

// Micros returns microseconds from the bound tick source, or the tick
// count scaled to microseconds when no source is bound.
func (s *Sched) Micros() uint64 {
	s.cs.enter()
	src := s.src
	ticks := s.tickCount
	s.cs.exit()
	if src == nil {
		return ticks * hal.TickPeriodMicros
	}
	return src.Micros()
}

// TaskSet returns the task set the scheduler was initialized with.
func (s *Sched) TaskSet() *TaskSet { return s.ts }

// AwaitIdle blocks until every task is blocked and the dispatcher is
// parked. Host-side testing hook.
func (s *Sched) AwaitIdle() {
	s.cs.enter()
	for !(s.idle && s.running == nil && s.highestReady() < 0) {
		s.idleCond.Wait()
	}
	s.cs.exit()
}

// Shutdown stops the dispatch loop at its next idle check. Host-side
// testing hook; a device scheduler never returns from Start.
func (s *Sched) Shutdown() {
	s.cs.enter()
	s.stopping = true
	s.cs.exit()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// --- internal machinery; everything below runs with the critical section
// held unless noted otherwise. ---

func (s *Sched) pickNext() *Task {
	for p := NumPriorities - 1; p >= 0; p-- {
		if t := s.ready[p].popFront(); t != nil {
			return t
		}
	}
	return nil
}

func (s *Sched) highestReady() int {
	for p := NumPriorities - 1; p >= 0; p-- {
		if !s.ready[p].empty() {
			return p
		}
	}
	return -1
}

func (s *Sched) readyTask(t *Task) {
	t.state = StateReady
	s.ready[t.eff].push(t)
	s.traceEvent(TraceWake, t)
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// blockCurrent parks the running task and hands the CPU to the scheduler.
// The critical section is held on entry and again on return.
func (s *Sched) blockCurrent(t *Task) {
	t.state = StateBlocked
	s.running = nil
	s.traceEvent(TraceBlock, t)
	s.cs.exit()
	s.port.Yield(t)
	s.cs.enter()
}

// waitOn parks t on w until it is woken or, with a deadline, times out.
func (s *Sched) waitOn(t *Task, w *waitList, hasDeadline bool, deadline uint64) error {
	w.insert(t)
	t.waitingOn = w
	t.waitErr = nil
	if hasDeadline {
		t.wakeTick = deadline
		s.addSleeper(t)
	}
	s.blockCurrent(t)
	return t.waitErr
}

func (s *Sched) deadline(timeout Ticks) (bool, uint64) {
	if timeout == Forever {
		return false, 0
	}
	return true, s.tickCount + uint64(timeout)
}

// wakeOne readies the wait collection's front waiter, if any.
func (s *Sched) wakeOne(w *waitList) *Task {
	t := w.pop()
	if t == nil {
		return nil
	}
	t.waitingOn = nil
	t.waitErr = nil
	s.removeSleeper(t)
	s.readyTask(t)
	return t
}

// preemptCurrent re-queues the running task and yields the CPU if a
// strictly higher-priority task became ready.
func (s *Sched) preemptCurrent(t *Task) {
	if s.highestReady() <= int(t.eff) {
		return
	}
	t.state = StateReady
	s.ready[t.eff].push(t)
	s.running = nil
	s.traceEvent(TracePreempt, t)
	s.cs.exit()
	s.port.Yield(t)
	s.cs.enter()
}

func (s *Sched) yield(t *Task) {
	s.cs.enter()
	t.state = StateReady
	s.ready[t.eff].push(t)
	s.running = nil
	s.traceEvent(TraceYield, t)
	s.cs.exit()
	s.port.Yield(t)
}

func (s *Sched) delay(t *Task, ms uint32) {
	if ms == 0 {
		s.yield(t)
		return
	}
	s.cs.enter()
	t.waitErr = nil
	t.wakeTick = s.tickCount + uint64(ms)
	s.addSleeper(t)
	s.blockCurrent(t)
	s.cs.exit()
}

func (s *Sched) delayUntil(t *Task, tick uint64) {
	s.cs.enter()
	if tick <= s.tickCount {
		s.cs.exit()
		return
	}
	t.waitErr = nil
	t.wakeTick = tick
	s.addSleeper(t)
	s.blockCurrent(t)
	s.cs.exit()
}

func (s *Sched) addSleeper(t *Task) {
	for i := range s.sleeping {
		if s.sleeping[i] == nil {
			s.sleeping[i] = t
			return
		}
	}
}

func (s *Sched) removeSleeper(t *Task) {
	for i := range s.sleeping {
		if s.sleeping[i] == t {
			s.sleeping[i] = nil
			return
		}
	}
}

func (s *Sched) checkInvariants() error {
	if r := s.running; r != nil && r.state != StateRunning {
		return fmt.Errorf("%w: running task %q in state %s", ErrInvalidState, r.name, r.state)
	}
	for p := 0; p < NumPriorities; p++ {
		f := &s.ready[p]
		for i := 0; i < f.n; i++ {
			t := f.tasks[i]
			if t.state != StateReady {
				return fmt.Errorf("%w: task %q in ready level %d has state %s", ErrInvalidState, t.name, p, t.state)
			}
			if int(t.eff) != p {
				return fmt.Errorf("%w: task %q queued at level %d with effective priority %d", ErrInvalidState, t.name, p, t.eff)
			}
		}
	}
	return nil
}

// taskReturned handles a task entry function that returned. Tasks are
// designed to loop forever, so this is an invariant failure, not an exit
// path.
func (s *Sched) taskReturned(t *Task) {
	s.cs.enter()
	t.state = StateBlocked
	s.running = nil
	s.cs.exit()
	s.fatalError(fmt.Errorf("%w: task %q returned from its entry function", ErrInvalidState, t.name))
	s.port.Exit(t)
}

// fatalError runs the fatal path: the override handler when installed,
// otherwise log through the sink and halt. Called without the critical
// section held.
func (s *Sched) fatalError(err error) {
	s.cs.enter()
	h := s.fatal
	sink := s.sink
	s.cs.exit()
	if h != nil {
		h(err)
		return
	}
	if sink != nil {
		sink.WriteLineString("kernel: fatal: " + err.Error())
	}
	halt()
}

// halt parks forever. A device port would spin with interrupts masked.
func halt() {
	select {}
}
