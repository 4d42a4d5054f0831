package kernel

// Port is the architecture-specific context-switch mechanism. The scheduler
// drives it through this narrow interface and never looks inside a task's
// saved execution context.
//
// On a microcontroller port the switch is a register save/restore; when a
// tick wakes a higher-priority task the scheduler requests the switch
// through Preempt and the port pends it (PendSV-style) against the running
// task. The host port below cannot interrupt a goroutine mid-computation,
// so its Preempt realization is deferred: the switch takes effect at the
// task's next kernel entry (any blocking call or Yield), where the
// dispatcher picks the highest-priority ready task.
type Port interface {
	// Prepare sets up t's execution context so that run executes on the
	// first Resume. Called once per task, before Start.
	Prepare(t *Task, run func())

	// Resume transfers control to t and returns when t gives it back.
	// Called only from the scheduler context.
	Resume(t *Task)

	// Yield saves t's context and returns control to the scheduler.
	// Called only from t's own context; returns when t is resumed again.
	Yield(t *Task)

	// Exit hands control back to the scheduler without saving t's
	// context. Called when a task entry function returns.
	Exit(t *Task)

	// Preempt requests an asynchronous switch away from t because a
	// higher-priority task became ready. Called from the tick path with
	// the scheduler lock held; must not block.
	Preempt(t *Task)
}

// GoPort runs each task on a parked goroutine and passes a single execution
// baton between the scheduler and the running task, so at most one task
// executes at any instant.
type GoPort struct {
	sched chan struct{}
	gates [maxTasks]chan struct{}
}

// NewGoPort creates the host context-switch port.
func NewGoPort() *GoPort {
	return &GoPort{sched: make(chan struct{})}
}

func (p *GoPort) Prepare(t *Task, run func()) {
	gate := make(chan struct{})
	p.gates[t.slot] = gate
	go func() {
		<-gate
		run()
	}()
}

func (p *GoPort) Resume(t *Task) {
	p.gates[t.slot] <- struct{}{}
	<-p.sched
}

func (p *GoPort) Yield(t *Task) {
	p.sched <- struct{}{}
	<-p.gates[t.slot]
}

func (p *GoPort) Exit(t *Task) {
	p.sched <- struct{}{}
}

// Preempt cannot interrupt a running goroutine; the switch happens at t's
// next kernel entry, where the dispatcher resumes the highest-priority
// ready task instead.
func (p *GoPort) Preempt(t *Task) {}
