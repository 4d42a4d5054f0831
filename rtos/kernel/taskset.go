package kernel

import "fmt"

const (
	// MinStackBytes is the smallest allowed task stack.
	MinStackBytes = 256

	// StackAlign is the required stack size alignment.
	StackAlign = 8

	// TaskOverheadBytes is the fixed per-task control-block overhead
	// counted against the RAM budget.
	TaskOverheadBytes = 32

	// SchedOverheadBytes is the fixed scheduler overhead counted against
	// the RAM budget: ready structure, sleeper table, tick state.
	SchedOverheadBytes = 512

	// DefaultRAMBudget is the default platform budget (RP2040 SRAM).
	DefaultRAMBudget = 264 * 1024
)

// Option adjusts TaskSet validation.
type Option func(*taskSetConfig)

type taskSetConfig struct {
	budget uint32
	strict bool
}

// WithRAMBudget overrides the platform RAM budget.
func WithRAMBudget(bytes uint32) Option {
	return func(c *taskSetConfig) { c.budget = bytes }
}

// WithStrictPriorities requires all task priorities to be pairwise
// distinct.
func WithStrictPriorities() Option {
	return func(c *taskSetConfig) { c.strict = true }
}

// TaskSet is the immutable, validated aggregate of all application tasks.
// It owns every Task instance for the lifetime of the program.
type TaskSet struct {
	tasks    [maxTasks]Task
	n        int
	totalRAM uint32
	budget   uint32
	strict   bool
}

// NewTaskSet validates the descriptors and constructs the task arena.
// Any violation fails construction with an error naming the offending task
// and constraint; an application whose task manifest cannot pass here must
// not run (cmd/embergen turns the same rules into a compile failure).
func NewTaskSet(descs []TaskDesc, opts ...Option) (*TaskSet, error) {
	cfg := taskSetConfig{budget: DefaultRAMBudget}
	for _, opt := range opts {
		opt(&cfg)
	}

	if len(descs) == 0 {
		return nil, fmt.Errorf("task set: no tasks")
	}
	if len(descs) > maxTasks {
		return nil, fmt.Errorf("task set: %d tasks exceeds maximum %d", len(descs), maxTasks)
	}

	ts := &TaskSet{budget: cfg.budget, strict: cfg.strict}
	// Accumulated in uint64 so oversized stacks cannot wrap past the
	// budget check.
	total := uint64(SchedOverheadBytes)
	for _, d := range descs {
		if err := ValidateDesc(d.Name, uint8(d.Priority), d.StackSize); err != nil {
			return nil, err
		}
		if d.Entry == nil {
			return nil, fmt.Errorf("task %q: nil entry function", d.Name)
		}
		for i := 0; i < ts.n; i++ {
			prev := &ts.tasks[i]
			if prev.name == d.Name {
				return nil, fmt.Errorf("task %q: duplicate name", d.Name)
			}
			if cfg.strict && prev.prio == d.Priority {
				return nil, fmt.Errorf("task %q: priority %d already used by %q (strict mode)", d.Name, d.Priority, prev.name)
			}
		}
		ts.tasks[ts.n] = Task{
			name:  d.Name,
			prio:  d.Priority,
			eff:   d.Priority,
			stack: d.StackSize,
			entry: d.Entry,
		}
		ts.n++
		total += uint64(d.StackSize) + TaskOverheadBytes
	}
	if total > uint64(cfg.budget) {
		return nil, fmt.Errorf("task set: total RAM %d exceeds budget %d", total, cfg.budget)
	}
	ts.totalRAM = uint32(total)
	return ts, nil
}

// ValidateDesc checks the static constraints of one task descriptor.
// Shared with the manifest tooling so a manifest that validates there is
// guaranteed to construct here.
func ValidateDesc(name string, priority uint8, stackSize uint32) error {
	if name == "" {
		return fmt.Errorf("task set: empty task name")
	}
	if priority > uint8(PriorityMax) {
		return fmt.Errorf("task %q: priority %d out of range [0,%d]", name, priority, PriorityMax)
	}
	if stackSize < MinStackBytes {
		return fmt.Errorf("task %q: stack size %d below minimum %d", name, stackSize, MinStackBytes)
	}
	if stackSize%StackAlign != 0 {
		return fmt.Errorf("task %q: stack size %d not a multiple of %d", name, stackSize, StackAlign)
	}
	return nil
}

// TotalRAM returns the exact static memory footprint: every task's stack
// plus per-task overhead, plus the fixed scheduler overhead.
func (ts *TaskSet) TotalRAM() uint32 { return ts.totalRAM }

// Len returns the number of tasks.
func (ts *TaskSet) Len() int { return ts.n }

// ForEach visits every task in registration order.
func (ts *TaskSet) ForEach(fn func(*Task)) {
	for i := 0; i < ts.n; i++ {
		fn(&ts.tasks[i])
	}
}

// Lookup returns the task with the given name.
func (ts *TaskSet) Lookup(name string) (*Task, bool) {
	for i := 0; i < ts.n; i++ {
		if ts.tasks[i].name == name {
			return &ts.tasks[i], true
		}
	}
	return nil, false
}
