package kernel

import "fmt"

// Registry adapts the older per-task registration style to the aggregate
// TaskSet. Call sites that used to register tasks one by one keep doing so
// against a Registry, and the application seals it once into a validated
// TaskSet. New code should construct a TaskSet directly.
type Registry struct {
	descs  [maxTasks]TaskDesc
	n      int
	sealed bool
}

// Register records one task descriptor. Full validation happens at Seal;
// only capacity and double-seal are checked here so legacy call sites keep
// their fire-and-forget shape.
func (r *Registry) Register(d TaskDesc) error {
	if r.sealed {
		return fmt.Errorf("task registry: sealed")
	}
	if r.n >= maxTasks {
		return fmt.Errorf("task registry: %d tasks exceeds maximum %d", r.n+1, maxTasks)
	}
	r.descs[r.n] = d
	r.n++
	return nil
}

// Seal validates everything registered so far and produces the TaskSet.
// The registry cannot be reused afterwards.
func (r *Registry) Seal(opts ...Option) (*TaskSet, error) {
	if r.sealed {
		return nil, fmt.Errorf("task registry: sealed")
	}
	r.sealed = true
	return NewTaskSet(r.descs[:r.n], opts...)
}
