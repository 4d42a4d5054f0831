package kernel

// taskFIFO is a fixed-capacity FIFO of tasks. One instance exists per
// priority level, so the whole ready structure is contiguous and bounded.
//
// remove exists because priority inheritance can move a ready task between
// levels; the shift is bounded by maxTasks.
type taskFIFO struct {
	n     int
	tasks [maxTasks]*Task
}

func (f *taskFIFO) push(t *Task) bool {
	if f.n >= maxTasks {
		return false
	}
	f.tasks[f.n] = t
	f.n++
	return true
}

func (f *taskFIFO) popFront() *Task {
	if f.n == 0 {
		return nil
	}
	t := f.tasks[0]
	copy(f.tasks[:f.n-1], f.tasks[1:f.n])
	f.n--
	f.tasks[f.n] = nil
	return t
}

func (f *taskFIFO) remove(t *Task) bool {
	for i := 0; i < f.n; i++ {
		if f.tasks[i] != t {
			continue
		}
		copy(f.tasks[i:f.n-1], f.tasks[i+1:f.n])
		f.n--
		f.tasks[f.n] = nil
		return true
	}
	return false
}

func (f *taskFIFO) empty() bool { return f.n == 0 }
