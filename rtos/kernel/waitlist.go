package kernel

// waitList is a wait collection ordered by effective priority, highest
// first, FIFO among equals. pop always yields the task that must be
// served next.
type waitList struct {
	n     int
	tasks [maxTasks]*Task
}

// insert places t behind all waiters of equal or higher effective priority.
func (w *waitList) insert(t *Task) bool {
	if w.n >= maxTasks {
		return false
	}
	i := 0
	for ; i < w.n; i++ {
		if w.tasks[i].eff < t.eff {
			break
		}
	}
	copy(w.tasks[i+1:w.n+1], w.tasks[i:w.n])
	w.tasks[i] = t
	w.n++
	return true
}

func (w *waitList) pop() *Task {
	if w.n == 0 {
		return nil
	}
	t := w.tasks[0]
	copy(w.tasks[:w.n-1], w.tasks[1:w.n])
	w.n--
	w.tasks[w.n] = nil
	return t
}

func (w *waitList) remove(t *Task) bool {
	for i := 0; i < w.n; i++ {
		if w.tasks[i] != t {
			continue
		}
		copy(w.tasks[i:w.n-1], w.tasks[i+1:w.n])
		w.n--
		w.tasks[w.n] = nil
		return true
	}
	return false
}

// reposition re-sorts one waiter after its effective priority changed.
func (w *waitList) reposition(t *Task) {
	if w.remove(t) {
		w.insert(t)
	}
}

// highest reports the effective priority of the front waiter.
func (w *waitList) highest() (Priority, bool) {
	if w.n == 0 {
		return 0, false
	}
	return w.tasks[0].eff, true
}

func (w *waitList) empty() bool { return w.n == 0 }
