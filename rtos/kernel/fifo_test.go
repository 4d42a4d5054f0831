package kernel

import "testing"

func TestTaskFIFOOrder(t *testing.T) {
	var f taskFIFO
	a := &Task{name: "a"}
	b := &Task{name: "b"}
	c := &Task{name: "c"}

	if !f.empty() {
		t.Fatal("expected empty FIFO")
	}
	for _, task := range []*Task{a, b, c} {
		if !f.push(task) {
			t.Fatalf("push %s failed", task.name)
		}
	}
	if !f.remove(b) {
		t.Fatal("remove b failed")
	}
	if f.remove(b) {
		t.Fatal("second remove b should fail")
	}
	if got := f.popFront(); got != a {
		t.Fatalf("expected a, got %v", got)
	}
	if got := f.popFront(); got != c {
		t.Fatalf("expected c, got %v", got)
	}
	if f.popFront() != nil {
		t.Fatal("expected nil from empty FIFO")
	}
}

func TestTaskFIFOCapacity(t *testing.T) {
	var f taskFIFO
	for i := 0; i < maxTasks; i++ {
		if !f.push(&Task{}) {
			t.Fatalf("push %d failed below capacity", i)
		}
	}
	if f.push(&Task{}) {
		t.Fatal("expected push beyond capacity to fail")
	}
}

func TestWaitListOrdering(t *testing.T) {
	var w waitList
	lo := &Task{name: "lo", eff: 2}
	hiA := &Task{name: "hiA", eff: 6}
	hiB := &Task{name: "hiB", eff: 6}
	mid := &Task{name: "mid", eff: 4}

	for _, task := range []*Task{lo, hiA, hiB, mid} {
		if !w.insert(task) {
			t.Fatalf("insert %s failed", task.name)
		}
	}
	if p, ok := w.highest(); !ok || p != 6 {
		t.Fatalf("expected highest 6, got %d (%v)", p, ok)
	}
	// Highest first, FIFO among equals.
	for _, want := range []*Task{hiA, hiB, mid, lo} {
		if got := w.pop(); got != want {
			t.Fatalf("expected %s, got %v", want.name, got)
		}
	}
	if !w.empty() {
		t.Fatal("expected empty wait list")
	}
}

func TestWaitListReposition(t *testing.T) {
	var w waitList
	a := &Task{name: "a", eff: 2}
	b := &Task{name: "b", eff: 4}
	w.insert(a)
	w.insert(b)

	a.eff = 6
	w.reposition(a)
	if got := w.pop(); got != a {
		t.Fatalf("expected raised task first, got %v", got)
	}

	// reposition of a task not in the list is a no-op.
	ghost := &Task{name: "ghost", eff: 7}
	w.reposition(ghost)
	if got := w.pop(); got != b {
		t.Fatalf("expected b, got %v", got)
	}
}
