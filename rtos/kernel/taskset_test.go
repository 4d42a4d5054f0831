package kernel

import (
	"strings"
	"testing"
)

func noopEntry(ctx *Context) {}

func TestTaskSetTotalRAM(t *testing.T) {
	ts, err := NewTaskSet([]TaskDesc{
		{Name: "a", Priority: 3, StackSize: 512, Entry: noopEntry},
		{Name: "b", Priority: 1, StackSize: 256, Entry: noopEntry},
	})
	if err != nil {
		t.Fatalf("NewTaskSet: %v", err)
	}
	want := uint32(512+TaskOverheadBytes) + uint32(256+TaskOverheadBytes) + SchedOverheadBytes
	if got := ts.TotalRAM(); got != want {
		t.Fatalf("expected total RAM %d, got %d", want, got)
	}
	if ts.Len() != 2 {
		t.Fatalf("expected 2 tasks, got %d", ts.Len())
	}
}

func TestTaskSetValidation(t *testing.T) {
	cases := []struct {
		name string
		desc TaskDesc
		want string
	}{
		{"empty name", TaskDesc{Name: "", Priority: 1, StackSize: 256, Entry: noopEntry}, "empty task name"},
		{"stack too small", TaskDesc{Name: "t", Priority: 1, StackSize: 128, Entry: noopEntry}, "below minimum"},
		{"stack misaligned", TaskDesc{Name: "t", Priority: 1, StackSize: 260, Entry: noopEntry}, "not a multiple"},
		{"priority out of range", TaskDesc{Name: "t", Priority: 8, StackSize: 256, Entry: noopEntry}, "out of range"},
		{"nil entry", TaskDesc{Name: "t", Priority: 1, StackSize: 256}, "nil entry"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTaskSet([]TaskDesc{tc.desc})
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestTaskSetRejectsDuplicateNames(t *testing.T) {
	_, err := NewTaskSet([]TaskDesc{
		{Name: "dup", Priority: 1, StackSize: 256, Entry: noopEntry},
		{Name: "dup", Priority: 2, StackSize: 256, Entry: noopEntry},
	})
	if err == nil || !strings.Contains(err.Error(), "duplicate name") {
		t.Fatalf("expected duplicate name error, got %v", err)
	}
}

func TestTaskSetBudgetExceeded(t *testing.T) {
	_, err := NewTaskSet([]TaskDesc{
		{Name: "big", Priority: 1, StackSize: 1024, Entry: noopEntry},
	}, WithRAMBudget(1024))
	if err == nil || !strings.Contains(err.Error(), "exceeds budget") {
		t.Fatalf("expected budget error, got %v", err)
	}

	// Overhead counts against the budget, so exactly stack+overheads fits.
	_, err = NewTaskSet([]TaskDesc{
		{Name: "big", Priority: 1, StackSize: 1024, Entry: noopEntry},
	}, WithRAMBudget(1024+TaskOverheadBytes+SchedOverheadBytes))
	if err != nil {
		t.Fatalf("expected exact-fit budget to pass, got %v", err)
	}
}

func TestTaskSetBudgetSumDoesNotWrap(t *testing.T) {
	// Two 2 GiB stacks sum past uint32; the wrapped value would sneak
	// under the default budget.
	_, err := NewTaskSet([]TaskDesc{
		{Name: "a", Priority: 1, StackSize: 1 << 31, Entry: noopEntry},
		{Name: "b", Priority: 2, StackSize: 1 << 31, Entry: noopEntry},
	})
	if err == nil || !strings.Contains(err.Error(), "exceeds budget") {
		t.Fatalf("expected budget error on wrapping stack sum, got %v", err)
	}
}

func TestTaskSetStrictPriorities(t *testing.T) {
	descs := []TaskDesc{
		{Name: "a", Priority: 4, StackSize: 256, Entry: noopEntry},
		{Name: "b", Priority: 4, StackSize: 256, Entry: noopEntry},
	}
	if _, err := NewTaskSet(descs); err != nil {
		t.Fatalf("shared priorities allowed by default, got %v", err)
	}
	_, err := NewTaskSet(descs, WithStrictPriorities())
	if err == nil || !strings.Contains(err.Error(), "strict") {
		t.Fatalf("expected strict-mode priority clash, got %v", err)
	}
}

func TestTaskSetLookup(t *testing.T) {
	ts, err := NewTaskSet([]TaskDesc{
		{Name: "sensor", Priority: 5, StackSize: 512, Entry: noopEntry},
	})
	if err != nil {
		t.Fatalf("NewTaskSet: %v", err)
	}
	task, ok := ts.Lookup("sensor")
	if !ok {
		t.Fatal("expected lookup hit")
	}
	if task.Name() != "sensor" || task.Priority() != 5 || task.StackSize() != 512 {
		t.Fatalf("unexpected task %q prio %d stack %d", task.Name(), task.Priority(), task.StackSize())
	}
	if _, ok := ts.Lookup("ghost"); ok {
		t.Fatal("expected lookup miss")
	}
}

func TestRegistrySealsOnce(t *testing.T) {
	var r Registry
	if err := r.Register(TaskDesc{Name: "a", Priority: 2, StackSize: 256, Entry: noopEntry}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	ts, err := r.Seal()
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if ts.Len() != 1 {
		t.Fatalf("expected 1 task, got %d", ts.Len())
	}
	if err := r.Register(TaskDesc{Name: "b", Priority: 3, StackSize: 256, Entry: noopEntry}); err == nil {
		t.Fatal("expected Register after Seal to fail")
	}
	if _, err := r.Seal(); err == nil {
		t.Fatal("expected second Seal to fail")
	}
}
