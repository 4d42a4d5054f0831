package manifest

import (
	"strings"
	"testing"

	"ember/rtos/kernel"
)

const goodManifest = `
ram_budget: 262144
tasks:
  - name: sensor
    priority: 5
    stack_bytes: 512
  - name: filter
    priority: 4
    stack_bytes: 512
`

func TestParseManifest(t *testing.T) {
	f, err := Parse([]byte(goodManifest))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(f.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(f.Tasks))
	}
	if f.Tasks[0].Name != "sensor" || f.Tasks[0].Priority != 5 || f.Tasks[0].StackBytes != 512 {
		t.Fatalf("unexpected first task %+v", f.Tasks[0])
	}
	if f.Budget() != 262144 {
		t.Fatalf("expected budget 262144, got %d", f.Budget())
	}
	if err := f.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte(`
tasks:
  - name: sensor
    priority: 5
    stack_size: 512
`))
	if err == nil {
		t.Fatal("expected unknown field stack_size to be rejected")
	}
}

func TestBudgetDefaultsToPlatform(t *testing.T) {
	f, err := Parse([]byte("tasks:\n  - {name: a, priority: 1, stack_bytes: 256}\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.Budget() != kernel.DefaultRAMBudget {
		t.Fatalf("expected default budget %d, got %d", kernel.DefaultRAMBudget, f.Budget())
	}
}

func TestTotalRAMMatchesTaskSet(t *testing.T) {
	f, err := Parse([]byte(goodManifest))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	var descs []kernel.TaskDesc
	for _, ts := range f.Tasks {
		descs = append(descs, kernel.TaskDesc{
			Name:      ts.Name,
			Priority:  kernel.Priority(ts.Priority),
			StackSize: ts.StackBytes,
			Entry:     func(*kernel.Context) {},
		})
	}
	set, err := kernel.NewTaskSet(descs, kernel.WithRAMBudget(f.Budget()))
	if err != nil {
		t.Fatalf("NewTaskSet: %v", err)
	}
	if f.TotalRAM() != uint64(set.TotalRAM()) {
		t.Fatalf("manifest says %d, task set says %d", f.TotalRAM(), set.TotalRAM())
	}
}

func TestValidateErrors(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"no tasks", "tasks: []\n", "no tasks"},
		{"small stack", "tasks:\n  - {name: a, priority: 1, stack_bytes: 128}\n", "below minimum"},
		{"misaligned stack", "tasks:\n  - {name: a, priority: 1, stack_bytes: 260}\n", "not a multiple"},
		{"bad priority", "tasks:\n  - {name: a, priority: 9, stack_bytes: 256}\n", "out of range"},
		{"dup name", "tasks:\n  - {name: a, priority: 1, stack_bytes: 256}\n  - {name: a, priority: 2, stack_bytes: 256}\n", "duplicate name"},
		{"strict clash", "strict: true\ntasks:\n  - {name: a, priority: 1, stack_bytes: 256}\n  - {name: b, priority: 1, stack_bytes: 256}\n", "strict mode"},
		{"over budget", "ram_budget: 1024\ntasks:\n  - {name: a, priority: 1, stack_bytes: 1024}\n", "exceeds budget"},
		{"wrapping stack sum", "tasks:\n  - {name: a, priority: 1, stack_bytes: 2147483648}\n  - {name: b, priority: 2, stack_bytes: 2147483648}\n", "exceeds budget"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := Parse([]byte(tc.yaml))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			err = f.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}
