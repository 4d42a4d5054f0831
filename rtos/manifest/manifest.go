// Package manifest models the build-time task manifest consumed by
// cmd/embergen. The validation rules are the TaskSet's own, so a manifest
// that passes here is guaranteed to construct at runtime.
package manifest

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"ember/rtos/kernel"
)

// TaskSpec declares one task in the manifest.
type TaskSpec struct {
	Name       string `yaml:"name"`
	Priority   uint8  `yaml:"priority"`
	StackBytes uint32 `yaml:"stack_bytes"`
}

// File is the parsed manifest.
type File struct {
	RAMBudget uint32     `yaml:"ram_budget"`
	Strict    bool       `yaml:"strict"`
	Tasks     []TaskSpec `yaml:"tasks"`
}

// Load reads and parses a manifest file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: read %q: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("manifest: parse %q: %w", path, err)
	}
	return f, nil
}

// Parse decodes manifest YAML. Unknown fields are rejected so typos fail
// the build instead of silently validating an empty value.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Budget returns the configured RAM budget, or the platform default.
func (f *File) Budget() uint32 {
	if f.RAMBudget == 0 {
		return kernel.DefaultRAMBudget
	}
	return f.RAMBudget
}

// TotalRAM computes the static footprint the manifest implies. The sum is
// 64-bit so oversized stacks cannot wrap below the budget.
func (f *File) TotalRAM() uint64 {
	total := uint64(kernel.SchedOverheadBytes)
	for _, t := range f.Tasks {
		total += uint64(t.StackBytes) + kernel.TaskOverheadBytes
	}
	return total
}

// Validate applies every TaskSet constraint to the manifest.
func (f *File) Validate() error {
	if len(f.Tasks) == 0 {
		return fmt.Errorf("manifest: no tasks declared")
	}
	seen := make(map[string]struct{}, len(f.Tasks))
	prios := make(map[uint8]string, len(f.Tasks))
	for _, t := range f.Tasks {
		if err := kernel.ValidateDesc(t.Name, t.Priority, t.StackBytes); err != nil {
			return err
		}
		if _, dup := seen[t.Name]; dup {
			return fmt.Errorf("task %q: duplicate name", t.Name)
		}
		seen[t.Name] = struct{}{}
		if other, dup := prios[t.Priority]; dup && f.Strict {
			return fmt.Errorf("task %q: priority %d already used by %q (strict mode)", t.Name, t.Priority, other)
		}
		prios[t.Priority] = t.Name
	}
	if total, budget := f.TotalRAM(), f.Budget(); total > uint64(budget) {
		return fmt.Errorf("manifest: total RAM %d exceeds budget %d", total, budget)
	}
	return nil
}
