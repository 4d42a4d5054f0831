//go:build !tinygo

// embergen turns a task manifest into a generated Go source file: the task
// descriptor table, the computed static RAM constant, and a constant
// expression that fails compilation when the manifest exceeds its budget.
// An invalid manifest exits non-zero, so a broken configuration never
// produces a runnable binary.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"ember/rtos/manifest"
)

func main() {
	var (
		inPath  string
		outPath string
		pkgName string
		check   bool
	)
	flag.StringVar(&inPath, "in", "tasks.yaml", "Task manifest to read.")
	flag.StringVar(&outPath, "out", "tasks_gen.go", "Generated file to write.")
	flag.StringVar(&pkgName, "pkg", "app", "Package name for the generated file.")
	flag.BoolVar(&check, "check", false, "Validate only; write nothing.")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()

	f, err := manifest.Load(inPath)
	if err != nil {
		log.Error().Err(err).Msg("load manifest")
		os.Exit(1)
	}
	if err := f.Validate(); err != nil {
		log.Error().Err(err).Str("manifest", inPath).Msg("invalid task manifest")
		os.Exit(1)
	}
	log.Info().
		Int("tasks", len(f.Tasks)).
		Uint64("total_ram", f.TotalRAM()).
		Uint32("budget", f.Budget()).
		Msg("manifest valid")
	if check {
		return
	}

	src := render(pkgName, f)
	if err := os.WriteFile(outPath, src, 0o644); err != nil {
		log.Error().Err(err).Msg("write output")
		os.Exit(1)
	}
	log.Info().Str("out", outPath).Msg("generated")
}

func render(pkg string, f *manifest.File) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "// Code generated by embergen; DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "package %s\n\n", pkg)
	fmt.Fprintf(&b, "import \"ember/rtos/kernel\"\n\n")
	fmt.Fprintf(&b, "// TotalStaticRAM is the static memory footprint of the task manifest,\n")
	fmt.Fprintf(&b, "// including per-task and scheduler overhead.\n")
	fmt.Fprintf(&b, "const TotalStaticRAM = %d\n\n", f.TotalRAM())
	fmt.Fprintf(&b, "const manifestRAMBudget = %d\n\n", f.Budget())
	fmt.Fprintf(&b, "// An over-budget manifest must not compile.\n")
	fmt.Fprintf(&b, "const _ = uint32(manifestRAMBudget - TotalStaticRAM)\n\n")
	fmt.Fprintf(&b, "// manifestTasks lists the declared tasks; entry functions are bound by\n")
	fmt.Fprintf(&b, "// newManifestTaskSet.\n")
	fmt.Fprintf(&b, "var manifestTasks = []kernel.TaskDesc{\n")
	for _, t := range f.Tasks {
		fmt.Fprintf(&b, "\t{Name: %q, Priority: %d, StackSize: %d},\n", t.Name, t.Priority, t.StackBytes)
	}
	fmt.Fprintf(&b, "}\n\n")
	fmt.Fprintf(&b, "// newManifestTaskSet binds entry functions to the declared tasks by name\n")
	fmt.Fprintf(&b, "// and constructs the validated task set.\n")
	fmt.Fprintf(&b, "func newManifestTaskSet(entries map[string]func(*kernel.Context)) (*kernel.TaskSet, error) {\n")
	fmt.Fprintf(&b, "\tdescs := make([]kernel.TaskDesc, len(manifestTasks))\n")
	fmt.Fprintf(&b, "\tfor i, d := range manifestTasks {\n")
	fmt.Fprintf(&b, "\t\td.Entry = entries[d.Name]\n")
	fmt.Fprintf(&b, "\t\tdescs[i] = d\n")
	fmt.Fprintf(&b, "\t}\n")
	opts := "kernel.WithRAMBudget(manifestRAMBudget)"
	if f.Strict {
		opts += ", kernel.WithStrictPriorities()"
	}
	fmt.Fprintf(&b, "\treturn kernel.NewTaskSet(descs, %s)\n", opts)
	fmt.Fprintf(&b, "}\n")
	return b.Bytes()
}
