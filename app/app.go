// Package app wires the demo application: a synthetic sensor feeding a
// filter through a message queue, with a watchdog supervising both through
// event flags. It exists to exercise the kernel on the host; the tasks and
// their stacks are declared in tasks.yaml and validated by embergen.
package app

import (
	"fmt"

	"ember/hal"
	"ember/rtos/kernel"
)

const (
	bitSensorAlive = 1 << 0
	bitFilterAlive = 1 << 1

	sensorPeriod = 10 // ticks between samples
	batchSize    = 16
)

// App owns the demo's IPC objects and shared state.
type App struct {
	log hal.Logger

	readings *kernel.Queue[int32]
	alive    *kernel.EventFlags

	statsMu *kernel.Mutex
	samples uint32
	sum     int64
}

// New builds the demo task set against the given scheduler.
func New(s *kernel.Sched, log hal.Logger) (*kernel.TaskSet, error) {
	a := &App{
		log:      log,
		readings: kernel.NewQueue[int32](s, 8),
		alive:    kernel.NewEventFlags(s),
		statsMu:  kernel.NewMutex(s),
	}
	return newManifestTaskSet(map[string]func(*kernel.Context){
		"sensor":   a.sensor,
		"filter":   a.filter,
		"watchdog": a.watchdog,
	})
}

// sensor produces a synthetic triangle wave, one sample every sensorPeriod
// ticks. DelayUntil keeps the period jitter-free regardless of how long a
// cycle takes.
func (a *App) sensor(ctx *kernel.Context) {
	next := ctx.TickCount()
	var v, dir int32 = 0, 1
	for {
		next += sensorPeriod
		ctx.DelayUntil(next)

		v += dir * 8
		if v >= 120 || v <= -120 {
			dir = -dir
		}
		// Backpressure: a full queue stalls the sensor for up to one
		// period rather than dropping the sample.
		_ = a.readings.Send(ctx, v, sensorPeriod)
		a.alive.Set(ctx, bitSensorAlive)
	}
}

func (a *App) filter(ctx *kernel.Context) {
	n := 0
	for {
		v, err := a.readings.Receive(ctx, kernel.Forever)
		if err != nil {
			continue
		}
		if err := a.statsMu.Lock(ctx, kernel.Forever); err != nil {
			continue
		}
		a.samples++
		a.sum += int64(v)
		_ = a.statsMu.Unlock(ctx)

		n++
		if n == batchSize {
			n = 0
			a.alive.Set(ctx, bitFilterAlive)
		}
	}
}

// watchdog expects both stages to prove liveness within a window. A
// timeout reports which stage went quiet via the observed-bits result.
func (a *App) watchdog(ctx *kernel.Context) {
	const window = 1000
	for {
		got, err := a.alive.WaitAll(ctx, bitSensorAlive|bitFilterAlive, window, true)
		if err != nil {
			a.log.WriteLineString(fmt.Sprintf("watchdog: stall at tick %d, observed bits %03b", ctx.TickCount(), got))
			continue
		}
		if err := a.statsMu.Lock(ctx, kernel.Forever); err != nil {
			continue
		}
		samples, sum := a.samples, a.sum
		_ = a.statsMu.Unlock(ctx)
		if samples > 0 {
			a.log.WriteLineString(fmt.Sprintf("watchdog: %d samples, mean %d", samples, sum/int64(samples)))
		}
	}
}
