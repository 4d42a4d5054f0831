//go:build !tinygo

package hal

import (
	"sync"
	"time"
)

// HostTicker is a host-side TickSource driven by a time.Ticker.
//
// Wall-clock jitter is absorbed by accumulating elapsed time and emitting
// as many 1 ms ticks as have actually passed, so long pauses (debugger,
// scheduler hiccups) produce catch-up ticks instead of silently losing time.
type HostTicker struct {
	ch    chan uint64
	seq   uint64
	start time.Time

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}

	last time.Time
	acc  time.Duration
}

// NewHostTicker creates a stopped host tick source.
func NewHostTicker() *HostTicker {
	return &HostTicker{ch: make(chan uint64, 1024)}
}

func (t *HostTicker) PeriodMicros() uint32 { return TickPeriodMicros }

func (t *HostTicker) Ticks() <-chan uint64 { return t.ch }

// Micros reports microseconds since Start.
func (t *HostTicker) Micros() uint64 {
	if t.start.IsZero() {
		return 0
	}
	return uint64(time.Since(t.start) / time.Microsecond)
}

// Start begins emitting ticks. It may be called once.
func (t *HostTicker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		return
	}
	t.start = time.Now()
	t.stop = make(chan struct{})
	t.done = make(chan struct{})
	go t.run(t.stop, t.done)
}

// Stop halts tick emission and waits for the emitter to exit.
func (t *HostTicker) Stop() {
	t.mu.Lock()
	stop, done := t.stop, t.done
	t.stop, t.done = nil, nil
	t.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (t *HostTicker) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	tk := time.NewTicker(time.Millisecond)
	defer tk.Stop()
	for {
		select {
		case <-stop:
			return
		case <-tk.C:
			t.step()
		}
	}
}

func (t *HostTicker) step() {
	now := time.Now()
	if t.last.IsZero() {
		t.last = now
		t.acc = 0
		t.emit(1)
		return
	}

	t.acc += now.Sub(t.last)
	t.last = now

	const tickDur = time.Millisecond
	n := uint64(t.acc / tickDur)
	if n == 0 {
		return
	}
	t.acc = t.acc % tickDur
	t.emit(n)
}

func (t *HostTicker) emit(n uint64) {
	for i := uint64(0); i < n; i++ {
		t.seq++
		select {
		case t.ch <- t.seq:
		default:
		}
	}
}
