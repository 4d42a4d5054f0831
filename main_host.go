//go:build !tinygo

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"

	"ember/app"
	"ember/hal"
	"ember/internal/buildinfo"
	"ember/rtos/kernel"
)

func main() {
	var (
		ticks    uint64
		traceOn  bool
		logLevel string
	)
	flag.Uint64Var(&ticks, "ticks", 0, "Stop after N ticks (0 = run forever).")
	flag.BoolVar(&traceOn, "trace", false, "Log scheduler trace events.")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (trace|debug|info|warn|error).")
	flag.Parse()

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).With().Timestamp().Logger()
	log.Info().Str("version", buildinfo.Short()).Msg("ember host")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sched := kernel.New(kernel.NewGoPort())
	sched.SetFatalSink(hal.NewZerologSink(log, zerolog.ErrorLevel))
	if traceOn {
		sched.SetTrace(func(ev kernel.TraceEvent) {
			log.Debug().Uint64("tick", ev.Tick).Str("task", ev.Task).Msg(ev.Kind.String())
		})
	}

	ts, err := app.New(sched, hal.NewZerologSink(log, zerolog.InfoLevel))
	if err != nil {
		log.Error().Err(err).Msg("build task set")
		os.Exit(1)
	}
	log.Info().Int("tasks", ts.Len()).Uint32("total_ram", ts.TotalRAM()).Msg("task set validated")

	if err := sched.Initialize(ts); err != nil {
		log.Error().Err(err).Msg("initialize scheduler")
		os.Exit(1)
	}

	ticker := hal.NewHostTicker()
	if err := sched.Bind(ticker); err != nil {
		log.Error().Err(err).Msg("bind tick source")
		os.Exit(1)
	}
	ticker.Start()
	go sched.Pump()

	go func() {
		if ticks > 0 {
			for sched.TickCount() < ticks && ctx.Err() == nil {
				time.Sleep(10 * time.Millisecond)
			}
		} else {
			<-ctx.Done()
		}
		ticker.Stop()
		sched.AwaitIdle()
		sched.Shutdown()
	}()

	if err := sched.Start(); err != nil {
		log.Error().Err(err).Msg("scheduler")
		os.Exit(1)
	}
	log.Info().Uint64("ticks", sched.TickCount()).Msg("stopped")
}
