//go:build !tinygo

package hal

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// ZerologSink adapts a zerolog.Logger to the Logger interface, writing
// every line at a fixed level.
type ZerologSink struct {
	log   zerolog.Logger
	level zerolog.Level
}

// NewZerologSink wraps an existing zerolog logger.
func NewZerologSink(log zerolog.Logger, level zerolog.Level) *ZerologSink {
	return &ZerologSink{log: log, level: level}
}

// NewConsoleSink builds a human-readable sink writing to w.
func NewConsoleSink(w io.Writer, level zerolog.Level) *ZerologSink {
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	return NewZerologSink(zerolog.New(cw).With().Timestamp().Logger(), level)
}

func (z *ZerologSink) WriteLineString(s string) {
	z.log.WithLevel(z.level).Msg(s)
}

func (z *ZerologSink) WriteLineBytes(b []byte) {
	z.log.WithLevel(z.level).Msg(string(b))
}
