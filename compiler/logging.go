package compiler

import (
	"os"

	"github.com/rs/zerolog"
)

// newLogger builds the per-compilation logger. With Trace unset, only
// warnings and above are emitted, keeping a normal compile silent.
func newLogger(opts Options) zerolog.Logger {
	level := zerolog.WarnLevel
	if opts.Trace {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true}).
		Level(level).
		With().
		Timestamp().
		Str("component", "compiler").
		Logger()
}
