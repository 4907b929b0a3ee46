// Package log configures the process-wide zerolog logger.
//
// Only collaborator packages that perform I/O (probe, upstream, browse,
// harness, cli) log anything. The verification engine packages (contract,
// schema, order, page, gate) are pure and never import this package.
package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config captures options for the global logger.
type Config struct {
	Level   string    // optional level name ("debug", "info", ...); LOG_LEVEL env as fallback
	Output  io.Writer // defaults to os.Stderr
	Service string    // service field attached to every entry; defaults to "soundcheck"
}

var (
	once sync.Once
	base zerolog.Logger
)

// Configure initialises the global logger exactly once. Later calls are no-ops,
// so tests and library consumers may call it defensively.
func Configure(cfg Config) {
	once.Do(func() {
		level := zerolog.InfoLevel
		if cfg.Level != "" {
			if parsed, err := zerolog.ParseLevel(cfg.Level); err == nil {
				level = parsed
			}
		} else if env := os.Getenv("LOG_LEVEL"); env != "" {
			if parsed, err := zerolog.ParseLevel(env); err == nil {
				level = parsed
			}
		}
		zerolog.SetGlobalLevel(level)
		zerolog.TimeFieldFormat = time.RFC3339

		writer := cfg.Output
		if writer == nil {
			writer = os.Stderr
		}

		service := cfg.Service
		if service == "" {
			service = "soundcheck"
		}

		base = zerolog.New(writer).With().
			Timestamp().
			Str("service", service).
			Logger()
	})
}

// Base returns the configured base logger.
func Base() zerolog.Logger {
	Configure(Config{})
	return base
}

// WithComponent returns a child logger annotated with the given component name.
func WithComponent(component string) zerolog.Logger {
	return Base().With().Str("component", component).Logger()
}

// Nop returns a disabled logger for tests and silent library use.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
