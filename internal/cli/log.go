package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/ironsheep/matrix-tools-mcp/internal/config"
)

// newLogger creates a logger that writes to w at level. Timestamps are
// formatted as "HH:MM:SS.ms".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// resolveLevel picks the log level: --verbose wins, then the configured
// name, then info.
func resolveLevel(verbose bool, name string) log.Level {
	if verbose {
		return log.DebugLevel
	}
	level, err := log.ParseLevel(strings.TrimSpace(name))
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// app is the per-invocation state shared by every command.
type app struct {
	cfg    config.Config
	logger *log.Logger
}

type ctxKey int

const appKey ctxKey = 0

// withApp stores a in ctx for the subcommands.
func withApp(ctx context.Context, a *app) context.Context {
	return context.WithValue(ctx, appKey, a)
}

// appFromContext returns the state set up by the root command, or defaults
// when a command runs without it.
func appFromContext(ctx context.Context) *app {
	if ctx != nil {
		if a, ok := ctx.Value(appKey).(*app); ok {
			return a
		}
	}
	return &app{cfg: config.Default(), logger: log.Default()}
}
