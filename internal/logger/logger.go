package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
)

// Options controls the process logger.
type Options struct {
	Development bool
	Level       string
	SentryDSN   string
	Output      io.Writer
}

// Init installs the default slog logger. Development uses text output at
// debug level, production uses JSON at info level. Errors are also sent to
// Sentry when a DSN is configured.
func Init(opts Options) *slog.Logger {
	output := opts.Output
	if output == nil {
		output = os.Stdout
	}

	level := ParseLevel(opts.Level, opts.Development)
	handlerOptions := &slog.HandlerOptions{Level: level}

	var handlers []slog.Handler
	if opts.Development {
		handlers = append(handlers, slog.NewTextHandler(output, handlerOptions))
	} else {
		handlers = append(handlers, slog.NewJSONHandler(output, handlerOptions))
	}

	if opts.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{Dsn: opts.SentryDSN})
		if err == nil {
			handlers = append(handlers, slogsentry.Option{Level: slog.LevelError}.NewSentryHandler())
		} else {
			slog.Warn("sentry init failed", "error", err)
		}
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = slogmulti.Fanout(handlers...)
	} else {
		handler = handlers[0]
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}

// ParseLevel maps LOG_LEVEL names to slog levels.
func ParseLevel(raw string, development bool) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	if development {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
