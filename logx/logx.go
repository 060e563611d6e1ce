// Package logx is a thin structured-logging layer over log/slog. Every entry
// carries an event name plus a human-readable msg attribute.
package logx

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type Logger struct {
	slog *slog.Logger
}

// New builds a JSON logger writing to stdout.
func New(service string, level string) Logger {
	return NewWithWriter(os.Stdout, service, level)
}

func NewWithWriter(w io.Writer, service string, level string) Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				a.Key = "ts"
			}
			return a
		},
	}

	base := slog.New(slog.NewJSONHandler(w, opts))
	if strings.TrimSpace(service) != "" {
		base = base.With(slog.String("service", strings.TrimSpace(service)))
	}
	return Logger{slog: base}
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return Logger{slog: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func (l Logger) Info(ctx context.Context, event string, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelInfo, event, msg, attrs)
}

func (l Logger) Warn(ctx context.Context, event string, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelWarn, event, msg, attrs)
}

func (l Logger) Error(ctx context.Context, event string, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelError, event, msg, attrs)
}

func (l Logger) Debug(ctx context.Context, event string, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelDebug, event, msg, attrs)
}

// Slog exposes the underlying logger for libraries that want one.
func (l Logger) Slog() *slog.Logger {
	if l.slog == nil {
		return Nop().slog
	}
	return l.slog
}

func (l Logger) log(ctx context.Context, level slog.Level, event string, msg string, attrs []slog.Attr) {
	// The zero Logger is usable and silent.
	if l.slog == nil {
		return
	}
	// The record message stays under "msg"; event is a plain attribute so
	// neither key can shadow the other.
	all := make([]slog.Attr, 0, len(attrs)+1)
	all = append(all, slog.String("event", event))
	all = append(all, attrs...)
	l.slog.LogAttrs(ctx, level, msg, all...)
}

func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
