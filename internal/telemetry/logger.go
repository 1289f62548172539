package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// NewLogger builds a JSON logger writing to w and, when logFile is set,
// appending to that file as well. A nil w keeps only the file output.
func NewLogger(w io.Writer, debug bool, logFile string) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handlers []slog.Handler
	if w != nil {
		handlers = append(handlers, slog.NewJSONHandler(w, opts))
	}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err == nil {
			handlers = append(handlers, slog.NewJSONHandler(f, opts))
		} else {
			slog.Error("Failed to open log file", "path", logFile, "error", err)
		}
	}

	var handler slog.Handler
	switch len(handlers) {
	case 0:
		handler = slog.DiscardHandler
	case 1:
		handler = handlers[0]
	default:
		handler = &multiHandler{handlers: handlers}
	}
	return slog.New(handler)
}

type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, h := range m.handlers {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		if err := h.Handle(ctx, record.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newHandlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		newHandlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: newHandlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	newHandlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		newHandlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: newHandlers}
}

// LogDebug logs a debug message.
func LogDebug(msg string, args ...any) {
	slog.Debug(msg, args...)
}

// LogError logs an error message.
func LogError(msg string, err error, args ...any) {
	slog.Error(msg, append(args, "error", err)...)
}
