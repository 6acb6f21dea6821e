// Package logging wraps log/slog: a console text handler plus an optional
// weekly-rotating JSON file, exposed through package-level helpers.
package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// Options configures the global logger.
type Options struct {
	Dir            string
	Level          slog.Level
	RetentionWeeks int
	MaxFileSize    int64
}

var (
	mu      sync.RWMutex
	logger  *slog.Logger
	writer  *RotatingWriter
	level   = new(slog.LevelVar)
	console = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
)

// ParseLevel maps LOG_LEVEL values to slog levels. Unknown values mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Init installs the global logger. An empty Dir logs to the console only.
// When the log directory cannot be used, Init falls back to the console and
// reports why.
func Init(opts Options) {
	level.Set(opts.Level)

	handlers := []slog.Handler{slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})}
	var w *RotatingWriter
	if opts.Dir != "" {
		var err error
		w, err = NewRotatingWriter(opts.Dir, opts.RetentionWeeks, opts.MaxFileSize)
		if err != nil {
			console.Error("File logging disabled", "dir", opts.Dir, "error", err)
		} else {
			w.StartCleanup(24 * time.Hour)
			handlers = append(handlers, slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
		}
	}

	l := slog.New(&multiHandler{handlers: handlers})

	mu.Lock()
	old := writer
	logger, writer = l, w
	mu.Unlock()
	slog.SetDefault(l)

	if old != nil {
		_ = old.Close()
	}
}

// Close releases the log file. Later calls log to the console.
func Close() {
	mu.Lock()
	w := writer
	logger, writer = nil, nil
	mu.Unlock()
	slog.SetDefault(console)
	if w != nil {
		_ = w.Close()
	}
}

// Logger returns the global logger, or the console fallback.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if logger == nil {
		return console
	}
	return logger
}

func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}

func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

// multiHandler fans records out to every handler enabled for their level.
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	hs := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		hs[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: hs}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	hs := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		hs[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: hs}
}
