// Package logging builds the slog loggers tday uses: one-line diagnostics on
// stderr and an optional text log file for debugging.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrKey is the attribute key the diagnostic handler appends after the message.
const ErrKey = "err"

// ParseLevel maps a config string to a slog level. Empty means error.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "error":
		return slog.LevelError, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	default:
		return slog.LevelError, fmt.Errorf("unknown log level %q", s)
	}
}

// New returns a logger writing diagnostics to w at level and, when logFile is
// non-empty, every record at debug level to that file as well. The returned
// func closes the file.
func New(w io.Writer, level slog.Level, logFile string) (*slog.Logger, func() error, error) {
	diag := NewDiagnosticHandler(w, level)
	if logFile == "" {
		return slog.New(diag), func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	file := slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(fanout{diag, file}), f.Close, nil
}

// DiagnosticHandler renders each record as a single line:
//
//	[error] <msg>: <err>
//
// Attributes other than ErrKey are dropped.
type DiagnosticHandler struct {
	mu    *sync.Mutex
	w     io.Writer
	level slog.Leveler
	err   string
}

func NewDiagnosticHandler(w io.Writer, level slog.Leveler) *DiagnosticHandler {
	return &DiagnosticHandler{mu: &sync.Mutex{}, w: w, level: level}
}

func (h *DiagnosticHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *DiagnosticHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(strings.ToLower(r.Level.String()))
	b.WriteString("] ")
	b.WriteString(r.Message)

	errText := h.err
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == ErrKey {
			errText = a.Value.String()
			return false
		}
		return true
	})
	if errText != "" {
		b.WriteString(": ")
		b.WriteString(errText)
	}
	b.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *DiagnosticHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := *h
	for _, a := range attrs {
		if a.Key == ErrKey {
			h2.err = a.Value.String()
		}
	}
	return &h2
}

func (h *DiagnosticHandler) WithGroup(string) slog.Handler {
	return h
}

type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
