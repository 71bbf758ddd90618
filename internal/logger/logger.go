// Package logger provides slog loggers tagged with the module that owns them.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
)

// Format selects the root handler encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

var (
	level = new(slog.LevelVar)
	root  atomic.Pointer[slog.Handler]
)

func init() {
	debugEnabled, _ := strconv.ParseBool(os.Getenv("LABSTRUCT_DEBUG"))
	if debugEnabled {
		level.Set(slog.LevelDebug)
	}
	setRoot(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Init replaces the root handler. Loggers obtained earlier from GetLogger
// pick up the new handler on their next record.
func Init(w io.Writer, lvl slog.Level, format Format) error {
	opts := &slog.HandlerOptions{Level: level}
	switch format {
	case FormatText, "":
		setRoot(slog.NewTextHandler(w, opts))
	case FormatJSON:
		setRoot(slog.NewJSONHandler(w, opts))
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	level.Set(lvl)
	return nil
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

// SetLevel changes the minimum level of every logger.
func SetLevel(l slog.Level) {
	level.Set(l)
}

// GetLogger returns a logger with the given prefix for easier filtering
func GetLogger(prefix string) *slog.Logger {
	return slog.New(&moduleHandler{}).With("module", prefix)
}

func setRoot(h slog.Handler) {
	root.Store(&h)
}

func current() slog.Handler {
	return *root.Load()
}

// moduleHandler defers to whatever root handler is installed when a record
// is handled, replaying the attrs and groups it collected.
type moduleHandler struct {
	ops []func(slog.Handler) slog.Handler
}

func (h *moduleHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return current().Enabled(ctx, l)
}

func (h *moduleHandler) Handle(ctx context.Context, record slog.Record) error {
	hd := current()
	for _, op := range h.ops {
		hd = op(hd)
	}
	return hd.Handle(ctx, record)
}

func (h *moduleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.with(func(hd slog.Handler) slog.Handler { return hd.WithAttrs(attrs) })
}

func (h *moduleHandler) WithGroup(name string) slog.Handler {
	return h.with(func(hd slog.Handler) slog.Handler { return hd.WithGroup(name) })
}

func (h *moduleHandler) with(op func(slog.Handler) slog.Handler) *moduleHandler {
	ops := make([]func(slog.Handler) slog.Handler, len(h.ops), len(h.ops)+1)
	copy(ops, h.ops)
	return &moduleHandler{ops: append(ops, op)}
}
