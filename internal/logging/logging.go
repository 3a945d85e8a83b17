// Package logging builds the slog logger shared by the game packages.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/samdwyer/corun/internal/config"
)

// ParseLevel maps a case-insensitive level name to a slog.Level.
// Accepted values are debug, info, warn and error, plus the aliases
// warning and err.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error", "err":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: unknown log level %q", config.ErrInvalid, s)
	}
}

// New returns a logger writing to w in the configured format. The returned
// LevelVar can be changed at runtime, for example after a config reload.
func New(cfg config.Log, w io.Writer) (*slog.Logger, *slog.LevelVar, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	lv := new(slog.LevelVar)
	lv.Set(level)

	opts := &slog.HandlerOptions{Level: lv}
	var h slog.Handler
	switch cfg.Format {
	case "json":
		h = slog.NewJSONHandler(w, opts)
	case "", "text":
		h = slog.NewTextHandler(w, opts)
	default:
		return nil, nil, fmt.Errorf("%w: unknown log format %q", config.ErrInvalid, cfg.Format)
	}
	return slog.New(h), lv, nil
}

// Apply updates lv from a level name, leaving it unchanged on error.
func Apply(lv *slog.LevelVar, level string) error {
	l, err := ParseLevel(level)
	if err != nil {
		return err
	}
	lv.Set(l)
	return nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
