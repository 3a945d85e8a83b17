package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads path whenever it changes and sends each valid result on
// the returned channel. Invalid files are logged and skipped. The channel
// is closed when ctx is done.
//
// The directory is watched rather than the file so editors that replace
// the file on save are still seen.
func Watch(ctx context.Context, path string, logger *slog.Logger) (<-chan *Config, error) {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	out := make(chan *Config, 1)
	go func() {
		defer close(out)
		defer w.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				cfg, err := Load(abs)
				if err != nil {
					logger.Warn("config reload failed", "path", abs, "error", err)
					continue
				}
				logger.Info("config reloaded", "path", abs)
				// Keep only the newest config if the reader is behind.
				select {
				case <-out:
				default:
				}
				select {
				case out <- cfg:
				case <-ctx.Done():
					return
				}

			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("config watcher error", "path", abs, "error", err)
			}
		}
	}()
	return out, nil
}
