package dictionary

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads d whenever its source file is written, created or renamed into place.
// The parent directory is watched so editors that swap files atomically are seen.
// onReload, if set, receives the outcome of every reload attempt. Watch blocks until
// ctx is done.
func Watch(ctx context.Context, d *Dictionary, debounce time.Duration, onReload func(ReloadResult, error)) error {
	if d.Path() == "" {
		return errors.New("dictionary has no source path")
	}
	target, err := filepath.Abs(d.Path())
	if err != nil {
		return fmt.Errorf("resolve dictionary path: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = w.Close() }()
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}
	d.logger.Info("dictionary.watch.start", "path", target, "debounce", debounce)

	var timer *time.Timer
	var fire <-chan time.Time
	reload := func() {
		res, err := d.Reload()
		if onReload != nil {
			onReload(res, err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			d.logger.Info("dictionary.watch.stop", "path", target)
			return nil
		case e, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(e.Name) != target {
				continue
			}
			if e.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounce <= 0 {
				reload()
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			reload()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			d.logger.Warn("dictionary.watch.error", "path", target, "error", err)
		}
	}
}
