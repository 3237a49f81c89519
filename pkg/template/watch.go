// watch.go — Reload the store when its templates directory changes.
package template

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay collapses bursts of editor writes into one reload.
const reloadDelay = 300 * time.Millisecond

// Watch reloads the store whenever a template file in its directory is
// created, written, removed or renamed, until ctx is done. onReload, if not
// nil, is called after every reload attempt with its error.
func (s *Store) Watch(ctx context.Context, onReload func(error)) error {
	if s.dir == "" {
		return fmt.Errorf("watch templates: no directory configured")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch templates: %w", err)
	}
	if err := w.Add(s.dir); err != nil {
		w.Close()
		return fmt.Errorf("watch templates %s: %w", s.dir, err)
	}

	go func() {
		defer w.Close()
		var timer *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !isTemplateFile(filepath.Base(ev.Name)) {
					continue
				}
				if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
					continue
				}
				s.logger.Debug("template change", "file", ev.Name, "op", ev.Op.String())
				if timer == nil {
					timer = time.NewTimer(reloadDelay)
				} else {
					timer.Reset(reloadDelay)
				}
				fire = timer.C
			case <-fire:
				fire = nil
				err := s.Load()
				if err != nil {
					s.logger.Error("template reload failed", "err", err)
				}
				if onReload != nil {
					onReload(err)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.logger.Warn("template watcher error", "err", err)
			}
		}
	}()
	return nil
}
