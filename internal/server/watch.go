package server

import (
	"context"

	"github.com/fsnotify/fsnotify"

	"github.com/fathom-metrics/quantale/internal/config"
)

// Watch reloads the server's ruleset bundle whenever path changes on disk,
// until ctx is cancelled. Reload failures are logged and the previous,
// still-valid bundle stays in effect.
func (s *Server) Watch(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				bundle, err := config.Load(path)
				if err != nil {
					s.log.LogLine("server: reload of", path, "failed:", err)
					continue
				}
				if err := s.reload(bundle); err != nil {
					s.log.LogLine("server: reload of", path, "rejected:", err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.log.LogLine("server: watch error:", err)
			}
		}
	}()
	return nil
}
