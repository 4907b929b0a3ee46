package upstream

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the fixture whenever its file changes, until ctx is done.
// Callers run it in its own goroutine. A reload failure keeps the previous
// fixture in place.
//
// The watch is on the fixture's directory, not the file: editors and
// atomic writers replace files, which drops a file-level watch.
func (s *Server) Watch(ctx context.Context) error {
	if s.cfg.FixturePath == "" {
		return fmt.Errorf("watch fixture: no fixture path configured")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch fixture: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(s.cfg.FixturePath)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch fixture: %w", err)
	}
	s.log.Info().Str("path", target).Msg("watching fixture")

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if err := s.loadFixture(); err != nil {
				s.log.Warn().Err(err).Msg("fixture reload failed")
				continue
			}
			s.log.Info().Str("path", target).Int("bytes", len(s.currentFixture())).Msg("fixture reloaded")
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Warn().Err(err).Msg("fixture watcher error")
		}
	}
}
