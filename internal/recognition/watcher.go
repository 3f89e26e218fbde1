package recognition

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// DictionaryStore holds the active dictionary and swaps it on reload.
// Readers never block.
type DictionaryStore struct {
	current atomic.Pointer[Dictionary]
	path    string
	logger  *slog.Logger
}

// NewDictionaryStore loads the dictionary at path, or the embedded one if
// path is empty
func NewDictionaryStore(path string, logger *slog.Logger) (*DictionaryStore, error) {
	d, err := LoadDictionary(path)
	if err != nil {
		return nil, err
	}
	s := &DictionaryStore{path: path, logger: logger}
	s.current.Store(d)
	return s, nil
}

// Current returns the active dictionary
func (s *DictionaryStore) Current() *Dictionary {
	return s.current.Load()
}

// Reload re-reads the dictionary file. On failure the previous dictionary
// stays active.
func (s *DictionaryStore) Reload() error {
	d, err := LoadDictionary(s.path)
	if err != nil {
		return err
	}
	s.current.Store(d)
	return nil
}

// Watch reloads the dictionary whenever its file changes, until ctx is done.
// The parent directory is watched so that editors replacing the file are
// noticed.
func (s *DictionaryStore) Watch(ctx context.Context) error {
	if s.path == "" {
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(s.path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", target, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := s.Reload(); err != nil {
				s.logger.Warn("Dictionary reload failed, keeping previous", "path", target, "error", err)
				continue
			}
			s.logger.Info("Dictionary reloaded", "path", target)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("Dictionary watcher error", "error", err)
		}
	}
}
