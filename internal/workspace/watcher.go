package workspace

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// FragmentWatcher reports segment indices as their subtitle fragments
// appear on disk, for observing a recognition run from another process or
// a live status view.
type FragmentWatcher struct {
	watcher   *fsnotify.Watcher
	fragments map[string]int
	updates   chan int
}

func NewFragmentWatcher(artifacts []SegmentArtifact) (*FragmentWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	fragments := make(map[string]int, len(artifacts))
	dirs := make(map[string]bool)
	for _, a := range artifacts {
		path := filepath.Clean(a.FragmentPath())
		fragments[path] = a.Index
		dirs[filepath.Dir(path)] = true
	}

	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	return &FragmentWatcher{
		watcher:   watcher,
		fragments: fragments,
		updates:   make(chan int, len(artifacts)),
	}, nil
}

// Updates delivers the index of each segment whose fragment file is
// created or rewritten while watching.
func (w *FragmentWatcher) Updates() <-chan int {
	return w.updates
}

// Run blocks until ctx is cancelled or the watcher fails.
func (w *FragmentWatcher) Run(ctx context.Context) error {
	defer close(w.updates)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if index, known := w.fragments[filepath.Clean(event.Name)]; known {
				select {
				case w.updates <- index:
				default:
					// observer fell behind; a later scan catches up
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

func (w *FragmentWatcher) Close() error {
	return w.watcher.Close()
}
