package envload

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits after the last file event before
// reloading.
const DefaultDebounce = 100 * time.Millisecond

// Watch loads paths with l, passes the entries to onChange, and then reloads
// and calls onChange again whenever one of the files is written, created,
// renamed or removed. Events are debounced by DefaultDebounce.
//
// The parent directories are watched rather than the files, so editors that
// replace a file on save and sources that do not exist yet are both picked up.
// Glob patterns are resolved once, when Watch starts. A source whose directory
// cannot be watched is skipped unless l is strict.
//
// Watch blocks until ctx is done, returning nil, or until loading or the
// underlying watcher fails. A strict Loader makes a removed source fatal.
func Watch(ctx context.Context, l *Loader, paths []string, onChange func([]Entry)) error {
	sources, err := l.resolve(paths)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create env watcher: %w", err)
	}
	defer w.Close()

	watched := make(map[string]bool, len(sources))
	dirs := make(map[string]bool)
	for _, p := range sources {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolve env source %q: %w", p, err)
		}
		watched[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := w.Add(dir); err != nil {
			if l.strict {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
			l.logger.Debug("not watching env source directory", "dir", dir, "error", err)
		}
	}

	reload := func() error {
		entries, err := l.Load(sources...)
		if err != nil {
			return err
		}
		onChange(entries)
		return nil
	}
	if err := reload(); err != nil {
		return err
	}

	timer := time.NewTimer(DefaultDebounce)
	timer.Stop()
	defer timer.Stop()

	const relevant = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !watched[filepath.Clean(ev.Name)] || ev.Op&relevant == 0 {
				continue
			}
			l.logger.Debug("env source changed", "path", ev.Name, "op", ev.Op.String())
			timer.Reset(DefaultDebounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("env watcher: %w", err)
		case <-timer.C:
			if err := reload(); err != nil {
				return err
			}
		}
	}
}
