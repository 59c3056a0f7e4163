// Package watch reruns a function whenever the sources of a project change
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/radovskyb/watcher"
	"go.uber.org/zap"
)

// DefaultInterval is how often the file system is polled
const DefaultInterval = 300 * time.Millisecond

// Options configure Run
type Options struct {
	// Dirs are watched recursively. Missing directories are skipped
	Dirs []string
	// Ignore lists directories (or files) whose changes are dropped
	Ignore   []string
	Interval time.Duration
	Logger   *zap.Logger
}

// Run calls onChange after every batch of changes until ctx is done.
// onChange never runs concurrently with itself
func Run(ctx context.Context, opts Options, onChange func(changed string)) error {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	interval := opts.Interval
	if interval == 0 {
		interval = DefaultInterval
	}

	w := watcher.New()
	// one event per poll cycle is enough to trigger a rebuild
	w.SetMaxEvents(1)
	w.FilterOps(watcher.Write, watcher.Create, watcher.Remove, watcher.Rename, watcher.Move)
	w.AddFilterHook(ignoreHook(opts.Ignore))

	for _, dir := range opts.Dirs {
		if err := w.AddRecursive(dir); err != nil {
			log.Debug("not watching", zap.String("dir", dir), zap.Error(err))
		}
	}

	errc := make(chan error, 1)
	go func() {
		errc <- w.Start(interval)
	}()
	defer w.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event := <-w.Event:
			log.Debug("change detected", zap.String("op", event.Op.String()), zap.String("path", event.Path))
			onChange(event.Path)
		case err := <-w.Error:
			log.Warn("watcher error", zap.Error(err))
		case err := <-errc:
			return err
		case <-w.Closed:
			return nil
		}
	}
}

// ignoreHook skips events below one of the ignored paths
func ignoreHook(ignore []string) watcher.FilterFileHookFunc {
	cleaned := make([]string, len(ignore))
	for i, p := range ignore {
		cleaned[i] = filepath.Clean(p)
	}
	return func(info os.FileInfo, fullPath string) error {
		for _, p := range cleaned {
			if fullPath == p || strings.HasPrefix(fullPath, p+string(filepath.Separator)) {
				return watcher.ErrSkip
			}
		}
		return nil
	}
}
