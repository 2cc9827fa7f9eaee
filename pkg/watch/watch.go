// Package watch reruns reconciliation when files in a build workspace
// change.
//
// Events are collected per path and delivered in one batch once the tree has
// been quiet for the debounce period. A batch that arrives while the
// previous callback is still running is held back and retried, never run
// concurrently.
package watch

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/buildsync/pkg/workspace"
)

// DefaultDebounce is used when Config.Debounce is zero.
const DefaultDebounce = 300 * time.Millisecond

// Config configures a Watcher.
type Config struct {
	Root     string
	Ignore   []string // doublestar patterns relative to Root
	Debounce time.Duration

	// OnChange receives the absolute paths changed since the last call.
	OnChange func(ctx context.Context, changed []string) error

	Logger *log.Logger
}

// Watcher monitors a directory tree.
type Watcher struct {
	cfg      Config
	root     string
	filter   workspace.Options
	fsw      *fsnotify.Watcher
	debounce time.Duration
	logger   *log.Logger
	started  atomic.Bool
}

// New registers every non-excluded directory under cfg.Root.
func New(cfg Config) (*Watcher, error) {
	if cfg.OnChange == nil {
		return nil, errors.New("watch: OnChange is required")
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve root: %w", err)
	}
	filter := workspace.Options{Ignore: cfg.Ignore}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	w := &Watcher{
		cfg:      cfg,
		root:     root,
		filter:   filter,
		fsw:      fsw,
		debounce: debounce,
		logger:   logger.WithPrefix("watch"),
	}
	if err := w.addDirectories(); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run processes events until ctx is cancelled. It returns nil on
// cancellation. Run may be called once.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("watch: Run called more than once")
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			w.logger.Debug("previous run still in progress, retrying")
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		if err := w.cfg.OnChange(ctx, changed); err != nil {
			w.logger.Error("reconcile failed", "err", err)
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("close watcher", "err", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: event channel closed")
			}
			if evt.Has(fsnotify.Chmod) && !evt.Has(fsnotify.Write) {
				continue
			}
			rel, err := filepath.Rel(w.root, evt.Name)
			if err != nil || w.filter.Excluded(filepath.ToSlash(rel)) {
				continue
			}
			paths := []string{evt.Name}
			if evt.Has(fsnotify.Create) {
				if files, isDir := w.maybeAddDir(evt.Name); isDir {
					paths = files
				}
			}
			if len(paths) == 0 {
				continue
			}

			mu.Lock()
			for _, p := range paths {
				pending[p] = struct{}{}
			}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: error channel closed")
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				w.logger.Warn("events dropped, next change triggers a full pass", "err", err)
				continue
			}
			w.logger.Error("fsnotify", "err", err)
		}
	}
}

func (w *Watcher) addDirectories() error {
	return filepath.WalkDir(w.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("watch: walk %s: %w", path, err)
		}
		if !d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(w.root, path)
		if err != nil {
			return nil
		}
		if rel != "." && w.filter.Excluded(filepath.ToSlash(rel)) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add %s: %w", path, err)
		}
		return nil
	})
}

// maybeAddDir starts watching a newly created directory tree. It reports
// whether path is a directory and returns the files already inside it.
func (w *Watcher) maybeAddDir(path string) ([]string, bool) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return nil, false
	}
	var files []string
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(w.root, p)
		if err != nil || w.filter.Excluded(filepath.ToSlash(rel)) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			files = append(files, p)
			return nil
		}
		if err := w.fsw.Add(p); err != nil {
			w.logger.Warn("watch new directory", "path", p, "err", err)
		}
		return nil
	})
	if err != nil {
		w.logger.Warn("walk new directory", "path", path, "err", err)
	}
	return files, true
}
