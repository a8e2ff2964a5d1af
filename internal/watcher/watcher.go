// Package watcher reports files that settle in a folder. It backs
// "mldata push --watch".
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/leefowlercu/mldata/internal/fsutil"
	"github.com/leefowlercu/mldata/internal/metrics"
)

// Default coalescing windows.
const (
	DefaultSettleWindow = 500 * time.Millisecond
	DefaultRemoveGrace  = 2 * time.Second
)

// ErrAlreadyRunning is returned by Start on a running watcher.
var ErrAlreadyRunning = errors.New("watcher already running")

// Event is a settled change to a regular file. Size, Hash and ModTime are
// zero for removals.
type Event struct {
	Path    string
	Op      Op
	Size    int64
	Hash    string
	ModTime time.Time
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithSettleWindow sets how long a file must be quiet before it is reported.
func WithSettleWindow(d time.Duration) Option {
	return func(w *Watcher) { w.settle = d }
}

// WithRemoveGrace sets how long a removal waits for a replacing create.
func WithRemoveGrace(d time.Duration) Option {
	return func(w *Watcher) { w.removeGrace = d }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) { w.logger = logger }
}

// Watcher watches a single folder, non-recursively.
type Watcher struct {
	dir         string
	fsWatcher   *fsnotify.Watcher
	coalescer   *Coalescer
	logger      *slog.Logger
	settle      time.Duration
	removeGrace time.Duration

	events chan Event
	errs   chan error

	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a watcher for dir. Call Start to begin delivering events.
func New(dir string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path; %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path; %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", abs)
	}

	w := &Watcher{
		dir:         abs,
		logger:      slog.Default(),
		settle:      DefaultSettleWindow,
		removeGrace: DefaultRemoveGrace,
		events:      make(chan Event, 64),
		errs:        make(chan error, 1),
		stopCh:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher; %w", err)
	}
	if err := fsw.Add(abs); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("failed to watch %s; %w", abs, err)
	}

	w.fsWatcher = fsw
	w.coalescer = NewCoalescer(w.settle, w.removeGrace)
	return w, nil
}

// Dir returns the absolute path of the watched folder.
func (w *Watcher) Dir() string { return w.dir }

// Events delivers settled changes. It is closed by Stop.
func (w *Watcher) Events() <-chan Event { return w.events }

// Errors reports fsnotify errors. Delivery is best effort.
func (w *Watcher) Errors() <-chan error { return w.errs }

// Start begins processing filesystem notifications until ctx is done or
// Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return ErrAlreadyRunning
	}
	w.running = true

	w.wg.Add(2)
	go w.readLoop(ctx)
	go w.settleLoop(ctx)

	w.logger.Debug("watching folder", "dir", w.dir)
	return nil
}

// Stop halts the watcher and closes Events. It is safe to call more than
// once, and before Start.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		w.coalescer.Stop()
		close(w.stopCh)
		w.wg.Wait()
		err = w.fsWatcher.Close()
		close(w.events)
	})
	return err
}

func (w *Watcher) readLoop(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case ev, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("fsnotify error", "error", err)
			select {
			case w.errs <- err:
			default:
			}
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if Ignored(ev.Name) || filepath.Dir(ev.Name) != w.dir {
		return
	}

	var op Op
	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		op = OpRemove
	case ev.Has(fsnotify.Create):
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			return
		}
		op = OpCreate
	case ev.Has(fsnotify.Write):
		op = OpWrite
	default:
		return
	}

	w.coalescer.Add(ev.Name, op)
}

func (w *Watcher) settleLoop(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case ch := <-w.coalescer.out:
			ev, ok := w.describe(ch)
			if !ok {
				continue
			}
			metrics.RecordWatcherEvent(ev.Op.String())
			select {
			case w.events <- ev:
			case <-ctx.Done():
				return
			case <-w.stopCh:
				return
			}
		}
	}
}

// describe stats and hashes a settled path. A path that vanished before it
// could be read is reported as removed.
func (w *Watcher) describe(ch change) (Event, bool) {
	ev := Event{Path: ch.path, Op: ch.op}
	if ch.op == OpRemove {
		return ev, true
	}

	info, err := os.Stat(ch.path)
	if err != nil {
		if os.IsNotExist(err) {
			ev.Op = OpRemove
			return ev, true
		}
		w.logger.Warn("failed to stat file", "path", ch.path, "error", err)
		return ev, false
	}
	if !info.Mode().IsRegular() {
		return ev, false
	}

	hash, err := fsutil.HashFile(ch.path)
	if err != nil {
		w.logger.Warn("failed to hash file", "path", ch.path, "error", err)
		return ev, false
	}

	ev.Size = info.Size()
	ev.ModTime = info.ModTime()
	ev.Hash = hash
	return ev, true
}

// Ignored reports hidden files and transient editor artifacts.
func Ignored(path string) bool {
	name := filepath.Base(path)
	switch {
	case strings.HasPrefix(name, "."):
		return true
	case strings.HasSuffix(name, ".swp"), strings.HasSuffix(name, ".swo"), strings.HasSuffix(name, "~"):
		return true
	case name == "4913":
		// vim write probe
		return true
	case strings.HasPrefix(name, "#") && strings.HasSuffix(name, "#"):
		return true
	case strings.HasSuffix(name, ".part"), strings.HasSuffix(name, ".tmp"):
		return true
	}
	return false
}
