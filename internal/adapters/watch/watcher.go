package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const DefaultDebounce = 150 * time.Millisecond

// Change reports that one of the watched state files was written, replaced
// or removed by something other than this process's pending write.
type Change struct {
	Path string
	At   time.Time
}

// Watcher watches a directory and emits a debounced Change whenever a
// matching file changes. Atomic rename writes are why the directory is
// watched instead of the file itself.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	dir      string
	names    map[string]struct{}
	debounce time.Duration
	logger   *zap.Logger
	changes  chan Change
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

type Option func(*Watcher)

func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New watches dir for the given base names. No names means every file.
func New(dir string, names []string, opts ...Option) (*Watcher, error) {
	if dir == "" {
		return nil, errors.New("watch directory is empty")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		watcher:  fw,
		dir:      dir,
		names:    make(map[string]struct{}, len(names)),
		debounce: DefaultDebounce,
		logger:   zap.NewNop(),
		changes:  make(chan Change, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, name := range names {
		w.names[filepath.Base(name)] = struct{}{}
	}
	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// ForFile watches a single file by watching its parent directory.
func ForFile(path string, opts ...Option) (*Watcher, error) {
	return New(filepath.Dir(path), []string{filepath.Base(path)}, opts...)
}

// Changes delivers at most one buffered change; bursts are coalesced.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Start begins watching. It is non-blocking and safe to call twice.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	if err := os.MkdirAll(w.dir, 0o700); err != nil {
		return fmt.Errorf("create watch directory: %w", err)
	}
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}
	w.running = true

	go w.run(ctx)

	return nil
}

func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.running
}

// Stop ends the event loop and releases the underlying watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return w.watcher.Close()
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	return w.watcher.Close()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending string
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("state file event", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			pending = event.Name
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("state watcher error", zap.Error(err))
		case <-timerC:
			timerC = nil
			w.emit(Change{Path: pending, At: time.Now()})
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	if len(w.names) == 0 {
		return true
	}
	_, ok := w.names[filepath.Base(event.Name)]
	return ok
}

func (w *Watcher) emit(change Change) {
	select {
	case w.changes <- change:
	default:
		// a change is already queued; the reader reloads everything anyway
	}
}
