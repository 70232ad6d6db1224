package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/poiesic/quaero/extract"
	"golang.org/x/time/rate"
)

const (
	// DefaultRate is the default number of files ingested per second.
	DefaultRate = 2.0

	// DefaultDebounce is how long a file must stay quiet before it is ingested.
	DefaultDebounce = 500 * time.Millisecond

	queueSize = 256
)

// ErrIngesterRequired is returned when a Watcher is built without an Ingester.
var ErrIngesterRequired = errors.New("ingester required")

// Ingester receives the files a Watcher picks up.
type Ingester interface {
	IngestFile(ctx context.Context, path, documentID string) (string, error)
	DeleteDocument(ctx context.Context, documentID string) error
}

// Watcher feeds file changes to an Ingester.
type Watcher struct {
	ingester   Ingester
	extensions map[string]bool
	limiter    *rate.Limiter
	debounce   time.Duration
	logger     *slog.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// Option configures a Watcher.
type Option func(*Watcher) error

// WithExtensions limits the watched files to the given extensions.
// Default is every extension the extract package supports.
func WithExtensions(extensions ...string) Option {
	return func(w *Watcher) error {
		if len(extensions) == 0 {
			return errors.New("at least one extension is required")
		}
		w.extensions = make(map[string]bool, len(extensions))
		for _, ext := range extensions {
			ext = strings.ToLower(ext)
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			w.extensions[ext] = true
		}
		return nil
	}
}

// WithRate sets how many files per second may be ingested.
func WithRate(perSecond float64) Option {
	return func(w *Watcher) error {
		if perSecond <= 0 {
			return fmt.Errorf("rate must be positive, got %v", perSecond)
		}
		w.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		return nil
	}
}

// WithDebounce sets the quiet period before a changed file is ingested.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) error {
		if d < 0 {
			return fmt.Errorf("debounce must not be negative, got %v", d)
		}
		w.debounce = d
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) error {
		w.logger = logger
		return nil
	}
}

// New creates a Watcher.
func New(ingester Ingester, opts ...Option) (*Watcher, error) {
	if ingester == nil {
		return nil, ErrIngesterRequired
	}
	w := &Watcher{
		ingester: ingester,
		limiter:  rate.NewLimiter(rate.Limit(DefaultRate), 1),
		debounce: DefaultDebounce,
		logger:   slog.Default(),
		pending:  make(map[string]*time.Timer),
	}
	if err := WithExtensions(extract.SupportedExtensions()...)(w); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}
	w.logger = w.logger.With("component", "watcher")
	return w, nil
}

// DocumentID returns the document ID used for the file at path.
func DocumentID(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(path))).String()
}

// Watches reports whether path has a watched extension.
func (w *Watcher) Watches(path string) bool {
	return w.extensions[strings.ToLower(filepath.Ext(path))]
}

// Scan ingests every watched file under dir, replacing earlier versions, and
// returns how many were submitted. Files that fail are logged and skipped.
func (w *Watcher) Scan(ctx context.Context, dir string) (int, error) {
	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !w.Watches(path) {
			return nil
		}
		if err := w.limiter.Wait(ctx); err != nil {
			return err
		}
		id := DocumentID(path)
		if err := w.ingester.DeleteDocument(ctx, id); err != nil {
			w.logger.Warn("failed to delete previous version", "path", path, "document_id", id, "err", err)
		}
		if _, err := w.ingester.IngestFile(ctx, path, id); err != nil {
			w.logger.Warn("failed to ingest file", "path", path, "err", err)
			return nil
		}
		count++
		return nil
	})
	return count, err
}

// Run watches dirs and their current subdirectories until ctx is done.
func (w *Watcher) Run(ctx context.Context, dirs ...string) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return fw.Add(path)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		w.logger.Info("watching directory", "dir", dir)
	}

	ctx, cancel := context.WithCancel(ctx)
	queue := make(chan string, queueSize)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case path := <-queue:
				w.sync(ctx, path)
			}
		}
	}()
	defer func() {
		cancel()
		w.stopPending()
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := fw.Add(event.Name); err != nil {
						w.logger.Warn("failed to watch new directory", "dir", event.Name, "err", err)
					}
					continue
				}
			}
			if !w.Watches(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				w.schedule(ctx, event.Name, queue)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "err", err)
		}
	}
}

// schedule queues path once it has been quiet for the debounce period.
func (w *Watcher) schedule(ctx context.Context, path string, queue chan<- string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.debounce)
		return
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		select {
		case queue <- path:
		case <-ctx.Done():
		}
	})
}

func (w *Watcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
}

// sync brings the document for path in line with the file: removed files
// are deleted, present ones are re-ingested.
func (w *Watcher) sync(ctx context.Context, path string) {
	if err := w.limiter.Wait(ctx); err != nil {
		return
	}

	id := DocumentID(path)
	if err := w.ingester.DeleteDocument(ctx, id); err != nil {
		w.logger.Warn("failed to delete previous version", "path", path, "document_id", id, "err", err)
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		w.logger.Info("file removed", "path", path, "document_id", id)
		return
	}
	if _, err := w.ingester.IngestFile(ctx, path, id); err != nil {
		w.logger.Warn("failed to ingest file", "path", path, "err", err)
		return
	}
	w.logger.Info("file ingested", "path", path, "document_id", id)
}
