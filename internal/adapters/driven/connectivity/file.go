package connectivity

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/tillsync/internal/core/ports/driven"
	"github.com/custodia-labs/tillsync/internal/logger"
)

// Ensure FileSource implements the interface.
var _ driven.ConnectivitySource = (*FileSource)(nil)

// Status file contents.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// ErrSourceClosed is returned by Watch after Close.
var ErrSourceClosed = errors.New("connectivity source closed")

// FileSource reads connectivity from a status file containing "online" or
// "offline". A missing or unrecognised file counts as online.
type FileSource struct {
	path string

	mu       sync.Mutex
	closed   bool
	watchers []*fsnotify.Watcher
}

// NewFileSource creates a source for the status file at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: filepath.Clean(path)}
}

// Path returns the watched status file.
func (f *FileSource) Path() string {
	return f.path
}

// Online reads the status file.
func (f *FileSource) Online() bool {
	return readStatus(f.path)
}

// Watch watches the status file's directory, so that files replaced by
// rename are picked up. Every change to the file pushes its current status.
func (f *FileSource) Watch(ctx context.Context) (<-chan bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, ErrSourceClosed
	}

	dir := filepath.Dir(f.path)
	if info, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("status file directory: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("status file directory: %s is not a directory", dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	f.watchers = append(f.watchers, watcher)

	ch := make(chan bool, watchBuffer)
	go f.run(ctx, watcher, ch)
	return ch, nil
}

// Close stops all watchers. It is idempotent.
func (f *FileSource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	for _, w := range f.watchers {
		_ = w.Close()
	}
	f.watchers = nil
	return nil
}

func (f *FileSource) run(ctx context.Context, watcher *fsnotify.Watcher, ch chan bool) {
	defer close(ch)
	defer watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !f.relevant(event) {
				continue
			}
			select {
			case ch <- readStatus(f.path):
			case <-ctx.Done():
				return
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("connectivity: watcher error on %s: %v", f.path, err)
		}
	}
}

// relevant reports whether event can change the status file's content.
func (f *FileSource) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != f.path {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

func readStatus(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return true
	}
	return parseStatus(string(data))
}

func parseStatus(content string) bool {
	return !strings.EqualFold(strings.TrimSpace(content), StatusOffline)
}

// WriteStatus writes the status file atomically.
func WriteStatus(path string, online bool) error {
	status := StatusOffline
	if online {
		status = StatusOnline
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(status+"\n"), 0o600); err != nil {
		return fmt.Errorf("write status: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace status: %w", err)
	}
	return nil
}
