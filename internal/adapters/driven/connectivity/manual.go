package connectivity

import (
	"context"
	"sync"

	"github.com/custodia-labs/tillsync/internal/core/ports/driven"
)

// Ensure Manual implements the interface.
var _ driven.ConnectivitySource = (*Manual)(nil)

// watchBuffer is the per-watcher channel capacity.
const watchBuffer = 16

// Manual is a source toggled programmatically.
type Manual struct {
	mu       sync.Mutex
	online   bool
	watchers map[chan bool]struct{}
}

// NewManual creates a Manual source with the given initial status.
func NewManual(online bool) *Manual {
	return &Manual{
		online:   online,
		watchers: make(map[chan bool]struct{}),
	}
}

// Online returns the current status.
func (m *Manual) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// SetOnline sets the status and pushes it to every watcher.
// Repeated values are pushed too; the monitor de-duplicates.
func (m *Manual) SetOnline(online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.online = online
	for ch := range m.watchers {
		push(ch, online)
	}
}

// Watch returns a channel of status values. The channel is closed when
// ctx is done.
func (m *Manual) Watch(ctx context.Context) (<-chan bool, error) {
	ch := make(chan bool, watchBuffer)

	m.mu.Lock()
	m.watchers[ch] = struct{}{}
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.watchers, ch)
		close(ch)
		m.mu.Unlock()
	}()
	return ch, nil
}

// push sends v without blocking. A full channel loses its oldest value.
func push(ch chan bool, v bool) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
