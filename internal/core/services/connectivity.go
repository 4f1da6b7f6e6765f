package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/tillsync/internal/core/domain"
	"github.com/custodia-labs/tillsync/internal/core/ports/driven"
	"github.com/custodia-labs/tillsync/internal/core/ports/driving"
	"github.com/custodia-labs/tillsync/internal/logger"
)

// ConnectivityListener receives connectivity transitions.
type ConnectivityListener func(domain.ConnectivityEvent)

// ConnectivityMonitor turns raw source signals into transition events.
// Repeated values are ignored. Every transition is delivered to listeners,
// and a transition to online starts one replay pass in the background so
// later transitions are never held up by it.
type ConnectivityMonitor struct {
	source driven.ConnectivitySource
	syncer driving.SyncOrchestrator

	online atomic.Bool

	mu        sync.Mutex
	listeners []ConnectivityListener
	running   bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewConnectivityMonitor creates a monitor over source. syncer may be nil.
func NewConnectivityMonitor(source driven.ConnectivitySource, syncer driving.SyncOrchestrator) *ConnectivityMonitor {
	m := &ConnectivityMonitor{source: source, syncer: syncer}
	m.online.Store(source.Online())
	return m
}

// SetSyncer sets the orchestrator triggered on reconnect. Call before Start.
func (m *ConnectivityMonitor) SetSyncer(syncer driving.SyncOrchestrator) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncer = syncer
}

// Online returns the last observed status.
func (m *ConnectivityMonitor) Online() bool {
	return m.online.Load()
}

// Subscribe registers a listener. Listeners run on the monitor goroutine.
func (m *ConnectivityMonitor) Subscribe(l ConnectivityListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// Start begins watching the source. It returns once the watch is set up.
func (m *ConnectivityMonitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return nil
	}

	watchCtx, cancel := context.WithCancel(ctx)
	updates, err := m.source.Watch(watchCtx)
	if err != nil {
		cancel()
		return fmt.Errorf("watch connectivity: %w", err)
	}

	m.running = true
	m.cancel = cancel
	m.online.Store(m.source.Online())

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.run(watchCtx, updates)
	}()
	return nil
}

// Stop stops watching and waits for the monitor goroutine to exit.
func (m *ConnectivityMonitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	m.cancel()
	m.mu.Unlock()

	m.wg.Wait()
}

func (m *ConnectivityMonitor) run(ctx context.Context, updates <-chan bool) {
	for {
		select {
		case <-ctx.Done():
			return
		case online, ok := <-updates:
			if !ok {
				return
			}
			m.observe(ctx, online)
		}
	}
}

// observe records a raw status value and emits a transition if it changed.
func (m *ConnectivityMonitor) observe(ctx context.Context, online bool) {
	if m.online.Swap(online) == online {
		return
	}

	ev := domain.ConnectivityEvent{Kind: domain.BecameOffline, At: time.Now().UTC()}
	if online {
		ev.Kind = domain.BecameOnline
	}
	logger.Info("connectivity: %s", ev.Kind)

	m.mu.Lock()
	listeners := make([]ConnectivityListener, len(m.listeners))
	copy(listeners, m.listeners)
	syncer := m.syncer
	m.mu.Unlock()

	for _, l := range listeners {
		l(ev)
	}

	if online && syncer != nil {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			m.replay(ctx, syncer)
		}()
	}
}

func (m *ConnectivityMonitor) replay(ctx context.Context, syncer driving.SyncOrchestrator) {
	_, err := syncer.SyncAll(ctx)
	switch {
	case err == nil,
		errors.Is(err, domain.ErrOffline),
		errors.Is(err, domain.ErrSyncInProgress),
		errors.Is(err, context.Canceled):
	default:
		logger.Warn("connectivity: replay after reconnect failed: %v", err)
	}
}
