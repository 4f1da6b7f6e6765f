package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/custodia-labs/tillsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/tillsync/internal/core/domain"
	"github.com/custodia-labs/tillsync/internal/core/ports/driven"
)

// --- Mock implementations for offline-sync testing ---

type createSaleCall struct {
	Payload        json.RawMessage
	IdempotencyKey string
}

// mockRemoteAPI implements driven.RemoteAPI for testing.
type mockRemoteAPI struct {
	mu sync.Mutex

	// createErr decides the outcome of each CreateSale call.
	createErr   func(payload json.RawMessage) error
	createResp  json.RawMessage
	createCalls []createSaleCall

	products     []domain.CachedProduct
	productsErr  error
	productCalls int
}

func (m *mockRemoteAPI) CreateSale(_ context.Context, payload json.RawMessage, key string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls = append(m.createCalls, createSaleCall{Payload: payload, IdempotencyKey: key})
	if m.createErr != nil {
		if err := m.createErr(payload); err != nil {
			return nil, err
		}
	}
	if m.createResp != nil {
		return m.createResp, nil
	}
	return json.RawMessage(`{"id":1}`), nil
}

func (m *mockRemoteAPI) ListProducts(_ context.Context, _ int64) ([]domain.CachedProduct, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.productCalls++
	if m.productsErr != nil {
		return nil, m.productsErr
	}
	out := make([]domain.CachedProduct, len(m.products))
	copy(out, m.products)
	return out, nil
}

func (m *mockRemoteAPI) calls() []createSaleCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]createSaleCall, len(m.createCalls))
	copy(out, m.createCalls)
	return out
}

func (m *mockRemoteAPI) callsFor(payload string) int {
	n := 0
	for _, c := range m.calls() {
		if string(c.Payload) == payload {
			n++
		}
	}
	return n
}

// mockSource implements driven.ConnectivitySource with a test-driven channel.
type mockSource struct {
	mu       sync.Mutex
	online   bool
	updates  chan bool
	watchErr error
}

func newMockSource(online bool) *mockSource {
	return &mockSource{online: online, updates: make(chan bool, 8)}
}

func (m *mockSource) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

func (m *mockSource) Watch(_ context.Context) (<-chan bool, error) {
	if m.watchErr != nil {
		return nil, m.watchErr
	}
	return m.updates, nil
}

func (m *mockSource) set(online bool) {
	m.mu.Lock()
	m.online = online
	m.mu.Unlock()
	m.updates <- online
}

// mockMetrics implements driven.SyncMetrics for testing.
type mockMetrics struct {
	mu      sync.Mutex
	synced  int
	failed  int
	dropped int
	passes  int
	depth   int
}

func (m *mockMetrics) ItemSynced(domain.Operation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.synced++
}

func (m *mockMetrics) ItemFailed(domain.Operation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed++
}

func (m *mockMetrics) ItemDropped(domain.Operation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropped++
}

func (m *mockMetrics) PassCompleted(domain.SyncReport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.passes++
}

func (m *mockMetrics) QueueDepth(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.depth = n
}

var errQueueWrite = errors.New("queue write failed")

// failingQueueStore rejects every Add.
type failingQueueStore struct {
	driven.QueueStore
}

func (failingQueueStore) Add(context.Context, *domain.QueueItem) (int64, error) {
	return 0, errQueueWrite
}

// brokenQueueOfflineStore is a memory store whose queue cannot be written.
type brokenQueueOfflineStore struct {
	*memory.Store
}

func (s brokenQueueOfflineStore) QueueStore() driven.QueueStore {
	return failingQueueStore{QueueStore: s.Store.QueueStore()}
}

var (
	_ driven.RemoteAPI          = (*mockRemoteAPI)(nil)
	_ driven.ConnectivitySource = (*mockSource)(nil)
	_ driven.SyncMetrics        = (*mockMetrics)(nil)
	_ driven.OfflineStore       = brokenQueueOfflineStore{}
)
