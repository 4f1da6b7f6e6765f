package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/tillsync/internal/core/domain"
	"github.com/custodia-labs/tillsync/internal/core/ports/driven"
	"github.com/custodia-labs/tillsync/internal/core/ports/driving"
	"github.com/custodia-labs/tillsync/internal/logger"
)

// Ensure OfflineService implements the interface.
var _ driving.OfflineService = (*OfflineService)(nil)

// OfflineDeps are the collaborators of an OfflineService.
type OfflineDeps struct {
	// Store is required.
	Store driven.OfflineStore

	// API may be nil, in which case every sale is recorded offline.
	API driven.RemoteAPI

	// Source defaults to always online when nil.
	Source driven.ConnectivitySource

	// Metrics is optional.
	Metrics driven.SyncMetrics

	// OnlineNoticeTTL is how long the back-online notice stays up.
	OnlineNoticeTTL time.Duration
}

// OfflineService wires the durable store, connectivity monitor, sync
// queue, replay executor and product cache into one object.
type OfflineService struct {
	store    driven.OfflineStore
	api      driven.RemoteAPI
	queue    *SyncQueue
	monitor  *ConnectivityMonitor
	executor *ReplayExecutor
	catalog  *Catalog
	notices  *Notices
}

// NewOfflineService creates the service. Call Open before use.
func NewOfflineService(deps OfflineDeps) *OfflineService {
	source := deps.Source
	if source == nil {
		source = alwaysOnline{}
	}

	queue := NewSyncQueue(deps.Store.QueueStore(), deps.Store.DeadLetterStore(), deps.Metrics)
	monitor := NewConnectivityMonitor(source, nil)

	var sales driven.SalesAPI
	var products driven.ProductsAPI
	if deps.API != nil {
		sales = deps.API
		products = deps.API
	}

	executor := NewReplayExecutor(queue, deps.Store.SaleStore(), sales, monitor.Online, deps.Metrics)
	monitor.SetSyncer(executor)

	notices := NewNotices(deps.OnlineNoticeTTL)
	monitor.Subscribe(notices.Handle)

	return &OfflineService{
		store:    deps.Store,
		api:      deps.API,
		queue:    queue,
		monitor:  monitor,
		executor: executor,
		catalog:  NewCatalog(products, deps.Store.ProductStore(), monitor.Online),
		notices:  notices,
	}
}

// Open starts the connectivity monitor.
func (s *OfflineService) Open(ctx context.Context) error {
	if err := s.monitor.Start(ctx); err != nil {
		return err
	}
	logger.Debug("offline: opened (online=%t)", s.monitor.Online())
	return nil
}

// Close stops the connectivity monitor. The store is owned by the caller.
func (s *OfflineService) Close() error {
	s.monitor.Stop()
	return nil
}

// Syncer returns the replay executor, for the scheduler and other triggers.
func (s *OfflineService) Syncer() driving.SyncOrchestrator {
	return s.executor
}

// Monitor returns the connectivity monitor.
func (s *OfflineService) Monitor() *ConnectivityMonitor {
	return s.monitor
}

// RecordSale validates and records a sale. Online, the sale is posted
// directly and only falls back to the offline path when the remote API
// cannot be reached. Offline, the sale is stored and then queued; a
// queue failure is logged and the receipt still reports the local ID.
func (s *OfflineService) RecordSale(ctx context.Context, req domain.SaleRequest) (domain.SaleReceipt, error) {
	if err := validateSale(&req); err != nil {
		return domain.SaleReceipt{}, err
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return domain.SaleReceipt{}, fmt.Errorf("encode sale: %w", err)
	}

	// One key for the live post and every replay of it.
	key := uuid.NewString()

	if s.monitor.Online() && s.api != nil {
		resp, err := s.api.CreateSale(ctx, payload, key)
		if err == nil {
			return domain.SaleReceipt{Remote: resp}, nil
		}
		if !errors.Is(err, domain.ErrRemoteUnreachable) {
			return domain.SaleReceipt{}, fmt.Errorf("create sale: %w", err)
		}
		logger.Warn("offline: live sale failed, recording offline: %v", err)
	}

	sale := &domain.PendingSale{
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
	id, err := s.store.SaleStore().Add(ctx, sale)
	if err != nil {
		return domain.SaleReceipt{}, fmt.Errorf("record offline sale: %w", err)
	}

	if _, err := s.queue.Enqueue(ctx, domain.CreateSale, payload, &id, key); err != nil {
		logger.Error("offline: sale %d stored but not queued: %v", id, err)
	}

	return domain.SaleReceipt{Offline: true, LocalID: id}, nil
}

// Products returns a shop's products through the read-through cache.
func (s *OfflineService) Products(ctx context.Context, shopID int64) ([]domain.CachedProduct, error) {
	if shopID <= 0 {
		return nil, fmt.Errorf("%w: shop id must be positive", domain.ErrInvalidInput)
	}
	return s.catalog.Load(ctx, shopID)
}

// Sales lists locally recorded sales.
func (s *OfflineService) Sales(ctx context.Context, filter domain.SaleFilter) ([]domain.PendingSale, error) {
	return s.store.SaleStore().List(ctx, filter)
}

// Queue lists outstanding queue items in replay order.
func (s *OfflineService) Queue(ctx context.Context) ([]domain.QueueItem, error) {
	return s.queue.ListPending(ctx)
}

// PendingCount returns the number of outstanding queue items.
func (s *OfflineService) PendingCount(ctx context.Context) (int, error) {
	return s.queue.Count(ctx)
}

// DeadLetters lists dropped queue items.
func (s *OfflineService) DeadLetters(ctx context.Context) ([]domain.DeadLetter, error) {
	return s.store.DeadLetterStore().List(ctx)
}

// SyncNow runs a replay pass.
func (s *OfflineService) SyncNow(ctx context.Context) (domain.SyncReport, error) {
	return s.executor.SyncAll(ctx)
}

// Online reports the current connectivity.
func (s *OfflineService) Online() bool {
	return s.monitor.Online()
}

// Notices returns the active connectivity notices.
func (s *OfflineService) Notices() []domain.Notice {
	return s.notices.Active()
}

// DismissNotice clears a notice.
func (s *OfflineService) DismissNotice(kind domain.NoticeKind) error {
	if !kind.IsValid() {
		return fmt.Errorf("%w: unknown notice %q", domain.ErrInvalidInput, kind)
	}
	s.notices.Dismiss(kind)
	return nil
}

// Status returns a snapshot of connectivity, queue and replay state.
func (s *OfflineService) Status(ctx context.Context) (domain.RegisterStatus, error) {
	pending, err := s.queue.Count(ctx)
	if err != nil {
		return domain.RegisterStatus{}, err
	}
	return domain.RegisterStatus{
		Online:  s.monitor.Online(),
		Pending: pending,
		Sync:    s.executor.Status(),
		Notices: s.notices.Active(),
	}, nil
}

// ResetCache wipes cached products.
func (s *OfflineService) ResetCache(ctx context.Context) error {
	if err := s.store.Reset(ctx); err != nil {
		return fmt.Errorf("reset cache: %w", err)
	}
	return nil
}

// alwaysOnline is the connectivity source used when none is configured.
type alwaysOnline struct{}

func (alwaysOnline) Online() bool { return true }

func (alwaysOnline) Watch(ctx context.Context) (<-chan bool, error) {
	ch := make(chan bool)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}
