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

// Ensure ReplayExecutor implements the interface.
var _ driving.SyncOrchestrator = (*ReplayExecutor)(nil)

// ReplayHandler sends one queued operation to the remote API.
type ReplayHandler func(ctx context.Context, item *domain.QueueItem) error

// ReplayExecutor drains the sync queue against the remote API.
// At most one pass runs at a time.
type ReplayExecutor struct {
	queue    *SyncQueue
	sales    driven.SaleStore
	online   func() bool
	handlers map[domain.Operation]ReplayHandler
	metrics  driven.SyncMetrics

	running atomic.Bool

	mu         sync.RWMutex
	lastReport *domain.SyncReport
}

// NewReplayExecutor creates an executor with the sale handler registered.
// online reports connectivity; a nil func means always online.
func NewReplayExecutor(
	queue *SyncQueue,
	sales driven.SaleStore,
	api driven.SalesAPI,
	online func() bool,
	metrics driven.SyncMetrics,
) *ReplayExecutor {
	if online == nil {
		online = func() bool { return true }
	}
	e := &ReplayExecutor{
		queue:    queue,
		sales:    sales,
		online:   online,
		handlers: make(map[domain.Operation]ReplayHandler),
		metrics:  metrics,
	}
	if api != nil {
		e.Register(domain.CreateSale, createSaleHandler(api))
	}
	return e
}

// Register adds or replaces the handler for an operation.
// Call before the first SyncAll.
func (e *ReplayExecutor) Register(op domain.Operation, h ReplayHandler) {
	e.handlers[op] = h
}

// SyncAll runs one replay pass over a snapshot of the queue, in FIFO order.
// A failed item does not stop the pass. Going offline or cancelling ctx
// ends it before the next item; the rest stay queued with their attempts
// unchanged. Returns domain.ErrOffline when offline and
// domain.ErrSyncInProgress when another pass is running.
func (e *ReplayExecutor) SyncAll(ctx context.Context) (domain.SyncReport, error) {
	if !e.online() {
		return domain.SyncReport{}, domain.ErrOffline
	}
	if !e.running.CompareAndSwap(false, true) {
		return domain.SyncReport{}, domain.ErrSyncInProgress
	}
	defer e.running.Store(false)

	report := domain.SyncReport{StartedAt: time.Now().UTC()}

	items, err := e.queue.ListPending(ctx)
	if err != nil {
		report.EndedAt = time.Now().UTC()
		return report, err
	}

	if len(items) > 0 {
		logger.Section("Replay")
		logger.Info("replay: %d pending item(s)", len(items))
	}

	for i := range items {
		if ctx.Err() != nil || !e.online() {
			logger.Info("replay: pass interrupted, %d item(s) left queued", len(items)-i)
			break
		}
		item := &items[i]
		report.Attempted++

		if err := e.replay(ctx, item); err != nil {
			if ctx.Err() != nil {
				// An aborted call says nothing about the item.
				report.Attempted--
				logger.Info("replay: pass cancelled, %d item(s) left queued", len(items)-i)
				break
			}
			dropped, recErr := e.queue.RecordFailure(ctx, item, err)
			if recErr != nil {
				logger.Warn("replay: record failure for item %d: %v", item.ID, recErr)
			}
			if dropped {
				report.Dropped++
			} else {
				report.Failed++
			}
			continue
		}

		if item.LocalRef != nil && e.sales != nil {
			if err := e.sales.MarkSynced(ctx, *item.LocalRef); err != nil {
				logger.Warn("replay: mark sale %d synced: %v", *item.LocalRef, err)
			}
		}
		if err := e.queue.RecordSuccess(ctx, item); err != nil {
			logger.Warn("replay: remove item %d: %v", item.ID, err)
		}
		report.Synced++
	}

	report.EndedAt = time.Now().UTC()
	logger.Info("replay: attempted=%d synced=%d failed=%d dropped=%d",
		report.Attempted, report.Synced, report.Failed, report.Dropped)

	e.mu.Lock()
	r := report
	e.lastReport = &r
	e.mu.Unlock()

	if e.metrics != nil {
		e.metrics.PassCompleted(report)
	}
	return report, nil
}

// Status returns whether a pass is running and the last completed report.
func (e *ReplayExecutor) Status() domain.SyncStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()

	status := domain.SyncStatus{Running: e.running.Load()}
	if e.lastReport != nil {
		r := *e.lastReport
		status.LastReport = &r
	}
	return status
}

func (e *ReplayExecutor) replay(ctx context.Context, item *domain.QueueItem) error {
	h, ok := e.handlers[item.Operation()]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNoReplayHandler, item.Operation())
	}
	if err := h(ctx, item); err != nil {
		if errors.Is(err, domain.ErrReplayFailed) {
			return err
		}
		return fmt.Errorf("%w: %w", domain.ErrReplayFailed, err)
	}
	return nil
}

func createSaleHandler(api driven.SalesAPI) ReplayHandler {
	return func(ctx context.Context, item *domain.QueueItem) error {
		_, err := api.CreateSale(ctx, item.Payload, item.IdempotencyKey)
		return err
	}
}
