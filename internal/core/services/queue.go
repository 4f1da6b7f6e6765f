package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/tillsync/internal/core/domain"
	"github.com/custodia-labs/tillsync/internal/core/ports/driven"
	"github.com/custodia-labs/tillsync/internal/logger"
)

// SyncQueue manages the durable queue of operations awaiting replay.
// It counts attempts and drops items that reach domain.MaxAttempts.
type SyncQueue struct {
	store       driven.QueueStore
	deadLetters driven.DeadLetterStore
	metrics     driven.SyncMetrics
}

// NewSyncQueue creates a queue manager. deadLetters and metrics may be nil.
func NewSyncQueue(store driven.QueueStore, deadLetters driven.DeadLetterStore, metrics driven.SyncMetrics) *SyncQueue {
	return &SyncQueue{
		store:       store,
		deadLetters: deadLetters,
		metrics:     metrics,
	}
}

// Enqueue appends an operation with zero attempts. key is the idempotency
// key every replay sends; an empty key gets a fresh one. Store failures
// are wrapped in domain.ErrEnqueueFailed.
func (q *SyncQueue) Enqueue(
	ctx context.Context,
	op domain.Operation,
	payload json.RawMessage,
	localRef *int64,
	key string,
) (*domain.QueueItem, error) {
	if key == "" {
		key = uuid.NewString()
	}
	item := &domain.QueueItem{
		Kind:           op.Kind,
		Entity:         op.Entity,
		Payload:        payload,
		LocalRef:       localRef,
		EnqueuedAt:     time.Now().UTC(),
		IdempotencyKey: key,
	}

	id, err := q.store.Add(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEnqueueFailed, err)
	}
	item.ID = id

	logger.Debug("queue: enqueued %s item %d", op, id)
	return item, nil
}

// ListPending returns outstanding items, oldest first. Items enqueued at
// the same instant keep ID order.
func (q *SyncQueue) ListPending(ctx context.Context) ([]domain.QueueItem, error) {
	items, err := q.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list queue: %w", err)
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].EnqueuedAt.Equal(items[j].EnqueuedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].EnqueuedAt.Before(items[j].EnqueuedAt)
	})

	if q.metrics != nil {
		q.metrics.QueueDepth(len(items))
	}
	return items, nil
}

// Count returns the number of outstanding items.
func (q *SyncQueue) Count(ctx context.Context) (int, error) {
	items, err := q.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list queue: %w", err)
	}
	return len(items), nil
}

// RecordSuccess removes a confirmed item.
func (q *SyncQueue) RecordSuccess(ctx context.Context, item *domain.QueueItem) error {
	if err := q.store.Delete(ctx, item.ID); err != nil {
		return fmt.Errorf("delete queue item %d: %w", item.ID, err)
	}
	if q.metrics != nil {
		q.metrics.ItemSynced(item.Operation())
	}
	return nil
}

// RecordFailure counts a failed replay. When the item reaches
// domain.MaxAttempts it is moved to the dead-letter store and removed
// from the queue, and dropped is true.
func (q *SyncQueue) RecordFailure(ctx context.Context, item *domain.QueueItem, cause error) (bool, error) {
	item.Attempts++
	if cause != nil {
		item.LastError = cause.Error()
	}

	if item.Attempts < domain.MaxAttempts {
		if err := q.store.Put(ctx, item); err != nil {
			return false, fmt.Errorf("update queue item %d: %w", item.ID, err)
		}
		if q.metrics != nil {
			q.metrics.ItemFailed(item.Operation())
		}
		logger.Warn("queue: %s item %d failed (attempt %d/%d): %s",
			item.Operation(), item.ID, item.Attempts, domain.MaxAttempts, item.LastError)
		return false, nil
	}

	if q.deadLetters != nil {
		letter := &domain.DeadLetter{
			Item:      *item,
			Reason:    item.LastError,
			DroppedAt: time.Now().UTC(),
		}
		if _, err := q.deadLetters.Add(ctx, letter); err != nil {
			logger.Error("queue: dead-letter write for item %d failed: %v", item.ID, err)
		}
	}

	if err := q.store.Delete(ctx, item.ID); err != nil {
		return false, fmt.Errorf("drop queue item %d: %w", item.ID, err)
	}
	if q.metrics != nil {
		q.metrics.ItemDropped(item.Operation())
	}

	logger.Error("queue: dropped %s item %d after %d attempts: %s payload=%s",
		item.Operation(), item.ID, item.Attempts, item.LastError, string(item.Payload))
	return true, nil
}
