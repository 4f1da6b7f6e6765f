package domain

import (
	"encoding/json"
	"time"
)

// MaxAttempts is the replay ceiling for a queue item. The failure that
// brings Attempts to MaxAttempts drops the item; it never gets another call.
const MaxAttempts = 5

// OperationKind is what a queued operation does to its entity.
type OperationKind string

// Supported operation kinds.
const (
	OperationCreate OperationKind = "create"
)

// EntityType is the kind of remote entity a queued operation targets.
type EntityType string

// Syncable entity types.
const (
	EntitySale EntityType = "sale"
)

// Operation tags a queued item with its kind and target entity.
// It is the key of the replay dispatch table.
type Operation struct {
	Kind   OperationKind
	Entity EntityType
}

// String returns "<entity>.<kind>", e.g. "sale.create".
func (o Operation) String() string {
	return string(o.Entity) + "." + string(o.Kind)
}

// CreateSale is the operation that replays an offline sale.
var CreateSale = Operation{Kind: OperationCreate, Entity: EntitySale}

// QueueItem is one outstanding operation to replay against the remote API.
// It exists if and only if the server has not yet confirmed the operation.
type QueueItem struct {
	// ID is auto-assigned and increases with enqueue order.
	ID int64 `json:"id"`

	// Kind is the operation kind.
	Kind OperationKind `json:"kind"`

	// Entity is the target entity type.
	Entity EntityType `json:"entity"`

	// Payload is opaque to the queue and sent verbatim on replay.
	Payload json.RawMessage `json:"payload"`

	// LocalRef points at the PendingEntity this item syncs, if any.
	LocalRef *int64 `json:"local_ref,omitempty"`

	// Attempts counts failed replays.
	Attempts int `json:"attempts"`

	// EnqueuedAt is when the item was appended.
	EnqueuedAt time.Time `json:"enqueued_at"`

	// IdempotencyKey is sent with every replay of this item.
	IdempotencyKey string `json:"idempotency_key"`

	// LastError is the most recent replay failure.
	LastError string `json:"last_error,omitempty"`
}

// Operation returns the tagged operation of the item.
func (q *QueueItem) Operation() Operation {
	return Operation{Kind: q.Kind, Entity: q.Entity}
}

// QueueItemState is the lifecycle state of a queue item.
type QueueItemState string

// Queue item states. Synced and Dropped are terminal.
const (
	QueueItemPending QueueItemState = "pending"
	QueueItemSynced  QueueItemState = "synced"
	QueueItemDropped QueueItemState = "dropped"
)

// IsTerminal returns true for states with no outgoing transition.
func (s QueueItemState) IsTerminal() bool {
	return s == QueueItemSynced || s == QueueItemDropped
}

// DeadLetter is a queue item removed after exhausting its attempts.
// It is kept for manual recovery.
type DeadLetter struct {
	ID        int64     `json:"id"`
	Item      QueueItem `json:"item"`
	Reason    string    `json:"reason"`
	DroppedAt time.Time `json:"dropped_at"`
}

// SyncReport summarises one replay pass.
type SyncReport struct {
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
	Attempted int       `json:"attempted"`
	Synced    int       `json:"synced"`
	Failed    int       `json:"failed"`
	Dropped   int       `json:"dropped"`
}

// SyncStatus is the current state of the replay executor.
type SyncStatus struct {
	Running    bool        `json:"running"`
	LastReport *SyncReport `json:"last_report,omitempty"`
}

// RegisterStatus is a point-in-time view of the offline-sync core.
type RegisterStatus struct {
	Online  bool       `json:"online"`
	Pending int        `json:"pending"`
	Sync    SyncStatus `json:"sync"`
	Notices []Notice   `json:"notices"`
}
