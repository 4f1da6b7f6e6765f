package driven

import (
	"context"
	"encoding/json"

	"github.com/custodia-labs/tillsync/internal/core/domain"
)

// SaleStore persists sales recorded while offline.
type SaleStore interface {
	// Add stores a new sale and returns its auto-assigned ID.
	Add(ctx context.Context, sale *domain.PendingSale) (int64, error)

	// Put upserts a sale by ID. A synced sale is never reverted to unsynced.
	Put(ctx context.Context, sale *domain.PendingSale) error

	// Get retrieves a sale by ID.
	// Returns domain.ErrNotFound if the sale does not exist.
	Get(ctx context.Context, id int64) (*domain.PendingSale, error)

	// List returns sales in insertion order, or by timestamp when
	// filter.Synced is set.
	List(ctx context.Context, filter domain.SaleFilter) ([]domain.PendingSale, error)

	// MarkSynced sets the synced flag. Calling it twice is a no-op.
	// Returns domain.ErrNotFound if the sale does not exist.
	MarkSynced(ctx context.Context, id int64) error
}

// ProductStore caches remote products for offline reads.
type ProductStore interface {
	// PutAll upserts products by remote ID.
	PutAll(ctx context.Context, products []domain.CachedProduct) error

	// ListByShop returns cached products for a shop, ordered by name.
	ListByShop(ctx context.Context, shopID int64) ([]domain.CachedProduct, error)

	// Clear removes every cached product.
	Clear(ctx context.Context) error
}

// QueueStore persists the sync queue.
type QueueStore interface {
	// Add appends an item and returns its auto-assigned ID.
	Add(ctx context.Context, item *domain.QueueItem) (int64, error)

	// Put updates an existing item by ID.
	Put(ctx context.Context, item *domain.QueueItem) error

	// Get retrieves an item by ID.
	// Returns domain.ErrNotFound if the item does not exist.
	Get(ctx context.Context, id int64) (*domain.QueueItem, error)

	// List returns all items in enqueue order.
	List(ctx context.Context) ([]domain.QueueItem, error)

	// Delete removes an item. Deleting a missing item is not an error.
	Delete(ctx context.Context, id int64) error
}

// DeadLetterStore keeps queue items dropped after exhausting their attempts.
type DeadLetterStore interface {
	// Add records a dropped item and returns the dead letter ID.
	Add(ctx context.Context, letter *domain.DeadLetter) (int64, error)

	// List returns dead letters, oldest first.
	List(ctx context.Context) ([]domain.DeadLetter, error)
}

// OfflineStore is the durable store behind the offline-sync core.
// It owns every collection; services reach them through these accessors.
type OfflineStore interface {
	SaleStore() SaleStore
	ProductStore() ProductStore
	QueueStore() QueueStore
	DeadLetterStore() DeadLetterStore

	// Reset wipes the product cache. Sales, queue and dead letters are kept.
	Reset(ctx context.Context) error

	// Close releases the underlying storage.
	Close() error
}

// SalesAPI is the remote create-sale endpoint.
type SalesAPI interface {
	// CreateSale posts the payload verbatim and returns the server response.
	// idempotencyKey may be empty for live sales.
	CreateSale(ctx context.Context, payload json.RawMessage, idempotencyKey string) (json.RawMessage, error)
}

// ProductsAPI is the remote product catalogue.
type ProductsAPI interface {
	// ListProducts fetches the products of a shop.
	ListProducts(ctx context.Context, shopID int64) ([]domain.CachedProduct, error)
}

// RemoteAPI is the REST backend consumed by the sync core.
type RemoteAPI interface {
	SalesAPI
	ProductsAPI
}

// ConnectivitySource reports platform online/offline signals.
// Implementations push changes; they are never polled.
type ConnectivitySource interface {
	// Online returns the current status.
	Online() bool

	// Watch streams status values until ctx is cancelled, then closes the channel.
	// Sources without push events return a channel that only closes.
	Watch(ctx context.Context) (<-chan bool, error)
}

// SyncMetrics records replay outcomes. Optional - may be nil.
type SyncMetrics interface {
	ItemSynced(op domain.Operation)
	ItemFailed(op domain.Operation)
	ItemDropped(op domain.Operation)
	PassCompleted(report domain.SyncReport)
	QueueDepth(n int)
}
