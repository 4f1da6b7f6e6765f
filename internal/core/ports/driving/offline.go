package driving

import (
	"context"

	"github.com/custodia-labs/tillsync/internal/core/domain"
)

// OfflineService is the register-facing entry point of the offline-sync core.
// Hosts construct it once, call Open, and Close it on shutdown.
type OfflineService interface {
	// Open starts the connectivity monitor and wires replay to online transitions.
	Open(ctx context.Context) error

	// Close stops the monitor and waits for it to exit.
	Close() error

	// RecordSale validates and records a sale. Online sales are posted
	// directly; offline sales are stored locally and queued for replay.
	RecordSale(ctx context.Context, req domain.SaleRequest) (domain.SaleReceipt, error)

	// Products returns a shop's products, from the remote API when possible
	// and from the local cache otherwise.
	Products(ctx context.Context, shopID int64) ([]domain.CachedProduct, error)

	// Sales lists locally recorded sales.
	Sales(ctx context.Context, filter domain.SaleFilter) ([]domain.PendingSale, error)

	// Queue lists outstanding queue items in replay order.
	Queue(ctx context.Context) ([]domain.QueueItem, error)

	// PendingCount returns the number of outstanding queue items.
	PendingCount(ctx context.Context) (int, error)

	// DeadLetters lists items dropped after exhausting their attempts.
	DeadLetters(ctx context.Context) ([]domain.DeadLetter, error)

	// SyncNow triggers a replay pass.
	SyncNow(ctx context.Context) (domain.SyncReport, error)

	// Online reports the current connectivity.
	Online() bool

	// Notices returns the active connectivity notices.
	Notices() []domain.Notice

	// DismissNotice clears a notice. Dismissing an absent notice is a no-op.
	DismissNotice(kind domain.NoticeKind) error

	// Status returns a snapshot of connectivity, queue and replay state.
	Status(ctx context.Context) (domain.RegisterStatus, error)

	// ResetCache wipes cached products.
	ResetCache(ctx context.Context) error
}
