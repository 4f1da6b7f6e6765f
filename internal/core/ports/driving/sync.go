package driving

import (
	"context"

	"github.com/custodia-labs/tillsync/internal/core/domain"
)

// SyncOrchestrator drains the sync queue against the remote API.
type SyncOrchestrator interface {
	// SyncAll runs one replay pass over a snapshot of the queue.
	// Returns domain.ErrOffline or domain.ErrSyncInProgress without
	// touching the queue.
	SyncAll(ctx context.Context) (domain.SyncReport, error)

	// Status returns whether a pass is running and the last report.
	Status() domain.SyncStatus
}
