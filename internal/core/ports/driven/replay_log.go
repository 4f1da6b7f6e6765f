package driven

import (
	"context"

	"github.com/custodia-labs/tillsync/internal/core/domain"
)

// ReplayLog records scheduled replay passes so the schedule survives restarts.
type ReplayLog interface {
	// Record appends a run and returns its ID.
	Record(ctx context.Context, run *domain.ReplayRun) (int64, error)

	// Recent returns up to limit runs, newest first.
	Recent(ctx context.Context, limit int) ([]domain.ReplayRun, error)

	// Trim deletes all but the newest keep runs.
	Trim(ctx context.Context, keep int) error
}
