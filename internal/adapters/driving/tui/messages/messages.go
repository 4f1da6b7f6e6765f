// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"time"

	"github.com/custodia-labs/tillsync/internal/core/domain"
)

// Tick asks the model to refresh its snapshot.
type Tick struct {
	At time.Time
}

// SnapshotLoaded carries a fresh status and queue back to the model.
type SnapshotLoaded struct {
	Status domain.RegisterStatus
	Queue  []domain.QueueItem
	Err    error
}

// SyncFinished carries the result of a manual replay pass.
type SyncFinished struct {
	Report domain.SyncReport
	Err    error
}

// NoticeDismissed is sent after a notice was cleared.
type NoticeDismissed struct {
	Kind domain.NoticeKind
	Err  error
}
