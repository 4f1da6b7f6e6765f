package services

import (
	"sync"
	"time"

	"github.com/custodia-labs/tillsync/internal/core/domain"
)

// Notices tracks the connectivity toasts shown to the cashier.
// The offline notice stays until dismissed. The online notice expires
// after a fixed TTL.
type Notices struct {
	onlineTTL time.Duration
	now       func() time.Time

	mu     sync.Mutex
	active map[domain.NoticeKind]domain.Notice
}

// NewNotices creates a notice board. onlineTTL <= 0 uses 3 seconds.
func NewNotices(onlineTTL time.Duration) *Notices {
	if onlineTTL <= 0 {
		onlineTTL = 3 * time.Second
	}
	return &Notices{
		onlineTTL: onlineTTL,
		now:       time.Now,
		active:    make(map[domain.NoticeKind]domain.Notice),
	}
}

// Handle updates the board for a connectivity event.
func (n *Notices) Handle(ev domain.ConnectivityEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()

	at := ev.At
	if at.IsZero() {
		at = n.now()
	}

	switch ev.Kind {
	case domain.BecameOffline:
		delete(n.active, domain.NoticeOnline)
		n.active[domain.NoticeOffline] = domain.Notice{
			Kind:     domain.NoticeOffline,
			Title:    "You're offline",
			Message:  "Sales will be saved locally and synced when you reconnect.",
			RaisedAt: at,
		}
	case domain.BecameOnline:
		delete(n.active, domain.NoticeOffline)
		n.active[domain.NoticeOnline] = domain.Notice{
			Kind:      domain.NoticeOnline,
			Title:     "Back online",
			Message:   "Syncing offline sales.",
			RaisedAt:  at,
			ExpiresAt: at.Add(n.onlineTTL),
		}
	}
}

// Active returns unexpired notices, offline first.
func (n *Notices) Active() []domain.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()

	now := n.now()
	out := make([]domain.Notice, 0, len(n.active))
	for _, kind := range []domain.NoticeKind{domain.NoticeOffline, domain.NoticeOnline} {
		notice, ok := n.active[kind]
		if !ok {
			continue
		}
		if !notice.Persistent() && !now.Before(notice.ExpiresAt) {
			delete(n.active, kind)
			continue
		}
		out = append(out, notice)
	}
	return out
}

// Dismiss clears a notice.
func (n *Notices) Dismiss(kind domain.NoticeKind) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.active, kind)
}
