package tui

import (
	"context"

	"github.com/custodia-labs/tillsync/internal/core/domain"
	"github.com/custodia-labs/tillsync/internal/core/ports/driving"
)

var _ driving.OfflineService = (*mockOfflineService)(nil)

type mockOfflineService struct {
	status    domain.RegisterStatus
	statusErr error
	queue     []domain.QueueItem
	queueErr  error
	report    domain.SyncReport
	syncErr   error
	dismissed []domain.NoticeKind
	syncCalls int
}

func (m *mockOfflineService) Open(context.Context) error { return nil }
func (m *mockOfflineService) Close() error               { return nil }

func (m *mockOfflineService) RecordSale(context.Context, domain.SaleRequest) (domain.SaleReceipt, error) {
	return domain.SaleReceipt{}, nil
}

func (m *mockOfflineService) Products(context.Context, int64) ([]domain.CachedProduct, error) {
	return nil, nil
}

func (m *mockOfflineService) Sales(context.Context, domain.SaleFilter) ([]domain.PendingSale, error) {
	return nil, nil
}

func (m *mockOfflineService) Queue(context.Context) ([]domain.QueueItem, error) {
	return m.queue, m.queueErr
}

func (m *mockOfflineService) PendingCount(context.Context) (int, error) {
	return len(m.queue), nil
}

func (m *mockOfflineService) DeadLetters(context.Context) ([]domain.DeadLetter, error) {
	return nil, nil
}

func (m *mockOfflineService) SyncNow(context.Context) (domain.SyncReport, error) {
	m.syncCalls++
	return m.report, m.syncErr
}

func (m *mockOfflineService) Online() bool { return m.status.Online }

func (m *mockOfflineService) Notices() []domain.Notice { return m.status.Notices }

func (m *mockOfflineService) DismissNotice(kind domain.NoticeKind) error {
	m.dismissed = append(m.dismissed, kind)
	return nil
}

func (m *mockOfflineService) Status(context.Context) (domain.RegisterStatus, error) {
	return m.status, m.statusErr
}

func (m *mockOfflineService) ResetCache(context.Context) error { return nil }
