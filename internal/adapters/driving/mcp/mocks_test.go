package mcp

import (
	"context"

	"github.com/custodia-labs/tillsync/internal/core/domain"
	"github.com/custodia-labs/tillsync/internal/core/ports/driving"
)

// mockOfflineService is a mock implementation of driving.OfflineService.
type mockOfflineService struct {
	status   domain.RegisterStatus
	report   domain.SyncReport
	queue    []domain.QueueItem
	letters  []domain.DeadLetter
	err      error
	syncErr  error
	syncRuns int
}

func (m *mockOfflineService) Open(context.Context) error { return nil }

func (m *mockOfflineService) Close() error { return nil }

func (m *mockOfflineService) RecordSale(context.Context, domain.SaleRequest) (domain.SaleReceipt, error) {
	return domain.SaleReceipt{}, m.err
}

func (m *mockOfflineService) Products(context.Context, int64) ([]domain.CachedProduct, error) {
	return nil, m.err
}

func (m *mockOfflineService) Sales(context.Context, domain.SaleFilter) ([]domain.PendingSale, error) {
	return nil, m.err
}

func (m *mockOfflineService) Queue(context.Context) ([]domain.QueueItem, error) {
	return m.queue, m.err
}

func (m *mockOfflineService) PendingCount(context.Context) (int, error) {
	return len(m.queue), m.err
}

func (m *mockOfflineService) DeadLetters(context.Context) ([]domain.DeadLetter, error) {
	return m.letters, m.err
}

func (m *mockOfflineService) SyncNow(context.Context) (domain.SyncReport, error) {
	m.syncRuns++
	return m.report, m.syncErr
}

func (m *mockOfflineService) Online() bool { return m.status.Online }

func (m *mockOfflineService) Notices() []domain.Notice { return m.status.Notices }

func (m *mockOfflineService) DismissNotice(domain.NoticeKind) error { return nil }

func (m *mockOfflineService) Status(context.Context) (domain.RegisterStatus, error) {
	return m.status, m.err
}

func (m *mockOfflineService) ResetCache(context.Context) error { return nil }

var _ driving.OfflineService = (*mockOfflineService)(nil)
