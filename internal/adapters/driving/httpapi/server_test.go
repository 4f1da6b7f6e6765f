package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tillsync/internal/core/domain"
	"github.com/custodia-labs/tillsync/internal/core/ports/driving"
)

// mockOfflineService implements driving.OfflineService for testing.
type mockOfflineService struct {
	receipt    domain.SaleReceipt
	recordErr  error
	recorded   []domain.SaleRequest
	sales      []domain.PendingSale
	lastFilter domain.SaleFilter
	products   []domain.CachedProduct
	queue      []domain.QueueItem
	letters    []domain.DeadLetter
	report     domain.SyncReport
	syncErr    error
	status     domain.RegisterStatus
	dismissed  []domain.NoticeKind
}

func (m *mockOfflineService) Open(context.Context) error { return nil }
func (m *mockOfflineService) Close() error               { return nil }

func (m *mockOfflineService) RecordSale(_ context.Context, req domain.SaleRequest) (domain.SaleReceipt, error) {
	m.recorded = append(m.recorded, req)
	return m.receipt, m.recordErr
}

func (m *mockOfflineService) Products(_ context.Context, shopID int64) ([]domain.CachedProduct, error) {
	if shopID <= 0 {
		return nil, fmt.Errorf("%w: shop id must be positive", domain.ErrInvalidInput)
	}
	return m.products, nil
}

func (m *mockOfflineService) Sales(_ context.Context, filter domain.SaleFilter) ([]domain.PendingSale, error) {
	m.lastFilter = filter
	return m.sales, nil
}

func (m *mockOfflineService) Queue(context.Context) ([]domain.QueueItem, error) {
	return m.queue, nil
}

func (m *mockOfflineService) PendingCount(context.Context) (int, error) {
	return len(m.queue), nil
}

func (m *mockOfflineService) DeadLetters(context.Context) ([]domain.DeadLetter, error) {
	return m.letters, nil
}

func (m *mockOfflineService) SyncNow(context.Context) (domain.SyncReport, error) {
	return m.report, m.syncErr
}

func (m *mockOfflineService) Online() bool { return m.status.Online }

func (m *mockOfflineService) Notices() []domain.Notice { return m.status.Notices }

func (m *mockOfflineService) DismissNotice(kind domain.NoticeKind) error {
	if !kind.IsValid() {
		return fmt.Errorf("%w: unknown notice %q", domain.ErrInvalidInput, kind)
	}
	m.dismissed = append(m.dismissed, kind)
	return nil
}

func (m *mockOfflineService) Status(context.Context) (domain.RegisterStatus, error) {
	return m.status, nil
}

func (m *mockOfflineService) ResetCache(context.Context) error { return nil }

var _ driving.OfflineService = (*mockOfflineService)(nil)

type mockToggle struct {
	values []bool
}

func (m *mockToggle) SetOnline(online bool) {
	m.values = append(m.values, online)
}

func newTestServer(t *testing.T, svc *mockOfflineService, toggle ConnectivityToggle, metrics http.Handler) http.Handler {
	t.Helper()
	srv, err := NewServer(Config{Offline: svc, Toggle: toggle, Metrics: metrics})
	require.NoError(t, err)
	return srv.Handler()
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewServer_RequiresOfflineService(t *testing.T) {
	_, err := NewServer(Config{})
	assert.ErrorIs(t, err, ErrMissingOfflineService)
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, &mockOfflineService{}, nil, nil)

	rec := do(h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestStatus(t *testing.T) {
	svc := &mockOfflineService{status: domain.RegisterStatus{
		Online:  false,
		Pending: 3,
		Notices: []domain.Notice{{Kind: domain.NoticeOffline, Title: "You're offline"}},
	}}
	h := newTestServer(t, svc, nil, nil)

	rec := do(h, http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.RegisterStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.False(t, got.Online)
	assert.Equal(t, 3, got.Pending)
	require.Len(t, got.Notices, 1)
	assert.Equal(t, domain.NoticeOffline, got.Notices[0].Kind)
}

func TestRecordSale(t *testing.T) {
	body := `{"shop_id":1,"payment_method":"cash","items":[{"product_id":7,"quantity":2,"unit_price":"1.50","discount":"0"}]}`

	tests := []struct {
		name     string
		body     string
		receipt  domain.SaleReceipt
		err      error
		wantCode int
	}{
		{name: "accepted live", body: body, receipt: domain.SaleReceipt{Remote: json.RawMessage(`{"id":5}`)}, wantCode: http.StatusCreated},
		{name: "stored offline", body: body, receipt: domain.SaleReceipt{Offline: true, LocalID: 1}, wantCode: http.StatusAccepted},
		{name: "invalid", body: body, err: fmt.Errorf("%w: items", domain.ErrInvalidInput), wantCode: http.StatusBadRequest},
		{name: "bad json", body: `{`, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockOfflineService{receipt: tt.receipt, recordErr: tt.err}
			h := newTestServer(t, svc, nil, nil)

			rec := do(h, http.MethodPost, "/sales", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}
}

func TestRecordSale_DecodesRequest(t *testing.T) {
	svc := &mockOfflineService{receipt: domain.SaleReceipt{Offline: true, LocalID: 9}}
	h := newTestServer(t, svc, nil, nil)

	rec := do(h, http.MethodPost, "/sales",
		`{"shop_id":2,"payment_method":"card","items":[{"product_id":3,"quantity":1,"unit_price":"4.20"}]}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"offline":true,"local_id":9}`, rec.Body.String())

	require.Len(t, svc.recorded, 1)
	req := svc.recorded[0]
	assert.Equal(t, int64(2), req.ShopID)
	assert.Equal(t, domain.PaymentCard, req.PaymentMethod)
	require.Len(t, req.Items, 1)
	assert.Equal(t, "4.2", req.Items[0].UnitPrice.String())
}

func TestListSales(t *testing.T) {
	at := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	svc := &mockOfflineService{sales: []domain.PendingSale{
		{ID: 1, Payload: json.RawMessage(`{"a":1}`), Timestamp: at},
	}}
	h := newTestServer(t, svc, nil, nil)

	rec := do(h, http.MethodGet, "/sales?synced=false", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.lastFilter.Synced)
	assert.False(t, *svc.lastFilter.Synced)
	assert.JSONEq(t,
		`{"items":[{"id":1,"payload":{"a":1},"timestamp":"2026-02-03T04:05:06Z","synced":false}],"total_count":1}`,
		rec.Body.String())

	rec = do(h, http.MethodGet, "/sales", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, svc.lastFilter.Synced)

	rec = do(h, http.MethodGet, "/sales?synced=maybe", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListProducts(t *testing.T) {
	svc := &mockOfflineService{products: []domain.CachedProduct{{ID: 1, ShopID: 3, Name: "Apple"}}}
	h := newTestServer(t, svc, nil, nil)

	rec := do(h, http.MethodGet, "/products?shop=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Apple"`)

	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodGet, "/products", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodGet, "/products?shop=0", "").Code)
}

func TestSyncNow(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "ok", wantCode: http.StatusOK},
		{name: "offline", err: domain.ErrOffline, wantCode: http.StatusServiceUnavailable},
		{name: "busy", err: domain.ErrSyncInProgress, wantCode: http.StatusConflict},
		{name: "store failure", err: fmt.Errorf("list queue: disk I/O"), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockOfflineService{report: domain.SyncReport{Attempted: 2, Synced: 2}, syncErr: tt.err}
			h := newTestServer(t, svc, nil, nil)

			rec := do(h, http.MethodPost, "/sync", "")
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestListQueueAndDeadLetters(t *testing.T) {
	svc := &mockOfflineService{
		queue:   []domain.QueueItem{{ID: 1, Kind: domain.OperationCreate, Entity: domain.EntitySale}},
		letters: []domain.DeadLetter{{ID: 1, Reason: "HTTP 500"}},
	}
	h := newTestServer(t, svc, nil, nil)

	rec := do(h, http.MethodGet, "/queue", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_count":1`)

	rec = do(h, http.MethodGet, "/dead-letters", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"reason":"HTTP 500"`)
}

func TestSetConnectivity(t *testing.T) {
	toggle := &mockToggle{}
	h := newTestServer(t, &mockOfflineService{}, toggle, nil)

	rec := do(h, http.MethodPost, "/connectivity", `{"online":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []bool{false}, toggle.values)

	rec = do(h, http.MethodPost, "/connectivity", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetConnectivity_NotManual(t *testing.T) {
	h := newTestServer(t, &mockOfflineService{}, nil, nil)

	rec := do(h, http.MethodPost, "/connectivity", `{"online":true}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDismissNotice(t *testing.T) {
	svc := &mockOfflineService{}
	h := newTestServer(t, svc, nil, nil)

	rec := do(h, http.MethodPost, "/notices/offline/dismiss", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []domain.NoticeKind{domain.NoticeOffline}, svc.dismissed)

	rec = do(h, http.MethodPost, "/notices/bogus/dismiss", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsRoute(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("tillsync_queue_depth 0\n"))
	})

	h := newTestServer(t, &mockOfflineService{}, nil, metrics)
	rec := do(h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tillsync_queue_depth")

	h = newTestServer(t, &mockOfflineService{}, nil, nil)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/metrics", "").Code)
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	srv, err := NewServer(Config{Offline: &mockOfflineService{}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
