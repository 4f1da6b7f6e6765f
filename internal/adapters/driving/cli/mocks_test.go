package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/tillsync/internal/core/domain"
	"github.com/custodia-labs/tillsync/internal/core/ports/driving"
)

var (
	_ driving.OfflineService  = (*mockOfflineService)(nil)
	_ driving.SettingsService = (*mockSettingsService)(nil)
	_ driving.Scheduler       = (*mockScheduler)(nil)
)

type mockOfflineService struct {
	online      bool
	receipt     domain.SaleReceipt
	recordErr   error
	recorded    []domain.SaleRequest
	products    []domain.CachedProduct
	productsErr error
	shopID      int64
	sales       []domain.PendingSale
	saleFilter  domain.SaleFilter
	queue       []domain.QueueItem
	queueErr    error
	dead        []domain.DeadLetter
	report      domain.SyncReport
	syncErr     error
	status      domain.RegisterStatus
	statusErr   error
	resetCalls  int
	resetErr    error
}

func (m *mockOfflineService) Open(context.Context) error { return nil }
func (m *mockOfflineService) Close() error               { return nil }

func (m *mockOfflineService) RecordSale(_ context.Context, req domain.SaleRequest) (domain.SaleReceipt, error) {
	m.recorded = append(m.recorded, req)
	return m.receipt, m.recordErr
}

func (m *mockOfflineService) Products(_ context.Context, shopID int64) ([]domain.CachedProduct, error) {
	m.shopID = shopID
	return m.products, m.productsErr
}

func (m *mockOfflineService) Sales(_ context.Context, filter domain.SaleFilter) ([]domain.PendingSale, error) {
	m.saleFilter = filter
	return m.sales, nil
}

func (m *mockOfflineService) Queue(context.Context) ([]domain.QueueItem, error) {
	return m.queue, m.queueErr
}

func (m *mockOfflineService) PendingCount(context.Context) (int, error) {
	return len(m.queue), nil
}

func (m *mockOfflineService) DeadLetters(context.Context) ([]domain.DeadLetter, error) {
	return m.dead, nil
}

func (m *mockOfflineService) SyncNow(context.Context) (domain.SyncReport, error) {
	return m.report, m.syncErr
}

func (m *mockOfflineService) Online() bool { return m.online }

func (m *mockOfflineService) Notices() []domain.Notice { return nil }

func (m *mockOfflineService) DismissNotice(domain.NoticeKind) error { return nil }

func (m *mockOfflineService) Status(context.Context) (domain.RegisterStatus, error) {
	return m.status, m.statusErr
}

func (m *mockOfflineService) ResetCache(context.Context) error {
	m.resetCalls++
	return m.resetErr
}

type mockSettingsService struct {
	settings   domain.Settings
	token      string
	source     domain.ConnectivitySourceType
	statusFile string
	setErr     error
}

func (m *mockSettingsService) Get() (*domain.Settings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.Settings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetAPIToken(token string) error {
	m.token = token
	return m.setErr
}

func (m *mockSettingsService) SetConnectivitySource(source domain.ConnectivitySourceType, statusFile string) error {
	m.source = source
	m.statusFile = statusFile
	return m.setErr
}

func (m *mockSettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

type mockScheduler struct {
	started chan struct{}
	stopped bool
}

func (m *mockScheduler) Start(ctx context.Context) error {
	close(m.started)
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockScheduler) Stop() error {
	m.stopped = true
	return nil
}

// withServices installs services for one test.
func withServices(t *testing.T, s Services) {
	t.Helper()
	oldOffline, oldSettings := offlineService, settingsService
	oldScheduler, oldSchedulerConfig := scheduler, schedulerConfig
	oldMetrics, oldToggle, oldAddr := metricsHandler, connectivityToggle, serverAddr

	SetServices(s)

	t.Cleanup(func() {
		offlineService, settingsService = oldOffline, oldSettings
		scheduler, schedulerConfig = oldScheduler, oldSchedulerConfig
		metricsHandler, connectivityToggle, serverAddr = oldMetrics, oldToggle, oldAddr
	})
}

// execute runs the root command with args and returns its output.
// Flags are reset first since the command tree is shared across tests.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
