package tui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tillsync/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/tillsync/internal/core/domain"
)

func newTestApp(t *testing.T, svc *mockOfflineService) *App {
	t.Helper()
	app, err := NewApp(NewPorts(svc))
	require.NoError(t, err)
	app.SetDimensions(100, 40)
	return app
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewApp_RequiresOfflineService(t *testing.T) {
	app, err := NewApp(&Ports{})
	assert.Nil(t, app)
	assert.ErrorIs(t, err, ErrMissingOfflineService)
}

func TestApp_Init(t *testing.T) {
	app := newTestApp(t, &mockOfflineService{})
	assert.NotNil(t, app.Init())
}

func TestApp_View_BeforeWindowSize(t *testing.T) {
	app, err := NewApp(NewPorts(&mockOfflineService{}))
	require.NoError(t, err)

	assert.False(t, app.Ready())
	assert.Equal(t, "Initialising...", app.View())

	app.Update(tea.WindowSizeMsg{Width: 90, Height: 30})
	assert.True(t, app.Ready())
}

func TestApp_LoadSnapshot(t *testing.T) {
	svc := &mockOfflineService{
		status: domain.RegisterStatus{Online: false, Pending: 2},
		queue: []domain.QueueItem{
			{ID: 1, Kind: domain.OperationCreate, Entity: domain.EntitySale},
			{ID: 2, Kind: domain.OperationCreate, Entity: domain.EntitySale, Attempts: 1},
		},
	}
	app := newTestApp(t, svc)

	msg := app.loadSnapshot()()
	loaded, ok := msg.(messages.SnapshotLoaded)
	require.True(t, ok)
	require.NoError(t, loaded.Err)

	app.Update(loaded)

	assert.Equal(t, 2, app.Status().Pending)
	assert.Len(t, app.Queue(), 2)
	view := app.View()
	assert.Contains(t, view, "OFFLINE")
	assert.Contains(t, view, "sale.create")
}

func TestApp_LoadSnapshot_Error(t *testing.T) {
	svc := &mockOfflineService{statusErr: errors.New("store closed")}
	app := newTestApp(t, svc)

	app.Update(app.loadSnapshot()())

	require.Error(t, app.Err())
	assert.Contains(t, app.View(), "store closed")
}

func TestApp_LoadSnapshot_QueueError(t *testing.T) {
	svc := &mockOfflineService{queueErr: errors.New("queue broken")}
	app := newTestApp(t, svc)

	msg := app.loadSnapshot()().(messages.SnapshotLoaded)
	assert.EqualError(t, msg.Err, "queue broken")
}

func TestApp_Tick_SchedulesReload(t *testing.T) {
	app := newTestApp(t, &mockOfflineService{})

	_, cmd := app.Update(messages.Tick{At: time.Now()})
	assert.NotNil(t, cmd)
}

func TestApp_SyncKey(t *testing.T) {
	svc := &mockOfflineService{report: domain.SyncReport{Attempted: 3, Synced: 2, Failed: 1}}
	app := newTestApp(t, svc)

	_, cmd := app.Update(keyMsg("s"))
	require.NotNil(t, cmd)
	assert.True(t, app.Syncing())

	// A second press while running is ignored.
	_, again := app.Update(keyMsg("s"))
	assert.Nil(t, again)

	finished := cmd()
	assert.Equal(t, 1, svc.syncCalls)

	_, reload := app.Update(finished)
	assert.NotNil(t, reload)
	assert.False(t, app.Syncing())
	assert.NoError(t, app.Err())
	assert.Contains(t, app.View(), "Synced 2, failed 1, dropped 0")
}

func TestApp_SyncKey_Offline(t *testing.T) {
	svc := &mockOfflineService{syncErr: domain.ErrOffline}
	app := newTestApp(t, svc)

	_, cmd := app.Update(keyMsg("s"))
	require.NotNil(t, cmd)
	app.Update(cmd())

	assert.False(t, app.Syncing())
	assert.ErrorIs(t, app.Err(), domain.ErrOffline)
}

func TestApp_DismissKey(t *testing.T) {
	svc := &mockOfflineService{}
	app := newTestApp(t, svc)

	// Nothing to dismiss.
	_, cmd := app.Update(keyMsg("d"))
	assert.Nil(t, cmd)

	app.Update(messages.SnapshotLoaded{Status: domain.RegisterStatus{
		Notices: []domain.Notice{{Kind: domain.NoticeOffline, Title: "You are offline"}},
	}})

	_, cmd = app.Update(keyMsg("d"))
	require.NotNil(t, cmd)
	msg := cmd().(messages.NoticeDismissed)
	assert.Equal(t, domain.NoticeOffline, msg.Kind)
	assert.Equal(t, []domain.NoticeKind{domain.NoticeOffline}, svc.dismissed)
}

func TestApp_HelpToggle(t *testing.T) {
	app := newTestApp(t, &mockOfflineService{})

	app.Update(keyMsg("?"))
	assert.True(t, app.ShowingFullHelp())
	assert.Contains(t, app.View(), "dismiss notice")

	app.Update(keyMsg("?"))
	assert.False(t, app.ShowingFullHelp())
}

func TestApp_RefreshKey(t *testing.T) {
	app := newTestApp(t, &mockOfflineService{})

	_, cmd := app.Update(keyMsg("r"))
	require.NotNil(t, cmd)
	_, ok := cmd().(messages.SnapshotLoaded)
	assert.True(t, ok)
}

func TestApp_QuitKey(t *testing.T) {
	app := newTestApp(t, &mockOfflineService{})

	_, cmd := app.Update(keyMsg("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_WithRefreshInterval(t *testing.T) {
	app := newTestApp(t, &mockOfflineService{})

	app.WithRefreshInterval(0)
	assert.Equal(t, DefaultRefreshInterval, app.interval)

	app.WithRefreshInterval(time.Second)
	assert.Equal(t, time.Second, app.interval)
}
