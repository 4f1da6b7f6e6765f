package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/tillsync/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/tillsync/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/tillsync/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/tillsync/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/tillsync/internal/core/domain"
)

// DefaultRefreshInterval is how often the monitor polls the offline service.
const DefaultRefreshInterval = 2 * time.Second

// maxQueueRows caps the queue table in the monitor.
const maxQueueRows = 10

// App is the live register monitor following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles    *styles.Styles
	keymap    *keymap.KeyMap
	help      help.Model
	spinner   spinner.Model
	statusBar *status.Bar

	// interval is the snapshot poll period.
	interval time.Duration

	// status and queue are the last loaded snapshot.
	status domain.RegisterStatus
	queue  []domain.QueueItem

	// syncing is true while a manual replay pass is running.
	syncing bool

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has received its first window size.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new monitor with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Title

	return &App{
		ports:     ports,
		ctx:       context.Background(),
		styles:    s,
		keymap:    km,
		help:      help.New(),
		spinner:   sp,
		statusBar: status.NewBar(s, km),
		interval:  DefaultRefreshInterval,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// WithRefreshInterval sets the snapshot poll period. Non-positive values are ignored.
func (a *App) WithRefreshInterval(d time.Duration) *App {
	if d > 0 {
		a.interval = d
	}
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("tillsync - register monitor"),
		a.spinner.Tick,
		a.loadSnapshot(),
		a.tick(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.Tick:
		return a, tea.Batch(a.loadSnapshot(), a.tick())

	case messages.SnapshotLoaded:
		if msg.Err != nil {
			a.setError(msg.Err)
			return a, nil
		}
		a.status = msg.Status
		a.queue = msg.Queue
		a.statusBar.SetPending(msg.Status.Pending)
		return a, nil

	case messages.SyncFinished:
		a.syncing = false
		if msg.Err != nil {
			a.setError(msg.Err)
			return a, a.loadSnapshot()
		}
		a.err = nil
		a.statusBar.SetState(status.StateIdle)
		a.statusBar.SetMessage(fmt.Sprintf("Synced %d, failed %d, dropped %d",
			msg.Report.Synced, msg.Report.Failed, msg.Report.Dropped))
		return a, a.loadSnapshot()

	case messages.NoticeDismissed:
		if msg.Err != nil {
			a.setError(msg.Err)
		}
		return a, a.loadSnapshot()

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()

	switch {
	case keymap.Matches(k, a.keymap.Quit):
		return a, tea.Quit

	case keymap.Matches(k, a.keymap.Help):
		a.help.ShowAll = !a.help.ShowAll
		return a, nil

	case keymap.Matches(k, a.keymap.Sync):
		if a.syncing {
			return a, nil
		}
		a.syncing = true
		a.statusBar.Clear()
		a.statusBar.SetState(status.StateSyncing)
		return a, a.syncNow()

	case keymap.Matches(k, a.keymap.Refresh):
		return a, a.loadSnapshot()

	case keymap.Matches(k, a.keymap.Dismiss):
		if len(a.status.Notices) == 0 {
			return a, nil
		}
		return a, a.dismiss(a.status.Notices[0].Kind)
	}

	return a, nil
}

func (a *App) setError(err error) {
	a.err = err
	a.statusBar.SetState(status.StateError)
	a.statusBar.SetMessage(err.Error())
}

func (a *App) tick() tea.Cmd {
	return tea.Tick(a.interval, func(t time.Time) tea.Msg {
		return messages.Tick{At: t}
	})
}

func (a *App) loadSnapshot() tea.Cmd {
	offline := a.ports.Offline
	ctx := a.ctx
	return func() tea.Msg {
		st, err := offline.Status(ctx)
		if err != nil {
			return messages.SnapshotLoaded{Err: err}
		}
		queue, err := offline.Queue(ctx)
		if err != nil {
			return messages.SnapshotLoaded{Err: err}
		}
		return messages.SnapshotLoaded{Status: st, Queue: queue}
	}
}

func (a *App) syncNow() tea.Cmd {
	offline := a.ports.Offline
	ctx := a.ctx
	return func() tea.Msg {
		report, err := offline.SyncNow(ctx)
		return messages.SyncFinished{Report: report, Err: err}
	}
}

func (a *App) dismiss(kind domain.NoticeKind) tea.Cmd {
	offline := a.ports.Offline
	return func() tea.Msg {
		return messages.NoticeDismissed{Kind: kind, Err: offline.DismissNotice(kind)}
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(RenderStatus(a.styles, a.status, a.width))
	b.WriteString("\n\n")
	if a.syncing {
		b.WriteString(a.spinner.View() + " " + a.styles.Warning.Render("Replaying queue..."))
		b.WriteString("\n\n")
	}
	b.WriteString(RenderQueue(a.styles, a.queue, maxQueueRows))
	b.WriteString("\n\n")
	if a.help.ShowAll {
		b.WriteString(a.help.View(a.keymap))
		b.WriteString("\n\n")
	}
	b.WriteString(a.statusBar.View())

	return b.String()
}

// Run starts the monitor and blocks until it exits.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// Status returns the last loaded register status.
func (a *App) Status() domain.RegisterStatus {
	return a.status
}

// Queue returns the last loaded queue items.
func (a *App) Queue() []domain.QueueItem {
	return a.queue
}

// Syncing returns whether a manual replay pass is running.
func (a *App) Syncing() bool {
	return a.syncing
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// ShowingFullHelp returns whether the full help is expanded.
func (a *App) ShowingFullHelp() bool {
	return a.help.ShowAll
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.help.Width = width
	a.statusBar.SetWidth(width)
}
