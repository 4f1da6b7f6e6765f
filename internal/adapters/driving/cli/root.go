// Package cli provides the cobra command tree for tillsync.
// It is a driving adapter: commands call the core through driving ports
// installed by the composition root with SetServices.
package cli

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tillsync/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/tillsync/internal/core/domain"
	"github.com/custodia-labs/tillsync/internal/core/ports/driving"
	"github.com/custodia-labs/tillsync/internal/logger"
)

// Services are the collaborators the commands run against.
type Services struct {
	Offline  driving.OfflineService
	Settings driving.SettingsService

	// Scheduler runs periodic replay for long-running commands.
	Scheduler       driving.Scheduler
	SchedulerConfig domain.SchedulerConfig

	// Metrics is mounted at /metrics by serve. Optional.
	Metrics http.Handler

	// Toggle is set when the manual connectivity source is active.
	Toggle httpapi.ConnectivityToggle

	// ServerAddr is the default listen address for serve.
	ServerAddr string
}

var (
	version = "dev"
	verbose bool

	offlineService     driving.OfflineService
	settingsService    driving.SettingsService
	scheduler          driving.Scheduler
	schedulerConfig    domain.SchedulerConfig
	metricsHandler     http.Handler
	connectivityToggle httpapi.ConnectivityToggle
	serverAddr         = domain.DefaultSettings().ServerAddr
)

var rootCmd = &cobra.Command{
	Use:   "tillsync",
	Short: "Offline-first sync for point-of-sale registers",
	Long: `tillsync keeps a register selling while the network is down.

Sales recorded offline are stored locally and replayed in order against the
remote API once connectivity returns. Products are cached for offline lookup.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetServices installs the services the commands use.
func SetServices(s Services) {
	offlineService = s.Offline
	settingsService = s.Settings
	scheduler = s.Scheduler
	schedulerConfig = s.SchedulerConfig
	metricsHandler = s.Metrics
	connectivityToggle = s.Toggle
	if s.ServerAddr != "" {
		serverAddr = s.ServerAddr
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
