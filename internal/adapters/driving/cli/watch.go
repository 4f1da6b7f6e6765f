package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tillsync/internal/adapters/driving/tui"
	"github.com/custodia-labs/tillsync/internal/logger"
)

var watchInterval string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Open the live register monitor",
	Long: `Opens a terminal monitor showing connectivity, pending sales and the
sync queue, refreshed continuously.

Controls:
  s - Sync now
  r - Refresh
  d - Dismiss the top notice
  ? - Toggle help
  q - Quit`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchInterval, "interval", tui.DefaultRefreshInterval.String(), "refresh interval")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in monitor: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if offlineService == nil {
		return errors.New("offline service not configured")
	}

	interval, err := time.ParseDuration(watchInterval)
	if err != nil {
		return fmt.Errorf("invalid --interval: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	stop := startScheduler(ctx)
	defer stop()

	app, err := tui.NewApp(tui.NewPorts(offlineService))
	if err != nil {
		return fmt.Errorf("failed to create monitor: %w", err)
	}

	if err := app.WithContext(ctx).WithRefreshInterval(interval).Run(); err != nil {
		return fmt.Errorf("monitor error: %w", err)
	}
	return nil
}

// startScheduler runs the background scheduler when it is enabled and
// returns a function that stops it and waits for it to exit.
func startScheduler(ctx context.Context) func() {
	if scheduler == nil || !schedulerConfig.Enabled {
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("scheduler stopped: %v", err)
		}
	}()

	return func() {
		cancel()
		if err := scheduler.Stop(); err != nil {
			logger.Warn("scheduler stop error: %v", err)
		}
		<-done
	}
}
