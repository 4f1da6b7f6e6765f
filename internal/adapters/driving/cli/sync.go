package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tillsync/internal/core/domain"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replay queued sales now",
	Long: `Runs one replay pass over the sync queue, oldest item first.
Fails when the register is offline or a pass is already running.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	if offlineService == nil {
		return errors.New("offline service not configured")
	}

	cmd.Println("Replaying queue...")

	report, err := offlineService.SyncNow(cmd.Context())
	switch {
	case errors.Is(err, domain.ErrOffline):
		return errors.New("register is offline; queued sales will replay when it reconnects")
	case errors.Is(err, domain.ErrSyncInProgress):
		return errors.New("a replay pass is already running")
	case err != nil:
		return fmt.Errorf("sync failed: %w", err)
	}

	cmd.Printf("Attempted %d: %d synced, %d failed, %d dropped\n",
		report.Attempted, report.Synced, report.Failed, report.Dropped)

	return nil
}
