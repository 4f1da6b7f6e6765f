package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var (
	queueLimit int
	queueJSON  bool
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Inspect the sync queue",
}

var queueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List queued operations in replay order",
	Args:  cobra.NoArgs,
	RunE:  runQueueList,
}

var queueDeadLettersCmd = &cobra.Command{
	Use:   "dead-letters",
	Short: "List operations dropped after too many failed attempts",
	Args:  cobra.NoArgs,
	RunE:  runQueueDeadLetters,
}

func init() {
	queueListCmd.Flags().IntVarP(&queueLimit, "limit", "n", 0, "maximum number of items (0 = all)")
	queueCmd.PersistentFlags().BoolVar(&queueJSON, "json", false, "output as JSON")
	queueCmd.AddCommand(queueListCmd)
	queueCmd.AddCommand(queueDeadLettersCmd)
	rootCmd.AddCommand(queueCmd)
}

func runQueueList(cmd *cobra.Command, _ []string) error {
	if offlineService == nil {
		return errors.New("offline service not configured")
	}

	items, err := offlineService.Queue(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list queue: %w", err)
	}
	if queueLimit > 0 && len(items) > queueLimit {
		items = items[:queueLimit]
	}

	if queueJSON {
		return printJSON(cmd, items)
	}

	if len(items) == 0 {
		cmd.Println("Queue is empty.")
		return nil
	}

	rows := make([][]string, 0, len(items))
	for i := range items {
		rows = append(rows, []string{
			strconv.FormatInt(items[i].ID, 10),
			items[i].Operation().String(),
			formatLocalRef(items[i].LocalRef),
			strconv.Itoa(items[i].Attempts),
			items[i].EnqueuedAt.Format(time.DateTime),
			items[i].LastError,
		})
	}
	cmd.Println(renderTable([]string{"ID", "OPERATION", "SALE", "TRIES", "ENQUEUED", "LAST ERROR"}, rows))

	return nil
}

func runQueueDeadLetters(cmd *cobra.Command, _ []string) error {
	if offlineService == nil {
		return errors.New("offline service not configured")
	}

	letters, err := offlineService.DeadLetters(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list dead letters: %w", err)
	}

	if queueJSON {
		return printJSON(cmd, letters)
	}

	if len(letters) == 0 {
		cmd.Println("No dead letters.")
		return nil
	}

	rows := make([][]string, 0, len(letters))
	for i := range letters {
		rows = append(rows, []string{
			strconv.FormatInt(letters[i].Item.ID, 10),
			letters[i].Item.Operation().String(),
			letters[i].DroppedAt.Format(time.DateTime),
			letters[i].Reason,
		})
	}
	cmd.Println(renderTable([]string{"ITEM", "OPERATION", "DROPPED", "REASON"}, rows))
	cmd.Printf("%d operation(s) need manual recovery.\n", len(letters))

	return nil
}

func formatLocalRef(ref *int64) string {
	if ref == nil {
		return "-"
	}
	return strconv.FormatInt(*ref, 10)
}
