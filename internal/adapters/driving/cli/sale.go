package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tillsync/internal/core/domain"
)

var (
	saleListSynced  bool
	saleListPending bool
	saleListJSON    bool
)

var saleCmd = &cobra.Command{
	Use:   "sale",
	Short: "Record and inspect sales",
}

var saleRecordCmd = &cobra.Command{
	Use:   "record <file.json>",
	Short: "Record a sale from a JSON file",
	Long: `Records a sale described by a create-sale JSON body. Use "-" to read stdin.

Online, the sale is posted to the API directly. Offline, or when the API
cannot be reached, it is stored locally and queued for replay.`,
	Args: cobra.ExactArgs(1),
	RunE: runSaleRecord,
}

var saleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List locally recorded sales",
	Args:  cobra.NoArgs,
	RunE:  runSaleList,
}

func init() {
	saleListCmd.Flags().BoolVar(&saleListSynced, "synced", false, "only sales accepted by the server")
	saleListCmd.Flags().BoolVar(&saleListPending, "pending", false, "only sales awaiting sync")
	saleListCmd.Flags().BoolVar(&saleListJSON, "json", false, "output as JSON")
	saleListCmd.MarkFlagsMutuallyExclusive("synced", "pending")
	saleCmd.AddCommand(saleRecordCmd)
	saleCmd.AddCommand(saleListCmd)
	rootCmd.AddCommand(saleCmd)
}

func runSaleRecord(cmd *cobra.Command, args []string) error {
	if offlineService == nil {
		return errors.New("offline service not configured")
	}

	req, err := readSaleRequest(cmd, args[0])
	if err != nil {
		return err
	}

	receipt, err := offlineService.RecordSale(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("failed to record sale: %w", err)
	}

	if receipt.Offline {
		cmd.Printf("Recorded offline as sale #%d (total %s). It will sync when the register is back online.\n",
			receipt.LocalID, req.Total().StringFixed(2))
		return nil
	}

	cmd.Printf("Sale posted (total %s).\n", req.Total().StringFixed(2))
	if len(receipt.Remote) > 0 {
		cmd.Println(string(receipt.Remote))
	}
	return nil
}

func readSaleRequest(cmd *cobra.Command, path string) (domain.SaleRequest, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return domain.SaleRequest{}, fmt.Errorf("failed to open sale file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var req domain.SaleRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return domain.SaleRequest{}, fmt.Errorf("failed to parse sale: %w", err)
	}
	return req, nil
}

func runSaleList(cmd *cobra.Command, _ []string) error {
	if offlineService == nil {
		return errors.New("offline service not configured")
	}

	var filter domain.SaleFilter
	switch {
	case saleListSynced:
		synced := true
		filter.Synced = &synced
	case saleListPending:
		synced := false
		filter.Synced = &synced
	}

	sales, err := offlineService.Sales(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("failed to list sales: %w", err)
	}

	if saleListJSON {
		return printJSON(cmd, sales)
	}

	if len(sales) == 0 {
		cmd.Println("No sales recorded locally.")
		return nil
	}

	rows := make([][]string, 0, len(sales))
	for i := range sales {
		state := "pending"
		if sales[i].Synced {
			state = "synced"
		}
		rows = append(rows, []string{
			strconv.FormatInt(sales[i].ID, 10),
			sales[i].Timestamp.Format(time.DateTime),
			state,
		})
	}
	cmd.Println(renderTable([]string{"ID", "RECORDED", "STATE"}, rows))

	return nil
}
