package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var productsJSON bool

var productsCmd = &cobra.Command{
	Use:   "products <shop-id>",
	Short: "List a shop's products",
	Long: `Lists the products of a shop. Online, the list is fetched from the API
and cached. Offline, the cached copy is returned.`,
	Args: cobra.ExactArgs(1),
	RunE: runProducts,
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the local product cache",
}

var cacheResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Wipe cached products",
	Long:  `Wipes every cached product. Recorded sales and the sync queue are kept.`,
	Args:  cobra.NoArgs,
	RunE:  runCacheReset,
}

func init() {
	productsCmd.Flags().BoolVar(&productsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(productsCmd)
	cacheCmd.AddCommand(cacheResetCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runProducts(cmd *cobra.Command, args []string) error {
	if offlineService == nil {
		return errors.New("offline service not configured")
	}

	shopID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || shopID <= 0 {
		return fmt.Errorf("invalid shop id %q", args[0])
	}

	products, err := offlineService.Products(cmd.Context(), shopID)
	if err != nil {
		return fmt.Errorf("failed to list products: %w", err)
	}

	if productsJSON {
		return printJSON(cmd, products)
	}

	if len(products) == 0 {
		cmd.Println("No products found.")
		return nil
	}

	rows := make([][]string, 0, len(products))
	for i := range products {
		active := "yes"
		if !products[i].IsActive {
			active = "no"
		}
		rows = append(rows, []string{
			strconv.FormatInt(products[i].ID, 10),
			products[i].SKU,
			products[i].Name,
			products[i].UnitPrice.StringFixed(2),
			strconv.Itoa(products[i].CurrentStock),
			active,
		})
	}
	cmd.Println(renderTable([]string{"ID", "SKU", "NAME", "PRICE", "STOCK", "ACTIVE"}, rows))

	if !offlineService.Online() {
		cmd.Println("Offline: showing cached products.")
	}
	return nil
}

func runCacheReset(cmd *cobra.Command, _ []string) error {
	if offlineService == nil {
		return errors.New("offline service not configured")
	}

	if err := offlineService.ResetCache(cmd.Context()); err != nil {
		return fmt.Errorf("failed to reset cache: %w", err)
	}

	cmd.Println("Product cache cleared.")
	return nil
}
