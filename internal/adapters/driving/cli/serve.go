package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tillsync/internal/adapters/driving/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local HTTP API for the register front end",
	Long: `Serves the register API on a local address until interrupted.

Endpoints include /status, /sales, /products, /sync, /queue and /metrics.
When the manual connectivity source is active, POST /connectivity toggles
the online state.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if offlineService == nil {
		return errors.New("offline service not configured")
	}

	server, err := httpapi.NewServer(httpapi.Config{
		Offline: offlineService,
		Toggle:  connectivityToggle,
		Metrics: metricsHandler,
	})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	stop := startScheduler(ctx)
	defer stop()

	addr := serveAddr
	if addr == "" {
		addr = serverAddr
	}

	cmd.Printf("tillsync API listening on http://%s\n", addr)
	if err := server.Run(ctx, addr); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
