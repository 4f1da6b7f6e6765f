package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/tillsync/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage tillsync configuration",
	Long: `View and change the settings stored in ~/.tillsync/config.toml.

TILLSYNC_API_URL overrides the configured API base URL.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetTokenCmd = &cobra.Command{
	Use:   "set-token",
	Short: "Store the API bearer token",
	Long:  `Prompts for the API bearer token without echoing it and stores it in the config file.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigSetToken,
}

var configSetSourceCmd = &cobra.Command{
	Use:   "set-source <noop|manual|file> [status-file]",
	Short: "Select the connectivity source",
	Long: `Selects where online/offline signals come from.

  noop    - Always online
  manual  - Toggled through POST /connectivity
  file    - Watches a status file containing "online" or "offline"`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConfigSetSource,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetTokenCmd)
	configCmd.AddCommand(configSetSourceCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[API]")
	cmd.Printf("  Base URL: %s\n", settings.API.BaseURL)
	if settings.API.Token != "" {
		cmd.Printf("  Token: %s\n", maskToken(settings.API.Token))
	} else {
		cmd.Println("  Token: (not set)")
	}
	cmd.Printf("  Timeout: %s\n", settings.API.Timeout)
	cmd.Printf("  Rate limit: %.1f/s (burst %d)\n", settings.API.RequestsPerSecond, settings.API.Burst)
	cmd.Println()

	cmd.Println("[Connectivity]")
	cmd.Printf("  Source: %s\n", settings.Connectivity.Source)
	if settings.Connectivity.Source == domain.ConnectivityFile {
		cmd.Printf("  Status file: %s\n", settings.Connectivity.StatusFile)
	}
	cmd.Printf("  Online notice: %s\n", settings.OnlineNoticeTTL)
	cmd.Println()

	cmd.Println("[Scheduler]")
	if settings.Scheduler.Enabled {
		cmd.Printf("  Periodic replay: every %s\n", settings.Scheduler.Interval)
	} else {
		cmd.Println("  Periodic replay: disabled")
	}
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Address: %s\n", settings.ServerAddr)

	return nil
}

func runConfigSetToken(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Print("API token: ")
	token := readSecret(cmd)
	cmd.Println()

	if token == "" {
		return errors.New("token cannot be empty")
	}

	if err := settingsService.SetAPIToken(token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	cmd.Printf("Token saved (%s).\n", maskToken(token))
	return nil
}

func runConfigSetSource(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	source := domain.ConnectivitySourceType(args[0])
	statusFile := ""
	if len(args) > 1 {
		statusFile = args[1]
	}

	if err := settingsService.SetConnectivitySource(source, statusFile); err != nil {
		return fmt.Errorf("failed to set connectivity source: %w", err)
	}

	cmd.Printf("Connectivity source set to %s.\n", source)
	return nil
}

// readSecret reads a line without echo when stdin is a terminal.
//
//nolint:errcheck // CLI helper, error ignored for UX
func readSecret(cmd *cobra.Command) string {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	reader := bufio.NewReader(cmd.InOrStdin())
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
