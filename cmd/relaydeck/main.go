// Relaydeck is a terminal dashboard for a smart-home relay hub.
//
// It mirrors the hub's device and relay state into an interactive TUI,
// applies relay commands optimistically, and reconciles against the hub
// over a periodic poll and a websocket push channel. Direct subcommands
// cover the same operations for scripting.
//
// Usage:
//
//	relaydeck [command] [flags]
//
// Running without arguments launches the interactive dashboard.
// See 'relaydeck --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/muurk/relaydeck/internal/config"
	"github.com/muurk/relaydeck/internal/logging"
	"github.com/muurk/relaydeck/internal/tui"
	"github.com/muurk/relaydeck/internal/version"
)

var (
	configPath string
	serverURL  string

	cfg *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logging.Sync()
}

var rootCmd = &cobra.Command{
	Use:   "relaydeck",
	Short: "Relay Hub Dashboard",
	Long: `A terminal client for a smart-home relay hub.

Shows every device and relay grouped by room, toggles relays with
optimistic feedback, and stays in sync with the hub through polling
and push notifications.

If no command is specified, the interactive dashboard will launch
automatically.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if serverURL != "" {
			loaded.ServerURL = serverURL
		}
		cfg = &loaded

		if cfg.LogLevel != "" {
			return logging.Initialize(cfg.LogLevel)
		}
		return logging.InitializeFromEnv()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return tui.Run(cfg)
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Hub base URL (overrides config and environment)")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("relaydeck %s\n", version.Full())
	},
}
