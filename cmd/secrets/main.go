package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/secretsproxy/secrets-cli/cmd/secrets/commands"
	"github.com/secretsproxy/secrets-cli/internal/config"
	"github.com/secretsproxy/secrets-cli/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Global flags
	var (
		configFile     string
		app            string
		url            string
		domain         string
		noColor        bool
		debug          bool
		nonInteractive bool
	)

	// Create config placeholder
	cfg := &config.Config{}

	rootCmd := &cobra.Command{
		Use:   "secrets",
		Short: "Manage application secrets through the secrets proxy",
		Long: `secrets authenticates against the secrets proxy and manages the
secrets and clients of an application group from the command line.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Initialize logger with parsed flags
			logger := logging.New(debug, noColor)

			// Update config with parsed values
			cfg.Path = configFile
			cfg.Logger = logger
			cfg.NonInteractive = nonInteractive
			cfg.App = app
			cfg.URL = url
			cfg.Domain = domain
			cfg.Version = version
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file path (default ~/.secrets-cli.yaml)")
	rootCmd.PersistentFlags().StringVar(&app, "app", "", "Application group the operation is scoped to")
	rootCmd.PersistentFlags().StringVar(&url, "url", "", "Secrets proxy URL override")
	rootCmd.PersistentFlags().StringVar(&domain, "domain", "", "Authentication domain")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "Non-interactive mode")

	// Add commands
	rootCmd.AddCommand(
		commands.NewLoginCommand(cfg),
		commands.NewLogoutCommand(cfg),
		commands.NewWhoamiCommand(cfg),
		commands.NewInfoCommand(cfg),
		commands.NewClientsCommand(cfg),
		commands.NewListCommand(cfg),
		commands.NewExpiringCommand(cfg),
		commands.NewAddCommand(cfg),
		commands.NewUpdateCommand(cfg),
		commands.NewDetailsCommand(cfg),
		commands.NewGetCommand(cfg),
		commands.NewVersionsCommand(cfg),
		commands.NewRevertCommand(cfg),
		commands.NewDeleteCommand(cfg),
		commands.NewDeleteAllCommand(cfg),
		commands.NewCompletionCommand(cfg),
	)

	return rootCmd.Execute()
}
