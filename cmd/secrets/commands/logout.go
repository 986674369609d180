package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/secretsproxy/secrets-cli/internal/config"
	"github.com/secretsproxy/secrets-cli/internal/tokenstore"
)

func NewLogoutCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session token",
		Long: `Delete the bearer token kept in the OS keyring for the configured
proxy. Tokens provided via ` + config.EnvToken + ` are unaffected.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}

			store := tokenstore.New(cfg.Logger)
			err := store.Delete(proxyHost(cfg))
			switch {
			case errors.Is(err, tokenstore.ErrNoSession):
				cfg.Logger.Warn("No stored session for %s", proxyHost(cfg))
				return nil
			case err != nil:
				return err
			}

			cfg.Logger.Info("Logged out from %s", proxyHost(cfg))
			return nil
		},
	}

	return cmd
}
