package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/secretsproxy/secrets-cli/internal/config"
)

func NewExpiringCommand(cfg *config.Config) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "expiring",
		Short: "List secrets that expire soon",
		Long: `List the names of secrets in the application group whose expiry
falls within the given window.

Examples:
  secrets expiring             # expiring within 30 days
  secrets expiring --days 7`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}
			group, err := cfg.AppGroup()
			if err != nil {
				return err
			}

			client, err := newProxyClient(cfg)
			if err != nil {
				return err
			}
			before := time.Now().Add(time.Duration(days) * 24 * time.Hour).Unix()
			res, err := client.GetAllSecretsExpiring(cmd.Context(), group, before)
			if err != nil {
				return transportErr("expiring", err)
			}
			if !res.Success {
				return resultErr("expiring", res)
			}

			if len(res.Body) == 0 {
				cfg.Logger.Info("No secrets in %s expire within %d day(s)", group, days)
				return nil
			}

			cfg.Logger.Warn("%d secret(s) in %s expire within %d day(s)", len(res.Body), group, days)
			for _, name := range res.Body {
				fmt.Println(name)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "Expiry window in days")

	return cmd
}
