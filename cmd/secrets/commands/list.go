package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/secretsproxy/secrets-cli/internal/config"
)

func NewListCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the secrets of the application group",
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
			res, err := client.GetAllSecrets(cmd.Context(), group)
			if err != nil {
				return transportErr("list", err)
			}
			if !res.Success {
				return resultErr("list", res)
			}

			secrets := res.Body
			if len(secrets) == 0 {
				cfg.Logger.Warn("No secrets in %s", group)
				return nil
			}

			cfg.Logger.Info("%d secret(s) in %s", len(secrets), group)
			w := newTable()
			fmt.Fprintln(w, "NAME\tVERSION\tEXPIRY\tUPDATED\tUPDATED BY\tDESCRIPTION")
			for _, s := range secrets {
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\n",
					s.Name, s.Version, s.Expiry, s.UpdatedAt, orDash(s.UpdatedBy), orDash(s.Description))
			}
			return w.Flush()
		},
	}

	return cmd
}
