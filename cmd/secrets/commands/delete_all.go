package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/secretsproxy/secrets-cli/internal/config"
)

func NewDeleteAllCommand(cfg *config.Config) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete-all",
		Short: "Delete every secret in the application group",
		Long: `Delete all secrets of the application group in one call. The proxy
answers with the names it removed, which are printed afterwards.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}
			group, err := cfg.AppGroup()
			if err != nil {
				return err
			}

			if err := confirm(cfg, yes, fmt.Sprintf("Delete ALL secrets from %s?", group)); err != nil {
				return err
			}

			client, err := newProxyClient(cfg)
			if err != nil {
				return err
			}
			res, err := client.DeleteAllSecrets(cmd.Context(), group)
			if err != nil {
				return transportErr("delete-all", err)
			}
			if !res.Success {
				return resultErr("delete-all", res)
			}

			if len(res.Body) == 0 {
				cfg.Logger.Warn("No secrets in %s", group)
				return nil
			}
			for _, name := range res.Body {
				fmt.Println(name)
			}
			cfg.Logger.Info("Deleted %d secret(s) from %s", len(res.Body), group)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
