package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/secretsproxy/secrets-cli/internal/config"
)

func NewDeleteCommand(cfg *config.Config) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a secret and all its versions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}
			group, err := cfg.AppGroup()
			if err != nil {
				return err
			}

			name := args[0]
			if err := confirm(cfg, yes, fmt.Sprintf("Delete secret '%s' from %s?", name, group)); err != nil {
				return err
			}

			client, err := newProxyClient(cfg)
			if err != nil {
				return err
			}
			res, err := client.DeleteSecret(cmd.Context(), group, name)
			if err != nil {
				return transportErr("delete", err)
			}
			if !res.Success {
				return resultErr("delete", res)
			}

			cfg.Logger.Info("Deleted secret %s from %s", name, group)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
