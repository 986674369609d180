package commands

import (
	"github.com/spf13/cobra"

	"github.com/secretsproxy/secrets-cli/internal/config"
)

func NewRevertCommand(cfg *config.Config) *cobra.Command {
	var version int64

	cmd := &cobra.Command{
		Use:   "revert <name>",
		Short: "Make an older version of a secret the current one",
		Long: `Switch the active content of a secret back to a retained version.
Use 'secrets versions <name>' to see which versions are available.

Example:
  secrets revert db-password --version 3`,
		Args: cobra.ExactArgs(1),
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
			name := args[0]
			res, err := client.SetSecretVersion(cmd.Context(), group, name, version)
			if err != nil {
				return transportErr("revert", err)
			}
			if !res.Success {
				return resultErr("revert", res)
			}

			cfg.Logger.Info("Reverted secret %s to version %d", name, version)
			return nil
		},
	}

	cmd.Flags().Int64Var(&version, "version", 0, "Version number to make current (required)")
	_ = cmd.MarkFlagRequired("version")

	return cmd
}
