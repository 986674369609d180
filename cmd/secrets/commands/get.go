package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/secretsproxy/secrets-cli/internal/config"
)

func NewGetCommand(cfg *config.Config) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Fetch the content of a secret",
		Long: `Fetch and decode the content of a secret. By default the raw bytes
go to stdout, suitable for piping; --out writes them to a file readable
only by the current user.

Examples:
  secrets get db-password
  secrets get tls-cert --out ./cert.pem
  export DB_PASSWORD=$(secrets get db-password)`,
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
			res, err := client.GetSecretContent(cmd.Context(), group, name)
			if err != nil {
				return transportErr("get", err)
			}
			if !res.Success {
				return resultErr("get", res)
			}

			data, err := res.Body.Decode()
			if err != nil {
				return err
			}

			if out == "" {
				_, err := os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o600); err != nil {
				return fmt.Errorf("write secret to %s: %w", out, err)
			}
			cfg.Logger.Info("Wrote secret %s to %s", name, out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the content to a file instead of stdout")

	return cmd
}
