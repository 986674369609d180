package commands

import (
	"github.com/spf13/cobra"

	"github.com/secretsproxy/secrets-cli/internal/config"
	"github.com/secretsproxy/secrets-cli/internal/proxy"
)

func NewUpdateCommand(cfg *config.Config) *cobra.Command {
	var (
		file   string
		value  string
		desc   string
		expiry string
	)

	cmd := &cobra.Command{
		Use:   "update <name>",
		Short: "Update an existing secret",
		Long: `Replace the content of an existing secret. The proxy keeps the
previous content as an older version; use 'secrets revert' to switch back.

Examples:
  secrets update db-password --file ./new-password.txt
  secrets update api-key --value n3w-s3cr3t`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}
			group, err := cfg.AppGroup()
			if err != nil {
				return err
			}

			content, err := secretContent(file, value)
			if err != nil {
				return err
			}
			exp, err := parseExpiry(expiry)
			if err != nil {
				return err
			}
			req := proxy.NewSecretReq(content, desc)
			req.Expiry = exp

			client, err := newProxyClient(cfg)
			if err != nil {
				return err
			}
			name := args[0]
			res, err := client.UpdateSecret(cmd.Context(), group, name, req)
			if err != nil {
				return transportErr("update", err)
			}
			if !res.Success {
				return resultErr("update", res)
			}

			cfg.Logger.Info("Updated secret %s in %s", name, group)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the secret content from a file")
	cmd.Flags().StringVar(&value, "value", "", "Literal secret content")
	cmd.Flags().StringVar(&desc, "desc", "", "Secret description")
	cmd.Flags().StringVar(&expiry, "expiry", "", "Expiry date (YYYY-MM-DD or RFC 3339)")

	return cmd
}
