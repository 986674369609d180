package commands

import (
	"github.com/spf13/cobra"

	"github.com/secretsproxy/secrets-cli/internal/config"
	"github.com/secretsproxy/secrets-cli/internal/proxy"
)

func NewAddCommand(cfg *config.Config) *cobra.Command {
	var (
		file        string
		value       string
		desc        string
		expiry      string
		createGroup bool
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new secret to the application group",
		Long: `Upload a new secret. The content comes from a file or a literal
value and is transferred base64-encoded.

Examples:
  secrets add db-password --file ./password.txt
  secrets add api-key --value s3cr3t --desc "Payment API key"
  secrets add tls-cert --file cert.pem --expiry 2027-01-31 --create-group`,
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
			res, err := client.CreateSecret(cmd.Context(), group, name, req, createGroup)
			if err != nil {
				return transportErr("add", err)
			}
			if !res.Success {
				return resultErr("add", res)
			}

			cfg.Logger.Info("Added secret %s to %s", name, group)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the secret content from a file")
	cmd.Flags().StringVar(&value, "value", "", "Literal secret content")
	cmd.Flags().StringVar(&desc, "desc", "", "Secret description")
	cmd.Flags().StringVar(&expiry, "expiry", "", "Expiry date (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().BoolVar(&createGroup, "create-group", false, "Create the application group if it does not exist")

	return cmd
}
