package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/secretsproxy/secrets-cli/internal/config"
	cerrors "github.com/secretsproxy/secrets-cli/internal/errors"
)

func NewWhoamiCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the user behind the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}

			client, err := newProxyClient(cfg)
			if err != nil {
				return err
			}
			token := client.AuthToken()
			if token == "" {
				return cerrors.UserError{
					Message:    "Not logged in",
					Suggestion: "Run 'secrets login' first",
				}
			}

			res, err := client.GetAuthUser(cmd.Context(), token)
			if err != nil {
				return transportErr("whoami", err)
			}
			if !res.Success {
				return resultErr("whoami", res)
			}

			printKV([][2]string{
				{"User", res.Body.UserName},
				{"Domain", res.Body.Domain},
				{"Roles", orDash(strings.Join(res.Body.Roles, ", "))},
			})
			return nil
		},
	}

	return cmd
}
