package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/secretsproxy/secrets-cli/internal/config"
)

func NewDetailsCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "details <name>",
		Short: "Show the metadata of a secret",
		Args:  cobra.ExactArgs(1),
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
			res, err := client.GetSecret(cmd.Context(), group, args[0])
			if err != nil {
				return transportErr("details", err)
			}
			if !res.Success {
				return resultErr("details", res)
			}

			s := res.Body
			printKV([][2]string{
				{"Secret", s.Name},
				{"Version", strconv.FormatInt(s.Version, 10)},
				{"Description", orDash(s.Description)},
				{"Checksum", orDash(s.Checksum)},
				{"Expiry", s.Expiry.String()},
				{"Created", s.CreatedAt.String()},
				{"Created by", orDash(s.CreatedBy)},
				{"Updated", s.UpdatedAt.String()},
				{"Updated by", orDash(s.UpdatedBy)},
			})
			return nil
		},
	}

	return cmd
}
