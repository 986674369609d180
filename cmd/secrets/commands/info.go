package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/secretsproxy/secrets-cli/internal/config"
)

func NewInfoCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show details of the application group",
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
			res, err := client.GetGroupDetails(cmd.Context(), group)
			if err != nil {
				return transportErr("info", err)
			}
			if !res.Success {
				return resultErr("info", res)
			}

			g := res.Body
			printKV([][2]string{
				{"Group", g.Name},
				{"ID", strconv.FormatInt(g.ID, 10)},
				{"Description", orDash(g.Description)},
				{"Created", g.CreatedAt.String()},
				{"Created by", orDash(g.CreatedBy)},
				{"Updated", g.UpdatedAt.String()},
				{"Updated by", orDash(g.UpdatedBy)},
			})
			return nil
		},
	}

	return cmd
}
