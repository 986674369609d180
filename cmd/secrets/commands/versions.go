package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/secretsproxy/secrets-cli/internal/config"
)

func NewVersionsCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "versions <name>",
		Short: "List the retained versions of a secret",
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
			name := args[0]
			res, err := client.GetSecretVersions(cmd.Context(), group, name)
			if err != nil {
				return transportErr("versions", err)
			}
			if !res.Success {
				return resultErr("versions", res)
			}

			if len(res.Body) == 0 {
				cfg.Logger.Warn("No versions recorded for %s", name)
				return nil
			}

			cfg.Logger.Info("%d version(s) of %s", len(res.Body), name)
			w := newTable()
			fmt.Fprintln(w, "VERSION\tUPDATED\tUPDATED BY\tCHECKSUM")
			for _, v := range res.Body {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
					v.Version, v.UpdatedAt, orDash(v.UpdatedBy), orDash(v.Checksum))
			}
			return w.Flush()
		},
	}

	return cmd
}
