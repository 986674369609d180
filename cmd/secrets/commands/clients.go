package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/secretsproxy/secrets-cli/internal/config"
)

// clientRowLimit caps the table so one misbehaving group does not scroll a
// terminal into oblivion. The count line always reports the real total.
const clientRowLimit = 50

func NewClientsCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "List the clients registered for the application group",
		Long: `List the clients (computes) authorized to fetch secrets for the
application group. An empty list usually means the deployment that
registers clients has not run yet.`,
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
			res, err := client.GetAllClients(cmd.Context(), group)
			if err != nil {
				return transportErr("clients", err)
			}
			if !res.Success {
				return resultErr("clients", res)
			}

			clients := res.Body
			if len(clients) == 0 {
				cfg.Logger.Warn("No clients registered for %s", group)
				fmt.Println("Verify the following,")
				fmt.Println("  1. The secrets-client component is added to the application's platforms.")
				fmt.Println("  2. The environment deployment completed after the component was added.")
				return nil
			}

			cfg.Logger.Info("%d client(s) registered for %s", len(clients), group)
			w := newTable()
			fmt.Fprintln(w, "NAME\tENABLED\tLAST SEEN\tCREATED\tDESCRIPTION")
			shown := clients
			if len(shown) > clientRowLimit {
				shown = shown[:clientRowLimit]
			}
			for _, c := range shown {
				fmt.Fprintf(w, "%s\t%t\t%s\t%s\t%s\n",
					c.Name, c.Enabled, c.LastSeen, c.CreatedAt, orDash(c.Description))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if len(clients) > clientRowLimit {
				fmt.Printf("Showing first %d of %d clients\n", clientRowLimit, len(clients))
			}
			return nil
		},
	}

	cmd.AddCommand(
		newClientDetailsCommand(cfg),
		newClientDeleteCommand(cfg),
	)

	return cmd
}

func newClientDetailsCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "details <name>",
		Short: "Show details of a registered client",
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
			res, err := client.GetClientDetails(cmd.Context(), group, args[0])
			if err != nil {
				return transportErr("clients details", err)
			}
			if !res.Success {
				return resultErr("clients details", res)
			}

			c := res.Body
			printKV([][2]string{
				{"Client", c.Name},
				{"ID", strconv.FormatInt(c.ID, 10)},
				{"Enabled", strconv.FormatBool(c.Enabled)},
				{"Description", orDash(c.Description)},
				{"Last seen", c.LastSeen.String()},
				{"Created", c.CreatedAt.String()},
				{"Created by", orDash(c.CreatedBy)},
				{"Updated", c.UpdatedAt.String()},
				{"Updated by", orDash(c.UpdatedBy)},
			})
			return nil
		},
	}
}

func newClientDeleteCommand(cfg *config.Config) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a client from the application group",
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
			if err := confirm(cfg, yes, fmt.Sprintf("Delete client '%s' from %s?", name, group)); err != nil {
				return err
			}

			client, err := newProxyClient(cfg)
			if err != nil {
				return err
			}
			res, err := client.DeleteClient(cmd.Context(), group, name)
			if err != nil {
				return transportErr("clients delete", err)
			}
			if !res.Success {
				return resultErr("clients delete", res)
			}

			cfg.Logger.Info("Deleted client %s from %s", name, group)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
