package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/secretsproxy/secrets-cli/internal/config"
	cerrors "github.com/secretsproxy/secrets-cli/internal/errors"
	"github.com/secretsproxy/secrets-cli/internal/secure"
	"github.com/secretsproxy/secrets-cli/internal/tokenstore"
)

func NewLoginCommand(cfg *config.Config) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the secrets proxy",
		Long: `Exchange your credentials for a bearer token and store it in the
OS keyring for subsequent commands.

The password is read from the terminal without echo. In CI, set
` + config.EnvPassword + ` instead of typing it, or skip login entirely
and provide a pre-issued token via ` + config.EnvToken + `.

Examples:
  secrets login --user jdoe
  secrets login --user jdoe --domain corp`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}

			if user == "" {
				if cfg.NonInteractive {
					return cerrors.UserError{
						Message:    "Username is required",
						Suggestion: "Pass --user <name> in non-interactive mode",
					}
				}
				fmt.Print("Username: ")
				reader := bufio.NewReader(os.Stdin)
				line, err := reader.ReadString('\n')
				if err != nil {
					return fmt.Errorf("read username: %w", err)
				}
				user = strings.TrimSpace(line)
				if user == "" {
					return cerrors.UserError{Message: "Username is required"}
				}
			}

			cred, err := readPassword(cfg)
			if err != nil {
				return err
			}
			defer cred.Wipe()

			client, err := newProxyClient(cfg)
			if err != nil {
				return err
			}

			locked, err := cred.Open()
			if err != nil {
				return err
			}
			res, err := client.Authenticate(cmd.Context(), user, string(locked.Bytes()), cfg.AuthDomain())
			locked.Destroy()
			if err != nil {
				return transportErr("login", err)
			}
			if !res.Success {
				return resultErr("login", res)
			}

			ttl := time.Duration(res.Body.ExpiresIn) * time.Second
			store := tokenstore.New(cfg.Logger)
			if err := store.Save(proxyHost(cfg), res.Body.AccessToken, ttl); err != nil {
				// The token still works for this process even when the
				// keyring is unavailable.
				cfg.Logger.Warn("Token could not be stored: %v", err)
			}

			cfg.Logger.Info("Logged in as %s@%s", user, cfg.AuthDomain())
			if res.Body.ExpiresIn > 0 {
				cfg.Logger.Info("Session valid for %s", ttl)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "Username to authenticate as")

	return cmd
}

// readPassword seals the password into a memory-safe credential as soon as
// it is read. The environment variable takes precedence so automation never
// needs a terminal.
func readPassword(cfg *config.Config) (*secure.Credential, error) {
	if pw := os.Getenv(config.EnvPassword); pw != "" {
		return secure.NewCredential([]byte(pw)), nil
	}

	if cfg.NonInteractive {
		return nil, cerrors.UserError{
			Message:    "No password available",
			Suggestion: "Set " + config.EnvPassword + " when running non-interactively",
		}
	}

	fmt.Fprint(os.Stderr, "Password: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}
	if len(raw) == 0 {
		return nil, cerrors.UserError{Message: "Password is required"}
	}
	return secure.NewCredential(raw), nil
}
