package commands

import (
	"bufio"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/secretsproxy/secrets-cli/internal/config"
	cerrors "github.com/secretsproxy/secrets-cli/internal/errors"
	"github.com/secretsproxy/secrets-cli/internal/proxy"
	"github.com/secretsproxy/secrets-cli/internal/tokenstore"
)

// newProxyClient builds the proxy client for one command invocation and
// restores any stored session onto it. The environment token wins over the
// keyring so CI jobs never touch the OS credential store.
func newProxyClient(cfg *config.Config) (*proxy.SecretsClient, error) {
	clientCfg, err := cfg.ClientConfig(cfg.Version)
	if err != nil {
		return nil, err
	}
	client, err := proxy.NewSecretsClient(clientCfg, cfg.Logger)
	if err != nil {
		return nil, err
	}

	if tok := cfg.EnvToken(); tok != "" {
		client.SetAuthToken(tok)
		return client, nil
	}

	store := tokenstore.New(cfg.Logger)
	tok, err := store.Load(proxyHost(cfg))
	switch {
	case err == nil:
		client.SetAuthToken(tok)
	case errors.Is(err, tokenstore.ErrNoSession):
		// Unauthenticated calls are allowed; the proxy decides.
	default:
		cfg.Logger.Debug("Could not restore session: %v", err)
	}
	return client, nil
}

// proxyHost returns the host the session is keyed under in the keyring.
func proxyHost(cfg *config.Config) string {
	raw := cfg.ProxyURL()
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		return u.Host
	}
	return raw
}

// resultErr translates a failed Result into the typed command error. The
// client never raises on application failures, so this is where a non-2xx
// response becomes an error the user sees.
func resultErr[T any](command string, res proxy.Result[T]) error {
	return &cerrors.ProxyError{Command: command, Status: res.StatusCode, Err: res.Err}
}

// transportErr wraps an I/O failure with the originating command.
func transportErr(command string, err error) error {
	return &cerrors.ProxyError{Command: command, Cause: err}
}

// confirm asks the user before a destructive operation. --yes skips the
// prompt; in non-interactive mode the prompt cannot be answered, so the
// flag is required instead.
func confirm(cfg *config.Config, yes bool, prompt string) error {
	if yes {
		return nil
	}
	if cfg.NonInteractive {
		return cerrors.UserError{
			Message:    "Confirmation required",
			Suggestion: "Pass --yes to confirm in non-interactive mode",
		}
	}

	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("read confirmation: %w", err)
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer != "y" && answer != "yes" {
		return cerrors.UserError{Message: "Aborted"}
	}
	return nil
}

// newTable returns a tab-aligned writer for stdout. Callers must Flush.
func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}

// printKV renders key/value detail lines with aligned keys.
func printKV(pairs [][2]string) {
	width := 0
	for _, p := range pairs {
		if len(p[0]) > width {
			width = len(p[0])
		}
	}
	for _, p := range pairs {
		fmt.Printf("  %-*s  %s\n", width, p[0], p[1])
	}
}

// orDash substitutes "-" for empty table cells.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// secretContent resolves the secret payload from exactly one of --file and
// --value.
func secretContent(file, value string) ([]byte, error) {
	switch {
	case file != "" && value != "":
		return nil, cerrors.UserError{
			Message:    "Both --file and --value given",
			Suggestion: "Provide the secret content through one of them, not both",
		}
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, cerrors.UserError{
				Message:    fmt.Sprintf("Cannot read secret content from %s", file),
				Details:    err.Error(),
				Suggestion: "Check the path and file permissions",
				Err:        err,
			}
		}
		return data, nil
	case value != "":
		return []byte(value), nil
	default:
		return nil, cerrors.UserError{
			Message:    "No secret content given",
			Suggestion: "Pass --file <path> or --value <content>",
		}
	}
}

// parseExpiry accepts an expiry as a calendar date or an RFC 3339 instant.
func parseExpiry(s string) (proxy.Timestamp, error) {
	if s == "" {
		return proxy.Timestamp{}, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return proxy.NewTimestamp(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return proxy.NewTimestamp(t), nil
	}
	return proxy.Timestamp{}, cerrors.UserError{
		Message:    fmt.Sprintf("Invalid expiry %q", s),
		Suggestion: "Use YYYY-MM-DD or an RFC 3339 timestamp, e.g. 2026-12-31 or 2026-12-31T00:00:00Z",
	}
}
