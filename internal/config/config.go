package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	cerrors "github.com/secretsproxy/secrets-cli/internal/errors"
	"github.com/secretsproxy/secrets-cli/internal/logging"
	"github.com/secretsproxy/secrets-cli/internal/proxy"
)

// Environment variables recognized alongside the configuration file. Flags
// win over the environment, the environment wins over the file.
const (
	EnvProxyURL = "SECRETS_PROXY_URL"
	EnvApp      = "SECRETS_PROXY_APP"
	EnvDomain   = "SECRETS_PROXY_DOMAIN"
	EnvToken    = "SECRETS_PROXY_TOKEN"
	EnvPassword = "SECRETS_PROXY_PASSWORD"
)

// DefaultDomain is the auth domain used when none is configured.
const DefaultDomain = "prod"

const defaultTimeoutSeconds = 10

// Config holds the runtime configuration
type Config struct {
	Path           string
	Logger         *logging.Logger
	NonInteractive bool
	Version        string

	// Flag-bound overrides, highest precedence.
	App    string
	URL    string
	Domain string

	File *File // parsed configuration file
}

// File represents the .secrets-cli.yaml structure
type File struct {
	Proxy    ProxySettings   `yaml:"proxy"`
	Trust    TrustSettings   `yaml:"trust,omitempty"`
	Defaults DefaultSettings `yaml:"defaults,omitempty"`
}

// ProxySettings holds the secrets proxy endpoint settings
type ProxySettings struct {
	URL     string `yaml:"url"`
	Timeout int    `yaml:"timeout,omitempty"` // seconds
}

// TrustSettings selects the TLS trust store used to verify the proxy
type TrustSettings struct {
	File     string `yaml:"file,omitempty"`
	Type     string `yaml:"type,omitempty"` // pem (default) or pkcs12
	Password string `yaml:"password,omitempty"`
}

// DefaultSettings holds fallbacks for per-command selectors
type DefaultSettings struct {
	App    string `yaml:"app,omitempty"`
	Domain string `yaml:"domain,omitempty"`
}

// DefaultPath returns the configuration file location used when --config is
// not given.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".secrets-cli.yaml"), nil
}

// Load reads and validates the configuration file. A missing file is only an
// error when --config named it explicitly; the default path is allowed to be
// absent because flags and environment variables can carry everything.
func (c *Config) Load() error {
	explicit := c.Path != ""
	if !explicit {
		path, err := DefaultPath()
		if err != nil {
			return cerrors.UserError{
				Message:    "Failed to locate the default configuration file",
				Details:    err.Error(),
				Suggestion: "Pass --config with the path to your configuration file",
				Err:        err,
			}
		}
		c.Path = path
	}

	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			if !explicit {
				c.File = &File{}
				return nil
			}
			return cerrors.ConfigError{
				Field:      "config",
				Value:      c.Path,
				Message:    "configuration file not found",
				Suggestion: "Create the file or pass --config with a valid path",
			}
		}
		return cerrors.UserError{
			Message:    "Failed to read configuration file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cerrors.ConfigError{
			Field:      "config",
			Value:      c.Path,
			Message:    "invalid YAML syntax in configuration file",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters",
		}
	}

	if err := c.validateSchema(raw); err != nil {
		return err
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cerrors.ConfigError{
			Field:      "config",
			Value:      c.Path,
			Message:    "unexpected value types in configuration file",
			Suggestion: "Compare your file against the documented format",
		}
	}

	c.File = &file
	return nil
}

// validateSchema checks the parsed document against the embedded JSON schema
// so field typos and wrong types fail with a precise message.
func (c *Config) validateSchema(raw map[string]interface{}) error {
	if raw == nil {
		return nil
	}

	doc, err := json.Marshal(raw)
	if err != nil {
		return cerrors.UserError{
			Message:    "Failed to validate configuration file",
			Details:    err.Error(),
			Err:        err,
			Suggestion: "Check the configuration file for unusual values",
		}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(configSchema),
		gojsonschema.NewBytesLoader(doc),
	)
	if err != nil {
		return cerrors.UserError{
			Message:    "Failed to validate configuration file",
			Details:    err.Error(),
			Err:        err,
			Suggestion: "Check the configuration file for unusual values",
		}
	}

	if !result.Valid() {
		var msgs []string
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return cerrors.ConfigError{
			Field:      "config",
			Value:      c.Path,
			Message:    "invalid configuration:\n  - " + strings.Join(msgs, "\n  - "),
			Suggestion: "Fix the listed fields in your configuration file",
		}
	}

	return nil
}

// ProxyURL resolves the proxy endpoint: --url flag, then environment, then
// configuration file.
func (c *Config) ProxyURL() string {
	if c.URL != "" {
		return c.URL
	}
	if v := os.Getenv(EnvProxyURL); v != "" {
		return v
	}
	if c.File != nil {
		return c.File.Proxy.URL
	}
	return ""
}

// AppGroup resolves the application group every secret and client operation
// is scoped to.
func (c *Config) AppGroup() (string, error) {
	if c.App != "" {
		return c.App, nil
	}
	if v := os.Getenv(EnvApp); v != "" {
		return v, nil
	}
	if c.File != nil && c.File.Defaults.App != "" {
		return c.File.Defaults.App, nil
	}
	return "", cerrors.ConfigError{
		Field:      "app",
		Message:    "no application group selected",
		Suggestion: "Pass --app <group> or set defaults.app in your configuration file",
	}
}

// AuthDomain resolves the authentication domain.
func (c *Config) AuthDomain() string {
	if c.Domain != "" {
		return c.Domain
	}
	if v := os.Getenv(EnvDomain); v != "" {
		return v
	}
	if c.File != nil && c.File.Defaults.Domain != "" {
		return c.File.Defaults.Domain
	}
	return DefaultDomain
}

// RequestTimeout returns the uniform timeout applied to every proxy exchange.
func (c *Config) RequestTimeout() time.Duration {
	if c.File != nil && c.File.Proxy.Timeout > 0 {
		return time.Duration(c.File.Proxy.Timeout) * time.Second
	}
	return defaultTimeoutSeconds * time.Second
}

// TrustConfig returns the TLS trust anchor selection for the proxy client.
func (c *Config) TrustConfig() proxy.TrustConfig {
	if c.File == nil {
		return proxy.TrustConfig{}
	}
	return proxy.TrustConfig{
		File:     c.File.Trust.File,
		Type:     c.File.Trust.Type,
		Password: c.File.Trust.Password,
	}
}

// EnvToken returns the bearer token supplied via the environment, bypassing
// the keyring session.
func (c *Config) EnvToken() string {
	return os.Getenv(EnvToken)
}

// ClientConfig assembles the proxy client configuration for this invocation.
func (c *Config) ClientConfig(version string) (proxy.Config, error) {
	url := c.ProxyURL()
	if url == "" {
		return proxy.Config{}, cerrors.ConfigError{
			Field:      "proxy.url",
			Message:    "no secrets proxy URL configured",
			Suggestion: "Pass --url, set " + EnvProxyURL + ", or add proxy.url to your configuration file",
		}
	}
	return proxy.Config{
		BaseURL: url,
		Timeout: c.RequestTimeout(),
		Version: version,
		Trust:   c.TrustConfig(),
	}, nil
}
