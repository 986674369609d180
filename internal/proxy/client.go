package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/secretsproxy/secrets-cli/internal/logging"
)

// authHeader carries the bearer token on every authenticated call.
const authHeader = "X-Authorization"

const defaultTimeout = 10 * time.Second

// Config holds what the client needs to reach the secrets proxy.
type Config struct {
	// BaseURL is the proxy endpoint, e.g. https://secrets.example.com.
	BaseURL string
	// Timeout bounds connect, TLS handshake, and response read alike.
	// Zero means the default of 10s.
	Timeout time.Duration
	// Version tags the User-Agent so server logs can tell CLI releases
	// apart.
	Version string
	// Trust selects the TLS trust anchors.
	Trust TrustConfig
}

// SecretsClient is the secrets proxy facade: one method per remote
// operation, each performing a single blocking round trip and returning the
// uniform Result envelope. A SecretsClient is not safe for concurrent use;
// the stored auth token is unsynchronized.
type SecretsClient struct {
	base      *url.URL
	http      *http.Client
	log       *logging.Logger
	authToken string
}

// NewSecretsClient validates the configuration, loads the trust anchors,
// and returns a ready client. No network traffic happens here.
func NewSecretsClient(cfg Config, log *logging.Logger) (*SecretsClient, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy URL %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme != "https" && base.Scheme != "http" {
		return nil, fmt.Errorf("invalid proxy URL %q: scheme must be http or https", cfg.BaseURL)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("invalid proxy URL %q: missing host", cfg.BaseURL)
	}

	pool, err := trustPool(cfg.Trust, log)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	c := &SecretsClient{base: base, log: log}
	c.http = newHTTPClient(pool, timeout, "secrets-cli-"+version, func() string { return c.authToken }, log)
	log.Debug("Initialized secrets client %s for %s", version, base.Redacted())
	return c, nil
}

// SetAuthToken installs a previously issued bearer token, e.g. one loaded
// from the session store.
func (c *SecretsClient) SetAuthToken(token string) {
	c.authToken = token
}

// AuthToken returns the bearer token currently attached to the client.
func (c *SecretsClient) AuthToken() string {
	return c.authToken
}

// Authenticate exchanges credentials for a bearer token. On success the
// token is stored on the client so subsequent calls are authenticated.
func (c *SecretsClient) Authenticate(ctx context.Context, username, password, domain string) (Result[TokenRes], error) {
	res, err := do[TokenRes](ctx, c, reqSpec{
		method: http.MethodPost,
		path:   "/token",
		body:   TokenReq{Username: username, Password: password, Domain: domain},
	})
	if err == nil && res.Success {
		c.authToken = res.Body.AccessToken
	}
	return res, err
}

// GetAuthUser describes the principal behind the given token. The token is
// passed explicitly so a cached session can be probed without touching the
// client's own.
func (c *SecretsClient) GetAuthUser(ctx context.Context, token string) (Result[AuthUser], error) {
	header := http.Header{}
	header.Set(authHeader, "Bearer "+token)
	return do[AuthUser](ctx, c, reqSpec{
		method: http.MethodGet,
		path:   "/auth/user",
		header: header,
	})
}

// GetGroupDetails fetches the metadata of an application group.
func (c *SecretsClient) GetGroupDetails(ctx context.Context, group string) (Result[Group], error) {
	return do[Group](ctx, c, reqSpec{
		method: http.MethodGet,
		path:   endpoint("group", group),
	})
}

// GetAllClients lists the clients registered in a group.
func (c *SecretsClient) GetAllClients(ctx context.Context, group string) (Result[[]Client], error) {
	return do[[]Client](ctx, c, reqSpec{
		method: http.MethodGet,
		path:   endpoint("group", group, "clients"),
	})
}

// GetClientDetails fetches a single client in a group.
func (c *SecretsClient) GetClientDetails(ctx context.Context, group, name string) (Result[Client], error) {
	return do[Client](ctx, c, reqSpec{
		method: http.MethodGet,
		path:   endpoint("group", group, "client", name),
	})
}

// DeleteClient removes a client from a group.
func (c *SecretsClient) DeleteClient(ctx context.Context, group, name string) (Result[Void], error) {
	return do[Void](ctx, c, reqSpec{
		method: http.MethodDelete,
		path:   endpoint("group", group, "client", name),
	})
}

// GetAllSecrets lists the secrets of a group without their content.
func (c *SecretsClient) GetAllSecrets(ctx context.Context, group string) (Result[[]Secret], error) {
	return do[[]Secret](ctx, c, reqSpec{
		method: http.MethodGet,
		path:   endpoint("group", group, "secrets"),
	})
}

// GetAllSecretsExpiring lists the names of the group's secrets expiring
// before the given epoch-seconds instant.
func (c *SecretsClient) GetAllSecretsExpiring(ctx context.Context, group string, before int64) (Result[[]string], error) {
	return do[[]string](ctx, c, reqSpec{
		method: http.MethodGet,
		path:   endpoint("group", group, "secrets", "expiring", strconv.FormatInt(before, 10)),
	})
}

// CreateSecret adds a new secret to a group. With createGroup set the proxy
// provisions the group on the fly instead of rejecting the unknown name.
func (c *SecretsClient) CreateSecret(ctx context.Context, group, name string, req SecretReq, createGroup bool) (Result[Void], error) {
	return do[Void](ctx, c, reqSpec{
		method: http.MethodPost,
		path:   endpoint("group", group, "secret", name),
		query:  url.Values{"createGroup": []string{strconv.FormatBool(createGroup)}},
		body:   req,
	})
}

// UpdateSecret replaces the content and metadata of an existing secret,
// creating a new version.
func (c *SecretsClient) UpdateSecret(ctx context.Context, group, name string, req SecretReq) (Result[Void], error) {
	return do[Void](ctx, c, reqSpec{
		method: http.MethodPut,
		path:   endpoint("group", group, "secret", name),
		body:   req,
	})
}

// GetSecret fetches the metadata of a single secret.
func (c *SecretsClient) GetSecret(ctx context.Context, group, name string) (Result[Secret], error) {
	return do[Secret](ctx, c, reqSpec{
		method: http.MethodGet,
		path:   endpoint("group", group, "secret", name),
	})
}

// DeleteSecret removes a secret and all its versions.
func (c *SecretsClient) DeleteSecret(ctx context.Context, group, name string) (Result[Void], error) {
	return do[Void](ctx, c, reqSpec{
		method: http.MethodDelete,
		path:   endpoint("group", group, "secret", name),
	})
}

// DeleteAllSecrets removes every secret in a group and returns the names of
// the secrets that were deleted.
func (c *SecretsClient) DeleteAllSecrets(ctx context.Context, group string) (Result[[]string], error) {
	return do[[]string](ctx, c, reqSpec{
		method: http.MethodDelete,
		path:   endpoint("group", group, "secrets"),
	})
}

// GetSecretVersions lists the retained versions of a secret.
func (c *SecretsClient) GetSecretVersions(ctx context.Context, group, name string) (Result[[]Secret], error) {
	return do[[]Secret](ctx, c, reqSpec{
		method: http.MethodGet,
		path:   endpoint("group", group, "secret", name, "versions"),
	})
}

// SetSecretVersion makes an older version of a secret the current one.
func (c *SecretsClient) SetSecretVersion(ctx context.Context, group, name string, version int64) (Result[Void], error) {
	return do[Void](ctx, c, reqSpec{
		method: http.MethodPut,
		path:   endpoint("group", group, "secret", name, "version"),
		body:   SecretVersionReq{Version: version},
	})
}

// GetSecretContent fetches the base64-encoded content of a secret.
func (c *SecretsClient) GetSecretContent(ctx context.Context, group, name string) (Result[SecretContent], error) {
	return do[SecretContent](ctx, c, reqSpec{
		method: http.MethodGet,
		path:   endpoint("group", group, "secret", name, "content"),
	})
}

// reqSpec describes one proxy exchange for the do helper.
type reqSpec struct {
	method string
	path   string
	query  url.Values
	body   any
	header http.Header
}

// do runs one request against the proxy and maps the response into a typed
// Result. It is a function rather than a method because methods cannot
// carry their own type parameters.
func do[T any](ctx context.Context, c *SecretsClient, spec reqSpec) (Result[T], error) {
	var payload io.Reader
	if spec.body != nil {
		data, err := json.Marshal(spec.body)
		if err != nil {
			return Result[T]{}, fmt.Errorf("encode request body: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, spec.method, c.url(spec.path), payload)
	if err != nil {
		return Result[T]{}, fmt.Errorf("build request: %w", err)
	}
	if spec.query != nil {
		req.URL.RawQuery = spec.query.Encode()
	}
	for key, values := range spec.header {
		for _, v := range values {
			req.Header.Set(key, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Result[T]{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return newResult[T](resp)
}

// url joins an endpoint path onto the configured base URL, preserving any
// path prefix the proxy is mounted under.
func (c *SecretsClient) url(path string) string {
	return strings.TrimSuffix(c.base.String(), "/") + path
}

// endpoint builds a proxy path from raw segments, escaping each one.
func endpoint(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return "/" + strings.Join(escaped, "/")
}
