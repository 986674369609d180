package proxy

import (
	"context"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secretsproxy/secrets-cli/internal/logging"
)

// trustServer writes the test server's certificate to a PEM file so the
// client verifies it like any other trust store.
func trustServer(t *testing.T, srv *httptest.Server) TrustConfig {
	t.Helper()

	path := filepath.Join(t.TempDir(), "proxy-ca.pem")
	data := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: srv.Certificate().Raw})
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return TrustConfig{File: path}
}

func newTestClient(t *testing.T, srv *httptest.Server) *SecretsClient {
	t.Helper()

	c, err := NewSecretsClient(Config{
		BaseURL: srv.URL,
		Version: "test",
		Trust:   trustServer(t, srv),
	}, logging.New(false, true))
	require.NoError(t, err)
	return c
}

func TestNewSecretsClientValidation(t *testing.T) {
	t.Parallel()

	log := logging.New(false, true)

	tests := []struct {
		name    string
		baseURL string
		wantErr string
	}{
		{name: "unparseable", baseURL: "://proxy", wantErr: "invalid proxy URL"},
		{name: "bad scheme", baseURL: "ftp://proxy.example.com", wantErr: "scheme must be http or https"},
		{name: "missing host", baseURL: "https://", wantErr: "missing host"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewSecretsClient(Config{BaseURL: tt.baseURL}, log)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/token", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "secrets-cli-test", r.Header.Get("User-Agent"))

		var req TokenReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, TokenReq{Username: "jdoe", Password: "hunter2", Domain: "prod"}, req)

		json.NewEncoder(w).Encode(TokenRes{AccessToken: "tok-abc", TokenType: "Bearer", ExpiresIn: 3600})
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	res, err := c.Authenticate(context.Background(), "jdoe", "hunter2", "prod")
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, "tok-abc", res.Body.AccessToken)
	assert.Equal(t, int64(3600), res.Body.ExpiresIn)
	assert.Equal(t, "tok-abc", c.AuthToken())
}

func TestAuthenticateFailureKeepsTokenEmpty(t *testing.T) {
	t.Parallel()

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(ErrorRes{Status: 401, Error: "Unauthorized", Message: "Bad credentials"})
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	res, err := c.Authenticate(context.Background(), "jdoe", "wrong", "prod")
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	require.NotNil(t, res.Err)
	assert.Equal(t, "Bad credentials", res.Err.Message)
	assert.Empty(t, c.AuthToken())
}

func TestStoredTokenTravelsAsBearer(t *testing.T) {
	t.Parallel()

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer stored-token", r.Header.Get(authHeader))
		assert.Equal(t, "/group/team-a", r.URL.Path)
		json.NewEncoder(w).Encode(Group{ID: 1, Name: "team-a"})
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	c.SetAuthToken("stored-token")

	res, err := c.GetGroupDetails(context.Background(), "team-a")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "team-a", res.Body.Name)
}

func TestGetAuthUserSendsExplicitToken(t *testing.T) {
	t.Parallel()

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/user", r.URL.Path)
		assert.Equal(t, "Bearer probe-token", r.Header.Get(authHeader))
		json.NewEncoder(w).Encode(AuthUser{UserName: "jdoe", Domain: "prod", Roles: []string{"admin"}})
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	c.SetAuthToken("stored-token")

	res, err := c.GetAuthUser(context.Background(), "probe-token")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "jdoe", res.Body.UserName)
	assert.Equal(t, []string{"admin"}, res.Body.Roles)
}

func TestCreateSecretPathAndQuery(t *testing.T) {
	t.Parallel()

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/group/team%20a/secret/app%2Fdb-password", r.URL.EscapedPath())
		assert.Equal(t, "true", r.URL.Query().Get("createGroup"))

		var req SecretReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "czNjcjN0", req.Content)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	res, err := c.CreateSecret(context.Background(), "team a", "app/db-password", SecretReq{Content: "czNjcjN0"}, true)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
}

func TestSecretOperations(t *testing.T) {
	t.Parallel()

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		switch key {
		case "GET /group/team-a/secrets":
			json.NewEncoder(w).Encode([]Secret{{Name: "db-password", Version: 3}, {Name: "api-key", Version: 1}})
		case "GET /group/team-a/secrets/expiring/1496340000":
			// The proxy answers the expiring endpoint with bare names.
			json.NewEncoder(w).Encode([]string{"api-key"})
		case "GET /group/team-a/secret/db-password":
			json.NewEncoder(w).Encode(Secret{Name: "db-password", Version: 3})
		case "GET /group/team-a/secret/db-password/versions":
			json.NewEncoder(w).Encode([]Secret{{Name: "db-password", Version: 3}, {Name: "db-password", Version: 2}})
		case "PUT /group/team-a/secret/db-password/version":
			var req SecretVersionReq
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, int64(2), req.Version)
			w.WriteHeader(http.StatusNoContent)
		case "GET /group/team-a/secret/db-password/content":
			json.NewEncoder(w).Encode(SecretContent{Content: "czNjcjN0"})
		case "DELETE /group/team-a/secret/db-password":
			w.WriteHeader(http.StatusNoContent)
		case "DELETE /group/team-a/secrets":
			json.NewEncoder(w).Encode([]string{"db-password", "api-key"})
		default:
			t.Errorf("unexpected request: %s", key)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	ctx := context.Background()

	list, err := c.GetAllSecrets(ctx, "team-a")
	require.NoError(t, err)
	require.Len(t, list.Body, 2)
	assert.Equal(t, "db-password", list.Body[0].Name)

	expiring, err := c.GetAllSecretsExpiring(ctx, "team-a", 1496340000)
	require.NoError(t, err)
	assert.True(t, expiring.Success)
	assert.Equal(t, []string{"api-key"}, expiring.Body)

	secret, err := c.GetSecret(ctx, "team-a", "db-password")
	require.NoError(t, err)
	assert.Equal(t, int64(3), secret.Body.Version)

	versions, err := c.GetSecretVersions(ctx, "team-a", "db-password")
	require.NoError(t, err)
	require.Len(t, versions.Body, 2)

	revert, err := c.SetSecretVersion(ctx, "team-a", "db-password", 2)
	require.NoError(t, err)
	assert.True(t, revert.Success)

	content, err := c.GetSecretContent(ctx, "team-a", "db-password")
	require.NoError(t, err)
	data, err := content.Body.Decode()
	require.NoError(t, err)
	assert.Equal(t, []byte("s3cr3t"), data)

	del, err := c.DeleteSecret(ctx, "team-a", "db-password")
	require.NoError(t, err)
	assert.True(t, del.Success)

	delAll, err := c.DeleteAllSecrets(ctx, "team-a")
	require.NoError(t, err)
	assert.True(t, delAll.Success)
	assert.Equal(t, []string{"db-password", "api-key"}, delAll.Body)
}

func TestClientOperations(t *testing.T) {
	t.Parallel()

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		switch key {
		case "GET /group/team-a/clients":
			json.NewEncoder(w).Encode([]Client{{Name: "compute-1", Enabled: true}, {Name: "compute-2"}})
		case "GET /group/team-a/client/compute-1":
			json.NewEncoder(w).Encode(Client{Name: "compute-1", Enabled: true})
		case "DELETE /group/team-a/client/compute-2":
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request: %s", key)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	ctx := context.Background()

	list, err := c.GetAllClients(ctx, "team-a")
	require.NoError(t, err)
	require.Len(t, list.Body, 2)
	assert.True(t, list.Body[0].Enabled)

	details, err := c.GetClientDetails(ctx, "team-a", "compute-1")
	require.NoError(t, err)
	assert.Equal(t, "compute-1", details.Body.Name)

	del, err := c.DeleteClient(ctx, "team-a", "compute-2")
	require.NoError(t, err)
	assert.True(t, del.Success)
}

func TestErrorResponseBecomesResult(t *testing.T) {
	t.Parallel()

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(ErrorRes{
			Status:  403,
			Error:   "Forbidden",
			Message: "User 'jdoe' has no access to group 'team-b'",
			Path:    r.URL.Path,
		})
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	res, err := c.GetAllSecrets(context.Background(), "team-b")
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	require.NotNil(t, res.Err)
	assert.Equal(t, "User 'jdoe' has no access to group 'team-b'", res.Err.Message)
	assert.Nil(t, res.Body)
}

func TestUntrustedServerIsRejected(t *testing.T) {
	t.Parallel()

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	// Trust anchors that do not include the server's certificate.
	c, err := NewSecretsClient(Config{
		BaseURL: srv.URL,
		Version: "test",
		Trust:   TrustConfig{File: selfSignedPEM(t)},
	}, logging.New(false, true))
	require.NoError(t, err)

	_, err = c.GetGroupDetails(context.Background(), "team-a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "certificate")
}
