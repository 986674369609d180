package proxy

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secretsproxy/secrets-cli/internal/logging"
)

// selfSignedPEM writes a throwaway CA certificate and returns its path.
func selfSignedPEM(t *testing.T) string {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "secrets-proxy-test-ca"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "trust.pem")
	data := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestTrustPool(t *testing.T) {
	t.Parallel()

	log := logging.New(false, true)

	t.Run("pem file", func(t *testing.T) {
		t.Parallel()

		pool, err := trustPool(TrustConfig{File: selfSignedPEM(t)}, log)
		require.NoError(t, err)
		assert.NotNil(t, pool)
	})

	t.Run("system roots when no file", func(t *testing.T) {
		t.Parallel()

		pool, err := trustPool(TrustConfig{}, log)
		require.NoError(t, err)
		assert.NotNil(t, pool)
	})

	t.Run("missing file is fatal", func(t *testing.T) {
		t.Parallel()

		_, err := trustPool(TrustConfig{File: filepath.Join(t.TempDir(), "nope.pem")}, log)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read trust store")
	})

	t.Run("file without certificates is fatal", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "empty.pem")
		require.NoError(t, os.WriteFile(path, []byte("not a certificate"), 0o600))

		_, err := trustPool(TrustConfig{File: path}, log)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no certificates found")
	})

	t.Run("corrupt pkcs12 store is fatal", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "trust.p12")
		require.NoError(t, os.WriteFile(path, []byte("definitely not pkcs12"), 0o600))

		_, err := trustPool(TrustConfig{File: path, Type: TrustTypePKCS12, Password: "changeit"}, log)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode pkcs12 trust store")
	})

	t.Run("unsupported type", func(t *testing.T) {
		t.Parallel()

		_, err := trustPool(TrustConfig{File: selfSignedPEM(t), Type: "jks"}, log)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unsupported trust store type "jks"`)
	})
}

// recordingRT fails the first call with the configured error, then answers
// every call with 200 and records what it saw.
type recordingRT struct {
	failFirst error
	calls     int
	headers   []http.Header
	bodies    []string
}

func (rt *recordingRT) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.calls++
	rt.headers = append(rt.headers, req.Header.Clone())
	body := ""
	if req.Body != nil {
		data, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		body = string(data)
	}
	rt.bodies = append(rt.bodies, body)
	if rt.calls == 1 && rt.failFirst != nil {
		return nil, rt.failFirst
	}
	return response(http.StatusOK, ""), nil
}

func TestHeaderRoundTripperInjectsHeaders(t *testing.T) {
	t.Parallel()

	base := &recordingRT{}
	rt := &headerRoundTripper{
		base:      base,
		userAgent: "secrets-cli-1.2.3",
		token:     func() string { return "tok-123" },
		log:       logging.New(false, true),
	}

	req, err := http.NewRequest(http.MethodGet, "https://proxy.example.com/group/team-a", nil)
	require.NoError(t, err)

	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, 1, base.calls)
	got := base.headers[0]
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, "secrets-cli-1.2.3", got.Get("User-Agent"))
	assert.Equal(t, "Bearer tok-123", got.Get(authHeader))
	// The original request must stay untouched.
	assert.Empty(t, req.Header.Get(authHeader))
}

func TestHeaderRoundTripperKeepsCallerToken(t *testing.T) {
	t.Parallel()

	base := &recordingRT{}
	rt := &headerRoundTripper{
		base:      base,
		userAgent: "secrets-cli-test",
		token:     func() string { return "stored-token" },
		log:       logging.New(false, true),
	}

	req, err := http.NewRequest(http.MethodGet, "https://proxy.example.com/auth/user", nil)
	require.NoError(t, err)
	req.Header.Set(authHeader, "Bearer explicit-token")

	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "Bearer explicit-token", base.headers[0].Get(authHeader))
}

func TestHeaderRoundTripperRetriesOnce(t *testing.T) {
	t.Parallel()

	base := &recordingRT{failFirst: fmt.Errorf("dial tcp: connection refused")}
	rt := &headerRoundTripper{
		base:      base,
		userAgent: "secrets-cli-test",
		token:     func() string { return "" },
		log:       logging.New(false, true),
	}

	req, err := http.NewRequest(http.MethodPost, "https://proxy.example.com/token", strings.NewReader(`{"username":"u"}`))
	require.NoError(t, err)

	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, 2, base.calls)
	// The replayed request carries the full body again.
	assert.Equal(t, `{"username":"u"}`, base.bodies[0])
	assert.Equal(t, `{"username":"u"}`, base.bodies[1])
	assert.Equal(t, "application/json", base.headers[1].Get("Content-Type"))
}

func TestHeaderRoundTripperNoRetryOnCanceledContext(t *testing.T) {
	t.Parallel()

	base := &recordingRT{failFirst: fmt.Errorf("round trip: %w", context.Canceled)}
	rt := &headerRoundTripper{
		base:      base,
		userAgent: "secrets-cli-test",
		token:     func() string { return "" },
		log:       logging.New(false, true),
	}

	req, err := http.NewRequest(http.MethodGet, "https://proxy.example.com/group/team-a", nil)
	require.NoError(t, err)

	_, err = rt.RoundTrip(req)
	require.Error(t, err)
	assert.Equal(t, 1, base.calls)
}

func TestRefuseSchemeChange(t *testing.T) {
	t.Parallel()

	first, err := http.NewRequest(http.MethodGet, "https://proxy.example.com/token", nil)
	require.NoError(t, err)

	sameScheme, err := http.NewRequest(http.MethodGet, "https://proxy-2.example.com/token", nil)
	require.NoError(t, err)
	assert.NoError(t, refuseSchemeChange(sameScheme, []*http.Request{first}))

	downgrade, err := http.NewRequest(http.MethodGet, "http://proxy.example.com/token", nil)
	require.NoError(t, err)
	err = refuseSchemeChange(downgrade, []*http.Request{first})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refusing redirect")

	via := make([]*http.Request, 10)
	for i := range via {
		via[i] = first
	}
	err = refuseSchemeChange(sameScheme, via)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stopped after 10 redirects")
}

func TestRetryable(t *testing.T) {
	t.Parallel()

	get, err := http.NewRequest(http.MethodGet, "https://proxy.example.com/group/x", nil)
	require.NoError(t, err)
	assert.True(t, retryable(get, fmt.Errorf("connection reset")))

	post, err := http.NewRequest(http.MethodPost, "https://proxy.example.com/token", strings.NewReader("{}"))
	require.NoError(t, err)
	assert.True(t, retryable(post, fmt.Errorf("connection reset")))

	// A streamed body without GetBody cannot be replayed.
	streamed, err := http.NewRequest(http.MethodPost, "https://proxy.example.com/token", io.NopCloser(strings.NewReader("{}")))
	require.NoError(t, err)
	streamed.GetBody = nil
	assert.False(t, retryable(streamed, fmt.Errorf("connection reset")))

	assert.False(t, retryable(get, fmt.Errorf("wrap: %w", context.DeadlineExceeded)))
}
