package proxy

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/crypto/pkcs12"

	"github.com/secretsproxy/secrets-cli/internal/logging"
)

// Trust store formats accepted by TrustConfig.Type.
const (
	TrustTypePEM    = "pem"
	TrustTypePKCS12 = "pkcs12"
)

// TrustConfig describes where the client's TLS trust anchors come from.
// With no file configured the operating system's root store is used.
type TrustConfig struct {
	File     string
	Type     string
	Password string
}

// trustPool loads the configured trust anchors. A file-backed store that is
// missing or unreadable is fatal: every proxy call needs a verified TLS
// session, so there is no degraded mode to fall back to.
func trustPool(cfg TrustConfig, log *logging.Logger) (*x509.CertPool, error) {
	if cfg.File == "" {
		pool, err := x509.SystemCertPool()
		if err != nil {
			return nil, fmt.Errorf("load system trust roots: %w", err)
		}
		log.Debug("Using system trust roots")
		return pool, nil
	}

	data, err := os.ReadFile(cfg.File)
	if err != nil {
		return nil, fmt.Errorf("read trust store: %w", err)
	}

	pool := x509.NewCertPool()
	switch cfg.Type {
	case "", TrustTypePEM:
		if !pool.AppendCertsFromPEM(data) {
			return nil, fmt.Errorf("no certificates found in trust store %s", cfg.File)
		}
	case TrustTypePKCS12:
		blocks, err := pkcs12.ToPEM(data, cfg.Password)
		if err != nil {
			return nil, fmt.Errorf("decode pkcs12 trust store %s: %w", cfg.File, err)
		}
		added := 0
		for _, block := range blocks {
			if block.Type != "CERTIFICATE" {
				continue
			}
			cert, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("parse certificate in trust store %s: %w", cfg.File, err)
			}
			pool.AddCert(cert)
			added++
		}
		if added == 0 {
			return nil, fmt.Errorf("no certificates found in trust store %s", cfg.File)
		}
	default:
		return nil, fmt.Errorf("unsupported trust store type %q (want %s or %s)", cfg.Type, TrustTypePEM, TrustTypePKCS12)
	}

	log.Debug("Loaded trust store %s (%s)", cfg.File, trustTypeName(cfg.Type))
	return pool, nil
}

func trustTypeName(t string) string {
	if t == "" {
		return TrustTypePEM
	}
	return t
}

// newHTTPClient builds the hardened HTTP client shared by every proxy call.
// TLS 1.2 is the floor, with an ECDHE/AEAD-only cipher list for pre-1.3
// sessions. Redirects that change scheme are refused so a bearer token can
// never downgrade onto cleartext.
func newHTTPClient(pool *x509.CertPool, timeout time.Duration, userAgent string, token func() string, log *logging.Logger) *http.Client {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			RootCAs:    pool,
			MinVersion: tls.VersionTLS12,
			CipherSuites: []uint16{
				tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
				tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305,
				tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
				tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305,
			},
		},
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
	}

	return &http.Client{
		Timeout: timeout,
		Transport: &headerRoundTripper{
			base:      transport,
			userAgent: userAgent,
			token:     token,
			log:       log,
		},
		CheckRedirect: refuseSchemeChange,
	}
}

// headerRoundTripper stamps the standard headers on every outgoing request
// and retries a connection-level failure once. Application errors come back
// as responses and never reach the retry path.
type headerRoundTripper struct {
	base      http.RoundTripper
	userAgent string
	token     func() string
	log       *logging.Logger
}

func (rt *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("Content-Type", "application/json")
	clone.Header.Set("User-Agent", rt.userAgent)
	// A header set by the caller wins over the stored token.
	if clone.Header.Get(authHeader) == "" {
		if tok := rt.token(); tok != "" {
			clone.Header.Set(authHeader, "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := rt.base.RoundTrip(clone)
	if err != nil && retryable(clone, err) {
		rt.log.Debug("%s %s retrying after transport error: %v", clone.Method, clone.URL, err)
		if clone.Body != nil {
			body, berr := clone.GetBody()
			if berr != nil {
				return nil, err
			}
			clone.Body = body
		}
		resp, err = rt.base.RoundTrip(clone)
	}
	if err != nil {
		rt.log.Debug("%s %s failed after %s: %v", clone.Method, clone.URL, time.Since(start).Round(time.Millisecond), err)
		return nil, err
	}
	rt.log.Debug("%s %s -> %d (%s)", clone.Method, clone.URL, resp.StatusCode, time.Since(start).Round(time.Millisecond))
	return resp, nil
}

// retryable reports whether a failed request may be sent again: the body
// must be replayable and the failure must not come from the caller's
// context.
func retryable(req *http.Request, err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return req.Body == nil || req.GetBody != nil
}

// refuseSchemeChange follows same-scheme redirects but rejects any hop that
// would cross the TLS boundary.
func refuseSchemeChange(req *http.Request, via []*http.Request) error {
	if len(via) >= 10 {
		return fmt.Errorf("stopped after 10 redirects")
	}
	if req.URL.Scheme != via[0].URL.Scheme {
		return fmt.Errorf("refusing redirect from %s to %s", via[0].URL, req.URL)
	}
	return nil
}
