// Package tokenstore persists the proxy bearer token between CLI
// invocations using the operating system keyring (macOS Keychain, Linux
// Secret Service, Windows Credential Manager).
package tokenstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zalando/go-keyring"

	"github.com/secretsproxy/secrets-cli/internal/logging"
)

// service identifies this CLI's entries in the OS keyring. Sessions are
// keyed by proxy host, so tokens for different proxies never collide.
const service = "secrets-cli"

// expiryBuffer is subtracted from the token TTL so a session is refreshed
// shortly before the proxy would reject it.
const expiryBuffer = 5 * time.Second

// ErrNoSession is returned when no usable token is stored for the host.
var ErrNoSession = errors.New("no stored session")

// session is the JSON envelope kept in the keyring.
type session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Store reads and writes keyring-backed sessions.
type Store struct {
	log *logging.Logger
}

// New creates a session store.
func New(log *logging.Logger) *Store {
	return &Store{log: log}
}

// Save stores a token for the given proxy host. A non-positive ttl stores
// the token without an expiry.
func (s *Store) Save(host, token string, ttl time.Duration) error {
	sess := session{Token: token}
	if ttl > 0 {
		if ttl > expiryBuffer {
			ttl -= expiryBuffer
		}
		sess.ExpiresAt = time.Now().Add(ttl)
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := keyring.Set(service, host, string(data)); err != nil {
		return fmt.Errorf("store session in keyring: %w", err)
	}
	s.log.Debug("Stored session for %s (expires %s)", host, sess.ExpiresAt.Format(time.RFC3339))
	return nil
}

// Load returns the stored token for the host. Expired or corrupted sessions
// are removed and reported as ErrNoSession.
func (s *Store) Load(host string) (string, error) {
	raw, err := keyring.Get(service, host)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNoSession
		}
		return "", fmt.Errorf("read session from keyring: %w", err)
	}

	var sess session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		s.log.Debug("Discarding corrupted session for %s: %v", host, err)
		_ = keyring.Delete(service, host)
		return "", ErrNoSession
	}

	if !sess.ExpiresAt.IsZero() && time.Now().After(sess.ExpiresAt) {
		s.log.Debug("Discarding expired session for %s", host)
		_ = keyring.Delete(service, host)
		return "", ErrNoSession
	}

	return sess.Token, nil
}

// Delete removes the stored session for the host. Deleting an absent
// session returns ErrNoSession.
func (s *Store) Delete(host string) error {
	if err := keyring.Delete(service, host); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNoSession
		}
		return fmt.Errorf("remove session from keyring: %w", err)
	}
	return nil
}
