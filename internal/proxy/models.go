package proxy

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"
)

// Timestamp wraps time.Time and travels as epoch seconds in proxy JSON.
type Timestamp struct {
	time.Time
}

// NewTimestamp converts a time.Time into the wire representation.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("0"), nil
	}
	return strconv.AppendInt(nil, t.Unix(), 10), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := string(bytes.TrimSpace(data))
	if s == "null" || s == "" {
		t.Time = time.Time{}
		return nil
	}
	secs, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	if secs == 0 {
		t.Time = time.Time{}
		return nil
	}
	t.Time = time.Unix(secs, 0).UTC()
	return nil
}

// String renders the timestamp for tabular output.
func (t Timestamp) String() string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04 MST")
}

// TokenReq is the credential payload for POST /token.
type TokenReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Domain   string `json:"domain"`
}

// TokenRes carries the bearer token issued by the proxy.
type TokenRes struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int64  `json:"expiresInSec"`
}

// AuthUser describes the principal behind an access token.
type AuthUser struct {
	UserName string   `json:"userName"`
	Domain   string   `json:"domain"`
	Roles    []string `json:"roles,omitempty"`
}

// Group is an application namespace holding secrets and clients.
type Group struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	CreatedAt   Timestamp         `json:"createdAt"`
	CreatedBy   string            `json:"createdBy,omitempty"`
	UpdatedAt   Timestamp         `json:"updatedAt"`
	UpdatedBy   string            `json:"updatedBy,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Client is a registered consumer (compute) allowed to fetch the group's
// secrets.
type Client struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   Timestamp `json:"createdAt"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	UpdatedAt   Timestamp `json:"updatedAt"`
	UpdatedBy   string    `json:"updatedBy,omitempty"`
	LastSeen    Timestamp `json:"lastSeen"`
	Enabled     bool      `json:"enabled"`
}

// Secret is the sanitized secret record returned by the proxy. The actual
// content only travels through the dedicated content endpoint.
type Secret struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Checksum    string            `json:"checksum,omitempty"`
	CreatedAt   Timestamp         `json:"createdAt"`
	CreatedBy   string            `json:"createdBy,omitempty"`
	UpdatedAt   Timestamp         `json:"updatedAt"`
	UpdatedBy   string            `json:"updatedBy,omitempty"`
	Type        string            `json:"type,omitempty"`
	Expiry      Timestamp         `json:"expiry"`
	Version     int64             `json:"version,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// SecretReq is the payload for creating or updating a secret. Content is
// base64-encoded.
type SecretReq struct {
	Content     string            `json:"content"`
	Description string            `json:"desc,omitempty"`
	Type        string            `json:"type,omitempty"`
	Expiry      Timestamp         `json:"expiry"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// NewSecretReq builds a request with the content already base64-encoded.
func NewSecretReq(content []byte, description string) SecretReq {
	return SecretReq{
		Content:     base64.StdEncoding.EncodeToString(content),
		Description: description,
	}
}

// SecretContent carries base64 secret data from the content endpoint.
type SecretContent struct {
	Content string `json:"content"`
}

// Decode returns the raw secret bytes.
func (s SecretContent) Decode() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(s.Content)
	if err != nil {
		return nil, fmt.Errorf("decode secret content: %w", err)
	}
	return data, nil
}

// SecretVersionReq selects the active version of a secret.
type SecretVersionReq struct {
	Version int64 `json:"version"`
}

// ErrorRes is the structured error body the proxy returns for non-2xx
// responses.
type ErrorRes struct {
	Timestamp int64  `json:"timestamp,omitempty"`
	Status    int    `json:"status,omitempty"`
	Error     string `json:"error,omitempty"`
	Message   string `json:"message"`
	Path      string `json:"path,omitempty"`
}
