// Package secure keeps credentials encrypted in memory between the moment
// they are read from the terminal and the moment the authentication request
// is built. It wraps memguard: the plaintext lives in an mlock'd, encrypted
// enclave instead of an ordinary Go string that the runtime may copy around.
package secure

import (
	"errors"

	"github.com/awnumar/memguard"
)

// ErrWiped is returned when a credential is opened after Wipe.
var ErrWiped = errors.New("credential already wiped")

// Credential holds one sensitive value, typically a password. The bytes
// passed to NewCredential are wiped by memguard; callers must not reuse
// them.
type Credential struct {
	enclave *memguard.Enclave
}

// NewCredential seals the given bytes into a protected enclave.
func NewCredential(data []byte) *Credential {
	return &Credential{enclave: memguard.NewEnclave(data)}
}

// Open decrypts the credential into a locked buffer. The caller must
// Destroy the buffer as soon as the plaintext has been used.
func (c *Credential) Open() (*memguard.LockedBuffer, error) {
	if c.enclave == nil {
		return nil, ErrWiped
	}
	return c.enclave.Open()
}

// Wipe drops the enclave reference and destroys every memguard buffer in
// the process, including the session key the enclave was sealed with.
// Meant to run once, when the command that held the credential exits.
func (c *Credential) Wipe() {
	c.enclave = nil
	memguard.Purge()
}
