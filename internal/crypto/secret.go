package crypto

import (
	"github.com/awnumar/memguard"
)

// Secret holds a password or key in locked, guard-paged memory.
type Secret struct {
	buf       *memguard.LockedBuffer
	destroyed bool
}

// NewSecret moves b into protected memory. b is wiped.
func NewSecret(b []byte) *Secret {
	return &Secret{buf: memguard.NewBufferFromBytes(b)}
}

// NewSecretFromString copies s into protected memory. The string itself
// cannot be wiped.
func NewSecretFromString(s string) *Secret {
	return NewSecret([]byte(s))
}

// Bytes returns the protected bytes. The slice is only valid until Destroy.
func (s *Secret) Bytes() []byte {
	if s == nil || s.buf == nil {
		return nil
	}
	return s.buf.Bytes()
}

// Len returns the length of the secret.
func (s *Secret) Len() int {
	return len(s.Bytes())
}

// Equal compares two secrets in constant time.
func (s *Secret) Equal(other *Secret) bool {
	return ConstantTimeCompare(s.Bytes(), other.Bytes())
}

// Destroy wipes and releases the protected memory. It is safe to call more
// than once and on a nil secret.
func (s *Secret) Destroy() {
	if s == nil || s.buf == nil {
		return
	}
	s.buf.Destroy()
	s.destroyed = true
}

// Alive reports whether the secret can still be used. An empty secret is
// alive until destroyed, although memguard keeps no buffer for it.
func (s *Secret) Alive() bool {
	return s != nil && !s.destroyed
}

// Purge destroys every protected buffer in the process. Call before exit.
func Purge() {
	memguard.Purge()
}
