package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"

	"github.com/awnumar/memguard"
)

const (
	SaltSize  = 16 // Argon2id salt size in bytes
	KeySize   = 32 // ChaCha20-Poly1305 key size
	NonceSize = 12 // ChaCha20-Poly1305 nonce size
	TagSize   = 16 // Poly1305 authentication tag size
)

// ClearBytes securely clears a byte slice
func ClearBytes(b []byte) {
	memguard.WipeBytes(b)
}

// ConstantTimeCompare performs a constant-time comparison of two byte slices
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// GenerateRandom generates n random bytes
func GenerateRandom(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}
