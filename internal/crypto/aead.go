package crypto

import (
	"fmt"

	lperrors "github.com/illarion/lockpass/internal/errors"
	"golang.org/x/crypto/chacha20poly1305"
)

// Seal encrypts plaintext with ChaCha20-Poly1305. The 16-byte tag is
// appended to the returned ciphertext.
func Seal(key *Secret, nonce, plaintext []byte) ([]byte, error) {
	aead, err := newAEAD(key, nonce)
	if err != nil {
		return nil, err
	}
	return aead.Seal(nil, nonce, plaintext, nil), nil
}

// Open authenticates and decrypts ciphertext. Any mismatch (wrong key,
// wrong nonce, modified byte) returns ErrAuthenticationFailure and no
// plaintext.
func Open(key *Secret, nonce, ciphertext []byte) ([]byte, error) {
	aead, err := newAEAD(key, nonce)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < TagSize {
		return nil, lperrors.ErrAuthenticationFailure
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, lperrors.ErrAuthenticationFailure
	}
	return plaintext, nil
}

type aeadCipher interface {
	Seal(dst, nonce, plaintext, additionalData []byte) []byte
	Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
}

func newAEAD(key *Secret, nonce []byte) (aeadCipher, error) {
	if key == nil || len(key.Bytes()) != KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes", lperrors.ErrInvalidParameters, KeySize)
	}
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("%w: nonce must be %d bytes, got %d", lperrors.ErrInvalidParameters, NonceSize, len(nonce))
	}

	aead, err := chacha20poly1305.New(key.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", lperrors.ErrInvalidParameters, err)
	}
	return aead, nil
}
