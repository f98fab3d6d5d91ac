package keyring

import (
	"errors"

	"github.com/illarion/lockpass/internal/crypto"
	"github.com/zalando/go-keyring"
)

const serviceName = "lockpass"

// ErrNotFound indicates no password is stored for the vault.
var ErrNotFound = keyring.ErrNotFound

// SavePassword stores the master password in the OS keyring under vaultID.
func SavePassword(vaultID string, password *crypto.Secret) error {
	return keyring.Set(serviceName, vaultID, string(password.Bytes()))
}

// GetPassword retrieves the master password for vaultID. The caller must
// Destroy the returned secret.
func GetPassword(vaultID string) (*crypto.Secret, error) {
	password, err := keyring.Get(serviceName, vaultID)
	if err != nil {
		return nil, err
	}
	return crypto.NewSecretFromString(password), nil
}

// DeletePassword removes the stored password. Deleting a missing entry
// is not an error.
func DeletePassword(vaultID string) error {
	err := keyring.Delete(serviceName, vaultID)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// HasPassword checks if a password is stored in the keyring
func HasPassword(vaultID string) bool {
	_, err := keyring.Get(serviceName, vaultID)
	return err == nil
}

// UseMemoryBackend replaces the OS keyring with an in-process store.
// Tests use it to avoid touching the real keyring.
func UseMemoryBackend() {
	keyring.MockInit()
}
