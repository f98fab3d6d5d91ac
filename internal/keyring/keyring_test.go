package keyring

import (
	"errors"
	"testing"

	"github.com/illarion/lockpass/internal/crypto"
)

func TestSaveGetDelete(t *testing.T) {
	UseMemoryBackend()
	const vaultID = "test-vault"

	if HasPassword(vaultID) {
		t.Fatal("Expected no password before save")
	}
	if _, err := GetPassword(vaultID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	pw := crypto.NewSecretFromString("master")
	defer pw.Destroy()
	if err := SavePassword(vaultID, pw); err != nil {
		t.Fatalf("Failed to save password: %v", err)
	}
	if !HasPassword(vaultID) {
		t.Error("Expected password after save")
	}

	got, err := GetPassword(vaultID)
	if err != nil {
		t.Fatalf("Failed to get password: %v", err)
	}
	defer got.Destroy()
	if !got.Equal(pw) {
		t.Error("Stored password does not match")
	}

	if err := DeletePassword(vaultID); err != nil {
		t.Fatalf("Failed to delete password: %v", err)
	}
	if HasPassword(vaultID) {
		t.Error("Expected no password after delete")
	}
	if err := DeletePassword(vaultID); err != nil {
		t.Errorf("Deleting a missing password should succeed, got %v", err)
	}
}
