package crypto

import (
	"bytes"
	"errors"
	"testing"

	lperrors "github.com/illarion/lockpass/internal/errors"
)

// testParams keeps Argon2id cheap in tests.
var testParams = Params{MemoryKiB: 64, Time: 1, Parallelism: 1}

func TestDeriveKeyDeterministic(t *testing.T) {
	salt := bytes.Repeat([]byte{7}, SaltSize)

	k1, err := DeriveKey([]byte("correct horse"), salt, testParams)
	if err != nil {
		t.Fatalf("Failed to derive key: %v", err)
	}
	defer k1.Destroy()

	k2, err := DeriveKey([]byte("correct horse"), salt, testParams)
	if err != nil {
		t.Fatalf("Failed to derive key: %v", err)
	}
	defer k2.Destroy()

	if k1.Len() != KeySize {
		t.Errorf("Expected %d-byte key, got %d", KeySize, k1.Len())
	}
	if !k1.Equal(k2) {
		t.Error("Same inputs produced different keys")
	}
}

func TestDeriveKeyRefusesMoreThanInstalledMemory(t *testing.T) {
	saved := totalMemory
	totalMemory = func() uint64 { return 1 << 20 }
	defer func() { totalMemory = saved }()

	salt := bytes.Repeat([]byte{7}, SaltSize)
	_, err := DeriveKey([]byte("pw"), salt, Params{MemoryKiB: 2048, Time: 1, Parallelism: 1})
	if !errors.Is(err, lperrors.ErrDerivationFailure) || !errors.Is(err, lperrors.ErrCrypto) {
		t.Fatalf("Expected ErrDerivationFailure, got %v", err)
	}

	key, err := DeriveKey([]byte("pw"), salt, testParams)
	if err != nil {
		t.Fatalf("Small cost should still derive: %v", err)
	}
	key.Destroy()
}

func TestDeriveKeyInputSensitivity(t *testing.T) {
	salt := bytes.Repeat([]byte{1}, SaltSize)
	otherSalt := bytes.Repeat([]byte{2}, SaltSize)

	base, err := DeriveKey([]byte("pw"), salt, testParams)
	if err != nil {
		t.Fatalf("Failed to derive key: %v", err)
	}
	defer base.Destroy()

	variants := []struct {
		name     string
		password []byte
		salt     []byte
		params   Params
	}{
		{"different password", []byte("pw2"), salt, testParams},
		{"different salt", []byte("pw"), otherSalt, testParams},
		{"different time", []byte("pw"), salt, Params{MemoryKiB: 64, Time: 2, Parallelism: 1}},
	}

	for _, v := range variants {
		t.Run(v.name, func(t *testing.T) {
			k, err := DeriveKey(v.password, v.salt, v.params)
			if err != nil {
				t.Fatalf("Failed to derive key: %v", err)
			}
			defer k.Destroy()
			if k.Equal(base) {
				t.Error("Expected a different key")
			}
		})
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantErr bool
	}{
		{"defaults", DefaultParams(), false},
		{"minimal", Params{MemoryKiB: 8, Time: 1, Parallelism: 1}, false},
		{"zero time", Params{MemoryKiB: 64, Time: 0, Parallelism: 1}, true},
		{"zero parallelism", Params{MemoryKiB: 64, Time: 1, Parallelism: 0}, true},
		{"parallelism above uint8", Params{MemoryKiB: 8 * 256, Time: 1, Parallelism: 256}, true},
		{"memory below 8 per lane", Params{MemoryKiB: 15, Time: 1, Parallelism: 2}, true},
		{"memory too large", Params{MemoryKiB: MaxMemoryKiB + 1, Time: 1, Parallelism: 1}, true},
		{"time too large", Params{MemoryKiB: 64, Time: MaxTime + 1, Parallelism: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, lperrors.ErrInvalidParameters) {
				t.Errorf("Expected ErrInvalidParameters, got %v", err)
			}
		})
	}
}

func TestDeriveKeyRejectsBadInput(t *testing.T) {
	if _, err := DeriveKey([]byte("pw"), make([]byte, SaltSize), Params{}); !errors.Is(err, lperrors.ErrInvalidParameters) {
		t.Errorf("Expected ErrInvalidParameters for zero params, got %v", err)
	}
	if _, err := DeriveKey([]byte("pw"), make([]byte, 8), testParams); !errors.Is(err, lperrors.ErrInvalidParameters) {
		t.Errorf("Expected ErrInvalidParameters for short salt, got %v", err)
	}
}

func TestSealOpen(t *testing.T) {
	key := NewSecret(bytes.Repeat([]byte{0x42}, KeySize))
	defer key.Destroy()
	nonce := bytes.Repeat([]byte{0x01}, NonceSize)
	plaintext := []byte(`{"entries":[]}`)

	ciphertext, err := Seal(key, nonce, plaintext)
	if err != nil {
		t.Fatalf("Failed to seal: %v", err)
	}
	if len(ciphertext) != len(plaintext)+TagSize {
		t.Errorf("Expected ciphertext length %d, got %d", len(plaintext)+TagSize, len(ciphertext))
	}

	decrypted, err := Open(key, nonce, ciphertext)
	if err != nil {
		t.Fatalf("Failed to open: %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Errorf("Decrypted data doesn't match. Got %q, want %q", decrypted, plaintext)
	}
}

func TestOpenFailsClosed(t *testing.T) {
	key := NewSecret(bytes.Repeat([]byte{0x42}, KeySize))
	defer key.Destroy()
	wrongKey := NewSecret(bytes.Repeat([]byte{0x43}, KeySize))
	defer wrongKey.Destroy()
	nonce := bytes.Repeat([]byte{0x01}, NonceSize)

	ciphertext, err := Seal(key, nonce, []byte("secret"))
	if err != nil {
		t.Fatalf("Failed to seal: %v", err)
	}

	tampered := append([]byte(nil), ciphertext...)
	tampered[0] ^= 0x80
	otherNonce := bytes.Repeat([]byte{0x02}, NonceSize)

	tests := []struct {
		name       string
		key        *Secret
		nonce      []byte
		ciphertext []byte
	}{
		{"wrong key", wrongKey, nonce, ciphertext},
		{"wrong nonce", key, otherNonce, ciphertext},
		{"tampered", key, nonce, tampered},
		{"truncated", key, nonce, ciphertext[:TagSize-1]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plaintext, err := Open(tt.key, tt.nonce, tt.ciphertext)
			if !errors.Is(err, lperrors.ErrAuthenticationFailure) {
				t.Errorf("Expected ErrAuthenticationFailure, got %v", err)
			}
			if plaintext != nil {
				t.Error("Expected no plaintext on failure")
			}
		})
	}
}

func TestSealRejectsBadSizes(t *testing.T) {
	shortKey := NewSecret([]byte("short"))
	defer shortKey.Destroy()
	key := NewSecret(bytes.Repeat([]byte{1}, KeySize))
	defer key.Destroy()

	if _, err := Seal(shortKey, make([]byte, NonceSize), []byte("x")); !errors.Is(err, lperrors.ErrInvalidParameters) {
		t.Errorf("Expected ErrInvalidParameters for short key, got %v", err)
	}
	if _, err := Seal(key, make([]byte, 24), []byte("x")); !errors.Is(err, lperrors.ErrInvalidParameters) {
		t.Errorf("Expected ErrInvalidParameters for wrong nonce size, got %v", err)
	}
}

func TestSecretWipesSource(t *testing.T) {
	src := []byte("hunter2")
	s := NewSecret(src)
	defer s.Destroy()

	if !bytes.Equal(src, make([]byte, len(src))) {
		t.Error("Source slice was not wiped")
	}
	if string(s.Bytes()) != "hunter2" {
		t.Errorf("Secret content = %q, want %q", s.Bytes(), "hunter2")
	}
}

func TestSecretDestroy(t *testing.T) {
	s := NewSecretFromString("hunter2")
	if !s.Alive() {
		t.Fatal("Expected secret to be alive")
	}
	s.Destroy()
	if s.Alive() {
		t.Error("Expected secret to be destroyed")
	}
	s.Destroy()

	empty := NewSecret(nil)
	if !empty.Alive() || empty.Len() != 0 {
		t.Error("Expected an empty secret to be alive")
	}
	empty.Destroy()
	if empty.Alive() {
		t.Error("Expected empty secret to be destroyed")
	}

	var nilSecret *Secret
	nilSecret.Destroy()
	if nilSecret.Len() != 0 {
		t.Error("Nil secret should be empty")
	}
}

func TestClearBytes(t *testing.T) {
	b := []byte{1, 2, 3, 4}
	ClearBytes(b)
	for i, v := range b {
		if v != 0 {
			t.Errorf("Byte %d not cleared: %d", i, v)
		}
	}
}
