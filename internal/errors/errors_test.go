package errors

import (
	"errors"
	"io/fs"
	"testing"
)

func TestCategories(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		category error
	}{
		{"invalid length", ErrInvalidLength, ErrInput},
		{"invalid record", ErrInvalidRecord, ErrInput},
		{"invalid parameters", ErrInvalidParameters, ErrCrypto},
		{"derivation failure", ErrDerivationFailure, ErrCrypto},
		{"secret destroyed", ErrSecretDestroyed, ErrCrypto},
		{"authentication failure", ErrAuthenticationFailure, ErrCrypto},
		{"truncated", ErrTruncatedFile, ErrFormat},
		{"bad magic", ErrBadMagic, ErrFormat},
		{"unsupported version", ErrUnsupportedVersion, ErrFormat},
		{"malformed payload", ErrMalformedPayload, ErrFormat},
		{"busy", ErrVaultBusy, ErrIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.category) {
				t.Errorf("%v does not match its category %v", tt.err, tt.category)
			}
		})
	}
}

func TestIOKeepsCause(t *testing.T) {
	err := IO("read vault", fs.ErrPermission)

	if !errors.Is(err, ErrIO) {
		t.Error("Expected ErrIO")
	}
	if !errors.Is(err, fs.ErrPermission) {
		t.Error("Expected underlying fs.ErrPermission")
	}
	if err.Error() != "failed to read vault: permission denied" {
		t.Errorf("Unexpected message: %q", err.Error())
	}
	if IO("noop", nil) != nil {
		t.Error("IO(nil) should be nil")
	}
}
