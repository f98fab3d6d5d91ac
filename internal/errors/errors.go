package errors

import (
	"errors"
	"fmt"
)

// Categories. Every leaf error below wraps exactly one of them so callers
// can match a whole class with errors.Is.
var (
	// ErrInput indicates a caller supplied an unusable argument.
	ErrInput = errors.New("invalid input")

	// ErrCrypto indicates a key derivation or authenticated decryption failure.
	ErrCrypto = errors.New("cryptographic failure")

	// ErrFormat indicates the vault file is not a readable vault.
	ErrFormat = errors.New("invalid vault file")

	// ErrIO indicates a filesystem failure.
	ErrIO = errors.New("i/o failure")
)

// Input errors.
var (
	// ErrInvalidLength indicates a requested password length below the minimum.
	ErrInvalidLength = fmt.Errorf("%w: password length must be at least 4", ErrInput)

	// ErrInvalidRecord indicates a record is missing its name or holds a
	// field that would not survive serialization.
	ErrInvalidRecord = fmt.Errorf("%w: invalid record", ErrInput)

	// ErrNoTerminal indicates a password prompt was needed but stdin is not
	// a terminal.
	ErrNoTerminal = fmt.Errorf("%w: no terminal to read the password from", ErrInput)
)

// Cryptographic errors.
var (
	// ErrInvalidParameters indicates key derivation cost parameters or key
	// material of the wrong shape.
	ErrInvalidParameters = fmt.Errorf("%w: invalid key derivation parameters", ErrCrypto)

	// ErrDerivationFailure indicates the key derivation itself failed.
	ErrDerivationFailure = fmt.Errorf("%w: key derivation failed", ErrCrypto)

	// ErrSecretDestroyed indicates a password was used after Destroy, which
	// would otherwise derive a key from empty input.
	ErrSecretDestroyed = fmt.Errorf("%w: secret used after it was destroyed", ErrCrypto)

	// ErrAuthenticationFailure is returned for both a wrong master password
	// and a modified ciphertext. The two cases are never distinguished.
	ErrAuthenticationFailure = fmt.Errorf("%w: wrong password or damaged vault", ErrCrypto)
)

// File format errors.
var (
	// ErrTruncatedFile indicates the file is shorter than the fixed header.
	ErrTruncatedFile = fmt.Errorf("%w: file is truncated", ErrFormat)

	// ErrBadMagic indicates the file does not start with the vault magic bytes.
	ErrBadMagic = fmt.Errorf("%w: not a vault file", ErrFormat)

	// ErrUnsupportedVersion indicates a format version this build cannot read.
	ErrUnsupportedVersion = fmt.Errorf("%w: unsupported format version", ErrFormat)

	// ErrMalformedPayload indicates the decrypted payload is not a valid record list.
	ErrMalformedPayload = fmt.Errorf("%w: malformed payload", ErrFormat)
)

// Vault state errors.
var (
	// ErrEmptyPool indicates a character pool became empty after filtering.
	ErrEmptyPool = errors.New("character pool is empty")

	// ErrNotFound indicates no record with the requested name exists.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyExists indicates a vault file already exists at the target path.
	ErrAlreadyExists = errors.New("vault already exists")

	// ErrNotInitialized indicates no vault file exists at the target path.
	ErrNotInitialized = errors.New("vault not initialized")

	// ErrGenerationNotFound indicates a history generation does not exist.
	ErrGenerationNotFound = errors.New("generation not found")
)

// I/O errors.
var (
	// ErrVaultBusy indicates another process holds the vault lock.
	ErrVaultBusy = fmt.Errorf("%w: vault is locked by another process", ErrIO)
)

// IO wraps a filesystem error so it matches ErrIO while keeping the
// underlying error reachable.
func IO(op string, err error) error {
	if err == nil {
		return nil
	}
	return &ioError{op: op, err: err}
}

type ioError struct {
	op  string
	err error
}

func (e *ioError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.op, e.err)
}

func (e *ioError) Unwrap() []error {
	return []error{ErrIO, e.err}
}
