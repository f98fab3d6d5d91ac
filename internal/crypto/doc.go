// Package crypto provides cryptographic operations for lockpass.
//
// Encryption uses ChaCha20-Poly1305 with:
//   - 32-byte key derived from the master password via Argon2id
//   - 12-byte random nonce per save
//   - 16-byte Poly1305 tag appended to the ciphertext
//
// Key derivation uses Argon2id (version 0x13) with:
//   - 16-byte random salt (stored unencrypted in the vault header)
//   - 64 MiB memory, 3 passes, 1 lane by default
//   - at most 4 GiB, and never more than the installed memory; a failed
//     allocation inside argon2 aborts the process instead of returning
//     ErrDerivationFailure
//
// Memory safety:
//   - Passwords and keys live in Secret values backed by memguard locked
//     buffers; call Destroy when done
//   - Use ClearBytes() to zero plain slices after use
//   - Erasure is best effort: Go strings, argon2 working memory, and the
//     JSON decoder's internal copies cannot be wiped
package crypto
