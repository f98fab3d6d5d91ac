// Package codec converts between a master password plus a record
// collection and the self-describing vault file.
//
// The file is a 45-byte header (magic, version, Argon2id cost parameters,
// salt, nonce) followed by the ChaCha20-Poly1305 ciphertext of the JSON
// payload. The header is stored in the clear so a file written with
// non-default cost parameters can always be opened.
//
// Decode validates in a fixed order: length, magic, version, cost
// parameters, then authentication, then payload structure.
package codec
