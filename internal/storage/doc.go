// Package storage provides the BBolt history database for lockpass.
//
// The database sits next to the vault file and uses three buckets:
//   - config: vault id and timestamps (unencrypted)
//   - index: sequence number, time, reason, and size of each archived
//     generation (unencrypted, for lockpass history)
//   - generations: the archived vault files themselves, byte for byte,
//     so they stay encrypted under the password they were saved with
//
// The unencrypted index lets lockpass history work without a password.
//
// A read-write Storage holds BBolt's exclusive file lock, which also
// serializes concurrent lockpass processes mutating the same vault.
package storage
