// Package core provides the main lockpass vault operations.
//
// Core operations include:
//   - Init: Create a new empty vault encrypted under the master password
//   - AddRecord/GetRecord/ListRecords/RemoveRecord: Edit records; every
//     change re-encrypts the whole file with a fresh salt and nonce
//   - ChangePassword: Re-encrypt the vault under a new password
//   - Status/History: Inspect the vault header and history without a password
//   - Restore/Diff: Roll back to, or compare with, an archived generation
//
// Every save archives the previous file in the history database before
// atomically replacing it. The history database's file lock serializes
// concurrent lockpass processes working on the same vault.
package core
