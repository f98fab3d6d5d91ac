// Package keyring caches the master password in the OS keyring
// (Keychain, Secret Service, or Windows Credential Manager), keyed by the
// vault id stored in the history database.
package keyring
