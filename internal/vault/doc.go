// Package vault holds the decrypted record collection and its JSON form.
package vault
