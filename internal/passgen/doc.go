// Package passgen generates random passwords and estimates password strength.
//
// Passwords draw from lowercase letters, uppercase letters, digits, and
// optionally symbols. At least one character of every active pool is
// included, the rest come from the union of the pools, and the result is
// shuffled. Every random index comes from crypto/rand.
package passgen
