// Package errors defines the sentinel errors shared across lockpass.
//
// Errors are grouped into four categories that callers can match with
// errors.Is:
//
//   - ErrInput: unusable arguments such as a password length below 4
//   - ErrCrypto: invalid cost parameters, derivation failures, and
//     authentication failures
//   - ErrFormat: truncated files, bad magic, unknown versions, and
//     payloads that do not parse
//   - ErrIO: filesystem failures, wrapped with IO
//
// ErrAuthenticationFailure carries one message for both a
// wrong password and a tampered file.
package errors
