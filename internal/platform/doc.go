// Package platform holds OS-specific process hardening and resource
// queries.
package platform
