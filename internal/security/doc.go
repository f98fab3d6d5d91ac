// Package security confines vault file operations to the vault directory.
//
// All reads and writes go through an os.Root opened on the directory, so
// symlinks and ".." components cannot redirect them elsewhere. Writes of
// the vault file are atomic: temp file, fsync, rename.
package security
