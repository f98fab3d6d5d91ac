// Package configs loads lockpass settings.
//
// Settings come from an optional TOML file at
// <user config dir>/lockpass/config.toml:
//
//	[vault]
//	path = "/home/me/.local/share/lockpass/vault.bin"
//
//	[kdf]
//	memory_kib = 65536
//	time = 3
//	parallelism = 1
//
//	[generator]
//	length = 20
//	symbols = false
//	allow_ambiguous = false
//
//	[history]
//	keep = 10
//
// Every key is optional. The vault path can also be set with
// LOCKPASS_VAULT or the --vault flag, which win over the file.
package configs
