package configs

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/illarion/lockpass/internal/crypto"
	"github.com/illarion/lockpass/internal/passgen"
)

// DefaultHistoryKeep is how many previous generations are kept by default.
const DefaultHistoryKeep = 10

// Config is the on-disk configuration file.
type Config struct {
	Vault     VaultConfig     `toml:"vault"`
	KDF       KDFConfig       `toml:"kdf"`
	Generator GeneratorConfig `toml:"generator"`
	History   HistoryConfig   `toml:"history"`
}

type VaultConfig struct {
	Path string `toml:"path,omitempty"`
}

// KDFConfig holds the Argon2id cost used when a vault is saved. Existing
// vaults are always opened with the cost stored in their header.
type KDFConfig struct {
	MemoryKiB   uint32 `toml:"memory_kib"`
	Time        uint32 `toml:"time"`
	Parallelism uint32 `toml:"parallelism"`
}

type GeneratorConfig struct {
	Length         int    `toml:"length"`
	Symbols        bool   `toml:"symbols"`
	AllowAmbiguous bool   `toml:"allow_ambiguous"`
	SymbolSet      string `toml:"symbol_set"` // replaces the built-in symbol pool when set
}

type HistoryConfig struct {
	Keep int `toml:"keep"`
}

// Default returns the built-in configuration.
func Default() *Config {
	p := crypto.DefaultParams()
	return &Config{
		KDF: KDFConfig{
			MemoryKiB:   p.MemoryKiB,
			Time:        p.Time,
			Parallelism: p.Parallelism,
		},
		Generator: GeneratorConfig{
			Length: passgen.DefaultLength,
		},
		History: HistoryConfig{
			Keep: DefaultHistoryKeep,
		},
	}
}

// Params returns the KDF section as crypto parameters.
func (c *Config) Params() crypto.Params {
	return crypto.Params{
		MemoryKiB:   c.KDF.MemoryKiB,
		Time:        c.KDF.Time,
		Parallelism: c.KDF.Parallelism,
	}
}

// Validate rejects settings that would produce unusable vaults.
func (c *Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return fmt.Errorf("invalid [kdf] section: %w", err)
	}
	if c.Generator.Length < passgen.MinLength {
		return fmt.Errorf("invalid [generator] length %d: must be at least %d", c.Generator.Length, passgen.MinLength)
	}
	if err := passgen.CheckSymbols(c.Generator.SymbolSet); err != nil {
		return fmt.Errorf("invalid [generator] symbol_set: %w", err)
	}
	if c.History.Keep < 0 {
		return fmt.Errorf("invalid [history] keep %d: must not be negative", c.History.Keep)
	}
	return nil
}

// Load reads the configuration at path on top of the defaults. A missing
// file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(path, cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path with owner-only permissions.
func Save(path string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := SaveTOML(path, cfg); err != nil {
		return fmt.Errorf("failed to save config %s: %w", path, err)
	}
	return nil
}
