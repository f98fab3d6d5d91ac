package configs

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const (
	appName       = "lockpass"
	vaultFileName = "vault.bin"
	configName    = "config.toml"

	// VaultEnv overrides the vault location from the config file.
	VaultEnv = "LOCKPASS_VAULT"
)

// Settings are the effective settings of one invocation: config file,
// environment, and flags merged.
type Settings struct {
	ConfigPath string
	VaultPath  string
	VaultFrom  Source // where VaultPath came from
	Config     *Config
}

// Source names the origin of a resolved setting.
type Source string

const (
	SourceFlag    Source = "flag"
	SourceEnv     Source = "environment"
	SourceConfig  Source = "config file"
	SourceDefault Source = "default"
)

// DataDir returns the per-user local data directory for lockpass.
func DataDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return filepath.Join(dir, appName), nil
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("error getting home directory: %w", err)
		}
		return filepath.Join(home, "Library", "Application Support", appName), nil
	}

	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error getting home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", appName), nil
}

// DefaultVaultPath returns <data dir>/lockpass/vault.bin.
func DefaultVaultPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, vaultFileName), nil
}

// DefaultConfigPath returns <user config dir>/lockpass/config.toml.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("error getting config directory: %w", err)
	}
	return filepath.Join(dir, appName, configName), nil
}

// Resolve loads the configuration and picks the vault path. Precedence is
// vaultFlag, then LOCKPASS_VAULT, then the config file, then the default.
// Empty arguments mean "not given".
func Resolve(configFlag, vaultFlag string) (*Settings, error) {
	configPath := configFlag
	if configPath == "" {
		var err error
		if configPath, err = DefaultConfigPath(); err != nil {
			return nil, err
		}
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, err
	}

	vaultPath, source := vaultFlag, SourceFlag
	if vaultPath == "" {
		vaultPath, source = os.Getenv(VaultEnv), SourceEnv
	}
	if vaultPath == "" {
		vaultPath, source = cfg.Vault.Path, SourceConfig
	}
	if vaultPath == "" {
		source = SourceDefault
		if vaultPath, err = DefaultVaultPath(); err != nil {
			return nil, err
		}
	}

	vaultPath, err = filepath.Abs(vaultPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve vault path: %w", err)
	}

	return &Settings{
		ConfigPath: configPath,
		VaultPath:  vaultPath,
		VaultFrom:  source,
		Config:     cfg,
	}, nil
}
