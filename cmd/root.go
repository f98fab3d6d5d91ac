package cmd

import (
	"context"

	"github.com/illarion/lockpass/internal/configs"
	"github.com/illarion/lockpass/internal/core"
	"github.com/illarion/lockpass/internal/crypto"
	logger "github.com/illarion/lockpass/internal/logging"
	"github.com/illarion/lockpass/internal/platform"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	debug      bool
	vaultFlag  string
	configFlag string

	Logger   logger.Logger
	settings *configs.Settings

	RootCmd = &cobra.Command{
		Use:   "lockpass",
		Short: "Local, password-protected secret vault",
		Long: `lockpass keeps named credentials in a single encrypted file.

The vault is encrypted with ChaCha20-Poly1305 under a key derived from
your master password with Argon2id. Every change rewrites the whole file
with a fresh salt and nonce; the previous version is kept in a history
database next to the vault.

The master password is read from LOCKPASS_PASSWORD, the OS keyring
(see 'lockpass keyring save') or a hidden prompt.

Examples:
  lockpass init                     # Create a new vault
  lockpass add github --gen         # Add a record with a generated password
  lockpass get github --show        # Print a record including its password
  lockpass gen --len 32 --symbols   # Generate a password without a vault`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Running %s with verbose=%t, debug=%t", cmd.CommandPath(), verbose, debug)

			if err := platform.DisableCoreDumps(); err != nil {
				Logger.Warnf("Failed to disable core dumps: %v", err)
			}

			if cmd.Annotations[skipSettings] == "true" {
				return nil
			}

			s, err := configs.Resolve(configFlag, vaultFlag)
			if err != nil {
				return err
			}
			settings = s
			Logger.Debugf("Vault %s (from %s), config %s", s.VaultPath, s.VaultFrom, s.ConfigPath)
			return nil
		},
	}
)

// skipSettings marks commands that must run even when the config file is
// unreadable.
const skipSettings = "skip-settings"

func init() {
	RootCmd.PersistentFlags().StringVar(&vaultFlag, "vault", "", "path to the vault file (overrides "+configs.VaultEnv+")")
	RootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "path to the config file")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	RootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")

	RootCmd.AddCommand(initCmd)
	RootCmd.AddCommand(addCmd)
	RootCmd.AddCommand(listCmd)
	RootCmd.AddCommand(getCmd)
	RootCmd.AddCommand(genCmd)
	RootCmd.AddCommand(rmCmd)
	RootCmd.AddCommand(passwdCmd)
	RootCmd.AddCommand(statusCmd)
	RootCmd.AddCommand(historyCmd)
	RootCmd.AddCommand(restoreCmd)
	RootCmd.AddCommand(diffCmd)
	RootCmd.AddCommand(compactCmd)
	RootCmd.AddCommand(KeyringCmd)
	RootCmd.AddCommand(ConfigCmd)
}

// Execute runs the command line and exits non-zero on error. Locked
// secret buffers are wiped before the process exits.
func Execute(ctx context.Context) {
	err := RootCmd.ExecuteContext(ctx)
	crypto.Purge()
	if err != nil {
		HandleError(err)
	}
}

// openVault opens the resolved vault with the configured save options.
func openVault() (*core.LockPass, error) {
	cfg := settings.Config
	return core.New(settings.VaultPath, core.Options{
		Params:      cfg.Params(),
		HistoryKeep: cfg.History.Keep,
		Logger:      Logger,
	})
}
