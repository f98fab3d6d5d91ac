package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/illarion/lockpass/internal/configs"
	"github.com/illarion/lockpass/internal/ui"
	"github.com/spf13/cobra"
)

var configInitForce bool

// ConfigCmd is the top-level config command.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage lockpass configuration",
	Long: `Provides commands for the lockpass configuration file.

Examples:
  # Write a config file with the default settings
  lockpass config init

  # Show the effective settings
  lockpass config show`,
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing config file")

	ConfigCmd.AddCommand(configInitCmd)
	ConfigCmd.AddCommand(configShowCmd)
}

var configInitCmd = &cobra.Command{
	Use:         "init",
	Short:       "Write a config file with the default settings",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipSettings: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFlag
		if path == "" {
			var err error
			if path, err = configs.DefaultConfigPath(); err != nil {
				return err
			}
		}

		if _, err := os.Stat(path); err == nil && !configInitForce {
			return Logger.ErrorfAndReturn("config file %s already exists (use --force to overwrite)", path)
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to check config file: %w", err)
		}

		cfg := configs.Default()
		if vaultFlag != "" {
			abs, err := filepath.Abs(vaultFlag)
			if err != nil {
				return fmt.Errorf("failed to resolve vault path: %w", err)
			}
			cfg.Vault.Path = abs
		}

		Logger.Debugf("Writing config to %s", path)
		if err := configs.Save(path, cfg); err != nil {
			return err
		}

		fmt.Println(ui.Success.Sprint("✓") + " Wrote " + ui.Path.Sprint(path))
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := settings.Config

		fmt.Println(color.CyanString("Configuration") + " (" + settings.ConfigPath + "):")
		fmt.Println()
		fmt.Printf("  %-18s %s %s\n", "Vault:", color.GreenString(settings.VaultPath), ui.Muted.Sprint(string(settings.VaultFrom)))
		fmt.Printf("  %-18s %s\n", "Key derivation:", color.YellowString(cfg.Params().String()))
		fmt.Printf("  %-18s %d\n", "Generator length:", cfg.Generator.Length)
		fmt.Printf("  %-18s %t\n", "Symbols:", cfg.Generator.Symbols)
		if cfg.Generator.SymbolSet != "" {
			fmt.Printf("  %-18s %s\n", "Symbol set:", cfg.Generator.SymbolSet)
		}
		fmt.Printf("  %-18s %t\n", "Allow ambiguous:", cfg.Generator.AllowAmbiguous)
		fmt.Printf("  %-18s %d\n", "History kept:", cfg.History.Keep)
		return nil
	},
}
