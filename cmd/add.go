package cmd

import (
	"fmt"

	"github.com/illarion/lockpass/internal/core"
	lperrors "github.com/illarion/lockpass/internal/errors"
	"github.com/illarion/lockpass/internal/passgen"
	"github.com/illarion/lockpass/internal/ui"
	"github.com/illarion/lockpass/internal/vault"
	"github.com/spf13/cobra"
)

var (
	addUser     string
	addURL      string
	addNotes    string
	addGenerate bool
	addGenOpts  generatorFlags
)

// generatorFlags are shared by add and gen. Unset flags fall back to the
// [generator] config section.
type generatorFlags struct {
	length         int
	symbols        bool
	allowAmbiguous bool
}

func (g *generatorFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&g.length, "len", 0, "password length (default from config, 20)")
	cmd.Flags().BoolVar(&g.symbols, "symbols", false, "include symbols")
	cmd.Flags().BoolVar(&g.allowAmbiguous, "allow-ambiguous", false, "allow look-alike characters such as O and 0")
}

// generate creates a password from the flags of cmd and the config.
func (g *generatorFlags) generate(cmd *cobra.Command) (string, error) {
	cfg := settings.Config.Generator

	length := cfg.Length
	if cmd.Flags().Changed("len") {
		length = g.length
	}
	symbols := cfg.Symbols
	if cmd.Flags().Changed("symbols") {
		symbols = g.symbols
	}
	allowAmbiguous := cfg.AllowAmbiguous
	if cmd.Flags().Changed("allow-ambiguous") {
		allowAmbiguous = g.allowAmbiguous
	}

	Logger.Debugf("Generating password: length=%d, symbols=%t, allow-ambiguous=%t", length, symbols, allowAmbiguous)
	if cfg.SymbolSet != "" {
		return passgen.New(passgen.WithSymbols(cfg.SymbolSet)).Generate(length, symbols, allowAmbiguous)
	}
	return passgen.Generate(length, symbols, allowAmbiguous)
}

func init() {
	addCmd.Flags().StringVar(&addUser, "user", "", "username (prompted if omitted)")
	addCmd.Flags().StringVar(&addURL, "url", "", "URL for the record")
	addCmd.Flags().StringVar(&addNotes, "notes", "", "free-form notes")
	addCmd.Flags().BoolVar(&addGenerate, "gen", false, "generate the password instead of prompting for it")
	addGenOpts.register(addCmd)
}

var addCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add or replace a record",
	Long: `Adds a record to the vault. A record with the same name is replaced
and moves to the end of the list.

Without --gen the record password is read with a hidden prompt. With
--gen a password is generated and printed once.

Examples:
  lockpass add github --user octocat --url https://github.com
  lockpass add email --gen --len 32 --symbols`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		lp, err := openVault()
		if err != nil {
			return err
		}
		defer lp.Close()

		if !lp.Exists() {
			return lperrors.ErrNotInitialized
		}

		username := addUser
		if !cmd.Flags().Changed("user") {
			if username, err = core.ReadLine(stdin, "Username: "); err != nil {
				return err
			}
		}

		var secret string
		if addGenerate {
			if secret, err = addGenOpts.generate(cmd); err != nil {
				return err
			}
		} else {
			typed, err := readPasswordConfirm("Record password: ")
			if err != nil {
				return err
			}
			secret = string(typed.Bytes())
			typed.Destroy()
			warnIfWeak(secret, name, username)
		}

		record := vault.NewRecord(name, username, secret)
		if cmd.Flags().Changed("url") {
			record.URL = vault.Optional(addURL)
		}
		if cmd.Flags().Changed("notes") {
			record.Notes = vault.Optional(addNotes)
		}

		if err := record.Validate(); err != nil {
			return err
		}

		password, err := unlockPassword(lp)
		if err != nil {
			return err
		}
		defer password.Destroy()

		s, cleanup := startSpinner("Saving record...")
		if err := lp.AddRecord(cmd.Context(), password, record); err != nil {
			cleanup()
			return err
		}
		s.FinalMSG = ui.Success.Sprint("✓") + " Saved " + ui.Highlight.Sprint(name)
		cleanup()

		if addGenerate {
			strength := passgen.Estimate(secret, name, username)
			fmt.Printf("Generated password: %s\n", ui.Secret.Sprint(secret))
			fmt.Printf("Strength: %s %s\n", strength.Label(), ui.Muted.Sprintf("cracked in %s", strength.CrackTime))
		}
		return nil
	},
}
