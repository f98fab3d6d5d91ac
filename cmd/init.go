package cmd

import (
	lperrors "github.com/illarion/lockpass/internal/errors"
	"github.com/illarion/lockpass/internal/ui"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a new empty vault",
	Long: `Creates an empty vault at the configured path.

Prompts for the master password twice. The password is not stored
anywhere unless you run 'lockpass keyring save'; a forgotten password
cannot be recovered.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lp, err := openVault()
		if err != nil {
			return err
		}
		defer lp.Close()

		if lp.Exists() {
			return lperrors.ErrAlreadyExists
		}

		password, err := GetNewPassword("Enter new master password: ")
		if err != nil {
			return err
		}
		defer password.Destroy()

		s, cleanup := startSpinner("Creating vault...")
		defer cleanup()

		if err := lp.Init(cmd.Context(), password); err != nil {
			return err
		}

		s.FinalMSG = ui.Success.Sprint("✓") + " Initialized vault at " + ui.Path.Sprint(lp.Path())
		return nil
	},
}
