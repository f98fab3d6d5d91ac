package cmd

import (
	"github.com/illarion/lockpass/internal/ui"
	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm NAME",
	Short: "Remove a record",
	Long: `Removes the record with the given name. The previous vault contents
stay in the history and can be brought back with 'lockpass restore'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lp, err := openVault()
		if err != nil {
			return err
		}
		defer lp.Close()

		password, err := unlockPassword(lp)
		if err != nil {
			return err
		}
		defer password.Destroy()

		s, cleanup := startSpinner("Removing record...")
		defer cleanup()

		if err := lp.RemoveRecord(cmd.Context(), password, args[0]); err != nil {
			return err
		}

		s.FinalMSG = ui.Success.Sprint("✓") + " Removed " + ui.Highlight.Sprint(args[0])
		return nil
	},
}
