package cmd

import (
	"fmt"

	lperrors "github.com/illarion/lockpass/internal/errors"
	"github.com/illarion/lockpass/internal/keyring"
	"github.com/illarion/lockpass/internal/ui"
	"github.com/spf13/cobra"
)

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change the master password",
	Long: `Re-encrypts the vault under a new master password with a fresh salt
and nonce. The new password is always read from a prompt; LOCKPASS_PASSWORD
only supplies the current one.

Archived generations are encrypted under the current password, so the
history is cleared and compacted. A password stored in the keyring is
updated.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lp, err := openVault()
		if err != nil {
			return err
		}
		defer lp.Close()

		if !lp.Exists() {
			return lperrors.ErrNotInitialized
		}

		vaultID, _ := lp.GetVaultID()

		currentPassword, _, err := GetPasswordWithRetry("Enter current password: ", vaultID, lp.VerifyPassword)
		if err != nil {
			return err
		}
		defer currentPassword.Destroy()

		newPassword, err := PromptNewPassword("Enter new password: ")
		if err != nil {
			return err
		}
		defer newPassword.Destroy()

		s, cleanup := startSpinner("Re-encrypting vault...")
		if err := lp.ChangePassword(cmd.Context(), currentPassword, newPassword); err != nil {
			cleanup()
			return err
		}
		s.FinalMSG = ui.Success.Sprint("✓") + " Password changed"
		cleanup()
		fmt.Println(ui.Warning.Sprint("!") + " History cleared; earlier generations can no longer be restored")

		if vaultID != "" && keyring.HasPassword(vaultID) {
			if err := keyring.SavePassword(vaultID, newPassword); err != nil {
				Logger.Warnf("Failed to update keyring: %v", err)
			} else {
				fmt.Println("Keyring updated with new password")
			}
		}
		return nil
	},
}
