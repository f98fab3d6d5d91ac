package cmd

import (
	"fmt"

	lperrors "github.com/illarion/lockpass/internal/errors"
	"github.com/illarion/lockpass/internal/keyring"
	"github.com/illarion/lockpass/internal/ui"
	"github.com/spf13/cobra"
)

// KeyringCmd groups the OS keyring commands.
var KeyringCmd = &cobra.Command{
	Use:   "keyring",
	Short: "Manage the master password cached in the OS keyring",
	Long: `Stores the master password in the OS keyring (Keychain, Secret
Service or Windows Credential Manager) so commands stop prompting for it.
LOCKPASS_PASSWORD still takes precedence.`,
}

func init() {
	KeyringCmd.AddCommand(keyringSaveCmd)
	KeyringCmd.AddCommand(keyringDeleteCmd)
	KeyringCmd.AddCommand(keyringStatusCmd)
}

var keyringSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the master password to the OS keyring",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lp, err := openVault()
		if err != nil {
			return err
		}
		defer lp.Close()

		if !lp.Exists() {
			return lperrors.ErrNotInitialized
		}

		password, err := GetPassword("Enter password: ")
		if err != nil {
			return err
		}
		defer password.Destroy()

		// Verify password is correct
		_, cleanup := startSpinner("Verifying password...")
		err = lp.VerifyPassword(password)
		cleanup()
		if err != nil {
			return err
		}

		vaultID, err := lp.GetOrCreateVaultID()
		if err != nil {
			return err
		}

		if err := keyring.SavePassword(vaultID, password); err != nil {
			return fmt.Errorf("failed to save to keyring: %w", err)
		}

		fmt.Println(ui.Success.Sprint("✓") + " Password saved to keyring")
		return nil
	},
}

var keyringDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the master password from the OS keyring",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lp, err := openVault()
		if err != nil {
			return err
		}
		defer lp.Close()

		vaultID, err := lp.GetVaultID()
		if err != nil || !keyring.HasPassword(vaultID) {
			fmt.Println("No password stored in keyring")
			return nil
		}

		if err := keyring.DeletePassword(vaultID); err != nil {
			return fmt.Errorf("failed to remove from keyring: %w", err)
		}

		fmt.Println(ui.Success.Sprint("✓") + " Password removed from keyring")
		return nil
	},
}

var keyringStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a password is stored in the OS keyring",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lp, err := openVault()
		if err != nil {
			return err
		}
		defer lp.Close()

		vaultID, err := lp.GetVaultID()
		if err == nil && keyring.HasPassword(vaultID) {
			fmt.Println("Password: stored in keyring")
		} else {
			fmt.Println("Password: not stored")
		}
		return nil
	},
}
