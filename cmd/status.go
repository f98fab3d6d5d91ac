package cmd

import (
	"errors"
	"fmt"
	"time"

	lperrors "github.com/illarion/lockpass/internal/errors"
	"github.com/illarion/lockpass/internal/keyring"
	"github.com/illarion/lockpass/internal/ui"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show vault status without a password",
	Long: `Shows the vault location, size, encryption settings and history.
Reads only the unencrypted header; no password is required.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lp, err := openVault()
		if err != nil {
			return err
		}
		defer lp.Close()

		status, err := lp.Status(cmd.Context())
		if errors.Is(err, lperrors.ErrNotInitialized) {
			fmt.Println("No vault found at " + ui.Path.Sprint(lp.Path()))
			fmt.Println("Run " + ui.Code.Sprint("lockpass init") + " to create one")
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Println(ui.Info.Sprint("Vault") + " " + ui.Path.Sprint(status.Path))
		fmt.Println()
		fmt.Printf("  %-16s %s\n", "Size:", formatSize(status.Size))
		fmt.Printf("  %-16s %s\n", "Modified:", status.Modified.Format(time.RFC3339))
		fmt.Printf("  %-16s %d\n", "Format version:", status.Version)
		fmt.Printf("  %-16s %s\n", "Encryption:", status.Algorithm)
		fmt.Printf("  %-16s %s\n", "Key derivation:", status.Params)

		if status.VaultID == "" {
			fmt.Printf("  %-16s %s\n", "History:", ui.Muted.Sprint("none"))
			return nil
		}

		if !status.LastSaved.IsZero() {
			fmt.Printf("  %-16s %s\n", "Last saved:", status.LastSaved.Format(time.RFC3339))
		}

		history := fmt.Sprintf("%d generations", status.Generations)
		if status.Generations > 0 {
			history += " " + ui.Muted.Sprintf("last archived %s", status.LastArchived.Format(time.RFC3339))
		}
		fmt.Printf("  %-16s %s\n", "History:", history)

		keyringState := "not stored"
		if keyring.HasPassword(status.VaultID) {
			keyringState = ui.Success.Sprint("stored")
		}
		fmt.Printf("  %-16s %s\n", "Keyring:", keyringState)
		fmt.Printf("  %-16s %s\n", "Vault ID:", ui.Muted.Sprint(status.VaultID))
		return nil
	},
}
