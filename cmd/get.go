package cmd

import (
	"fmt"

	"github.com/illarion/lockpass/internal/ui"
	"github.com/illarion/lockpass/internal/vault"
	"github.com/spf13/cobra"
)

var getShow bool

func init() {
	getCmd.Flags().BoolVar(&getShow, "show", false, "print the password instead of masking it")
}

var getCmd = &cobra.Command{
	Use:   "get NAME",
	Short: "Show a record",
	Long: `Shows the record with the given name. The password is masked unless
--show is given.`,
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

		_, cleanup := startSpinner("Decrypting vault...")
		record, err := lp.GetRecord(password, args[0])
		cleanup()
		if err != nil {
			return err
		}

		printRecord(record, getShow)
		return nil
	},
}

func printRecord(r vault.Record, reveal bool) {
	secret := "********"
	if reveal {
		secret = ui.Secret.Sprint(r.Password)
	}

	fmt.Printf("  %-10s %s\n", "Name:", ui.Highlight.Sprint(r.Name))
	fmt.Printf("  %-10s %s\n", "Username:", r.Username)
	fmt.Printf("  %-10s %s\n", "Password:", secret)
	if r.URL != nil {
		fmt.Printf("  %-10s %s\n", "URL:", *r.URL)
	}
	if r.Notes != nil {
		fmt.Printf("  %-10s %s\n", "Notes:", *r.Notes)
	}
	fmt.Printf("  %-10s %s\n", "Updated:", r.UpdatedAt)
	fmt.Printf("  %-10s %s\n", "ID:", ui.Muted.Sprint(r.ID))

	if !reveal {
		fmt.Println()
		fmt.Println("Use " + ui.Code.Sprint("--show") + " to reveal the password")
	}
}
