package cmd

import (
	"fmt"

	"github.com/illarion/lockpass/internal/ui"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List records",
	Args:    cobra.NoArgs,
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
		records, err := lp.ListRecords(password)
		cleanup()
		if err != nil {
			return err
		}

		if len(records) == 0 {
			fmt.Println("No records")
			fmt.Println("Use " + ui.Code.Sprint("lockpass add NAME") + " to add one")
			return nil
		}

		for _, r := range records {
			fmt.Printf("%s (%s) updated %s\n", ui.Highlight.Sprint(r.Name), r.Username, r.UpdatedAt)
		}
		return nil
	},
}
