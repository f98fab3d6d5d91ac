package cmd

import (
	"fmt"
	"time"

	"github.com/illarion/lockpass/internal/ui"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived generations",
	Long: `Lists the previous versions of the vault kept in the history
database, oldest first. No password is required.

Use 'lockpass diff SEQ' to compare a generation with the current vault
and 'lockpass restore SEQ' to bring it back.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lp, err := openVault()
		if err != nil {
			return err
		}
		defer lp.Close()

		gens, err := lp.History(cmd.Context())
		if err != nil {
			return err
		}

		if len(gens) == 0 {
			fmt.Println("No history")
			if settings.Config.History.Keep == 0 {
				fmt.Println(ui.Muted.Sprint("history is disabled in " + settings.ConfigPath))
			}
			return nil
		}

		fmt.Printf("%5s  %-20s  %7s  %-10s  %s\n", "SEQ", "SAVED", "RECORDS", "SIZE", "REASON")
		for _, g := range gens {
			fmt.Printf("%5d  %-20s  %7d  %-10s  %s\n",
				g.Seq,
				g.SavedAt.Local().Format(time.DateTime),
				g.Records,
				formatSize(int64(g.Size)),
				g.Reason,
			)
		}
		return nil
	},
}
