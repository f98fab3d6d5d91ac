package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var compactCmd = &cobra.Command{
	Use:   "compact",
	Short: "Compact the history database",
	Long: `Rewrites the history database to reclaim the space left by pruned
generations. Does not require a password.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lp, err := openVault()
		if err != nil {
			return err
		}
		defer lp.Close()

		sizeBefore := fileSize(lp.HistoryPath())

		if err := lp.Compact(cmd.Context()); err != nil {
			return err
		}

		sizeAfter := fileSize(lp.HistoryPath())
		fmt.Printf("Compacted: %s -> %s\n", formatSize(sizeBefore), formatSize(sizeAfter))
		return nil
	},
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
