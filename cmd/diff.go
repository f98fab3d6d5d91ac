package cmd

import (
	"fmt"
	"strings"

	"github.com/illarion/lockpass/internal/ui"
	"github.com/spf13/cobra"
)

var diffShow bool

func init() {
	diffCmd.Flags().BoolVar(&diffShow, "show", false, "show passwords instead of masking them")
}

var diffCmd = &cobra.Command{
	Use:   "diff SEQ",
	Short: "Compare an archived generation with the current vault",
	Long: `Shows the records added, removed or changed since generation SEQ.
Passwords are masked unless --show is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seq, err := parseSeq(args[0])
		if err != nil {
			return err
		}

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

		_, cleanup := startSpinner("Decrypting...")
		out, err := lp.Diff(cmd.Context(), password, seq, diffShow)
		cleanup()
		if err != nil {
			return err
		}

		if out == "" {
			fmt.Printf("No differences between generation %d and the current vault\n", seq)
			return nil
		}
		fmt.Print(colorizeDiff(out))
		return nil
	},
}

func colorizeDiff(diff string) string {
	var b strings.Builder
	for _, line := range strings.SplitAfter(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
			b.WriteString(ui.Info.Sprint(line))
		case strings.HasPrefix(line, "-"):
			b.WriteString(ui.Error.Sprint(line))
		case strings.HasPrefix(line, "+"):
			b.WriteString(ui.Success.Sprint(line))
		default:
			b.WriteString(line)
		}
	}
	return b.String()
}
