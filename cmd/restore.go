package cmd

import (
	"fmt"
	"strconv"

	lperrors "github.com/illarion/lockpass/internal/errors"
	"github.com/illarion/lockpass/internal/ui"
	"github.com/spf13/cobra"
)

// parseSeq parses a generation number argument.
func parseSeq(arg string) (uint64, error) {
	seq, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || seq == 0 {
		return 0, fmt.Errorf("%w: invalid generation %q", lperrors.ErrInput, arg)
	}
	return seq, nil
}

var restoreCmd = &cobra.Command{
	Use:   "restore SEQ",
	Short: "Replace the vault contents with an archived generation",
	Long: `Restores generation SEQ (see 'lockpass history'). The current
contents are archived first, so a restore can be undone.

A password change clears the history, so 'lockpass passwd' cannot be
undone with restore.`,
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

		s, cleanup := startSpinner("Restoring...")
		defer cleanup()

		if err := lp.Restore(cmd.Context(), password, seq); err != nil {
			return err
		}

		s.FinalMSG = fmt.Sprintf("%s Restored generation %d %s",
			ui.Success.Sprint("✓"), seq, ui.Muted.Sprint("previous contents archived"))
		return nil
	},
}
