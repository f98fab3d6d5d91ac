package cmd

import (
	"fmt"
	"os"

	"github.com/illarion/lockpass/internal/passgen"
	"github.com/illarion/lockpass/internal/ui"
	"github.com/spf13/cobra"
)

var genCmdOpts generatorFlags

func init() {
	genCmdOpts.register(genCmd)
}

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate a password without touching the vault",
	Long: `Prints a random password. Every character class in use is
represented at least once. Look-alike characters are left out unless
--allow-ambiguous is given.

The password goes to stdout and its strength to stderr, so the output
can be piped:

  lockpass gen --len 32 | xclip`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := genCmdOpts.generate(cmd)
		if err != nil {
			return err
		}

		fmt.Println(password)

		strength := passgen.Estimate(password)
		fmt.Fprintf(os.Stderr, "Strength: %s %s\n", strength.Label(), ui.Muted.Sprintf("%.0f bits, cracked in %s", strength.Entropy, strength.CrackTime))
		return nil
	},
}
