package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/git-pkgs/versioncheck/internal/semver"
)

func (c *CLI) newCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare INSTALLED LATEST [CANARY]",
		Short: "Classify an installed version against the registry's latest",
		Long: `Prints one of: up-to-date, upgrade-available, stable-available,
canary-available, newer.`,
		Example: `  versioncheck compare 16.1.0-canary.16 16.0.10 16.1.0-canary.20
  versioncheck compare 19.2.1 19.2.3`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(_ *cobra.Command, args []string) error {
			canary := ""
			if len(args) == 3 {
				canary = args[2]
			}
			_, err := fmt.Fprintln(c.stdout, semver.Compare(args[0], args[1], canary))
			return err
		},
	}
}
