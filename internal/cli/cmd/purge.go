package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/permstore/internal/cli/styles"
)

var purgeExpiredCmd = &cobra.Command{
	Use:   "purge-expired",
	Short: "Delete time-limited decisions that have lapsed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := GetApp()
		if err != nil {
			return err
		}
		n, err := a.Permissions.PurgeExpired(a.Ctx(), time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %d expired permissions removed\n",
			a.Theme.SuccessStyle.Render(styles.IconClock), n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(purgeExpiredCmd)
}
