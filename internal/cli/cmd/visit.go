package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/permstore/internal/cli/styles"
	urlutil "github.com/bnema/permstore/internal/domain/url"
)

var visitAt string

var visitCmd = &cobra.Command{
	Use:   "visit <url>...",
	Short: "Record history visits",
	Long: `Record visits in the history database.

History tells the legacy migration which schemes and ports a host was
reached under, so visits should be recorded before migrating.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := GetApp()
		if err != nil {
			return err
		}

		at := time.Now()
		if visitAt != "" {
			if at, err = time.Parse(time.RFC3339, visitAt); err != nil {
				return fmt.Errorf("invalid --at: %w", err)
			}
		}

		for _, arg := range args {
			u := urlutil.Normalize(arg)
			if err := a.History.AddVisit(a.Ctx(), u, at); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", a.Theme.SuccessStyle.Render(styles.IconCheck), u)
		}
		return nil
	},
}

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded visits, most recent first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := GetApp()
		if err != nil {
			return err
		}
		visits, err := a.History.Visits(a.Ctx(), historyLimit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(visits) == 0 {
			fmt.Fprintln(out, a.Theme.Subtle.Render("No visits recorded."))
			return nil
		}
		for _, v := range visits {
			fmt.Fprintf(out, "%s  %s\n", a.Theme.Subtle.Render(v.VisitedAt.Format(time.DateTime)), v.URL)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(visitCmd, historyCmd)
	visitCmd.Flags().StringVar(&visitAt, "at", "", "visit time (RFC 3339, default now)")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum visits to list (0 for all)")
}
