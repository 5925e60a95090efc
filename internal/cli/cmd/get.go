package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bnema/permstore/internal/cli"
	"github.com/bnema/permstore/internal/cli/styles"
	"github.com/bnema/permstore/internal/domain/entity"
	urlutil "github.com/bnema/permstore/internal/domain/url"
)

// listConcurrency bounds parallel lookups; SQLite serializes them anyway
// but history-backed resolution can overlap.
const listConcurrency = 4

var getCmd = &cobra.Command{
	Use:   "get <uri> <kind>",
	Short: "Show the decision that applies to an origin",
	Long: `Show the decision that applies to the origin of <uri> for <kind>.

Kinds that are not exact-origin fall back to the nearest parent host up to
the registrable domain.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := GetApp()
		if err != nil {
			return err
		}
		result, err := a.Permissions.Get(a.Ctx(), urlutil.Normalize(args[0]), entity.PermissionKind(args[1]))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
			result.Kind, a.Theme.RenderState(result.State), a.Theme.RenderScope(result.Scope))
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list <uri>...",
	Short: "List the decisions stored for one or more origins",
	Long: `List the decisions stored at exactly the origin of each <uri>, in the
order they were first set. Decisions inherited from parent domains are not
listed; use "get" to resolve one.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runList,
}

var allKind string

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "List every stored decision",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := GetApp()
		if err != nil {
			return err
		}
		records, err := a.Permissions.All(a.Ctx())
		if err != nil {
			return err
		}
		if allKind != "" {
			records = lo.Filter(records, func(r *entity.PermissionRecord, _ int) bool {
				return r.Kind == entity.PermissionKind(allKind)
			})
		}
		renderRecords(cmd.OutOrStdout(), a.Theme, records, time.Now())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(getCmd, listCmd, allCmd)
	allCmd.Flags().StringVar(&allKind, "kind", "", "only show this permission kind")
}

type uriPermissions struct {
	uri     string
	results []entity.PermissionResult
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := GetApp()
	if err != nil {
		return err
	}

	listed, err := listByURI(a.Ctx(), a, lo.Map(args, func(arg string, _ int) string {
		return urlutil.Normalize(arg)
	}))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	t := a.Theme
	for i, entry := range listed {
		if len(args) > 1 {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintln(out, t.Title.Render(styles.IconGlobe+" "+entry.uri))
		}
		if len(entry.results) == 0 {
			fmt.Fprintln(out, t.Subtle.Render("no permissions"))
			continue
		}
		for _, r := range entry.results {
			fmt.Fprintf(out, "%-22s %s %s\n", r.Kind, t.RenderState(r.State), t.RenderScope(r.Scope))
		}
	}
	return nil
}

// listByURI looks every uri up concurrently, keeping argument order.
func listByURI(ctx context.Context, a *cli.App, uris []string) ([]uriPermissions, error) {
	listed := make([]uriPermissions, len(uris))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(listConcurrency)
	for i, uri := range uris {
		g.Go(func() error {
			results, err := a.Permissions.GetAllByURI(gctx, uri)
			if err != nil {
				return fmt.Errorf("%s: %w", uri, err)
			}
			listed[i] = uriPermissions{uri: uri, results: results}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return listed, nil
}

func renderRecords(out io.Writer, t *styles.Theme, records []*entity.PermissionRecord, now time.Time) {
	if len(records) == 0 {
		fmt.Fprintln(out, t.Subtle.Render("No permissions stored."))
		return
	}

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Foreground(t.Text).Padding(0, 1)

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(t.Border)).
		Headers(styles.PermissionTableHeaders()...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, r := range records {
		tbl.Row(styles.PermissionRow(r, now)...)
	}

	fmt.Fprintln(out, tbl.Render())
	fmt.Fprintln(out, t.Subtle.Render(fmt.Sprintf("%d permissions", len(records))))
}
