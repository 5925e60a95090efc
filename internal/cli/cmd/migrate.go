package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/permstore/internal/cli/styles"
	"github.com/bnema/permstore/internal/domain/entity"
	"github.com/bnema/permstore/internal/infrastructure/persistence/sqlite"
)

var migrateStatusOnly bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Upgrade the permission database and report its tables",
	Long: `Apply pending schema migrations, including the upgrade of legacy
host-keyed permissions (moz_hosts) to origin-keyed ones (moz_perms).

With --status, only report the migration state.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().BoolVar(&migrateStatusOnly, "status", false, "report the state without migrating")
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	a, err := GetApp()
	if err != nil {
		return err
	}
	ctx := a.Ctx()
	out := cmd.OutOrStdout()
	t := a.Theme

	state, err := a.Store.State(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %s: %s\n", styles.IconDatabase, a.Store.Path(), state)
	if migrateStatusOnly {
		return nil
	}

	if state.Phase != entity.MigrationDone {
		if state, err = a.Store.Migrate(ctx); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s migrated: %s\n", t.SuccessStyle.Render(styles.IconCheck), state)
	}

	db, err := a.Store.DB(ctx)
	if err != nil {
		return err
	}
	tables, err := sqlite.InspectPermissionTables(ctx, db)
	if err != nil {
		return err
	}
	for _, tbl := range tables {
		fmt.Fprintln(out, describeTable(t, tbl))
	}
	return nil
}

func describeTable(t *styles.Theme, tbl sqlite.TableStatus) string {
	if !tbl.Exists {
		return fmt.Sprintf("  %-20s %s", tbl.Name, t.Subtle.Render("absent"))
	}
	return fmt.Sprintf("  %-20s %d rows", tbl.Name, tbl.Rows)
}
