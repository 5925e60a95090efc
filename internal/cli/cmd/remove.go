package cmd

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/bnema/permstore/internal/cli/styles"
	"github.com/bnema/permstore/internal/domain/entity"
	urlutil "github.com/bnema/permstore/internal/domain/url"
)

var removeCmd = &cobra.Command{
	Use:     "remove <uri> <kind>",
	Aliases: []string{"rm"},
	Short:   "Remove the decision stored at exactly an origin",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := GetApp()
		if err != nil {
			return err
		}
		uri := urlutil.Normalize(args[0])
		if err := a.Permissions.Remove(a.Ctx(), uri, entity.PermissionKind(args[1])); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s removed %s %s\n",
			a.Theme.SuccessStyle.Render(styles.IconTrash), uri, args[1])
		return nil
	},
}

var clearForce bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every stored decision",
	Long: `Remove every stored decision.

Asks for confirmation unless --force is given. Without a terminal, --force
is required.`,
	Args: cobra.NoArgs,
	RunE: runClear,
}

func init() {
	rootCmd.AddCommand(removeCmd, clearCmd)
	clearCmd.Flags().BoolVarP(&clearForce, "force", "f", false, "do not ask for confirmation")
}

func runClear(cmd *cobra.Command, _ []string) error {
	a, err := GetApp()
	if err != nil {
		return err
	}

	if !clearForce {
		if !isInteractive(cmd) {
			return errors.New("refusing to clear without a terminal; use --force")
		}
		final, err := tea.NewProgram(styles.NewConfirm(a.Theme, "Remove every stored permission?")).Run()
		if err != nil {
			return err
		}
		if confirm, ok := final.(styles.ConfirmModel); !ok || !confirm.Result() {
			fmt.Fprintln(cmd.OutOrStdout(), a.Theme.Subtle.Render("Canceled."))
			return nil
		}
	}

	if err := a.Permissions.RemoveAll(a.Ctx()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s all permissions removed\n", a.Theme.SuccessStyle.Render(styles.IconTrash))
	return nil
}
