package cmd

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/bnema/permstore/internal/domain/entity"
)

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List the permission kinds",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := GetApp()
		if err != nil {
			return err
		}
		t := a.Theme
		out := cmd.OutOrStdout()
		registry := entity.DefaultKindRegistry()

		for _, kind := range a.Permissions.ListPermissions() {
			matching := "inherited by subdomains"
			if registry.ExactHostMatch(kind) {
				matching = "exact origin only"
			}
			states := lo.Map(a.Permissions.AvailableStates(kind), func(s entity.PermissionState, _ int) string {
				return s.String()
			})
			fmt.Fprintf(out, "%-22s %s  %s\n",
				t.Highlight.Render(string(kind)),
				t.Subtle.Render(matching),
				strings.Join(states, ", "))
		}
		return nil
	},
}

var statesCmd = &cobra.Command{
	Use:   "states <kind>",
	Short: "List the states a permission kind accepts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := GetApp()
		if err != nil {
			return err
		}
		for _, s := range a.Permissions.AvailableStates(entity.PermissionKind(args[0])) {
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", int(s), s)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(kindsCmd, statesCmd)
}
