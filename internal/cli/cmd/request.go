package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/permstore/internal/cli"
	"github.com/bnema/permstore/internal/domain/entity"
	urlutil "github.com/bnema/permstore/internal/domain/url"
)

var requestNoPrompt bool

var requestCmd = &cobra.Command{
	Use:   "request <uri> <kind>",
	Short: "Resolve a permission request as a browser would",
	Long: `Resolve a site's permission request.

A stored allow or block decision, including one inherited from a parent
domain, answers immediately. Otherwise a prompt asks for a decision:
"always"/"never" answers are stored persistently, one-off answers for the
session. Without a terminal, or with --no-prompt, the request is blocked.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := GetApp()
		if err != nil {
			return err
		}
		if !requestNoPrompt {
			a.Requests.SetPrompter(cli.NewTerminalPrompter(a.Theme))
		}

		state, err := a.Requests.HandlePermissionRequest(a.Ctx(), urlutil.Normalize(args[0]), entity.PermissionKind(args[1]))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), a.Theme.RenderState(state))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(requestCmd)
	requestCmd.Flags().BoolVar(&requestNoPrompt, "no-prompt", false, "block instead of prompting when undecided")
}
