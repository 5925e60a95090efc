package cmd

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/bnema/permstore/internal/cli/model"
)

var manageCmd = &cobra.Command{
	Use:   "manage",
	Short: "Browse and edit stored decisions interactively",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := GetApp()
		if err != nil {
			return err
		}
		if !isInteractive(cmd) {
			return errors.New("manage needs an interactive terminal; use \"all\" instead")
		}

		m := model.NewManageModel(a.Ctx(), a.Theme, a.Permissions)
		_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(manageCmd)
}
