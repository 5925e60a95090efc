package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/permstore/internal/cli/styles"
	"github.com/bnema/permstore/internal/infrastructure/config"
	"github.com/bnema/permstore/internal/logging"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or reset the configuration",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, err := config.GetConfigFile()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as TOML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		mgr, err := config.NewManager()
		if err != nil {
			return err
		}
		if err := mgr.Load(); err != nil {
			return err
		}
		data, err := config.EncodeConfig(mgr.Get())
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configResetForce bool

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Overwrite the config file with the defaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, err := config.GetConfigFile()
		if err != nil {
			return err
		}
		if !configResetForce {
			return fmt.Errorf("this overwrites %s; rerun with --force", path)
		}
		if err := config.WriteConfig(config.DefaultConfig(), path); err != nil {
			return err
		}
		// No app is built for config commands; log from the environment.
		log := logging.NewFromEnv()
		log.Debug().Str("path", path).Msg("config reset to defaults")
		theme := styles.NewTheme(config.DefaultConfig())
		fmt.Fprintf(cmd.OutOrStdout(), "%s wrote %s\n", theme.SuccessStyle.Render(styles.IconCheck), path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configPathCmd, configShowCmd, configResetCmd)
	configResetCmd.Flags().BoolVarP(&configResetForce, "force", "f", false, "overwrite without asking")
}
