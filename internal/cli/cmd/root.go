// Package cmd provides Cobra CLI commands for permstore.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/permstore/internal/cli"
	"github.com/bnema/permstore/internal/domain/build"
)

var (
	app       *cli.App
	buildInfo build.Info
	overrides cli.Overrides

	rootCmd = &cobra.Command{
		Use:   "permstore",
		Short: "Inspect and edit per-site browser permissions",
		Long: `permstore manages the per-site permission decisions of a browser profile.

Decisions are stored per origin (scheme, host, port) and permission kind.
Kinds such as camera or geolocation apply only to the exact origin; others
such as cookie or popup are inherited by subdomains up to the registrable
domain.

Legacy host-keyed databases are upgraded on first use, using browsing
history to decide which schemes and ports each host was reached under.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: initApp,
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if app != nil {
				_ = app.Close()
				app = nil
			}
		},
	}
)

// needsApp reports whether cmd uses the stores. Help, completion and config
// commands must work without a usable database or a valid config.
func needsApp(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "completion", "version", "config":
			return false
		}
	}
	return true
}

func initApp(cmd *cobra.Command, _ []string) error {
	if !needsApp(cmd) {
		return nil
	}

	var err error
	app, err = cli.NewApp(overrides)
	if err != nil {
		return fmt.Errorf("initialize app: %w", err)
	}
	app.BuildInfo = buildInfo
	return nil
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&overrides.DatabasePath, "db", "", "permission database path (default from config)")
	flags.StringVar(&overrides.PlacesPath, "places", "", "history database path (default from config)")
	flags.StringVar(&overrides.LogLevel, "log-level", "", "log level: trace, debug, info, warn, error")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// GetApp returns the initialized app (for use by subcommands).
func GetApp() (*cli.App, error) {
	if app == nil {
		return nil, errors.New("app not initialized")
	}
	return app, nil
}

// SetBuildInfo sets the build information (called from main.go before Execute).
func SetBuildInfo(info build.Info) {
	buildInfo = info
}
