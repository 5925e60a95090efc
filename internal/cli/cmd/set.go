package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/permstore/internal/cli/styles"
	"github.com/bnema/permstore/internal/domain/entity"
	urlutil "github.com/bnema/permstore/internal/domain/url"
)

var (
	setSession    bool
	setPersistent bool
	setExpire     time.Duration
)

var setCmd = &cobra.Command{
	Use:   "set <uri> <kind> <state>",
	Short: "Store a permission decision for an origin",
	Long: `Store a permission decision for the origin of <uri>.

<state> is a state name (allow, block, prompt, allow-session-cookies, unknown)
or its numeric code. Setting "unknown" removes the decision.

Examples:
  permstore set https://example.com camera allow
  permstore set https://example.com popup block --session
  permstore set https://example.com geo allow --expire 1h`,
	Args: cobra.ExactArgs(3),
	RunE: runSet,
}

func init() {
	rootCmd.AddCommand(setCmd)
	setCmd.Flags().BoolVar(&setSession, "session", false, "drop the decision when the store is reopened")
	setCmd.Flags().BoolVar(&setPersistent, "persistent", false, "keep the decision across sessions")
	setCmd.Flags().DurationVar(&setExpire, "expire", 0, "expire the decision after this duration")
	setCmd.MarkFlagsMutuallyExclusive("session", "persistent", "expire")
}

func runSet(cmd *cobra.Command, args []string) error {
	a, err := GetApp()
	if err != nil {
		return err
	}
	ctx := a.Ctx()
	uri, kind := urlutil.Normalize(args[0]), entity.PermissionKind(args[1])

	state, err := parseState(args[2])
	if err != nil {
		return err
	}

	if setExpire > 0 {
		err = a.Permissions.SetWithExpiry(ctx, uri, kind, state, time.Now().Add(setExpire))
	} else {
		scope := a.DefaultScope()
		switch {
		case setSession:
			scope = entity.ScopeSession
		case setPersistent:
			scope = entity.ScopePersistent
		}
		err = a.Permissions.Set(ctx, uri, kind, state, scope)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s %s\n",
		a.Theme.SuccessStyle.Render(styles.IconCheck), uri, kind, a.Theme.RenderState(state))
	return nil
}

// parseState accepts a state name or its numeric code.
func parseState(raw string) (entity.PermissionState, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if code, err := strconv.Atoi(raw); err == nil {
		return entity.PermissionState(code), nil
	}
	return entity.ParsePermissionState(raw)
}
