package port

import (
	"context"

	"github.com/bnema/permstore/internal/domain/entity"
)

// PermissionPromptResult represents the user's answer to a permission prompt.
type PermissionPromptResult struct {
	// Allowed is true if the user chose "Allow" or "Always Allow".
	Allowed bool

	// Persistent is true if the decision should outlive the session
	// ("Always Allow" / "Never Allow").
	Persistent bool
}

// PermissionPrompter asks the user to decide on a permission request.
// This is implemented by the presentation layer (the CLI terminal prompt).
type PermissionPrompter interface {
	// PromptPermission blocks until the user answers or ctx is done.
	PromptPermission(
		ctx context.Context,
		origin string,
		kind entity.PermissionKind,
	) (PermissionPromptResult, error)
}
