package usecase

import (
	"context"
	"sync"

	"github.com/bnema/permstore/internal/application/port"
	"github.com/bnema/permstore/internal/domain/entity"
	"github.com/bnema/permstore/internal/logging"
)

// HandlePermissionUseCase answers a site's permission request.
// It implements the request strategy:
// - Stored ALLOW / BLOCK (including inherited ones): answer without asking
// - UNKNOWN or PROMPT: ask the prompter, then remember the answer
// - "Always"/"Never" answers are persistent, one-off answers last the session
type HandlePermissionUseCase struct {
	perms      *SitePermissionsUseCase
	prompter   port.PermissionPrompter
	prompterMu sync.RWMutex
}

// NewHandlePermissionUseCase creates a new permission handling use case.
func NewHandlePermissionUseCase(
	perms *SitePermissionsUseCase,
	prompter port.PermissionPrompter,
) *HandlePermissionUseCase {
	return &HandlePermissionUseCase{
		perms:    perms,
		prompter: prompter,
	}
}

// SetPrompter replaces the prompter, e.g. once a terminal is attached.
func (uc *HandlePermissionUseCase) SetPrompter(prompter port.PermissionPrompter) {
	uc.prompterMu.Lock()
	defer uc.prompterMu.Unlock()
	uc.prompter = prompter
}

func (uc *HandlePermissionUseCase) getPrompter() port.PermissionPrompter {
	uc.prompterMu.RLock()
	defer uc.prompterMu.RUnlock()
	return uc.prompter
}

// HandlePermissionRequest returns the state the request resolves to.
// The result is ALLOW, ALLOW_COOKIES_FOR_SESSION or BLOCK.
func (uc *HandlePermissionUseCase) HandlePermissionRequest(
	ctx context.Context,
	origin string,
	kind entity.PermissionKind,
) (entity.PermissionState, error) {
	ctx = logging.WithOrigin(logging.WithComponent(ctx, "permission"), origin)
	log := logging.FromContext(ctx).With().Str("kind", string(kind)).Logger()

	if origin == "" {
		log.Warn().Msg("permission request with empty origin, blocking")
		return entity.StateBlock, nil
	}

	stored, err := uc.perms.Get(ctx, origin, kind)
	if err != nil {
		return entity.StateBlock, err
	}

	switch stored.State {
	case entity.StateAllow, entity.StateAllowCookiesForSession:
		log.Debug().Str("scope", string(stored.Scope)).Msg("using stored permission: allowed")
		return stored.State, nil
	case entity.StateBlock:
		log.Debug().Str("scope", string(stored.Scope)).Msg("using stored permission: blocked")
		return entity.StateBlock, nil
	}

	prompter := uc.getPrompter()
	if prompter == nil {
		log.Warn().Msg("no prompter available, blocking")
		return entity.StateBlock, nil
	}

	answer, err := prompter.PromptPermission(ctx, origin, kind)
	if err != nil {
		log.Debug().Err(err).Msg("prompt dismissed, blocking")
		return entity.StateBlock, nil
	}

	state := entity.StateBlock
	if answer.Allowed {
		state = entity.StateAllow
	}
	scope := entity.ScopeSession
	if answer.Persistent {
		scope = entity.ScopePersistent
	}

	log.Debug().Str("state", state.String()).Str("scope", string(scope)).Msg("user answered permission prompt")

	if err := uc.perms.Set(ctx, origin, kind, state, scope); err != nil {
		log.Warn().Err(err).Msg("failed to remember permission answer")
	}
	return state, nil
}
