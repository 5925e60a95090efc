package styles

import (
	"fmt"
	"time"

	"github.com/bnema/permstore/internal/domain/entity"
)

// StateIcon returns the icon shown next to a permission state.
func StateIcon(state entity.PermissionState) string {
	switch state {
	case entity.StateAllow, entity.StateAllowCookiesForSession:
		return IconUnlock
	case entity.StateBlock:
		return IconLock
	default:
		return IconQuestion
	}
}

// RenderState renders a state name colored by its meaning.
func (t *Theme) RenderState(state entity.PermissionState) string {
	label := StateIcon(state) + " " + state.String()
	switch state {
	case entity.StateAllow, entity.StateAllowCookiesForSession:
		return t.SuccessStyle.Render(label)
	case entity.StateBlock:
		return t.ErrorStyle.Render(label)
	case entity.StatePrompt:
		return t.WarningStyle.Render(label)
	default:
		return t.Subtle.Render(label)
	}
}

// RenderScope renders a scope as a badge.
func (t *Theme) RenderScope(scope entity.PermissionScope) string {
	if scope == entity.ScopeSession {
		return t.BadgeMuted.Render(string(scope))
	}
	return t.Badge.Render(string(scope))
}

// DescribeExpiry is the expiry column text for a record.
func DescribeExpiry(r *entity.PermissionRecord, now time.Time) string {
	switch r.ExpireType {
	case entity.ExpireSession:
		return "end of session"
	case entity.ExpireTime:
		if r.IsExpired(now) {
			return "expired"
		}
		return fmt.Sprintf("in %s", r.ExpireTime.Sub(now).Round(time.Second))
	default:
		return "never"
	}
}
