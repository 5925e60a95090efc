package entity

import (
	"errors"
	"fmt"
	"time"
)

// PermissionKind identifies a site permission (e.g. "camera", "cookie").
type PermissionKind string

const (
	// PermissionKindCamera represents camera access permission.
	PermissionKindCamera PermissionKind = "camera"

	// PermissionKindCookie represents cookie storage permission.
	PermissionKindCookie PermissionKind = "cookie"

	// PermissionKindDesktopNotification represents web notification permission.
	PermissionKindDesktopNotification PermissionKind = "desktop-notification"

	// PermissionKindGeolocation represents geolocation permission.
	PermissionKindGeolocation PermissionKind = "geo"

	// PermissionKindImage represents image loading permission.
	PermissionKindImage PermissionKind = "image"

	// PermissionKindIndexedDB represents offline storage permission.
	PermissionKindIndexedDB PermissionKind = "indexedDB"

	// PermissionKindInstall represents add-on installation permission.
	PermissionKindInstall PermissionKind = "install"

	// PermissionKindMicrophone represents microphone access permission.
	PermissionKindMicrophone PermissionKind = "microphone"

	// PermissionKindPopup represents popup window permission.
	PermissionKindPopup PermissionKind = "popup"

	// PermissionKindScreen represents screen sharing permission.
	PermissionKindScreen PermissionKind = "screen"
)

// PermissionState is the decision stored for a permission.
// Values match the integer codes persisted in moz_perms.permission.
type PermissionState int

const (
	StateUnknown                PermissionState = 0
	StateAllow                  PermissionState = 1
	StateBlock                  PermissionState = 2
	StatePrompt                 PermissionState = 3
	StateAllowCookiesForSession PermissionState = 8
)

func (s PermissionState) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateAllow:
		return "allow"
	case StateBlock:
		return "block"
	case StatePrompt:
		return "prompt"
	case StateAllowCookiesForSession:
		return "allow-session-cookies"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ParsePermissionState converts a state name (as printed by String) to a state.
func ParsePermissionState(name string) (PermissionState, error) {
	for _, s := range []PermissionState{
		StateUnknown, StateAllow, StateBlock, StatePrompt, StateAllowCookiesForSession,
	} {
		if s.String() == name {
			return s, nil
		}
	}
	return StateUnknown, fmt.Errorf("%w: unknown state name %q", ErrInvalidState, name)
}

// PermissionScope tells whether a decision outlives the current session.
type PermissionScope string

const (
	// ScopePersistent decisions survive a store restart.
	ScopePersistent PermissionScope = "persistent"

	// ScopeSession decisions are dropped when the store is reopened.
	ScopeSession PermissionScope = "session"
)

// ExpireType is the persisted expiry policy of a record.
type ExpireType int

const (
	ExpireNever   ExpireType = 0
	ExpireSession ExpireType = 1
	ExpireTime    ExpireType = 2
)

// PermissionRecord stores a permission decision for a specific origin and kind.
type PermissionRecord struct {
	Origin       string // Serialized origin including the attribute suffix
	Kind         PermissionKind
	State        PermissionState
	ExpireType   ExpireType
	ExpireTime   time.Time // Only meaningful for ExpireTime
	ModifiedTime time.Time
}

// Scope derives the user-facing scope from the expiry policy.
func (r *PermissionRecord) Scope() PermissionScope {
	if r.ExpireType == ExpireSession {
		return ScopeSession
	}
	return ScopePersistent
}

// IsExpired returns true if a time-limited record has lapsed at now.
func (r *PermissionRecord) IsExpired(now time.Time) bool {
	return r.ExpireType == ExpireTime && !r.ExpireTime.After(now)
}

// PermissionResult is what a lookup reports for one kind.
type PermissionResult struct {
	Kind  PermissionKind
	State PermissionState
	Scope PermissionScope
}

// UnknownResult is returned when no applicable entry exists.
func UnknownResult(kind PermissionKind) PermissionResult {
	return PermissionResult{Kind: kind, State: StateUnknown, Scope: ScopePersistent}
}

// ResultFromRecord projects a stored record onto a lookup result.
func ResultFromRecord(r *PermissionRecord) PermissionResult {
	return PermissionResult{Kind: r.Kind, State: r.State, Scope: r.Scope()}
}

// ExpireTypeForScope maps a scope to its persisted expiry policy.
func ExpireTypeForScope(scope PermissionScope) ExpireType {
	if scope == ScopeSession {
		return ExpireSession
	}
	return ExpireNever
}

var (
	ErrInvalidState      = errors.New("invalid permission state")
	ErrInvalidOrigin     = errors.New("invalid origin")
	ErrUnsupportedScheme = errors.New("scheme cannot carry site permissions")
	ErrStoreClosed       = errors.New("permission store is closed")
)

// InvalidStateError reports a state outside the kind's available states.
type InvalidStateError struct {
	Kind  PermissionKind
	State PermissionState
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid permission state %s for %q", e.State, e.Kind)
}

func (e *InvalidStateError) Unwrap() error {
	return ErrInvalidState
}

// PermissionKindsToStrings converts kinds to strings for logging.
func PermissionKindsToStrings(kinds []PermissionKind) []string {
	result := make([]string, len(kinds))
	for i, k := range kinds {
		result[i] = string(k)
	}
	return result
}
