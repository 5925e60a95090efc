// Package usecase contains application use cases that orchestrate domain logic.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bnema/permstore/internal/domain/entity"
	"github.com/bnema/permstore/internal/domain/repository"
	"github.com/bnema/permstore/internal/domain/service"
	"github.com/bnema/permstore/internal/logging"
)

// SitePermissionsUseCase reads and writes per-site permission decisions.
//
// Lookups resolve exact-host kinds only at the requested origin. Other kinds
// fall back to the nearest parent host up to the registrable domain, keeping
// scheme, port and isolation attributes.
type SitePermissionsUseCase struct {
	repo  repository.PermissionRepository
	kinds *entity.KindRegistry
	now   func() time.Time
}

// SitePermissionsOption configures a SitePermissionsUseCase.
type SitePermissionsOption func(*SitePermissionsUseCase)

// WithClock overrides time.Now for expiry checks and modification times.
func WithClock(now func() time.Time) SitePermissionsOption {
	return func(uc *SitePermissionsUseCase) {
		uc.now = now
	}
}

// NewSitePermissionsUseCase creates the use case. A nil registry means
// entity.DefaultKindRegistry.
func NewSitePermissionsUseCase(
	repo repository.PermissionRepository,
	kinds *entity.KindRegistry,
	opts ...SitePermissionsOption,
) *SitePermissionsUseCase {
	if kinds == nil {
		kinds = entity.DefaultKindRegistry()
	}
	uc := &SitePermissionsUseCase{
		repo:  repo,
		kinds: kinds,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// ListPermissions returns every registered kind in a stable order.
func (uc *SitePermissionsUseCase) ListPermissions() []entity.PermissionKind {
	return uc.kinds.Kinds()
}

// AvailableStates returns the states a kind accepts, in display order.
func (uc *SitePermissionsUseCase) AvailableStates(kind entity.PermissionKind) []entity.PermissionState {
	return uc.kinds.States(kind)
}

// Set stores state for origin and kind. Setting UNKNOWN removes the entry.
func (uc *SitePermissionsUseCase) Set(
	ctx context.Context,
	rawOrigin string,
	kind entity.PermissionKind,
	state entity.PermissionState,
	scope entity.PermissionScope,
) error {
	return uc.set(ctx, rawOrigin, kind, state, entity.ExpireTypeForScope(scope), time.Time{})
}

// SetWithExpiry stores a decision that lapses at expireAt.
func (uc *SitePermissionsUseCase) SetWithExpiry(
	ctx context.Context,
	rawOrigin string,
	kind entity.PermissionKind,
	state entity.PermissionState,
	expireAt time.Time,
) error {
	if !expireAt.After(uc.now()) {
		return fmt.Errorf("expiry %s is not in the future", expireAt.Format(time.RFC3339))
	}
	return uc.set(ctx, rawOrigin, kind, state, entity.ExpireTime, expireAt)
}

func (uc *SitePermissionsUseCase) set(
	ctx context.Context,
	rawOrigin string,
	kind entity.PermissionKind,
	state entity.PermissionState,
	expireType entity.ExpireType,
	expireAt time.Time,
) error {
	log := logging.FromContext(ctx).With().
		Str("component", "site-permissions").
		Str("origin", rawOrigin).
		Str("kind", string(kind)).
		Logger()

	if err := uc.kinds.ValidateState(kind, state); err != nil {
		log.Debug().Str("state", state.String()).Msg("rejecting state not available for kind")
		return err
	}

	origin, err := entity.ParseOrigin(rawOrigin)
	if err != nil {
		return err
	}

	if state == entity.StateUnknown {
		return uc.repo.Delete(ctx, origin.String(), kind)
	}

	record := &entity.PermissionRecord{
		Origin:       origin.String(),
		Kind:         kind,
		State:        state,
		ExpireType:   expireType,
		ExpireTime:   expireAt,
		ModifiedTime: uc.now(),
	}
	if err := uc.repo.Set(ctx, record); err != nil {
		log.Warn().Err(err).Msg("failed to persist permission")
		return fmt.Errorf("failed to set %s for %s: %w", kind, record.Origin, err)
	}

	log.Debug().Str("state", state.String()).Str("scope", string(record.Scope())).Msg("permission stored")
	return nil
}

// Remove deletes the entry stored at exactly this origin. Missing entries are
// not an error. Origins that cannot carry permissions, such as file: URIs
// migrated verbatim from legacy rows, are deleted by their stored string.
func (uc *SitePermissionsUseCase) Remove(ctx context.Context, rawOrigin string, kind entity.PermissionKind) error {
	origin, err := entity.ParseOrigin(rawOrigin)
	if err != nil {
		raw := strings.TrimSpace(rawOrigin)
		if raw != "" && (errors.Is(err, entity.ErrUnsupportedScheme) || service.IsOpaqueLegacyHost(raw)) {
			logging.FromContext(ctx).Debug().Str("origin", raw).Msg("removing opaque permission entry")
			return uc.repo.Delete(ctx, raw, kind)
		}
		return err
	}
	return uc.repo.Delete(ctx, origin.String(), kind)
}

// Get resolves the decision that applies to origin for kind.
func (uc *SitePermissionsUseCase) Get(
	ctx context.Context,
	rawOrigin string,
	kind entity.PermissionKind,
) (entity.PermissionResult, error) {
	origin, err := entity.ParseOrigin(rawOrigin)
	if err != nil {
		if errors.Is(err, entity.ErrUnsupportedScheme) {
			return entity.UnknownResult(kind), nil
		}
		return entity.UnknownResult(kind), err
	}

	candidates := []entity.Origin{origin}
	if !uc.kinds.ExactHostMatch(kind) {
		for _, host := range service.AncestorHosts(origin.Host) {
			candidates = append(candidates, origin.WithHost(host))
		}
	}

	now := uc.now()
	for _, candidate := range candidates {
		record, err := uc.repo.Get(ctx, candidate.String(), kind)
		if err != nil {
			return entity.UnknownResult(kind), fmt.Errorf("failed to look up %s for %s: %w", kind, candidate, err)
		}
		if record == nil || record.IsExpired(now) {
			continue
		}
		return entity.ResultFromRecord(record), nil
	}
	return entity.UnknownResult(kind), nil
}

// GetAllByURI lists the registered kinds with a decision stored at exactly
// this origin, in the order they were first set. Parent-domain entries are
// not included. Origins that cannot carry permissions yield an empty list.
func (uc *SitePermissionsUseCase) GetAllByURI(ctx context.Context, rawURI string) ([]entity.PermissionResult, error) {
	origin, err := entity.ParseOrigin(rawURI)
	if err != nil {
		if errors.Is(err, entity.ErrUnsupportedScheme) {
			return []entity.PermissionResult{}, nil
		}
		return nil, err
	}

	records, err := uc.repo.GetAll(ctx, origin.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions for %s: %w", origin, err)
	}

	now := uc.now()
	results := make([]entity.PermissionResult, 0, len(records))
	for _, record := range records {
		if !uc.kinds.IsRegistered(record.Kind) || record.IsExpired(now) || record.State == entity.StateUnknown {
			continue
		}
		results = append(results, entity.ResultFromRecord(record))
	}
	return results, nil
}

// All returns every stored, unexpired record.
func (uc *SitePermissionsUseCase) All(ctx context.Context) ([]*entity.PermissionRecord, error) {
	records, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	live := records[:0]
	for _, r := range records {
		if !r.IsExpired(now) {
			live = append(live, r)
		}
	}
	return live, nil
}

// RemoveAll clears the store.
func (uc *SitePermissionsUseCase) RemoveAll(ctx context.Context) error {
	logging.FromContext(ctx).Info().Msg("removing all site permissions")
	return uc.repo.DeleteAll(ctx)
}

// PurgeExpired deletes time-limited entries that lapsed at or before now.
func (uc *SitePermissionsUseCase) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	n, err := uc.repo.DeleteExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired permissions: %w", err)
	}
	if n > 0 {
		logging.FromContext(ctx).Debug().Int64("count", n).Msg("purged expired permissions")
	}
	return n, nil
}
