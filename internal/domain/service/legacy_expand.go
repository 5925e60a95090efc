package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/bnema/permstore/internal/domain/entity"
	"github.com/bnema/permstore/internal/logging"
)

// ErrMalformedLegacyRow marks a moz_hosts row that cannot be migrated.
var ErrMalformedLegacyRow = errors.New("malformed legacy permission row")

// dualSchemes is used for hosts that never show up in history.
var dualSchemes = []entity.SchemePort{{Scheme: "http"}, {Scheme: "https"}}

// LegacyExpander turns host-keyed legacy rows into origin-keyed records.
type LegacyExpander struct {
	resolver *VisitResolver
	now      time.Time
}

// NewLegacyExpander creates an expander. Time-limited rows that lapsed
// before now are dropped.
func NewLegacyExpander(resolver *VisitResolver, now time.Time) *LegacyExpander {
	return &LegacyExpander{resolver: resolver, now: now}
}

// IsOpaqueLegacyHost reports whether a legacy host value is already a full
// URI or a bracketed pseudo-host, which migrate verbatim.
func IsOpaqueLegacyHost(host string) bool {
	if strings.HasPrefix(host, "<") && strings.HasSuffix(host, ">") {
		return true
	}
	if net.ParseIP(strings.Trim(host, "[]")) != nil {
		return false
	}
	return strings.Contains(host, ":")
}

// Expand returns one record per origin the legacy row maps to.
// The result is empty for expired rows.
func (e *LegacyExpander) Expand(ctx context.Context, row *entity.LegacyHostRecord) ([]*entity.PermissionRecord, error) {
	if err := validateLegacyRow(row); err != nil {
		return nil, err
	}

	expireTime := row.ExpireTime
	if row.ExpireType == entity.ExpireTime && !expireTime.After(e.now) {
		return nil, nil
	}

	newRecord := func(origin string) *entity.PermissionRecord {
		return &entity.PermissionRecord{
			Origin:       origin,
			Kind:         entity.PermissionKind(row.Type),
			State:        entity.PermissionState(row.Permission),
			ExpireType:   row.ExpireType,
			ExpireTime:   expireTime,
			ModifiedTime: row.ModificationTime,
		}
	}

	if IsOpaqueLegacyHost(row.Host) {
		return []*entity.PermissionRecord{newRecord(row.Host)}, nil
	}

	host := strings.Trim(strings.ToLower(row.Host), "[]")
	visited, err := e.resolver.Resolve(ctx, host)
	if err != nil {
		logging.FromContext(ctx).Warn().
			Err(err).
			Str("host", host).
			Msg("visit index lookup failed, assuming no history")
		visited = nil
	}
	if len(visited) == 0 {
		visited = dualSchemes
	}

	records := make([]*entity.PermissionRecord, 0, len(visited))
	for _, sp := range visited {
		origin := entity.NewOrigin(sp.Scheme, host, sp.Port, row.Attributes())
		records = append(records, newRecord(origin.String()))
	}
	return records, nil
}

func validateLegacyRow(row *entity.LegacyHostRecord) error {
	if row == nil {
		return fmt.Errorf("%w: nil row", ErrMalformedLegacyRow)
	}
	if row.Host == "" {
		return fmt.Errorf("%w: row %d has no host", ErrMalformedLegacyRow, row.ID)
	}
	if row.Type == "" {
		return fmt.Errorf("%w: row %d has no type", ErrMalformedLegacyRow, row.ID)
	}
	// A missing permission column reads as 0; UNKNOWN is never stored.
	if row.Permission <= int(entity.StateUnknown) {
		return fmt.Errorf("%w: row %d has no permission", ErrMalformedLegacyRow, row.ID)
	}
	if !IsOpaqueLegacyHost(row.Host) && strings.ContainsAny(row.Host, " /?#@") {
		return fmt.Errorf("%w: row %d has invalid host %q", ErrMalformedLegacyRow, row.ID, row.Host)
	}
	return nil
}
