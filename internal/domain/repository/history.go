package repository

import (
	"context"
	"time"

	"github.com/bnema/permstore/internal/domain/entity"
)

// VisitIndex answers which schemes and ports a site was visited under.
// It is read-only and may be slow; callers should batch by registrable domain.
type VisitIndex interface {
	// VisitedUnder returns the distinct scheme/port pairs of every visit to
	// domain or any of its subdomains.
	VisitedUnder(ctx context.Context, domain string) ([]entity.SchemePort, error)
}

// HistoryRepository defines operations for browsing history persistence.
type HistoryRepository interface {
	VisitIndex

	// AddVisit records a visit to rawURL at the given time.
	AddVisit(ctx context.Context, rawURL string, at time.Time) error

	// Visits lists recorded visits, most recent first.
	Visits(ctx context.Context, limit int) ([]*entity.Visit, error)
}
