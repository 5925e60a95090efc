package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/permstore/internal/domain/entity"
	"github.com/bnema/permstore/internal/domain/repository"
	"github.com/bnema/permstore/internal/logging"
)

const logURLMaxLen = 60

type historyRepo struct {
	db *sql.DB
}

// NewHistoryRepository creates a new SQLite-backed history repository over
// a places database opened with OpenPlacesDB.
func NewHistoryRepository(db *sql.DB) repository.HistoryRepository {
	return &historyRepo{db: db}
}

func (r *historyRepo) AddVisit(ctx context.Context, rawURL string, at time.Time) error {
	log := logging.FromContext(ctx)

	visit, err := parseVisit(rawURL)
	if err != nil {
		return err
	}
	if at.IsZero() {
		at = time.Now()
	}

	log.Debug().Str("url", logging.TruncateURL(rawURL, logURLMaxLen)).Msg("recording visit")

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO history_visits (url, scheme, host, port, visited_at) VALUES (?, ?, ?, ?, ?)`,
		rawURL, visit.Scheme, visit.Host, visit.Port, at.UnixMilli())
	return err
}

// VisitedUnder matches domain itself and any host ending in "."+domain.
func (r *historyRepo) VisitedUnder(ctx context.Context, domain string) ([]entity.SchemePort, error) {
	domain = strings.ToLower(domain)
	rows, err := r.db.QueryContext(ctx, `
SELECT DISTINCT scheme, port FROM history_visits
WHERE host = ?1
   OR (length(host) > length(?1) AND substr(host, -length(?1) - 1) = '.' || ?1)
ORDER BY scheme, port`, domain)
	if err != nil {
		return nil, fmt.Errorf("failed to query visits under %s: %w", domain, err)
	}
	defer rows.Close()

	var result []entity.SchemePort
	for rows.Next() {
		var sp entity.SchemePort
		if err := rows.Scan(&sp.Scheme, &sp.Port); err != nil {
			return nil, err
		}
		result = append(result, sp)
	}
	return result, rows.Err()
}

func (r *historyRepo) Visits(ctx context.Context, limit int) ([]*entity.Visit, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT url, scheme, host, port, visited_at FROM history_visits ORDER BY visited_at DESC, id DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visits []*entity.Visit
	for rows.Next() {
		var (
			v  entity.Visit
			ms int64
		)
		if err := rows.Scan(&v.URL, &v.Scheme, &v.Host, &v.Port, &ms); err != nil {
			return nil, err
		}
		v.VisitedAt = fromMillis(ms)
		visits = append(visits, &v)
	}
	return visits, rows.Err()
}

// parseVisit extracts the scheme, host and non-default port of a visited URL.
func parseVisit(rawURL string) (*entity.Visit, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("invalid visit url %q: %w", rawURL, err)
	}
	host := strings.ToLower(u.Hostname())
	if u.Scheme == "" || host == "" {
		return nil, fmt.Errorf("invalid visit url %q: scheme and host are required", rawURL)
	}

	visit := &entity.Visit{
		URL:    rawURL,
		Scheme: strings.ToLower(u.Scheme),
		Host:   host,
	}
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid visit url %q: bad port", rawURL)
		}
		if port != entity.DefaultPort(visit.Scheme) {
			visit.Port = port
		}
	}
	return visit, nil
}
