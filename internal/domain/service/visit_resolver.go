package service

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/samber/lo"
	"golang.org/x/sync/singleflight"

	"github.com/bnema/permstore/internal/domain/entity"
	"github.com/bnema/permstore/internal/domain/repository"
	"github.com/bnema/permstore/internal/logging"
)

// VisitResolver looks up visited scheme/port pairs once per registrable
// domain. Subdomains share their parent's result, so a migration over many
// hosts of one site costs a single index query.
type VisitResolver struct {
	index repository.VisitIndex

	mu    sync.Mutex
	cache map[string][]entity.SchemePort
	group singleflight.Group
}

// NewVisitResolver creates a resolver over index. A nil index behaves as an
// empty history.
func NewVisitResolver(index repository.VisitIndex) *VisitResolver {
	return &VisitResolver{
		index: index,
		cache: make(map[string][]entity.SchemePort),
	}
}

// Resolve returns the permission-capable scheme/port pairs visited under the
// registrable domain of host, sorted by scheme then port.
func (r *VisitResolver) Resolve(ctx context.Context, host string) ([]entity.SchemePort, error) {
	if r.index == nil {
		return nil, nil
	}
	domain, _ := RegistrableDomain(host)

	r.mu.Lock()
	cached, ok := r.cache[domain]
	r.mu.Unlock()
	if ok {
		return cached, nil
	}

	v, err, _ := r.group.Do(domain, func() (any, error) {
		logging.FromContext(ctx).Debug().Str("domain", domain).Msg("querying visit index")

		visited, err := r.index.VisitedUnder(ctx, domain)
		if err != nil {
			return nil, err
		}
		visited = lo.Filter(lo.Uniq(visited), func(sp entity.SchemePort, _ int) bool {
			return entity.CanCarryPermissions(sp.Scheme)
		})
		slices.SortFunc(visited, func(a, b entity.SchemePort) int {
			return cmp.Or(cmp.Compare(a.Scheme, b.Scheme), cmp.Compare(a.Port, b.Port))
		})

		r.mu.Lock()
		r.cache[domain] = visited
		r.mu.Unlock()
		return visited, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]entity.SchemePort), nil
}
