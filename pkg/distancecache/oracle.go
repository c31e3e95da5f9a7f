// Package distancecache implements the Distance Oracle (component A):
// pairwise great-circle distance and travel time, memoized in a two-tier
// cache so repeated lookups inside one optimize run are cheap.
package distancecache

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/shiva/crewrouter/internal/model"
	"github.com/shiva/crewrouter/pkg/geo"
)

// Store is the external, optional distance-cache backend. A missing Store degrades the Oracle to an in-memory-only
// cache for the run — no behavior changes, only a slower cold start.
type Store interface {
	Get(ctx context.Context, key string) (km, minutes float64, ok bool, err error)
	Put(ctx context.Context, key string, km, minutes float64) error
}

// CanonicalKey builds the unordered-pair cache key: lexicographic
// ordering of the two ids, joined by ':'.
func CanonicalKey(aID, bID string) string {
	if aID <= bID {
		return aID + ":" + bID
	}
	return bID + ":" + aID
}

type distance struct {
	km float64
	minutes float64
}

// Oracle answers distance(a, b) → (km, minutes), backed by an in-process
// cache and an optional Store. Safe for concurrent use by many
// cluster-solving workers.
type Oracle struct {
	avgSpeedKmph float64
	store Store
	mem sync.Map // string -> distance
	logger *zap.Logger
	storeWarnOnce sync.Once
}

// NewOracle constructs an Oracle. store may be nil.
func NewOracle(store Store, avgSpeedKmph float64, logger *zap.Logger) *Oracle {
	if avgSpeedKmph <= 0 {
		avgSpeedKmph = geo.DefaultAvgSpeedKmph
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Oracle{avgSpeedKmph: avgSpeedKmph, store: store, logger: logger}
}

// Distance returns (km, minutes) between two tickets' locations. Symmetric;
// Distance(a, a) == (0, 0). A miss computes via Haversine and writes back
// to both cache tiers; duplicate concurrent computation on the same key is
// harmless.
func (o *Oracle) Distance(ctx context.Context, a, b model.Ticket) (km, minutes float64, err error) {
	if a.ID == b.ID {
		return 0, 0, nil
	}
	key := CanonicalKey(a.ID, b.ID)

	if d, ok := o.mem.Load(key); ok {
		dd := d.(distance)
		return dd.km, dd.minutes, nil
	}

	if o.store != nil {
		storeKm, storeMin, ok, storeErr := o.store.Get(ctx, key)
		if storeErr != nil {
			// Transient: compute this lookup instead; the warning is logged
			// once per Oracle, and later lookups still consult the store.
			o.storeWarnOnce.Do(func() {
				o.logger.Warn("distance cache store unavailable, falling back to compute-only", zap.Error(storeErr))
			})
		} else if ok {
			o.mem.Store(key, distance{km: storeKm, minutes: storeMin})
			return storeKm, storeMin, nil
		}
	}

	km = geo.HaversineKm(a.Location, b.Location)
	minutes = geo.TravelMinutes(km, o.avgSpeedKmph)

	o.mem.LoadOrStore(key, distance{km: km, minutes: minutes})

	if o.store != nil {
		if putErr := o.store.Put(ctx, key, km, minutes); putErr != nil {
			o.storeWarnOnce.Do(func() {
				o.logger.Warn("distance cache store write failed, continuing compute-only", zap.Error(putErr))
			})
		}
	}

	return km, minutes, nil
}

// Matrix computes the symmetric pairwise distance matrix for a ticket set,
// lazily, reusing Distance's cache. Returned map is keyed by CanonicalKey.
func (o *Oracle) Matrix(ctx context.Context, tickets []model.Ticket) (map[string][2]float64, error) {
	out := make(map[string][2]float64, len(tickets)*(len(tickets)-1)/2)
	for i := 0; i < len(tickets); i++ {
		for j := i + 1; j < len(tickets); j++ {
			km, minutes, err := o.Distance(ctx, tickets[i], tickets[j])
			if err != nil {
				return nil, err
			}
			out[CanonicalKey(tickets[i].ID, tickets[j].ID)] = [2]float64{km, minutes}
		}
	}
	return out, nil
}
