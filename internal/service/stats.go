package service

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/cardbinder/cardbinder-server/internal/checklist"
	"github.com/cardbinder/cardbinder-server/internal/store"
)

// statsTTL bounds how stale a cached stats entry can get. Writes
// invalidate eagerly, so the TTL only matters for writes that bypass
// the services (seeding, manual db surgery).
const statsTTL = time.Minute

// StatsService computes per-set completion stats, cached with a short
// TTL. Set pages and listing pages hit stats on every render, while the
// underlying cards change only on imports and status updates.
type StatsService struct {
	store *store.Store
	cache *cache.Cache
}

// NewStatsService creates a new stats service.
func NewStatsService(store *store.Store) *StatsService {
	return &StatsService{
		store: store,
		cache: cache.New(statsTTL, 2*statsTTL),
	}
}

// SetStats returns the completion stats for one set.
func (s *StatsService) SetStats(ctx context.Context, setID string) (checklist.Stats, error) {
	if cached, found := s.cache.Get(setID); found {
		if stats, ok := cached.(checklist.Stats); ok {
			return stats, nil
		}
	}

	cards, err := s.store.ListCardsBySet(ctx, setID)
	if err != nil {
		return checklist.Stats{}, fmt.Errorf("list cards: %w", err)
	}

	stats := checklist.ComputeStats(cards)
	s.cache.Set(setID, stats, cache.DefaultExpiration)
	return stats, nil
}

// CollectionStats aggregates stats across every set in a collection.
func (s *StatsService) CollectionStats(ctx context.Context, collectionID string) (checklist.Stats, error) {
	coll, err := s.store.Collections.Get(ctx, collectionID)
	if err != nil {
		return checklist.Stats{}, fmt.Errorf("get collection: %w", err)
	}

	var total checklist.Stats
	for _, setID := range coll.SetIDs {
		stats, err := s.SetStats(ctx, setID)
		if err != nil {
			return checklist.Stats{}, err
		}
		total.Total += stats.Total
		total.Owned += stats.Owned
		total.Pending += stats.Pending
		total.Need += stats.Need
	}

	// Recompute instead of averaging per-set percentages, which would
	// weight small sets the same as large ones.
	total.Percent = checklist.Percent(total.Owned, total.Total)
	return total, nil
}

// Invalidate drops the cached stats for a set. Called by every write
// path that changes the set's cards.
func (s *StatsService) Invalidate(setID string) {
	s.cache.Delete(setID)
}
