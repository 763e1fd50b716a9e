package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/cardbinder/cardbinder-server/internal/checklist"
	"github.com/cardbinder/cardbinder-server/internal/domain"
	"github.com/cardbinder/cardbinder-server/internal/errors"
	"github.com/cardbinder/cardbinder-server/internal/id"
	"github.com/cardbinder/cardbinder-server/internal/store"
)

// SetService orchestrates set and collection operations.
type SetService struct {
	store  *store.Store
	stats  *StatsService
	logger *slog.Logger
}

// NewSetService creates a new set service.
func NewSetService(store *store.Store, stats *StatsService, logger *slog.Logger) *SetService {
	return &SetService{
		store:  store,
		stats:  stats,
		logger: logger,
	}
}

// NewSet are the caller-supplied fields for creating a set.
type NewSet struct {
	Name          string
	Year          int
	Brand         string
	ProductLine   string
	SetType       domain.SetType
	InsertSetName string
	Notes         string
	CoverImageURL string
}

// CreateSet creates a new card set.
func (s *SetService) CreateSet(ctx context.Context, req NewSet) (*domain.Set, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.Name) == "" {
		return nil, errors.Validation("set name is required")
	}
	if !domain.ValidSetType(req.SetType) {
		return nil, errors.Validationf("unknown set type %q", req.SetType)
	}
	if !req.SetType.RequiresYear() && req.Year != 0 {
		return nil, errors.Validation("multi-year sets carry years per card, not on the set")
	}
	if req.SetType.RequiresYear() && req.Year == 0 {
		return nil, errors.Validation("set year is required")
	}

	setID, err := id.Generate("set")
	if err != nil {
		return nil, fmt.Errorf("generate set ID: %w", err)
	}

	now := time.Now().UTC()
	set := &domain.Set{
		ID:            setID,
		Name:          strings.TrimSpace(req.Name),
		Year:          req.Year,
		Brand:         req.Brand,
		ProductLine:   req.ProductLine,
		SetType:       req.SetType,
		InsertSetName: req.InsertSetName,
		Notes:         req.Notes,
		CoverImageURL: req.CoverImageURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.Sets.Create(ctx, setID, set); err != nil {
		return nil, fmt.Errorf("create set: %w", err)
	}

	s.logger.Info("set created",
		"set_id", setID,
		"name", set.Name,
		"type", set.SetType,
	)

	return set, nil
}

// GetSet retrieves a set by ID.
func (s *SetService) GetSet(ctx context.Context, setID string) (*domain.Set, error) {
	return s.store.Sets.Get(ctx, setID)
}

// SetSummary is a set plus its completion stats, for listing pages.
type SetSummary struct {
	Set   *domain.Set     `json:"set"`
	Stats checklist.Stats `json:"stats"`
}

// SetFilter narrows ListSets. Zero values mean "no filtering".
type SetFilter struct {
	Brand   string
	Year    int
	SetType domain.SetType
}

// ListSets returns all sets matching the filter, each with its
// completion stats, ordered by year descending then name.
func (s *SetService) ListSets(ctx context.Context, filter SetFilter) ([]SetSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sets, err := s.store.Sets.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}

	summaries := make([]SetSummary, 0, len(sets))
	for _, set := range sets {
		if filter.Brand != "" && !strings.EqualFold(set.Brand, filter.Brand) {
			continue
		}
		if filter.Year != 0 && set.Year != filter.Year {
			continue
		}
		if filter.SetType != "" && set.SetType != filter.SetType {
			continue
		}

		stats, err := s.stats.SetStats(ctx, set.ID)
		if err != nil {
			return nil, fmt.Errorf("stats for set %s: %w", set.ID, err)
		}
		summaries = append(summaries, SetSummary{Set: set, Stats: stats})
	}

	slices.SortFunc(summaries, func(a, b SetSummary) int {
		if a.Set.Year != b.Set.Year {
			return b.Set.Year - a.Set.Year
		}
		return strings.Compare(a.Set.Name, b.Set.Name)
	})

	return summaries, nil
}

// SetUpdate carries partial field updates for a set.
type SetUpdate struct {
	Name          *string
	Year          *int
	Brand         *string
	ProductLine   *string
	InsertSetName *string
	Notes         *string
	CoverImageURL *string
}

// UpdateSet applies a partial update to a set's metadata. The set type
// is fixed at creation: changing it would silently change how existing
// cards are keyed and grouped.
func (s *SetService) UpdateSet(ctx context.Context, setID string, update SetUpdate) (*domain.Set, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	set, err := s.store.Sets.Get(ctx, setID)
	if err != nil {
		return nil, fmt.Errorf("get set: %w", err)
	}

	if update.Name != nil {
		if strings.TrimSpace(*update.Name) == "" {
			return nil, errors.Validation("set name cannot be empty")
		}
		set.Name = strings.TrimSpace(*update.Name)
	}
	if update.Year != nil {
		set.Year = *update.Year
	}
	if update.Brand != nil {
		set.Brand = *update.Brand
	}
	if update.ProductLine != nil {
		set.ProductLine = *update.ProductLine
	}
	if update.InsertSetName != nil {
		set.InsertSetName = *update.InsertSetName
	}
	if update.Notes != nil {
		set.Notes = *update.Notes
	}
	if update.CoverImageURL != nil {
		set.CoverImageURL = *update.CoverImageURL
	}

	set.UpdatedAt = time.Now().UTC()
	if err := s.store.Sets.Update(ctx, setID, set); err != nil {
		return nil, fmt.Errorf("update set: %w", err)
	}

	return set, nil
}

// DeleteSet removes a set, its cards, and its collection memberships.
func (s *SetService) DeleteSet(ctx context.Context, setID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := s.store.Sets.Get(ctx, setID); err != nil {
		return fmt.Errorf("get set: %w", err)
	}

	removed, err := s.store.DeleteCardsBySet(ctx, setID)
	if err != nil {
		return fmt.Errorf("delete cards: %w", err)
	}

	collections, err := s.store.Collections.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	for _, coll := range collections {
		if !coll.ContainsSet(setID) {
			continue
		}
		coll.RemoveSet(setID)
		if err := s.store.Collections.Update(ctx, coll.ID, coll); err != nil {
			return fmt.Errorf("update collection %s: %w", coll.ID, err)
		}
	}

	if err := s.store.Sets.Delete(ctx, setID); err != nil {
		return fmt.Errorf("delete set: %w", err)
	}

	s.stats.Invalidate(setID)
	s.logger.Info("set deleted", "set_id", setID, "cards_removed", removed)
	return nil
}

// CreateCollection creates a named grouping of sets.
func (s *SetService) CreateCollection(ctx context.Context, name string) (*domain.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, errors.Validation("collection name is required")
	}

	collID, err := id.Generate("coll")
	if err != nil {
		return nil, fmt.Errorf("generate collection ID: %w", err)
	}

	now := time.Now().UTC()
	coll := &domain.Collection{
		ID:        collID,
		Name:      strings.TrimSpace(name),
		SetIDs:    []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.Collections.Create(ctx, collID, coll); err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	s.logger.Info("collection created", "collection_id", collID, "name", coll.Name)
	return coll, nil
}

// ListCollections returns all collections.
func (s *SetService) ListCollections(ctx context.Context) ([]*domain.Collection, error) {
	return s.store.Collections.ListAll(ctx)
}

// AttachSet adds a set to a collection.
func (s *SetService) AttachSet(ctx context.Context, collectionID, setID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := s.store.Sets.Get(ctx, setID); err != nil {
		return fmt.Errorf("get set: %w", err)
	}

	coll, err := s.store.Collections.Get(ctx, collectionID)
	if err != nil {
		return fmt.Errorf("get collection: %w", err)
	}

	if !coll.AddSet(setID) {
		return nil // Already attached
	}
	coll.UpdatedAt = time.Now().UTC()

	if err := s.store.Collections.Update(ctx, collectionID, coll); err != nil {
		return fmt.Errorf("update collection: %w", err)
	}
	return nil
}

// DetachSet removes a set from a collection.
func (s *SetService) DetachSet(ctx context.Context, collectionID, setID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	coll, err := s.store.Collections.Get(ctx, collectionID)
	if err != nil {
		return fmt.Errorf("get collection: %w", err)
	}

	if !coll.RemoveSet(setID) {
		return nil // Was not attached
	}
	coll.UpdatedAt = time.Now().UTC()

	if err := s.store.Collections.Update(ctx, collectionID, coll); err != nil {
		return fmt.Errorf("update collection: %w", err)
	}
	return nil
}
