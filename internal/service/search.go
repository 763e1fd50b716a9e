package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cardbinder/cardbinder-server/internal/domain"
	"github.com/cardbinder/cardbinder-server/internal/search"
	"github.com/cardbinder/cardbinder-server/internal/store"
)

// SearchService bridges the card index with the data store, handling
// document creation, updates, and query execution. It implements
// store.SearchIndexer so the store can keep the index in sync as cards
// change.
type SearchService struct {
	index  *search.CardIndex
	store  *store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.CardIndex, store *store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  store,
		logger: logger,
	}
}

// Search performs a card search across all sets.
func (s *SearchService) Search(ctx context.Context, params search.Params) (*search.Result, error) {
	return s.index.Search(ctx, params)
}

// IndexCards indexes a batch of cards, resolving each card's set for
// denormalized context. Implements store.SearchIndexer.
func (s *SearchService) IndexCards(ctx context.Context, cards []*domain.Card) error {
	sets := make(map[string]*domain.Set)
	docs := make([]*search.CardDocument, 0, len(cards))

	for _, card := range cards {
		set, ok := sets[card.SetID]
		if !ok {
			var err error
			set, err = s.store.Sets.Get(ctx, card.SetID)
			if err != nil {
				// Index the card without set context rather than drop it.
				s.logger.Warn("indexing card without set context", "card_id", card.ID, "set_id", card.SetID, "error", err)
				set = nil
			}
			sets[card.SetID] = set
		}
		docs = append(docs, search.CardToDocument(card, set))
	}

	if err := s.index.IndexDocuments(docs); err != nil {
		return fmt.Errorf("index cards: %w", err)
	}

	s.logger.Debug("indexed cards", "count", len(docs))
	return nil
}

// DeleteCards removes cards from the index. Implements
// store.SearchIndexer.
func (s *SearchService) DeleteCards(_ context.Context, cardIDs []string) error {
	return s.index.DeleteDocuments(cardIDs)
}

// DeleteSetCards removes a whole set's cards from the index by querying
// for them first. Implements store.SearchIndexer.
func (s *SearchService) DeleteSetCards(ctx context.Context, setID string) error {
	params := search.DefaultParams()
	params.SetID = setID
	params.Limit = 1000
	params.IncludeFacets = false
	params.Highlight = false

	for {
		result, err := s.index.Search(ctx, params)
		if err != nil {
			return fmt.Errorf("find set cards: %w", err)
		}
		if len(result.Hits) == 0 {
			return nil
		}

		ids := make([]string, 0, len(result.Hits))
		for _, hit := range result.Hits {
			ids = append(ids, hit.ID)
		}
		if err := s.index.DeleteDocuments(ids); err != nil {
			return fmt.Errorf("delete set cards: %w", err)
		}
	}
}

// Reindex rebuilds the card index from the store. Used on startup when
// the mapping version changed and by the admin reindex endpoint.
func (s *SearchService) Reindex(ctx context.Context) (int, error) {
	if err := s.index.Rebuild(); err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}

	sets, err := s.store.Sets.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list sets: %w", err)
	}

	indexed := 0
	for _, set := range sets {
		cards, err := s.store.ListCardsBySet(ctx, set.ID)
		if err != nil {
			return indexed, fmt.Errorf("list cards for set %s: %w", set.ID, err)
		}

		docs := make([]*search.CardDocument, 0, len(cards))
		for _, card := range cards {
			docs = append(docs, search.CardToDocument(card, set))
		}
		if err := s.index.IndexDocuments(docs); err != nil {
			return indexed, fmt.Errorf("index set %s: %w", set.ID, err)
		}
		indexed += len(docs)
	}

	s.logger.Info("card index rebuilt", "cards", indexed, "sets", len(sets))
	return indexed, nil
}

// DocumentCount returns the number of indexed cards.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}
