package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/cardbinder/cardbinder-server/internal/domain"
	"github.com/cardbinder/cardbinder-server/internal/normalize"
)

// SearchIndexer is the interface for updating the search index.
// Store uses this to keep search in sync without depending on search
// implementation details.
type SearchIndexer interface {
	IndexCards(ctx context.Context, cards []*domain.Card) error
	DeleteCards(ctx context.Context, cardIDs []string) error
	DeleteSetCards(ctx context.Context, setID string) error
}

// NoopSearchIndexer is a no-op implementation for testing.
type NoopSearchIndexer struct{}

// IndexCards is a no-op.
func (NoopSearchIndexer) IndexCards(context.Context, []*domain.Card) error { return nil }

// DeleteCards is a no-op.
func (NoopSearchIndexer) DeleteCards(context.Context, []string) error { return nil }

// DeleteSetCards is a no-op.
func (NoopSearchIndexer) DeleteSetCards(context.Context, string) error { return nil }

// NewNoopSearchIndexer creates a new no-op search indexer for testing.
func NewNoopSearchIndexer() SearchIndexer {
	return NoopSearchIndexer{}
}

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	// Search indexer for keeping search in sync with store changes.
	// Set via SetSearchIndexer after store creation to avoid circular
	// dependencies.
	searchIndexer SearchIndexer

	// Generic entities. Cards have a dedicated key layout (cards.go)
	// because a set holds many cards and bulk imports need batched writes.
	Sets           *Entity[domain.Set]
	Brands         *Entity[domain.Brand]
	ProductLines   *Entity[domain.ProductLine]
	InsertSetNames *Entity[domain.InsertSetName]
	Collections    *Entity[domain.Collection]
	Users          *Entity[domain.User]
}

// New creates a new Store instance with the given database path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes survive a crash
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	store := &Store{
		db:     db,
		logger: logger,
	}

	store.initEntities()

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return store, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// SetSearchIndexer sets the search indexer for keeping search in sync.
// This is set after store creation because the search service needs the
// store to exist first.
func (s *Store) SetSearchIndexer(indexer SearchIndexer) {
	s.searchIndexer = indexer
}

// initEntities wires the generic entities and their secondary indexes.
//
// Reference data (brands, product lines, insert set names) is indexed by
// normalized name so lookups are case- and accent-insensitive and
// duplicates are rejected at the storage layer. Users are indexed by
// normalized email.
func (s *Store) initEntities() {
	s.Sets = NewEntity[domain.Set](s, "set:")

	s.Brands = NewEntity[domain.Brand](s, "brand:").
		WithIndexTransform("name",
			func(b *domain.Brand) []string { return []string{normalize.SearchTerm(b.Name)} },
			normalize.SearchTerm,
		)

	s.ProductLines = NewEntity[domain.ProductLine](s, "prodline:").
		WithIndexTransform("name",
			func(p *domain.ProductLine) []string { return []string{normalize.SearchTerm(p.Name)} },
			normalize.SearchTerm,
		)

	s.InsertSetNames = NewEntity[domain.InsertSetName](s, "insertset:").
		WithIndexTransform("name",
			func(i *domain.InsertSetName) []string { return []string{normalize.SearchTerm(i.Name)} },
			normalize.SearchTerm,
		)

	s.Collections = NewEntity[domain.Collection](s, "collection:")

	s.Users = NewEntity[domain.User](s, "user:").
		WithIndexTransform("email",
			func(u *domain.User) []string { return []string{normalize.SearchTerm(u.Email)} },
			normalize.SearchTerm,
		)
}

// now is the single timestamp source for store-side mutations.
func now() time.Time {
	return time.Now().UTC()
}

// Helper methods for database operations.

// get retrieves a value by key.
func (s *Store) get(key []byte, dest any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
}

// exists checks if a key exists.
func (s *Store) exists(key []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
