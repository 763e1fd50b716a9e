package store

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/cardbinder/cardbinder-server/internal/domain"
)

// BatchWriter provides efficient bulk card writes using BadgerDB's
// WriteBatch. Checklist imports insert dozens of rows per chunk; going
// through individual transactions for each would be needlessly slow.
type BatchWriter struct {
	store     *Store
	batch     *badger.WriteBatch
	maxSize   int
	count     int
	autoFlush bool
}

// NewBatchWriter creates a new batch writer that auto-flushes when
// maxSize is reached.
func (s *Store) NewBatchWriter(maxSize int) *BatchWriter {
	return &BatchWriter{
		store:     s,
		batch:     s.db.NewWriteBatch(),
		maxSize:   maxSize,
		autoFlush: true,
	}
}

// CreateCard adds a card and its set index entry to the batch.
// If autoFlush is enabled and the batch reaches maxSize, it flushes
// automatically.
//
// WriteBatch cannot read, so unlike Store.CreateCard there is no
// existence check here: callers must have reconciled duplicates first.
func (b *BatchWriter) CreateCard(card *domain.Card) error {
	data, err := json.Marshal(card)
	if err != nil {
		return fmt.Errorf("marshal card: %w", err)
	}

	key := []byte(cardPrefix + card.ID)
	if err := b.batch.Set(key, data); err != nil {
		return fmt.Errorf("batch set card: %w", err)
	}

	if err := b.batch.Set(cardSetIndexKey(card.SetID, card.ID), []byte(card.ID)); err != nil {
		return fmt.Errorf("batch set card set index: %w", err)
	}

	b.count++

	if b.autoFlush && b.count >= b.maxSize {
		if err := b.Flush(); err != nil {
			return fmt.Errorf("auto flush: %w", err)
		}
	}

	return nil
}

// Flush commits all pending writes in the batch.
func (b *BatchWriter) Flush() error {
	if b.count == 0 {
		return nil // Nothing to flush
	}

	if err := b.batch.Flush(); err != nil {
		return fmt.Errorf("flush batch: %w", err)
	}

	if b.store.logger != nil {
		b.store.logger.LogAttrs(context.Background(), slog.LevelInfo, "card batch flushed",
			slog.Int("count", b.count),
		)
	}

	// Reset for next batch
	b.count = 0
	b.batch = b.store.db.NewWriteBatch()

	return nil
}

// Cancel discards all pending writes in the batch.
func (b *BatchWriter) Cancel() {
	b.batch.Cancel()
	b.count = 0
}

// Count returns the number of operations in the current batch.
func (b *BatchWriter) Count() int {
	return b.count
}
