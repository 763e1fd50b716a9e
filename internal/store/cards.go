package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/cardbinder/cardbinder-server/internal/domain"
)

// Key prefixes for cards. Cards do not use the generic Entity because a
// set owns many cards: the set index is multi-valued (one key per card)
// and bulk imports go through batched writes.
const (
	cardPrefix      = "card:"
	cardBySetPrefix = "card:idx:set:"
)

// cardSetIndexKey is cardBySetPrefix + setID + ":" + cardID. Including
// the card ID keeps index keys unique while still allowing a prefix scan
// over everything in one set.
func cardSetIndexKey(setID, cardID string) []byte {
	return []byte(cardBySetPrefix + setID + ":" + cardID)
}

// CreateCard stores a single card and its set index entry.
// Returns ErrAlreadyExists if a card with this ID already exists.
func (s *Store) CreateCard(ctx context.Context, card *domain.Card) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(card)
	if err != nil {
		return fmt.Errorf("marshal card: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		key := []byte(cardPrefix + card.ID)

		_, err := txn.Get(key)
		if err == nil {
			return ErrAlreadyExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check existing card: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return fmt.Errorf("set card: %w", err)
		}
		if err := txn.Set(cardSetIndexKey(card.SetID, card.ID), []byte(card.ID)); err != nil {
			return fmt.Errorf("set card set index: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.indexCards(ctx, []*domain.Card{card})
	return nil
}

// InsertCards stores one chunk of cards through a write batch. The
// caller is responsible for duplicate reconciliation and for splitting
// oversized imports into chunks before calling.
func (s *Store) InsertCards(ctx context.Context, cards []*domain.Card) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(cards) == 0 {
		return nil
	}

	batch := s.NewBatchWriter(len(cards))
	for _, card := range cards {
		if err := batch.CreateCard(card); err != nil {
			batch.Cancel()
			return fmt.Errorf("batch card %s: %w", card.ID, err)
		}
	}
	if err := batch.Flush(); err != nil {
		return fmt.Errorf("flush card batch: %w", err)
	}

	s.indexCards(ctx, cards)
	return nil
}

// GetCard retrieves a card by ID.
// Returns ErrNotFound if the card does not exist.
func (s *Store) GetCard(ctx context.Context, id string) (*domain.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var card domain.Card
	err := s.db.View(func(txn *badger.Txn) error {
		key := buildKey(cardPrefix, id)
		defer releaseKey(key)

		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get card: %w", err)
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &card)
		})
	})
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// ListCardsBySet returns every card in a set, in storage order. Display
// ordering is the checklist layer's job.
func (s *Store) ListCardsBySet(ctx context.Context, setID string) ([]*domain.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var cards []*domain.Card
	scanPrefix := []byte(cardBySetPrefix + setID + ":")

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = scanPrefix
		opts.PrefetchValues = true

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(scanPrefix); it.ValidForPrefix(scanPrefix); it.Next() {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			var cardID string
			err := it.Item().Value(func(val []byte) error {
				cardID = string(val)
				return nil
			})
			if err != nil {
				return fmt.Errorf("read card index entry: %w", err)
			}

			key := buildKey(cardPrefix, cardID)
			item, err := txn.Get(key)
			releaseKey(key)
			if errors.Is(err, badger.ErrKeyNotFound) {
				// Dangling index entry; skip rather than fail the read.
				continue
			}
			if err != nil {
				return fmt.Errorf("get card %s: %w", cardID, err)
			}

			var card domain.Card
			err = item.Value(func(val []byte) error {
				return json.Unmarshal(val, &card)
			})
			if err != nil {
				return fmt.Errorf("unmarshal card %s: %w", cardID, err)
			}
			cards = append(cards, &card)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return cards, nil
}

// UpdateCard replaces a stored card, moving its set index entry if the
// card changed sets. Returns ErrNotFound if the card does not exist.
func (s *Store) UpdateCard(ctx context.Context, card *domain.Card) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(card)
	if err != nil {
		return fmt.Errorf("marshal card: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		key := []byte(cardPrefix + card.ID)

		var old domain.Card
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get existing card: %w", err)
		}
		err = item.Value(func(val []byte) error {
			return json.Unmarshal(val, &old)
		})
		if err != nil {
			return fmt.Errorf("unmarshal existing card: %w", err)
		}

		if old.SetID != card.SetID {
			if err := txn.Delete(cardSetIndexKey(old.SetID, card.ID)); err != nil {
				return fmt.Errorf("delete old card set index: %w", err)
			}
			if err := txn.Set(cardSetIndexKey(card.SetID, card.ID), []byte(card.ID)); err != nil {
				return fmt.Errorf("set card set index: %w", err)
			}
		}

		if err := txn.Set(key, data); err != nil {
			return fmt.Errorf("set card: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.indexCards(ctx, []*domain.Card{card})
	return nil
}

// UpdateCardStatuses sets the status of every listed card in one
// transaction. Missing IDs are counted rather than failing the whole
// update, so a stale preview does not abort a confirmed bulk change.
func (s *Store) UpdateCardStatuses(ctx context.Context, ids []string, status domain.CardStatus) (updated int, err error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	var changed []*domain.Card
	err = s.db.Update(func(txn *badger.Txn) error {
		for _, id := range ids {
			key := []byte(cardPrefix + id)

			item, err := txn.Get(key)
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("get card %s: %w", id, err)
			}

			var card domain.Card
			err = item.Value(func(val []byte) error {
				return json.Unmarshal(val, &card)
			})
			if err != nil {
				return fmt.Errorf("unmarshal card %s: %w", id, err)
			}

			if card.Status == status {
				continue
			}
			card.Status = status
			card.UpdatedAt = now()

			data, err := json.Marshal(&card)
			if err != nil {
				return fmt.Errorf("marshal card %s: %w", id, err)
			}
			if err := txn.Set(key, data); err != nil {
				return fmt.Errorf("set card %s: %w", id, err)
			}
			changed = append(changed, &card)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.indexCards(ctx, changed)
	return len(changed), nil
}

// DeleteCards removes the listed cards and their index entries.
// Idempotent: missing IDs are skipped.
func (s *Store) DeleteCards(ctx context.Context, ids []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		for _, id := range ids {
			key := []byte(cardPrefix + id)

			var card domain.Card
			item, err := txn.Get(key)
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("get card %s: %w", id, err)
			}
			err = item.Value(func(val []byte) error {
				return json.Unmarshal(val, &card)
			})
			if err != nil {
				return fmt.Errorf("unmarshal card %s: %w", id, err)
			}

			if err := txn.Delete(cardSetIndexKey(card.SetID, id)); err != nil {
				return fmt.Errorf("delete card set index: %w", err)
			}
			if err := txn.Delete(key); err != nil {
				return fmt.Errorf("delete card %s: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.searchIndexer != nil {
		if err := s.searchIndexer.DeleteCards(ctx, ids); err != nil && s.logger != nil {
			s.logger.Warn("failed to remove cards from search index", "error", err)
		}
	}
	return nil
}

// DeleteCardsBySet removes every card in a set. Used when a set itself
// is deleted. Returns the number of cards removed.
func (s *Store) DeleteCardsBySet(ctx context.Context, setID string) (int, error) {
	cards, err := s.ListCardsBySet(ctx, setID)
	if err != nil {
		return 0, err
	}

	ids := make([]string, 0, len(cards))
	for _, card := range cards {
		ids = append(ids, card.ID)
	}
	if err := s.DeleteCards(ctx, ids); err != nil {
		return 0, err
	}

	if s.searchIndexer != nil {
		if err := s.searchIndexer.DeleteSetCards(ctx, setID); err != nil && s.logger != nil {
			s.logger.Warn("failed to remove set from search index", "set_id", setID, "error", err)
		}
	}
	return len(ids), nil
}

// indexCards pushes cards into the search index without blocking
// the write path. Index failures are logged, not surfaced: the store is
// the source of truth and search can be rebuilt.
func (s *Store) indexCards(ctx context.Context, cards []*domain.Card) {
	if s.searchIndexer == nil || len(cards) == 0 {
		return
	}
	if err := s.searchIndexer.IndexCards(ctx, cards); err != nil && s.logger != nil {
		s.logger.Warn("failed to index cards", "count", len(cards), "error", err)
	}
}
