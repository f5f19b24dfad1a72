package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/novelreads/novelreads-server/internal/domain"
)

const bookshelfPrefix = "bookshelf:"

// LoadReadingState loads a user's reading state blob. A missing or corrupt
// blob loads as empty state: losing shelves beats refusing to start, and a
// corrupt blob is logged so it can be investigated.
func (s *Store) LoadReadingState(ctx context.Context, userID string) (*domain.ReadingState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := []byte(bookshelfPrefix + userID)

	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.NewReadingState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load reading state for %s: %w", userID, err)
	}

	var state domain.ReadingState
	if err := json.Unmarshal(raw, &state); err != nil {
		if s.logger != nil {
			s.logger.Warn("reading state blob is corrupt, starting empty",
				"user_id", userID, "error", err)
		}
		return domain.NewReadingState(), nil
	}

	state.Normalize()
	return &state, nil
}

// SaveReadingState writes a user's reading state blob.
func (s *Store) SaveReadingState(ctx context.Context, userID string, state *domain.ReadingState) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(bookshelfPrefix + userID)
	if err := s.set(key, state); err != nil {
		return fmt.Errorf("save reading state for %s: %w", userID, err)
	}
	return nil
}

// DeleteReadingState removes a user's reading state blob. Idempotent.
func (s *Store) DeleteReadingState(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(bookshelfPrefix + userID)
	if err := s.delete(key); err != nil {
		return fmt.Errorf("delete reading state for %s: %w", userID, err)
	}
	return nil
}
