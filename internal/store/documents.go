package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

const documentPrefix = "doc:"

// Document operations expose schemaless JSON storage organized into named
// collections, keyed as doc:{collection}:{id}. Application data that has
// no dedicated entity (client preferences, device state) lives here.

func documentKey(collection, id string) []byte {
	return []byte(documentPrefix + collection + ":" + id)
}

// GetDocument decodes the document at collection/id into dest.
// Returns ErrNotFound if it does not exist.
func (s *Store) GetDocument(ctx context.Context, collection, id string, dest any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.get(documentKey(collection, id), dest); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get document %s/%s: %w", collection, id, err)
	}
	return nil
}

// SetDocument stores value as the document at collection/id, creating or
// replacing it.
func (s *Store) SetDocument(ctx context.Context, collection, id string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.set(documentKey(collection, id), value); err != nil {
		return fmt.Errorf("set document %s/%s: %w", collection, id, err)
	}
	return nil
}

// DeleteDocument removes the document at collection/id. Idempotent.
func (s *Store) DeleteDocument(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.delete(documentKey(collection, id)); err != nil {
		return fmt.Errorf("delete document %s/%s: %w", collection, id, err)
	}
	return nil
}

// ListDocumentIDs returns the IDs of all documents in a collection.
func (s *Store) ListDocumentIDs(ctx context.Context, collection string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(documentPrefix + collection + ":")
	var ids []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().Key()
			ids = append(ids, string(key[len(prefix):]))
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list documents in %s: %w", collection, err)
	}

	return ids, nil
}

// DeleteDocumentsByOwner removes every document whose ID matches ownerID
// across a set of collections. Used on account deletion.
func (s *Store) DeleteDocumentsByOwner(ctx context.Context, ownerID string, collections ...string) error {
	for _, collection := range collections {
		if err := s.DeleteDocument(ctx, collection, ownerID); err != nil {
			return err
		}
	}
	return nil
}
