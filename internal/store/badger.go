// Obscura - Letterboxd Obscurity Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obscura

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/obscura/internal/metrics"
	"github.com/tomtom215/obscura/internal/models"
)

// Key prefix for BadgerDB storage
const filmKeyPrefix = "film:"

// BadgerFilmStore implements FilmStore using BadgerDB for durable storage.
// Suitable for production use with persistence across restarts.
type BadgerFilmStore struct {
	db *badger.DB
}

// NewBadgerFilmStore creates a film store from an existing DB connection.
func NewBadgerFilmStore(db *badger.DB) *BadgerFilmStore {
	return &BadgerFilmStore{db: db}
}

func filmKey(id models.Identity) []byte {
	return []byte(filmKeyPrefix + id.Key())
}

// Get retrieves a film record by identity.
func (s *BadgerFilmStore) Get(ctx context.Context, id models.Identity) (*models.FilmRecord, error) {
	start := time.Now()
	var record models.FilmRecord

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(filmKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get film record: %w", err)
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})

	metrics.RecordStoreLookup(err == nil, time.Since(start))
	if err != nil {
		return nil, err
	}

	return &record, nil
}

// Upsert stores a film record, replacing any existing record for the
// same identity.
func (s *BadgerFilmStore) Upsert(ctx context.Context, record *models.FilmRecord) error {
	start := time.Now()

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal film record: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(filmKey(record.Identity), data)
	})
	if err != nil {
		return fmt.Errorf("set film record: %w", err)
	}

	metrics.RecordStoreUpsert(time.Since(start))
	return nil
}

// BulkUpsert stores multiple records via a write batch. Badger splits
// the batch into multiple transactions when it outgrows txn limits.
func (s *BadgerFilmStore) BulkUpsert(ctx context.Context, records []*models.FilmRecord) error {
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for _, record := range records {
		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal film record %q: %w", record.Identity.Key(), err)
		}
		if err := wb.Set(filmKey(record.Identity), data); err != nil {
			return fmt.Errorf("batch set film record: %w", err)
		}
	}

	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush film record batch: %w", err)
	}

	for range records {
		metrics.StoreUpserts.Inc()
	}
	return nil
}

// Stats counts stored records by resolution source. Iterates the film
// prefix with values prefetched since source lives in the record body.
func (s *BadgerFilmStore) Stats(ctx context.Context) (*models.StoreStats, error) {
	stats := &models.StoreStats{}

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		prefix := []byte(filmKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var record models.FilmRecord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			})
			if err != nil {
				return fmt.Errorf("unmarshal film record: %w", err)
			}

			stats.TotalRecords++
			if record.Source == models.SourceUnresolved {
				stats.UnresolvedCount++
			} else {
				stats.ResolvedCount++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// RunGC runs one round of Badger value-log garbage collection. Returns
// badger.ErrNoRewrite when nothing needed collecting, which callers may
// treat as success.
func (s *BadgerFilmStore) RunGC(discardRatio float64) error {
	return s.db.RunValueLogGC(discardRatio)
}

// Close closes the underlying BadgerDB.
func (s *BadgerFilmStore) Close() error {
	return s.db.Close()
}
