// Obscura - Letterboxd Obscurity Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obscura

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/obscura/internal/config"
	"github.com/tomtom215/obscura/internal/models"
)

// ErrNotFound is returned when no record exists for the requested film identity.
var ErrNotFound = errors.New("film record not found")

// FilmStore is the persistent metadata cache for resolved films.
// Records are keyed by normalized (title, year) identity. Writes follow
// last-writer-wins semantics; callers are expected to prefer richer
// records before upserting.
type FilmStore interface {
	// Get returns the record for the given identity, or ErrNotFound.
	Get(ctx context.Context, id models.Identity) (*models.FilmRecord, error)

	// Upsert stores a record, replacing any existing record for the
	// same identity.
	Upsert(ctx context.Context, record *models.FilmRecord) error

	// BulkUpsert stores multiple records in a single batch.
	BulkUpsert(ctx context.Context, records []*models.FilmRecord) error

	// Stats returns record counts broken down by resolution source.
	Stats(ctx context.Context) (*models.StoreStats, error)

	// Close releases the underlying database.
	Close() error
}

// Open creates a FilmStore backed by BadgerDB according to configuration.
// With StoreConfig.InMemory set, the database lives entirely in memory;
// this is primarily for tests and ephemeral deployments.
func Open(cfg config.StoreConfig) (FilmStore, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for film metadata: %w", err)
	}

	return NewBadgerFilmStore(db), nil
}
