// Obscura - Letterboxd Obscurity Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obscura

package services

import (
	"context"
	"errors"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/obscura/internal/logging"
	"github.com/tomtom215/obscura/internal/metrics"
	"github.com/tomtom215/obscura/internal/store"
)

// gcDiscardRatio is Badger's recommended value-log rewrite threshold.
const gcDiscardRatio = 0.5

// StoreMaintenanceService runs the metadata store's periodic background
// work: Badger value-log garbage collection and the record-count gauge
// refresh. Badger never reclaims value-log space on its own; GC must be
// driven by the application.
type StoreMaintenanceService struct {
	store    store.FilmStore
	interval time.Duration
}

// NewStoreMaintenanceService creates the maintenance service.
func NewStoreMaintenanceService(filmStore store.FilmStore, interval time.Duration) *StoreMaintenanceService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &StoreMaintenanceService{store: filmStore, interval: interval}
}

// Serve implements suture.Service.
func (s *StoreMaintenanceService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.refreshGauges(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runGC()
			s.refreshGauges(ctx)
		}
	}
}

func (s *StoreMaintenanceService) runGC() {
	bs, ok := s.store.(*store.BadgerFilmStore)
	if !ok {
		return
	}
	// One GC call rewrites at most one value-log file; loop until Badger
	// reports nothing left to rewrite.
	for {
		err := bs.RunGC(gcDiscardRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return
		}
		if err != nil {
			logging.Warn().Err(err).Msg("store value-log GC failed")
			return
		}
	}
}

func (s *StoreMaintenanceService) refreshGauges(ctx context.Context) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("store stats refresh failed")
		return
	}
	metrics.UpdateStoreRecords(int64(stats.ResolvedCount), int64(stats.UnresolvedCount))
}

// String implements fmt.Stringer for suture logging.
func (s *StoreMaintenanceService) String() string {
	return "store-maintenance"
}
