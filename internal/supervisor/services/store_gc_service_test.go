// Obscura - Letterboxd Obscurity Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obscura

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/obscura/internal/config"
	"github.com/tomtom215/obscura/internal/metrics"
	"github.com/tomtom215/obscura/internal/models"
	"github.com/tomtom215/obscura/internal/store"
)

func TestStoreMaintenanceService(t *testing.T) {
	s, err := store.Open(config.StoreConfig{Path: t.TempDir()})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	watches := int64(1000)
	record := &models.FilmRecord{
		Identity:   models.NewIdentity("Some Film", 2000),
		Title:      "Some Film",
		Year:       2000,
		Genres:     []string{"Drama"},
		WatchCount: &watches,
		Source:     models.SourcePrimary,
		ResolvedAt: time.Now().UTC(),
	}
	if err := s.Upsert(context.Background(), record); err != nil {
		t.Fatalf("Upsert() error: %v", err)
	}

	svc := NewStoreMaintenanceService(s, 20*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	// Let at least one maintenance cycle run
	time.Sleep(60 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}

	if got := testutil.ToFloat64(metrics.StoreRecords.WithLabelValues("resolved")); got != 1 {
		t.Errorf("resolved gauge = %v, want 1", got)
	}
}

func TestStoreMaintenanceServiceString(t *testing.T) {
	s, err := store.Open(config.StoreConfig{InMemory: true})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	if got := NewStoreMaintenanceService(s, 0).String(); got != "store-maintenance" {
		t.Errorf("String() = %q", got)
	}
}
