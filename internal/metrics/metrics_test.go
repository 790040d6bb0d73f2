// Obscura - Letterboxd Obscurity Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obscura

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/api/v1/analyze", "200"))
	RecordAPIRequest("POST", "/api/v1/analyze", "200", 50*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/api/v1/analyze", "200"))
	if after != before+1 {
		t.Errorf("APIRequestsTotal = %v, want %v", after, before+1)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	base := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != base+1 {
		t.Errorf("after inc: gauge = %v, want %v", got, base+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != base {
		t.Errorf("after dec: gauge = %v, want %v", got, base)
	}
}

func TestRecordStoreLookup(t *testing.T) {
	hits := testutil.ToFloat64(StoreHits)
	misses := testutil.ToFloat64(StoreMisses)

	RecordStoreLookup(true, time.Millisecond)
	RecordStoreLookup(false, time.Millisecond)

	if got := testutil.ToFloat64(StoreHits); got != hits+1 {
		t.Errorf("StoreHits = %v, want %v", got, hits+1)
	}
	if got := testutil.ToFloat64(StoreMisses); got != misses+1 {
		t.Errorf("StoreMisses = %v, want %v", got, misses+1)
	}
}

func TestUpdateStoreRecords(t *testing.T) {
	UpdateStoreRecords(13, 2)
	if got := testutil.ToFloat64(StoreRecords.WithLabelValues("resolved")); got != 13 {
		t.Errorf("resolved gauge = %v, want 13", got)
	}
	if got := testutil.ToFloat64(StoreRecords.WithLabelValues("unresolved")); got != 2 {
		t.Errorf("unresolved gauge = %v, want 2", got)
	}
}

func TestRecordResolution(t *testing.T) {
	before := testutil.ToFloat64(ResolutionsTotal.WithLabelValues("cached"))
	RecordResolution("cached")
	if got := testutil.ToFloat64(ResolutionsTotal.WithLabelValues("cached")); got != before+1 {
		t.Errorf("ResolutionsTotal = %v, want %v", got, before+1)
	}
}

func TestRecordAnalysisOutcomes(t *testing.T) {
	before := testutil.ToFloat64(AnalysesTotal.WithLabelValues("not_found"))
	RecordAnalysis("not_found", 0, time.Second)
	if got := testutil.ToFloat64(AnalysesTotal.WithLabelValues("not_found")); got != before+1 {
		t.Errorf("AnalysesTotal = %v, want %v", got, before+1)
	}

	// success also observes duration and film count; just verify no panic
	RecordAnalysis("success", 250, 30*time.Second)
}
