// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"

	"github.com/tomtom215/reelmatch/internal/recommend"
)

// histogramCount extracts the sample count from a Prometheus histogram.
func histogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	m, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T is not a metric", o)
	}
	var pb io_prometheus_client.Metric
	if err := m.Write(&pb); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return pb.GetHistogram().GetSampleCount()
}

func TestRecordSnapshotBuild(t *testing.T) {
	t.Run("success updates gauges", func(t *testing.T) {
		info := recommend.SnapshotInfo{Version: 7, Movies: 3883, Ratings: 1000209, MatrixItems: 3260, MatrixUsers: 6040, CatalogTitles: 3883}
		RecordSnapshotBuild(2*time.Second, info, nil)

		if got := testutil.ToFloat64(SnapshotVersion); got != 7 {
			t.Errorf("SnapshotVersion = %v, want 7", got)
		}
		if got := testutil.ToFloat64(SnapshotSize.WithLabelValues("matrix_users")); got != 6040 {
			t.Errorf("SnapshotSize[matrix_users] = %v, want 6040", got)
		}
		if got := testutil.ToFloat64(SnapshotLastSuccess); got <= 0 {
			t.Errorf("SnapshotLastSuccess = %v, want > 0", got)
		}
	})

	t.Run("failure counts error and keeps version", func(t *testing.T) {
		before := testutil.ToFloat64(SnapshotBuildErrors)
		RecordSnapshotBuild(time.Second, recommend.SnapshotInfo{Version: 99}, errors.New("load failed"))

		if got := testutil.ToFloat64(SnapshotBuildErrors); got != before+1 {
			t.Errorf("SnapshotBuildErrors = %v, want %v", got, before+1)
		}
		if got := testutil.ToFloat64(SnapshotVersion); got == 99 {
			t.Error("SnapshotVersion updated on failed build")
		}
	})
}

func TestRecordRecommendation(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		results int
		err     error
		outcome string
	}{
		{name: "results", mode: "content", results: 5, outcome: "ok"},
		{name: "empty", mode: "hybrid", results: 0, outcome: "empty"},
		{name: "error", mode: "collaborative", err: recommend.ErrUntrainedModel, outcome: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := RecommendationRequests.WithLabelValues(tt.mode, tt.outcome)
			before := testutil.ToFloat64(counter)
			latencyBefore := histogramCount(t, RecommendationDuration.WithLabelValues(tt.mode))

			RecordRecommendation(tt.mode, 3*time.Millisecond, tt.results, tt.err)

			if got := testutil.ToFloat64(counter); got != before+1 {
				t.Errorf("requests[%s,%s] = %v, want %v", tt.mode, tt.outcome, got, before+1)
			}
			if got := histogramCount(t, RecommendationDuration.WithLabelValues(tt.mode)); got != latencyBefore+1 {
				t.Errorf("duration samples = %d, want %d", got, latencyBefore+1)
			}
		})
	}
}

func TestRecordTMDBRequest(t *testing.T) {
	counter := TMDBRequests.WithLabelValues("search", "200")
	before := testutil.ToFloat64(counter)

	RecordTMDBRequest("search", "200", 120*time.Millisecond)

	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Errorf("TMDBRequests = %v, want %v", got, before+1)
	}
}

func TestRecordCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(CacheHits.WithLabelValues("results"))
	misses := testutil.ToFloat64(CacheMisses.WithLabelValues("results"))

	RecordCacheLookup("results", true)
	RecordCacheLookup("results", false)
	RecordCacheLookup("results", false)

	if got := testutil.ToFloat64(CacheHits.WithLabelValues("results")); got != hits+1 {
		t.Errorf("CacheHits = %v, want %v", got, hits+1)
	}
	if got := testutil.ToFloat64(CacheMisses.WithLabelValues("results")); got != misses+2 {
		t.Errorf("CacheMisses = %v, want %v", got, misses+2)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("APIActiveRequests = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("APIActiveRequests = %v, want %v", got, before)
	}
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "none"},
		{fmt.Errorf("wrap: %w", recommend.ErrConfiguration), "configuration"},
		{fmt.Errorf("wrap: %w", recommend.ErrUnknownItem), "unknown_item"},
		{recommend.ErrUntrainedModel, "untrained"},
		{fmt.Errorf("search: %w", recommend.ErrExternalService), "external_service"},
		{recommend.ErrInvalidWeight, "invalid_weight"},
		{errors.New("boom"), "other"},
	}
	for _, tt := range tests {
		if got := ErrorKind(tt.err); got != tt.want {
			t.Errorf("ErrorKind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
