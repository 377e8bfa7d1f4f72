package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestEstimateMetrics(t *testing.T) {
	ATRPerMinute.Reset()

	UpdateEstimate("BTCUSDT", 0.42)

	got := testutil.ToFloat64(ATRPerMinute.WithLabelValues("BTCUSDT"))
	if got != 0.42 {
		t.Errorf("Expected ATRPerMinute to be 0.42, got %f", got)
	}
}

func TestProjectionMetrics(t *testing.T) {
	ProjectionsTotal.Reset()
	EstimatedTradesPerDay.Reset()

	RecordProjection("arithmetic", "BTCUSDT", 0.36)
	RecordProjection("arithmetic", "BTCUSDT", 0.40)
	RecordProjection("geometric", "ETHUSDT", 1.2)

	if got := testutil.ToFloat64(ProjectionsTotal.WithLabelValues("arithmetic")); got != 2 {
		t.Errorf("Expected 2 arithmetic projections, got %f", got)
	}
	if got := testutil.ToFloat64(ProjectionsTotal.WithLabelValues("geometric")); got != 1 {
		t.Errorf("Expected 1 geometric projection, got %f", got)
	}
	if got := testutil.ToFloat64(EstimatedTradesPerDay.WithLabelValues("BTCUSDT")); got != 0.40 {
		t.Errorf("Expected latest trades/day 0.40, got %f", got)
	}
}

func TestFetchErrorMetrics(t *testing.T) {
	FetchErrorsTotal.Reset()

	IncrementFetchError("invalid_symbol")
	IncrementFetchError("invalid_symbol")

	if got := testutil.ToFloat64(FetchErrorsTotal.WithLabelValues("invalid_symbol")); got != 2 {
		t.Errorf("Expected 2 invalid_symbol errors, got %f", got)
	}
}

func TestSuggestFallbackMetric(t *testing.T) {
	before := testutil.ToFloat64(SuggestFallbacksTotal)

	IncrementSuggestFallback()
	IncrementSuggestFallback()

	if got := testutil.ToFloat64(SuggestFallbacksTotal); got != before+2 {
		t.Errorf("Expected %f suggest fallbacks, got %f", before+2, got)
	}
}
