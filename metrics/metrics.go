// Package metrics provides Prometheus metrics for the grid planner
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ATRPerMinute is the latest per-minute volatility estimate by symbol.
	ATRPerMinute = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "planner_atr_per_minute",
		Help: "Latest per-minute average true range by symbol",
	}, []string{"symbol"})

	// EstimatedTradesPerDay is the latest projected round-trip frequency.
	EstimatedTradesPerDay = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "planner_estimated_trades_per_day",
		Help: "Projected grid round trips per day by symbol",
	}, []string{"symbol"})

	// ProjectionsTotal counts completed projections by grid shape.
	ProjectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_projections_total",
		Help: "Completed grid projections by shape",
	}, []string{"shape"})

	// SuggestFallbacksTotal counts optimizer suggestions that discarded the
	// requested bounds and fell back to the default band.
	SuggestFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planner_suggest_fallbacks_total",
		Help: "Optimizer suggestions that fell back to the default band",
	})

	// FetchErrorsTotal counts bar-fetch failures by reason.
	FetchErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_fetch_errors_total",
		Help: "Bar fetch failures by reason",
	}, []string{"reason"})
)

// UpdateEstimate records the volatility estimate for a symbol.
func UpdateEstimate(symbol string, atrPerMinute float64) {
	ATRPerMinute.WithLabelValues(symbol).Set(atrPerMinute)
}

// RecordProjection records one completed projection.
func RecordProjection(shape, symbol string, tradesPerDay float64) {
	ProjectionsTotal.WithLabelValues(shape).Inc()
	EstimatedTradesPerDay.WithLabelValues(symbol).Set(tradesPerDay)
}

// IncrementSuggestFallback counts one optimizer fallback.
func IncrementSuggestFallback() {
	SuggestFallbacksTotal.Inc()
}

// IncrementFetchError counts one bar-fetch failure.
func IncrementFetchError(reason string) {
	FetchErrorsTotal.WithLabelValues(reason).Inc()
}

// StartMetricsServer serves /metrics on addr in the background.
func StartMetricsServer(addr string) {
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		_ = http.ListenAndServe(addr, nil)
	}()
}
