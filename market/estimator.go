package market

import (
	"errors"
	"fmt"
)

// MinutesPerDay converts a daily range estimate into a per-minute rate.
const MinutesPerDay = 1440.0

// BarProvider supplies ordered OHLCV bars for a symbol and interval.
// Implementations own networking, timeouts and retries; the estimator only
// surfaces their failures.
type BarProvider interface {
	FetchBars(symbol, interval string, limit int) ([]Bar, error)
}

// Estimator turns recent daily bars into a per-minute volatility rate.
type Estimator struct {
	Provider BarProvider
	Interval string // bar interval to request, defaults to "1d"
}

// EstimateVolatilityPerMinute fetches period+1 daily bars, averages the
// true range over the trailing period and divides by the minutes in a day.
func (e *Estimator) EstimateVolatilityPerMinute(symbol string, period int) (float64, error) {
	if e == nil || e.Provider == nil {
		return 0, errors.New("bar provider not set")
	}
	if period <= 0 {
		return 0, fmt.Errorf("%w: period must be > 0, got %d", ErrInvalidPeriod, period)
	}
	interval := e.Interval
	if interval == "" {
		interval = "1d"
	}
	bars, err := e.Provider.FetchBars(symbol, interval, period+1)
	if err != nil {
		return 0, fmt.Errorf("fetch bars %s: %w", symbol, err)
	}
	atr, err := TrueRangeAverage(bars, period)
	if err != nil {
		return 0, err
	}
	return atr / MinutesPerDay, nil
}
