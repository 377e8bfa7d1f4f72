package market

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidPeriod    = errors.New("invalid period")
	ErrInsufficientData = errors.New("insufficient bar data")
	ErrBadBar           = errors.New("malformed bar")
)

// TrueRangeAverage computes the Wilder True Range of the trailing period
// bars and returns their arithmetic mean. The previous close is needed for
// each true range, so period+1 bars are required. For a window of identical
// prices the result is exactly 0.
func TrueRangeAverage(bars []Bar, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("%w: period must be > 0, got %d", ErrInvalidPeriod, period)
	}
	if len(bars) < period+1 {
		return 0, fmt.Errorf("%w: need %d bars for period %d, got %d",
			ErrInsufficientData, period+1, period, len(bars))
	}

	window := bars[len(bars)-period-1:]
	for i, b := range window {
		if b.High < b.Low {
			return 0, fmt.Errorf("%w: bar %d high %v less than low %v",
				ErrBadBar, len(bars)-period-1+i, b.High, b.Low)
		}
	}

	sum := 0.0
	for i := 1; i < len(window); i++ {
		cur, prev := window[i], window[i-1]
		tr := cur.High - cur.Low
		if d := math.Abs(cur.High - prev.Close); d > tr {
			tr = d
		}
		if d := math.Abs(cur.Low - prev.Close); d > tr {
			tr = d
		}
		sum += tr
	}
	return sum / float64(period), nil
}
