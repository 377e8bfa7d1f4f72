package market

import "time"

// Bar represents a single OHLCV candle. Bars are ordered oldest to newest
// and are treated as read-only once fetched.
type Bar struct {
	OpenTime time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
}
