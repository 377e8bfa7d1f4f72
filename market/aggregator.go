package market

import (
	"sync"
	"time"
)

// Aggregator rolls a trade stream into fixed-interval bars. Stream
// consumers use it to build the daily bars the volatility estimator needs
// without polling REST.
type Aggregator struct {
	Interval time.Duration
	mu       sync.Mutex
	current  *Bar
}

func NewAggregator(interval time.Duration) *Aggregator {
	return &Aggregator{Interval: interval}
}

// OnTrade updates the open bar and returns the closed bar when the trade
// falls into a new interval, nil otherwise.
func (a *Aggregator) OnTrade(price, qty float64, ts time.Time) *Bar {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil || ts.Sub(a.current.OpenTime) >= a.Interval {
		var closed *Bar
		if a.current != nil {
			closed = a.current
			// the boundary trade also closes the previous bar
			closed.Close = price
			if price > closed.High {
				closed.High = price
			}
			if price < closed.Low {
				closed.Low = price
			}
		}
		a.current = &Bar{
			OpenTime: ts,
			Open:     price,
			High:     price,
			Low:      price,
			Close:    price,
			Volume:   qty,
		}
		return closed
	}

	if price > a.current.High {
		a.current.High = price
	}
	if price < a.current.Low {
		a.current.Low = price
	}
	a.current.Close = price
	a.current.Volume += qty
	return nil
}

// OnBar merges a finer-grained bar into the open bucket and returns the
// closed bucket when b starts a new interval, nil otherwise. Used to roll
// streamed 1m bars into the coarser buckets the estimator wants.
func (a *Aggregator) OnBar(b Bar) *Bar {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil || b.OpenTime.Sub(a.current.OpenTime) >= a.Interval {
		closed := a.current
		nb := b
		a.current = &nb
		return closed
	}

	if b.High > a.current.High {
		a.current.High = b.High
	}
	if b.Low < a.current.Low {
		a.current.Low = b.Low
	}
	a.current.Close = b.Close
	a.current.Volume += b.Volume
	return nil
}
