package strategy

import (
	"fmt"

	"grid-planner-go/market"
)

// VolatilitySource resolves a per-minute volatility rate for a symbol when
// the caller did not supply one. Keeping it a function value keeps Project
// itself network-free and testable.
type VolatilitySource func(symbol string, period int) (float64, error)

// DefaultVolatilityPeriod is the ATR lookback used when volatility has to
// be fetched on demand.
const DefaultVolatilityPeriod = 14

// Projection is the full profit/loss picture for one parameter set.
// Recomputed from scratch on every call; nothing here is persisted.
type Projection struct {
	GridSpacing             float64
	EstimatedTradesPerDay   float64
	InvestmentPerGridLevel  float64
	GrossProfitPerRoundTrip float64
	FeePerRoundTrip         float64
	NetProfitPerRoundTrip   float64
	DailyGrossProfit        float64
	DailyNetProfit          float64
	TotalGrossProfit        float64
	TotalNetProfit          float64
	VolatilityPerMinuteUsed float64
	EntryExitProfit         *float64
	TotalPortfolioValue     *float64
	RangeWarning            string
}

// Projector computes grid projections. Volatility is optional; without it
// Project requires VolatilityPerMinute to be set on the parameters.
type Projector struct {
	Volatility VolatilitySource
}

// Project validates params and derives the projection.
//
// Trade frequency uses the average price step (upper-lower)/gridCount for
// both shapes. For a geometric grid that overstates crossings near the top
// of the range and understates them near the bottom; the exact crossing
// distribution over non-uniform lines is deliberately not modelled.
func (pr Projector) Project(p Parameters) (Projection, error) {
	var out Projection
	if err := p.validate(); err != nil {
		return out, err
	}

	vol, err := pr.resolveVolatility(p)
	if err != nil {
		return out, err
	}

	invest := p.Principal / float64(p.GridCount)
	averageStep := (p.UpperBound - p.LowerBound) / float64(p.GridCount)
	midPrice := (p.LowerBound + p.UpperBound) / 2

	out.InvestmentPerGridLevel = invest
	out.VolatilityPerMinuteUsed = vol

	var gross float64
	switch p.Shape {
	case Geometric:
		ratio := p.gridRatio()
		out.GridSpacing = ratio
		if p.Direction == Short {
			gross = invest * (1 - 1/ratio) * p.Leverage
		} else {
			gross = invest * (ratio - 1) * p.Leverage
		}
	default:
		out.GridSpacing = averageStep
		gross = invest * averageStep / midPrice * p.Leverage
	}

	if vol > 0 && averageStep > 0 {
		crossingsPerDay := vol * market.MinutesPerDay / averageStep
		out.EstimatedTradesPerDay = crossingsPerDay / 2
	}

	out.GrossProfitPerRoundTrip = gross
	out.FeePerRoundTrip = invest * (p.FeeRatePercent / 100) * p.Leverage * 2
	out.NetProfitPerRoundTrip = gross - out.FeePerRoundTrip
	out.DailyGrossProfit = out.GrossProfitPerRoundTrip * out.EstimatedTradesPerDay
	out.DailyNetProfit = out.NetProfitPerRoundTrip * out.EstimatedTradesPerDay
	out.TotalGrossProfit = out.DailyGrossProfit * float64(p.DurationDays)
	out.TotalNetProfit = out.DailyNetProfit * float64(p.DurationDays)

	if p.EntryPrice != nil && p.ExitPrice != nil {
		notional := p.Principal * p.Leverage
		qty := notional / *p.EntryPrice
		var pnl float64
		if p.Direction == Short {
			pnl = (*p.EntryPrice - *p.ExitPrice) * qty
		} else {
			pnl = (*p.ExitPrice - *p.EntryPrice) * qty
		}
		pnl -= notional * (p.FeeRatePercent / 100) * 2
		total := p.Principal + pnl + out.TotalNetProfit
		out.EntryExitProfit = &pnl
		out.TotalPortfolioValue = &total
	}

	if p.EntryPrice != nil && (*p.EntryPrice < p.LowerBound || *p.EntryPrice > p.UpperBound) {
		out.RangeWarning = fmt.Sprintf("entry price %v outside grid range [%v, %v]",
			*p.EntryPrice, p.LowerBound, p.UpperBound)
	}

	return out, nil
}

func (pr Projector) resolveVolatility(p Parameters) (float64, error) {
	if p.VolatilityPerMinute != nil {
		return *p.VolatilityPerMinute, nil
	}
	if p.Symbol == "" {
		return 0, fmt.Errorf("%w: symbol required when volatilityPerMinute is not supplied", ErrMissingInput)
	}
	if pr.Volatility == nil {
		return 0, fmt.Errorf("%w: volatility source not configured", ErrMissingInput)
	}
	vol, err := pr.Volatility(p.Symbol, DefaultVolatilityPeriod)
	if err != nil {
		return 0, fmt.Errorf("resolve volatility %s: %w", p.Symbol, err)
	}
	return vol, nil
}
