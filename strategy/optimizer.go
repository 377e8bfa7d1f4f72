package strategy

import "math"

// OptimizerContext carries the market state the suggestion is derived from.
type OptimizerContext struct {
	CurrentPrice   float64
	Volatility     float64
	FeeRatePercent float64
	LowerOverride  *float64
	UpperOverride  *float64
	Shape          GridShape
}

// OptimizerResult is a suggested (lower, upper, count) triple whose per-grid
// profit stays ahead of round-trip fees.
type OptimizerResult struct {
	LowerBound float64
	UpperBound float64
	GridCount  int
}

const (
	defaultBandPct  = 0.05  // symmetric band around the current price
	feeSafetyBuffer = 0.002 // fixed 0.2% cushion on top of round-trip fees

	// extreme bound/spacing combinations can push the count past what int
	// holds; the conversion must never wrap negative
	maxSuggestedGrids = math.MaxInt32
)

// Suggest proposes grid bounds and a grid count. It never fails: invalid
// overrides silently fall back to the default band, and any degenerate or
// non-finite intermediate resolves to a minimal safe result instead of
// propagating NaN or Infinity.
func Suggest(ctx OptimizerContext) OptimizerResult {
	lower := ctx.CurrentPrice * (1 - defaultBandPct)
	upper := ctx.CurrentPrice * (1 + defaultBandPct)

	if ctx.LowerOverride != nil || ctx.UpperOverride != nil {
		candLower, candUpper := lower, upper
		if ctx.LowerOverride != nil {
			candLower = *ctx.LowerOverride
		}
		if ctx.UpperOverride != nil {
			candUpper = *ctx.UpperOverride
		}
		// leniency policy: bad overrides degrade to the default band
		if candUpper > candLower {
			lower, upper = candLower, candUpper
		}
	}

	if !(lower > 0) || !(upper > lower) || !finite(lower) || !finite(upper) {
		anchor := positiveSignal(ctx)
		return OptimizerResult{
			LowerBound: anchor * (1 - defaultBandPct),
			UpperBound: anchor * (1 + defaultBandPct),
			GridCount:  1,
		}
	}

	// spacing below this cannot clear fees plus the safety buffer
	spacing := math.Max(ctx.Volatility, 2*(ctx.FeeRatePercent/100+feeSafetyBuffer)*lower)

	count := 1
	if spacing > 0 && finite(spacing) {
		var n float64
		if ctx.Shape == Geometric {
			n = math.Floor(math.Log(upper/lower) / math.Log(1+spacing/lower))
		} else {
			n = math.Floor((upper - lower) / spacing)
		}
		if finite(n) && n > 1 {
			if n > maxSuggestedGrids {
				n = maxSuggestedGrids
			}
			count = int(n)
		}
	}

	return OptimizerResult{LowerBound: lower, UpperBound: upper, GridCount: count}
}

// positiveSignal picks any positive price available to anchor the fallback
// band; 1 is the last resort so the result stays finite and ordered.
func positiveSignal(ctx OptimizerContext) float64 {
	if ctx.CurrentPrice > 0 && finite(ctx.CurrentPrice) {
		return ctx.CurrentPrice
	}
	if ctx.UpperOverride != nil && *ctx.UpperOverride > 0 && finite(*ctx.UpperOverride) {
		return *ctx.UpperOverride
	}
	if ctx.LowerOverride != nil && *ctx.LowerOverride > 0 && finite(*ctx.LowerOverride) {
		return *ctx.LowerOverride
	}
	return 1
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
