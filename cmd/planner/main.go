package main

import (
	"encoding/json"
	"errors"
	"flag"
	"log"
	"os"
	"strings"

	"grid-planner-go/config"
	"grid-planner-go/gateway"
	"grid-planner-go/infrastructure/logger"
	"grid-planner-go/market"
	"grid-planner-go/metrics"
	"grid-planner-go/strategy"
)

// report is what the planner prints to stdout for the caller to render.
type report struct {
	Symbol     string                    `json:"symbol"`
	Suggestion *strategy.OptimizerResult `json:"suggestion,omitempty"`
	Projection strategy.Projection       `json:"projection"`
}

func main() {
	cfgPath := flag.String("config", "", "optional YAML config path")
	symbol := flag.String("symbol", "BTCUSDT", "trading pair")
	principal := flag.Float64("principal", 10000, "capital committed to the grid")
	lower := flag.Float64("lower", 0, "lower grid bound (0 = ask the optimizer)")
	upper := flag.Float64("upper", 0, "upper grid bound (0 = ask the optimizer)")
	grids := flag.Int("grids", 0, "grid count (0 = ask the optimizer)")
	leverage := flag.Float64("leverage", 1, "leverage multiplier")
	fee := flag.Float64("fee", 0.1, "fee rate per leg, percent")
	days := flag.Int("days", 30, "projection horizon in days")
	shapeFlag := flag.String("shape", "arithmetic", "grid shape: arithmetic or geometric")
	directionFlag := flag.String("direction", "long", "position direction: long, short or neutral")
	volFlag := flag.Float64("vol", -1, "per-minute volatility (negative = estimate from market data)")
	entry := flag.Float64("entry", 0, "optional entry price for buy-and-hold P&L")
	exit := flag.Float64("exit", 0, "optional exit price for buy-and-hold P&L")
	period := flag.Int("period", strategy.DefaultVolatilityPeriod, "ATR lookback in bars")
	interval := flag.String("interval", "1d", "bar interval for the ATR window")
	baseURL := flag.String("baseURL", "https://api.binance.com", "klines endpoint base URL")
	metricsAddr := flag.String("metricsAddr", "", "Prometheus listen address, empty to disable")
	flag.Parse()

	logCfg := logger.DefaultConfig()
	estInterval := *interval
	estPeriod := *period
	gwBaseURL := *baseURL
	restRate, restBurst := 5.0, 10

	symbolUpper := strings.ToUpper(*symbol)
	if *cfgPath != "" {
		cfg, err := config.LoadWithEnvOverrides(*cfgPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		gwBaseURL = cfg.Gateway.BaseURL
		restRate, restBurst = cfg.Gateway.RestRate, cfg.Gateway.RestBurst
		estInterval, estPeriod = cfg.Estimator.Interval, cfg.Estimator.Period
		logCfg.Level = cfg.Logging.Level
		logCfg.Format = cfg.Logging.Format
		if sc, ok := cfg.Symbols[symbolUpper]; ok {
			applySymbolDefaults(sc, principal, lower, upper, grids, leverage, fee, days, shapeFlag, directionFlag)
		}
	}

	zl, err := logger.New(logCfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Close()

	if *metricsAddr != "" {
		metrics.StartMetricsServer(*metricsAddr)
	}

	shape, err := strategy.ParseGridShape(*shapeFlag)
	if err != nil {
		log.Fatalf("parse shape: %v", err)
	}
	direction, err := strategy.ParsePositionDirection(*directionFlag)
	if err != nil {
		log.Fatalf("parse direction: %v", err)
	}

	client := &gateway.KlinesClient{
		BaseURL:    gwBaseURL,
		HTTPClient: gateway.NewDefaultHTTPClient(),
		Limiter:    gateway.NewTokenBucketLimiter(restRate, restBurst),
	}
	estimator := &market.Estimator{Provider: client, Interval: estInterval}

	p := strategy.Parameters{
		Symbol:         symbolUpper,
		Principal:      *principal,
		LowerBound:     *lower,
		UpperBound:     *upper,
		GridCount:      *grids,
		Leverage:       *leverage,
		FeeRatePercent: *fee,
		DurationDays:   *days,
		Shape:          shape,
		Direction:      direction,
	}
	if *entry > 0 {
		p.EntryPrice = entry
	}
	if *exit > 0 {
		p.ExitPrice = exit
	}

	out := report{Symbol: symbolUpper}

	needSuggestion := *lower <= 0 || *upper <= 0 || *grids < 1
	switch {
	case *volFlag >= 0:
		p.VolatilityPerMinute = volFlag
		if needSuggestion {
			log.Fatalf("suggesting bounds requires market data; pass -lower/-upper/-grids alongside -vol")
		}
	case needSuggestion:
		bars, err := client.FetchBars(symbolUpper, estInterval, estPeriod+1)
		if err != nil {
			metrics.IncrementFetchError(fetchReason(err))
			zl.LogError(err, map[string]interface{}{"symbol": symbolUpper})
			log.Fatalf("fetch bars: %v", err)
		}
		zl.LogFetch(symbolUpper, estInterval, len(bars), nil)

		atr, err := market.TrueRangeAverage(bars, estPeriod)
		if err != nil {
			log.Fatalf("average true range: %v", err)
		}
		volPerMinute := atr / market.MinutesPerDay
		p.VolatilityPerMinute = &volPerMinute
		metrics.UpdateEstimate(symbolUpper, volPerMinute)

		octx := strategy.OptimizerContext{
			CurrentPrice:   bars[len(bars)-1].Close,
			Volatility:     atr,
			FeeRatePercent: *fee,
			Shape:          shape,
		}
		if *lower > 0 {
			octx.LowerOverride = lower
		}
		if *upper > 0 {
			octx.UpperOverride = upper
		}
		sug := strategy.Suggest(octx)
		if (octx.LowerOverride != nil && sug.LowerBound != *octx.LowerOverride) ||
			(octx.UpperOverride != nil && sug.UpperBound != *octx.UpperOverride) {
			metrics.IncrementSuggestFallback()
		}
		out.Suggestion = &sug
		p.LowerBound, p.UpperBound = sug.LowerBound, sug.UpperBound
		if *grids < 1 {
			p.GridCount = sug.GridCount
		}
	}
	// otherwise VolatilityPerMinute stays nil and the projector resolves
	// it through the estimator

	estimatorResolves := p.VolatilityPerMinute == nil

	projector := strategy.Projector{Volatility: estimator.EstimateVolatilityPerMinute}
	projection, err := projector.Project(p)
	if err != nil {
		if errors.Is(err, gateway.ErrInvalidSymbol) || errors.Is(err, gateway.ErrMarketData) {
			metrics.IncrementFetchError(fetchReason(err))
		}
		zl.LogError(err, map[string]interface{}{"symbol": symbolUpper})
		log.Fatalf("project: %v", err)
	}
	out.Projection = projection
	if estimatorResolves {
		metrics.UpdateEstimate(symbolUpper, projection.VolatilityPerMinuteUsed)
	}

	metrics.RecordProjection(shape.String(), symbolUpper, projection.EstimatedTradesPerDay)
	zl.LogProjection(symbolUpper, map[string]interface{}{
		"shape":        shape.String(),
		"direction":    direction.String(),
		"gridCount":    p.GridCount,
		"lower":        p.LowerBound,
		"upper":        p.UpperBound,
		"tradesPerDay": projection.EstimatedTradesPerDay,
		"totalNet":     projection.TotalNetProfit,
	})
	if projection.RangeWarning != "" {
		zl.Warn("range warning: " + projection.RangeWarning)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("encode report: %v", err)
	}
}

func applySymbolDefaults(sc config.SymbolConfig, principal, lower, upper *float64,
	grids *int, leverage, fee *float64, days *int, shape, direction *string) {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if !set["principal"] && sc.Principal > 0 {
		*principal = sc.Principal
	}
	if !set["lower"] && sc.LowerBound > 0 {
		*lower = sc.LowerBound
	}
	if !set["upper"] && sc.UpperBound > 0 {
		*upper = sc.UpperBound
	}
	if !set["grids"] && sc.GridCount > 0 {
		*grids = sc.GridCount
	}
	if !set["leverage"] && sc.Leverage > 0 {
		*leverage = sc.Leverage
	}
	if !set["fee"] && sc.FeeRatePercent > 0 {
		*fee = sc.FeeRatePercent
	}
	if !set["days"] && sc.DurationDays > 0 {
		*days = sc.DurationDays
	}
	if !set["shape"] && sc.GridShape != "" {
		*shape = sc.GridShape
	}
	if !set["direction"] && sc.Direction != "" {
		*direction = sc.Direction
	}
}

func fetchReason(err error) string {
	switch {
	case errors.Is(err, gateway.ErrInvalidSymbol):
		return "invalid_symbol"
	case errors.Is(err, gateway.ErrMarketData):
		return "market_data"
	}
	return "other"
}
