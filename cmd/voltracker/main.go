package main

import (
	"flag"
	"log"
	"strings"
	"time"

	"grid-planner-go/gateway"
	"grid-planner-go/logs"
	"grid-planner-go/market"
	"grid-planner-go/metrics"
)

// volTracker rolls streamed klines into coarser buckets and refreshes the
// ATR estimate whenever a bucket closes.
type volTracker struct {
	period int
	bucket time.Duration
	agg    *market.Aggregator
	bars   []market.Bar
}

func newVolTracker(period int, bucket time.Duration) *volTracker {
	return &volTracker{
		period: period,
		bucket: bucket,
		agg:    market.NewAggregator(bucket),
	}
}

func (t *volTracker) OnKline(symbol string, bar market.Bar, closed bool) {
	if !closed {
		return
	}
	bucketBar := t.agg.OnBar(bar)
	if bucketBar == nil {
		return
	}
	t.bars = append(t.bars, *bucketBar)
	if len(t.bars) > t.period+1 {
		t.bars = t.bars[1:]
	}
	atr, err := market.TrueRangeAverage(t.bars, t.period)
	if err != nil {
		// still warming up
		return
	}
	perMinute := atr / t.bucket.Minutes()
	metrics.UpdateEstimate(symbol, perMinute)
	logs.DefaultLogger.Info("volatility update",
		"symbol", symbol,
		"atr", atr,
		"perMinute", perMinute,
		"buckets", len(t.bars),
	)
}

func main() {
	symbol := flag.String("symbol", "BTCUSDT", "trading pair")
	interval := flag.String("interval", "1m", "kline interval to stream")
	bucket := flag.Duration("bucket", time.Hour, "aggregation bucket for the ATR window")
	period := flag.Int("period", 14, "ATR lookback in buckets")
	endpoint := flag.String("endpoint", gateway.BinanceSpotWSEndpoint, "websocket endpoint")
	metricsAddr := flag.String("metricsAddr", ":9100", "Prometheus listen address, empty to disable")
	backoff := flag.Duration("backoff", 3*time.Second, "reconnect backoff")
	flag.Parse()

	if *metricsAddr != "" {
		metrics.StartMetricsServer(*metricsAddr)
	}

	tracker := newVolTracker(*period, *bucket)
	symbolUpper := strings.ToUpper(*symbol)

	for {
		stream := gateway.NewKlineStream()
		stream.BaseEndpoint = *endpoint
		if err := stream.Subscribe(symbolUpper, *interval); err != nil {
			log.Fatalf("subscribe: %v", err)
		}
		if err := stream.Run(tracker); err != nil {
			logs.DefaultLogger.Warn("stream dropped", "error", err.Error())
		}
		time.Sleep(*backoff)
	}
}
