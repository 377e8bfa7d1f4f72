package gateway

import (
	"testing"
	"time"
)

func TestParseCombinedKline(t *testing.T) {
	raw := []byte(`{"stream":"btcusdt@kline_1m","data":{"e":"kline","E":1700000001000,"s":"BTCUSDT",` +
		`"k":{"t":1700000000000,"T":1700000059999,"s":"BTCUSDT","i":"1m",` +
		`"o":"45000.5","c":"45100.0","h":"45150.0","l":"44990.0","v":"12.5","x":true}}}`)

	symbol, bar, closed, err := ParseCombinedKline(raw)
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	if symbol != "BTCUSDT" {
		t.Fatalf("unexpected symbol %q", symbol)
	}
	if !closed {
		t.Fatalf("expected closed bar")
	}
	if bar.Open != 45000.5 || bar.High != 45150 || bar.Low != 44990 || bar.Close != 45100 || bar.Volume != 12.5 {
		t.Fatalf("unexpected bar %+v", bar)
	}
	if !bar.OpenTime.Equal(time.UnixMilli(1700000000000).UTC()) {
		t.Fatalf("unexpected open time %v", bar.OpenTime)
	}
}

func TestParseCombinedKline_OpenBar(t *testing.T) {
	raw := []byte(`{"stream":"ethusdt@kline_1m","data":{"s":"ETHUSDT",` +
		`"k":{"t":1700000000000,"o":"3000","c":"3001","h":"3002","l":"2999","v":"1","x":false}}}`)

	symbol, _, closed, err := ParseCombinedKline(raw)
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	if symbol != "ETHUSDT" || closed {
		t.Fatalf("unexpected symbol=%q closed=%v", symbol, closed)
	}
}

func TestParseCombinedKline_BadPrice(t *testing.T) {
	raw := []byte(`{"stream":"btcusdt@kline_1m","data":{"s":"BTCUSDT",` +
		`"k":{"t":1700000000000,"o":"not-a-number","x":false}}}`)

	if _, _, _, err := ParseCombinedKline(raw); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestParseCombinedKline_MissingPriceField(t *testing.T) {
	// no "o": a zero-valued bar must not reach the aggregator
	raw := []byte(`{"stream":"btcusdt@kline_1m","data":{"s":"BTCUSDT",` +
		`"k":{"t":1700000000000,"c":"45100.0","h":"45150.0","l":"44990.0","v":"12.5","x":true}}}`)

	if _, _, _, err := ParseCombinedKline(raw); err == nil {
		t.Fatalf("expected error for missing price field")
	}
}

func TestParseCombinedKline_BadJSON(t *testing.T) {
	if _, _, _, err := ParseCombinedKline([]byte(`{`)); err == nil {
		t.Fatalf("expected error")
	}
}
