package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"grid-planner-go/market"
)

var (
	ErrInvalidSymbol = errors.New("invalid symbol")
	ErrMarketData    = errors.New("market data unavailable")
)

// binance rejects unknown symbols with this code
const codeInvalidSymbol = -1121

// KlinesClient fetches OHLCV bars from a Binance-style klines endpoint.
// HTTPClient is injectable so tests can point it at httptest; Limiter, when
// set, throttles outbound requests.
type KlinesClient struct {
	BaseURL    string
	HTTPClient *http.Client
	Limiter    RateLimiter
}

type apiError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// FetchBars requests up to limit bars for symbol/interval, oldest first.
// The endpoint answers either a JSON array of fixed-width tuples or an
// error object {code,msg} in its place; the latter is translated into
// ErrInvalidSymbol or ErrMarketData.
func (c *KlinesClient) FetchBars(symbol, interval string, limit int) ([]market.Bar, error) {
	if c == nil || c.HTTPClient == nil {
		return nil, errors.New("http client not set")
	}
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol required", ErrInvalidSymbol)
	}
	if interval == "" {
		interval = "1d"
	}
	if c.Limiter != nil {
		c.Limiter.Wait()
	}

	q := url.Values{}
	q.Set("symbol", strings.ToUpper(symbol))
	q.Set("interval", interval)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	endpoint := c.BaseURL + "/api/v3/klines?" + q.Encode()

	resp, err := c.HTTPClient.Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMarketData, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrMarketData, err)
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var ae apiError
		if err := json.Unmarshal(trimmed, &ae); err == nil {
			return nil, translateAPIError(ae)
		}
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: klines status %d", ErrMarketData, resp.StatusCode)
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var rows [][]interface{}
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("%w: decode klines: %v", ErrMarketData, err)
	}

	bars := make([]market.Bar, 0, len(rows))
	for i, row := range rows {
		bar, err := tupleToBar(row)
		if err != nil {
			return nil, fmt.Errorf("%w: kline %d: %v", ErrMarketData, i, err)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func translateAPIError(ae apiError) error {
	if ae.Code == codeInvalidSymbol || strings.Contains(strings.ToLower(ae.Msg), "invalid symbol") {
		return fmt.Errorf("%w: %s (code %d)", ErrInvalidSymbol, ae.Msg, ae.Code)
	}
	return fmt.Errorf("%w: %s (code %d)", ErrMarketData, ae.Msg, ae.Code)
}

// tupleToBar maps one fixed-width kline tuple
// [openTime, open, high, low, close, volume, ...] onto a Bar. Prices come
// back as JSON strings, timestamps as millisecond numbers.
func tupleToBar(row []interface{}) (market.Bar, error) {
	var bar market.Bar
	if len(row) < 6 {
		return bar, fmt.Errorf("tuple has %d fields, want >= 6", len(row))
	}
	ms, err := tupleInt(row[0])
	if err != nil {
		return bar, fmt.Errorf("openTime: %v", err)
	}
	bar.OpenTime = time.UnixMilli(ms).UTC()

	fields := []struct {
		name string
		dst  *float64
		raw  interface{}
	}{
		{"open", &bar.Open, row[1]},
		{"high", &bar.High, row[2]},
		{"low", &bar.Low, row[3]},
		{"close", &bar.Close, row[4]},
		{"volume", &bar.Volume, row[5]},
	}
	for _, f := range fields {
		v, err := tupleFloat(f.raw)
		if err != nil {
			return bar, fmt.Errorf("%s: %v", f.name, err)
		}
		*f.dst = v
	}
	return bar, nil
}

func tupleFloat(v interface{}) (float64, error) {
	switch t := v.(type) {
	case string:
		return strconv.ParseFloat(t, 64)
	case json.Number:
		return t.Float64()
	}
	return 0, fmt.Errorf("unexpected type %T", v)
}

func tupleInt(v interface{}) (int64, error) {
	switch t := v.(type) {
	case json.Number:
		return t.Int64()
	case string:
		return strconv.ParseInt(t, 10, 64)
	}
	return 0, fmt.Errorf("unexpected type %T", v)
}

// NewDefaultHTTPClient provides an http.Client with a sane timeout.
func NewDefaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}
