package gateway

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const klinesBody = `[
  [1700000000000, "45000.5", "45500.0", "44800.0", "45200.0", "123.4", 1700003599999, "0", 10, "0", "0", "0"],
  [1700003600000, "45200.0", "45600.0", "45100.0", "45550.0", "98.7", 1700007199999, "0", 8, "0", "0", "0"]
]`

func TestKlinesClientFetchBars(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/klines" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("symbol") != "BTCUSDT" || q.Get("interval") != "1d" || q.Get("limit") != "2" {
			t.Fatalf("unexpected query %s", r.URL.RawQuery)
		}
		io.WriteString(w, klinesBody)
	}))
	defer ts.Close()

	cli := &KlinesClient{BaseURL: ts.URL, HTTPClient: ts.Client()}
	bars, err := cli.FetchBars("btcusdt", "1d", 2)
	if err != nil {
		t.Fatalf("fetch err: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	first := bars[0]
	if first.Open != 45000.5 || first.High != 45500 || first.Low != 44800 || first.Close != 45200 {
		t.Fatalf("unexpected bar %+v", first)
	}
	if first.Volume != 123.4 {
		t.Fatalf("unexpected volume %v", first.Volume)
	}
	if !first.OpenTime.Equal(time.UnixMilli(1700000000000).UTC()) {
		t.Fatalf("unexpected open time %v", first.OpenTime)
	}
}

func TestKlinesClientInvalidSymbol(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"code":-1121,"msg":"Invalid symbol."}`)
	}))
	defer ts.Close()

	cli := &KlinesClient{BaseURL: ts.URL, HTTPClient: ts.Client()}
	_, err := cli.FetchBars("NOSUCH", "1d", 5)
	if !errors.Is(err, ErrInvalidSymbol) {
		t.Fatalf("expected ErrInvalidSymbol, got %v", err)
	}
}

func TestKlinesClientOtherAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"code":-1003,"msg":"Too many requests."}`)
	}))
	defer ts.Close()

	cli := &KlinesClient{BaseURL: ts.URL, HTTPClient: ts.Client()}
	_, err := cli.FetchBars("BTCUSDT", "1d", 5)
	if !errors.Is(err, ErrMarketData) {
		t.Fatalf("expected ErrMarketData, got %v", err)
	}
	if errors.Is(err, ErrInvalidSymbol) {
		t.Fatalf("should not map to invalid symbol: %v", err)
	}
}

func TestKlinesClientMalformedTuple(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[[1700000000000, "45000.5"]]`)
	}))
	defer ts.Close()

	cli := &KlinesClient{BaseURL: ts.URL, HTTPClient: ts.Client()}
	_, err := cli.FetchBars("BTCUSDT", "1d", 1)
	if !errors.Is(err, ErrMarketData) {
		t.Fatalf("expected ErrMarketData, got %v", err)
	}
}

func TestKlinesClientStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, `[]`)
	}))
	defer ts.Close()

	cli := &KlinesClient{BaseURL: ts.URL, HTTPClient: ts.Client()}
	_, err := cli.FetchBars("BTCUSDT", "1d", 1)
	if !errors.Is(err, ErrMarketData) {
		t.Fatalf("expected ErrMarketData, got %v", err)
	}
}

func TestKlinesClientNoHTTPClient(t *testing.T) {
	cli := &KlinesClient{BaseURL: "http://localhost"}
	if _, err := cli.FetchBars("BTCUSDT", "1d", 1); err == nil {
		t.Fatalf("expected error without http client")
	}
}
