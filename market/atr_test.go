package market

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func mkBar(o, h, l, c float64) Bar {
	return Bar{OpenTime: time.Unix(0, 0), Open: o, High: h, Low: l, Close: c}
}

func TestTrueRangeAverage(t *testing.T) {
	bars := []Bar{
		mkBar(100, 105, 95, 100),
		mkBar(100, 110, 100, 105), // tr = 10
		mkBar(105, 104, 96, 98),   // tr = max(8, 1, 9) = 9
	}
	got, err := TrueRangeAverage(bars, 2)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if got != 9.5 {
		t.Fatalf("expected 9.5, got %v", got)
	}
}

func TestTrueRangeAverage_FlatWindow(t *testing.T) {
	bars := make([]Bar, 6)
	for i := range bars {
		bars[i] = mkBar(100, 100, 100, 100)
	}
	got, err := TrueRangeAverage(bars, 5)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if got != 0 {
		t.Fatalf("flat window should yield exactly 0, got %v", got)
	}
}

func TestTrueRangeAverage_InsufficientData(t *testing.T) {
	bars := []Bar{mkBar(100, 101, 99, 100), mkBar(100, 102, 98, 101)}
	_, err := TrueRangeAverage(bars, 5)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
	if !strings.Contains(err.Error(), "need 6") || !strings.Contains(err.Error(), "got 2") {
		t.Fatalf("message should state required vs actual: %v", err)
	}
}

func TestTrueRangeAverage_InvalidPeriod(t *testing.T) {
	bars := []Bar{mkBar(100, 101, 99, 100)}
	for _, period := range []int{0, -3} {
		if _, err := TrueRangeAverage(bars, period); !errors.Is(err, ErrInvalidPeriod) {
			t.Fatalf("period %d: expected ErrInvalidPeriod, got %v", period, err)
		}
	}
}

func TestTrueRangeAverage_BadBar(t *testing.T) {
	bars := []Bar{
		mkBar(100, 101, 99, 100),
		mkBar(100, 98, 102, 100), // high < low
		mkBar(100, 103, 97, 101),
	}
	_, err := TrueRangeAverage(bars, 2)
	if !errors.Is(err, ErrBadBar) {
		t.Fatalf("expected ErrBadBar, got %v", err)
	}
	if !strings.Contains(err.Error(), "high") || !strings.Contains(err.Error(), "less than low") {
		t.Fatalf("message should name the high/low relationship: %v", err)
	}
}
