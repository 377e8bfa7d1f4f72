package gateway

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"grid-planner-go/market"
)

// CombinedMessage wraps a combined-stream payload.
type CombinedMessage struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

type klineEvent struct {
	Symbol string       `json:"s"`
	Kline  klinePayload `json:"k"`
}

// prices arrive as JSON strings, timestamps as millisecond numbers
type klinePayload struct {
	OpenTime  int64  `json:"t"`
	CloseTime int64  `json:"T"`
	Open      string `json:"o"`
	High      string `json:"h"`
	Low       string `json:"l"`
	Close     string `json:"c"`
	Volume    string `json:"v"`
	Closed    bool   `json:"x"`
}

// ParseCombinedKline decodes a combined-stream kline message into a Bar.
// closed is true when the bar's interval has ended.
func ParseCombinedKline(raw []byte) (symbol string, bar market.Bar, closed bool, err error) {
	var msg CombinedMessage
	if err = json.Unmarshal(raw, &msg); err != nil {
		return
	}
	var ev klineEvent
	if err = json.Unmarshal(msg.Data, &ev); err != nil {
		return
	}
	symbol = ev.Symbol
	closed = ev.Kline.Closed
	bar.OpenTime = time.UnixMilli(ev.Kline.OpenTime).UTC()

	fields := []struct {
		name string
		dst  *float64
		raw  string
	}{
		{"o", &bar.Open, ev.Kline.Open},
		{"h", &bar.High, ev.Kline.High},
		{"l", &bar.Low, ev.Kline.Low},
		{"c", &bar.Close, ev.Kline.Close},
		{"v", &bar.Volume, ev.Kline.Volume},
	}
	for _, f := range fields {
		if f.raw == "" {
			err = fmt.Errorf("kline field %s missing", f.name)
			return
		}
		v, perr := strconv.ParseFloat(f.raw, 64)
		if perr != nil {
			err = fmt.Errorf("kline field %s: %w", f.name, perr)
			return
		}
		*f.dst = v
	}
	return
}
