package gateway

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"grid-planner-go/logs"
	"grid-planner-go/market"
)

// BinanceSpotWSEndpoint is the default combined-stream host.
const BinanceSpotWSEndpoint = "wss://stream.binance.com:9443"

// KlineHandler receives decoded bars from the stream. closed marks the end
// of a bar's interval; non-closed updates repeat for the same OpenTime.
type KlineHandler interface {
	OnKline(symbol string, bar market.Bar, closed bool)
}

// KlineStream subscribes to <symbol>@kline_<interval> combined streams and
// pushes decoded bars into a handler. It lets callers keep the volatility
// estimate fresh without polling REST.
type KlineStream struct {
	BaseEndpoint string
	Dialer       *websocket.Dialer
	Log          logs.Logger
	streams      []string
}

func NewKlineStream() *KlineStream {
	return &KlineStream{
		BaseEndpoint: BinanceSpotWSEndpoint,
		Dialer:       websocket.DefaultDialer,
		Log:          logs.DefaultLogger,
	}
}

// Subscribe queues a kline stream; call before Run.
func (s *KlineStream) Subscribe(symbol, interval string) error {
	if symbol == "" {
		return fmt.Errorf("symbol required")
	}
	if interval == "" {
		interval = "1m"
	}
	s.streams = append(s.streams, strings.ToLower(symbol)+"@kline_"+interval)
	return nil
}

// Run connects and reads messages until the connection drops, delivering
// each decoded kline to the handler. Reconnecting is the caller's call.
func (s *KlineStream) Run(h KlineHandler) error {
	if len(s.streams) == 0 {
		return fmt.Errorf("no streams subscribed")
	}
	u := url.URL{
		Scheme: "wss",
		Host:   strings.TrimPrefix(s.BaseEndpoint, "wss://"),
		Path:   "/stream",
	}
	q := u.Query()
	q.Set("streams", strings.Join(s.streams, "/"))
	u.RawQuery = q.Encode()

	dialer := s.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", u.Host, err)
	}
	defer conn.Close()

	for {
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		symbol, bar, closed, perr := ParseCombinedKline(message)
		if perr != nil {
			if s.Log != nil {
				s.Log.Warn("kline parse failed", "error", perr.Error())
			}
			continue
		}
		if h != nil && symbol != "" {
			h.OnKline(symbol, bar, closed)
		}
	}
}
