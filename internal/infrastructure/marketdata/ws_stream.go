package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"novatrade/internal/domain"
)

// One websocket connection per subscription. When the transport drops, the
// output channel closes and that is the end of it: reconnect policy lives
// with the feed owner, not here.
//
// The read goroutine is the only sender on the output channel and the only
// one to close it, after its loop exits. Sends are ctx-aware, so teardown is
// safe even when the consumer has already stopped reading and the buffer is
// full.

// TradeStream subscribes to live trade prints at {ws}/ws/trades/{symbol}.
type TradeStream struct {
	wsURL string
}

func NewTradeStream(wsURL string) *TradeStream {
	return &TradeStream{wsURL: strings.TrimRight(strings.TrimSpace(wsURL), "/")}
}

func (s *TradeStream) Subscribe(ctx context.Context, symbol string) (<-chan domain.Trade, error) {
	conn, err := dial(ctx, s.wsURL+"/ws/trades/"+url.PathEscape(symbol))
	if err != nil {
		return nil, err
	}

	out := make(chan domain.Trade, 1024)
	go func() {
		defer close(out)
		defer conn.Close()

		readStream(ctx, conn, symbol, func(b []byte) bool {
			var trade domain.Trade
			if e := json.Unmarshal(b, &trade); e != nil {
				log.Error().Str("symbol", symbol).Err(e).Msg("trade message unmarshal failed")
				return true
			}
			select {
			case out <- trade:
				return true
			case <-ctx.Done():
				return false
			}
		})
	}()
	return out, nil
}

// CandleStream subscribes to live candle updates at {ws}/ws/candles/{symbol}.
type CandleStream struct {
	wsURL string
}

func NewCandleStream(wsURL string) *CandleStream {
	return &CandleStream{wsURL: strings.TrimRight(strings.TrimSpace(wsURL), "/")}
}

func (s *CandleStream) Subscribe(ctx context.Context, symbol string) (<-chan domain.Candle, error) {
	conn, err := dial(ctx, s.wsURL+"/ws/candles/"+url.PathEscape(symbol))
	if err != nil {
		return nil, err
	}

	out := make(chan domain.Candle, 1024)
	go func() {
		defer close(out)
		defer conn.Close()

		readStream(ctx, conn, symbol, func(b []byte) bool {
			var candle domain.Candle
			if e := json.Unmarshal(b, &candle); e != nil {
				log.Error().Str("symbol", symbol).Err(e).Msg("candle message unmarshal failed")
				return true
			}
			select {
			case out <- candle:
				return true
			case <-ctx.Done():
				return false
			}
		})
	}()
	return out, nil
}

func dial(ctx context.Context, wsURL string) (*websocket.Conn, error) {
	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(cctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", domain.ErrSubscriptionFailed, wsURL, err)
	}
	return conn, nil
}

// readStream reads messages until the transport fails, ctx is cancelled, or
// handle returns false. handle runs on the read goroutine; any send it does
// happens before the caller closes its channel.
func readStream(ctx context.Context, conn *websocket.Conn, symbol string, handle func([]byte) bool) {
	stop := make(chan struct{})
	defer close(stop)
	go keepAlive(ctx, conn, stop)

	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, b, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				log.Warn().Str("symbol", symbol).Err(err).Msg("market stream closed")
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		if !handle(b) {
			return
		}
	}
}

// keepAlive pings until the subscription ends. On cancel it closes the
// connection so a blocked read returns promptly.
func keepAlive(ctx context.Context, conn *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(25 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close()
			return
		case <-stop:
			return
		case <-ticker.C:
			_ = conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second))
		}
	}
}
