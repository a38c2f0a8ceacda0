package port

import (
	"context"

	"novatrade/internal/domain"
)

// MarketQuery is the bulk request/response endpoint used to seed a feed
// before live subscriptions take over.
type MarketQuery interface {
	// RecentTrades returns the latest trades for a symbol, newest first.
	RecentTrades(ctx context.Context, symbol string) ([]domain.Trade, error)

	// OHLC returns historical candles for a symbol, oldest first.
	OHLC(ctx context.Context, symbol string) ([]domain.Candle, error)
}

// TradeStream opens one live trade subscription per call. The returned
// channel closes when the transport fails or ctx is cancelled; the stream
// never reconnects on its own — that policy belongs to the caller.
type TradeStream interface {
	Subscribe(ctx context.Context, symbol string) (<-chan domain.Trade, error)
}

// CandleStream opens one live candle subscription per call, with the same
// channel-close semantics as TradeStream.
type CandleStream interface {
	Subscribe(ctx context.Context, symbol string) (<-chan domain.Candle, error)
}
