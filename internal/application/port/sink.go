package port

import "novatrade/internal/domain"

// EventSink republishes merged market events for downstream consumers.
// Publishing is best-effort; failures must not stall the feed.
type EventSink interface {
	PublishTrade(symbol string, t domain.Trade) error
	PublishCandle(symbol string, c domain.Candle) error
}
