package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"novatrade/internal/application/port"
	"novatrade/internal/domain"
)

// FeedState is the lifecycle state of a MarketFeed.
type FeedState string

const (
	FeedIdle    FeedState = "idle"
	FeedLoading FeedState = "loading"
	FeedLive    FeedState = "live"
	FeedClosed  FeedState = "closed"
)

// MarketSnapshot is a consistent read-only view of the feed. Slices are
// copies; consumers must not expect them to track later updates.
type MarketSnapshot struct {
	Symbol   string
	State    FeedState
	Degraded bool
	Trades   []domain.Trade
	Candles  []domain.Candle
}

// MarketFeed keeps live trades and candles for one symbol, seeding from bulk
// queries and merging push updates on top.
//
// A single owning goroutine drives the whole lifecycle, so merges apply in
// transport-delivery order and subscription handles are a scoped resource:
// switching symbols cancels the previous subscription context (closing both
// streams) before anything is opened for the new symbol. There is never a
// moment with two live subscriptions of the same kind.
//
// Transport loss does not clear state. The last snapshot stays visible, the
// feed flags itself degraded and leaves reconnection to whoever owns it.
type MarketFeed struct {
	query   port.MarketQuery
	trades  port.TradeStream
	candles port.CandleStream
	sink    port.EventSink // optional

	window *domain.TradeWindow
	series *domain.CandleSeries

	mu         sync.RWMutex
	symbol     string
	state      FeedState
	degraded   bool
	onDegraded func(symbol string)

	symbolCh chan string
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

// MarketFeedDeps wires a feed's collaborators. Sink may be nil.
type MarketFeedDeps struct {
	Query       port.MarketQuery
	Trades      port.TradeStream
	Candles     port.CandleStream
	Sink        port.EventSink
	TradeBound  int
	CandleBound int
}

// NewMarketFeed creates an idle feed. Call Start, then SetSymbol.
func NewMarketFeed(deps MarketFeedDeps) *MarketFeed {
	return &MarketFeed{
		query:    deps.Query,
		trades:   deps.Trades,
		candles:  deps.Candles,
		sink:     deps.Sink,
		window:   domain.NewTradeWindow(deps.TradeBound),
		series:   domain.NewCandleSeries(deps.CandleBound),
		state:    FeedIdle,
		symbolCh: make(chan string, 1),
		done:     make(chan struct{}),
	}
}

// OnDegraded registers a callback fired when a live subscription is lost.
// Must be set before Start.
func (m *MarketFeed) OnDegraded(fn func(symbol string)) {
	m.mu.Lock()
	m.onDegraded = fn
	m.mu.Unlock()
}

// Start launches the owning goroutine.
func (m *MarketFeed) Start(ctx context.Context) {
	m.ctx, m.cancel = context.WithCancel(ctx)
	go m.run()
}

// Close tears down any live subscriptions and stops the feed.
func (m *MarketFeed) Close() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
}

// SetSymbol requests a switch to symbol. If the loop is mid-switch the
// newest request wins; intermediate symbols are skipped.
func (m *MarketFeed) SetSymbol(symbol string) {
	for {
		select {
		case m.symbolCh <- symbol:
			return
		default:
			select {
			case <-m.symbolCh:
			default:
			}
		}
	}
}

// Snapshot returns the current view of the feed.
func (m *MarketFeed) Snapshot() MarketSnapshot {
	m.mu.RLock()
	symbol, state, degraded := m.symbol, m.state, m.degraded
	m.mu.RUnlock()

	return MarketSnapshot{
		Symbol:   symbol,
		State:    state,
		Degraded: degraded,
		Trades:   m.window.Snapshot(),
		Candles:  m.series.Snapshot(),
	}
}

// LastPrice returns the newest trade price, if any trade has been seen.
func (m *MarketFeed) LastPrice() (float64, bool) {
	trades := m.window.Snapshot()
	if len(trades) == 0 {
		return 0, false
	}
	return trades[0].Price, true
}

func (m *MarketFeed) run() {
	defer close(m.done)

	var (
		tradeCh   <-chan domain.Trade
		candleCh  <-chan domain.Candle
		subCancel context.CancelFunc
	)
	defer func() {
		if subCancel != nil {
			subCancel()
		}
		m.setState("", FeedClosed, false)
	}()

	for {
		select {
		case <-m.ctx.Done():
			return

		case sym := <-m.symbolCh:
			// Tear down the previous symbol's subscriptions first and stop
			// reading their channels, so nothing stale merges from here on.
			if subCancel != nil {
				subCancel()
				subCancel = nil
			}
			tradeCh, candleCh = nil, nil

			m.setState(sym, FeedLoading, false)
			subCtx, cancel := context.WithCancel(m.ctx)
			subCancel = cancel

			degraded := !m.load(subCtx, sym)
			tc, cc, ok := m.subscribe(subCtx, sym)
			if ok {
				tradeCh, candleCh = tc, cc
			} else {
				// A half-open pair (trade stream up, candle subscribe
				// failed) would sit unread until the next switch. Degraded
				// means zero live subscriptions, not one orphan.
				cancel()
				subCancel = nil
				degraded = true
			}
			m.setState(sym, FeedLive, degraded)
			if degraded {
				m.notifyDegraded(sym)
			}

		case t, ok := <-tradeCh:
			if !ok {
				tradeCh = nil
				m.markDegraded()
				continue
			}
			m.window.Push(t)
			if m.sink != nil {
				if err := m.sink.PublishTrade(m.currentSymbol(), t); err != nil {
					log.Warn().Err(err).Msg("trade relay publish failed")
				}
			}

		case c, ok := <-candleCh:
			if !ok {
				candleCh = nil
				m.markDegraded()
				continue
			}
			if m.series.Merge(c) && m.sink != nil {
				if err := m.sink.PublishCandle(m.currentSymbol(), c); err != nil {
					log.Warn().Err(err).Msg("candle relay publish failed")
				}
			}
		}
	}
}

// load seeds window and series from the bulk endpoints. Reports success.
func (m *MarketFeed) load(ctx context.Context, symbol string) bool {
	ok := true

	trades, err := m.query.RecentTrades(ctx, symbol)
	if err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("recent trades query failed")
		trades, ok = nil, false
	}
	m.window.Reset(trades)

	candles, err := m.query.OHLC(ctx, symbol)
	if err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("ohlc query failed")
		candles, ok = nil, false
	}
	m.series.Reset(candles)

	return ok
}

// subscribe opens exactly one trade stream and one candle stream.
func (m *MarketFeed) subscribe(ctx context.Context, symbol string) (<-chan domain.Trade, <-chan domain.Candle, bool) {
	tc, err := m.trades.Subscribe(ctx, symbol)
	if err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("trade stream subscribe failed")
		return nil, nil, false
	}
	cc, err := m.candles.Subscribe(ctx, symbol)
	if err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("candle stream subscribe failed")
		return nil, nil, false
	}
	log.Info().Str("symbol", symbol).Msg("market streams live")
	return tc, cc, true
}

func (m *MarketFeed) setState(symbol string, state FeedState, degraded bool) {
	m.mu.Lock()
	m.symbol = symbol
	m.state = state
	m.degraded = degraded
	m.mu.Unlock()
}

func (m *MarketFeed) currentSymbol() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.symbol
}

// notifyDegraded fires the degraded callback for a feed that came up
// impaired (bulk load or subscribe failure during a symbol switch).
func (m *MarketFeed) notifyDegraded(symbol string) {
	m.mu.RLock()
	fn := m.onDegraded
	m.mu.RUnlock()

	log.Warn().Str("symbol", symbol).Err(domain.ErrSubscriptionFailed).Msg("feed started degraded")
	if fn != nil {
		fn(symbol)
	}
}

// markDegraded records a lost subscription. The snapshot stays as-is:
// stale-but-visible beats a blank page.
func (m *MarketFeed) markDegraded() {
	m.mu.Lock()
	already := m.degraded
	m.degraded = true
	sym := m.symbol
	fn := m.onDegraded
	m.mu.Unlock()

	if !already {
		log.Warn().Str("symbol", sym).Err(domain.ErrSubscriptionFailed).Msg("market stream lost")
		if fn != nil {
			fn(sym)
		}
	}
}
