package domain

import "sync"

// TradeWindow keeps the most recent trades for a symbol, newest first.
// Incoming trades are prepended and the window is truncated to its bound.
// Arrival order is trusted; the window does not re-sort (a transport that
// reorders briefly shows that disorder locally).
type TradeWindow struct {
	mu     sync.RWMutex
	bound  int
	trades []Trade
}

// NewTradeWindow creates a window holding at most bound trades.
func NewTradeWindow(bound int) *TradeWindow {
	if bound <= 0 {
		bound = 100
	}
	return &TradeWindow{
		bound:  bound,
		trades: make([]Trade, 0, bound),
	}
}

// Push prepends a trade, evicting the oldest entry once the bound is exceeded.
func (w *TradeWindow) Push(t Trade) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.trades = append(w.trades, Trade{})
	copy(w.trades[1:], w.trades)
	w.trades[0] = t
	if len(w.trades) > w.bound {
		w.trades = w.trades[:w.bound]
	}
}

// Reset replaces the window contents with a bulk-loaded set, newest first,
// truncated to the bound.
func (w *TradeWindow) Reset(trades []Trade) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := len(trades)
	if n > w.bound {
		n = w.bound
	}
	w.trades = w.trades[:0]
	w.trades = append(w.trades, trades[:n]...)
}

// Len returns the current number of retained trades.
func (w *TradeWindow) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.trades)
}

// Snapshot returns a copy of the retained window. Callers must not rely on
// the copy tracking later updates.
func (w *TradeWindow) Snapshot() []Trade {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]Trade, len(w.trades))
	copy(out, w.trades)
	return out
}
