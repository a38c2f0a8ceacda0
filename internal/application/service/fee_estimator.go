package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"novatrade/internal/domain"
)

// FeeEstimator keeps the latest fee quote for the current form inputs.
//
// Recomputes are debounced so typing does not spam the chain, and an
// independent periodic refresh tracks fee-market drift while the inputs stay
// valid. Supersession is a generation counter: every input change bumps the
// generation, each in-flight estimate carries the generation it was issued
// under, and a resolution whose generation is no longer current is discarded.
// Last-issued wins, not last-to-resolve.
type FeeEstimator struct {
	router   *TradeRouter
	debounce time.Duration
	refresh  time.Duration

	mu      sync.Mutex
	gen     uint64
	req     domain.TradeRequest
	valid   bool
	quote   *domain.FeeQuote
	timer   *time.Timer
	onQuote func(domain.FeeQuote, bool)

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// Default quoting cadence.
const (
	DefaultFeeDebounce = 500 * time.Millisecond
	DefaultFeeRefresh  = 5 * time.Second
)

// NewFeeEstimator creates an estimator over the router. Non-positive
// durations fall back to the defaults. Call Start before feeding inputs.
func NewFeeEstimator(router *TradeRouter, debounce, refresh time.Duration) *FeeEstimator {
	if debounce <= 0 {
		debounce = DefaultFeeDebounce
	}
	if refresh <= 0 {
		refresh = DefaultFeeRefresh
	}
	return &FeeEstimator{
		router:   router,
		debounce: debounce,
		refresh:  refresh,
		done:     make(chan struct{}),
	}
}

// OnUpdate registers a callback invoked after every quote change. known is
// false when the quote became unknown. Must be set before Start.
func (f *FeeEstimator) OnUpdate(fn func(quote domain.FeeQuote, known bool)) {
	f.mu.Lock()
	f.onQuote = fn
	f.mu.Unlock()
}

// Start launches the periodic refresh loop. The estimator stops when ctx is
// cancelled or Close is called.
func (f *FeeEstimator) Start(ctx context.Context) {
	f.ctx, f.cancel = context.WithCancel(ctx)
	go f.refreshLoop()
}

// Close stops the refresh loop and abandons any in-flight estimate.
func (f *FeeEstimator) Close() {
	if f.cancel == nil {
		return
	}
	f.cancel()
	<-f.done
}

// SetInputs records the current (chain, side, amount, price) tuple.
// Switching chains or turning the inputs invalid zeroes the quote at once,
// so a fee is never shown under the wrong currency. Valid inputs arm the
// debounce timer; the quiet period must elapse before an estimate is issued.
func (f *FeeEstimator) SetInputs(chain domain.ChainID, side domain.Side, amount, price float64) {
	f.mu.Lock()

	next := domain.TradeRequest{Chain: chain, Side: side, Amount: amount, Price: price}
	chainChanged := next.Chain != f.req.Chain

	f.gen++
	gen := f.gen
	f.req = next
	f.valid = next.Validate() == nil

	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}

	var notify func(domain.FeeQuote, bool)
	if chainChanged || !f.valid {
		if f.quote != nil {
			f.quote = nil
			notify = f.onQuote
		}
	}
	if f.valid {
		f.timer = time.AfterFunc(f.debounce, func() { f.issue(gen) })
	}
	f.mu.Unlock()

	if notify != nil {
		notify(domain.FeeQuote{}, false)
	}
}

// Current returns the latest quote. known is false while the fee is unknown —
// the caller must not treat an unknown fee as zero.
func (f *FeeEstimator) Current() (domain.FeeQuote, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.quote == nil {
		return domain.FeeQuote{}, false
	}
	return *f.quote, true
}

// issue runs one estimate for the generation captured at trigger time.
func (f *FeeEstimator) issue(gen uint64) {
	f.mu.Lock()
	if gen != f.gen || !f.valid {
		f.mu.Unlock()
		return
	}
	req := f.req
	f.mu.Unlock()

	quote, err := f.router.EstimateFee(f.ctx, req)

	f.mu.Lock()
	if gen != f.gen {
		// Superseded while in flight; a fresher request owns the display.
		f.mu.Unlock()
		return
	}
	known := err == nil
	if known {
		f.quote = &quote
	} else {
		f.quote = nil
		log.Warn().Err(err).Str("chain", string(req.Chain)).Msg("fee estimate failed, quote unknown")
	}
	notify := f.onQuote
	f.mu.Unlock()

	if notify != nil {
		notify(quote, known)
	}
}

func (f *FeeEstimator) refreshLoop() {
	defer close(f.done)

	ticker := time.NewTicker(f.refresh)
	defer ticker.Stop()

	for {
		select {
		case <-f.ctx.Done():
			return
		case <-ticker.C:
			f.mu.Lock()
			if !f.valid {
				f.mu.Unlock()
				continue
			}
			f.gen++
			gen := f.gen
			f.mu.Unlock()

			f.issue(gen)
		}
	}
}
