package service

import (
	"context"
	"testing"
	"time"

	"novatrade/internal/domain"
)

type feeReply struct {
	quote domain.FeeQuote
	err   error
}

type estCall struct {
	req   domain.TradeRequest
	reply chan feeReply
}

// gatedAdapter parks every EstimateFee call until the test replies, so
// resolution order can be forced.
type gatedAdapter struct {
	chain domain.ChainID
	calls chan estCall
}

func newGatedAdapter(chain domain.ChainID) *gatedAdapter {
	return &gatedAdapter{chain: chain, calls: make(chan estCall, 16)}
}

func (a *gatedAdapter) Name() domain.ChainID { return a.chain }

func (a *gatedAdapter) EstimateFee(ctx context.Context, req domain.TradeRequest) (domain.FeeQuote, error) {
	c := estCall{req: req, reply: make(chan feeReply, 1)}
	a.calls <- c
	select {
	case r := <-c.reply:
		return r.quote, r.err
	case <-ctx.Done():
		return domain.FeeQuote{}, ctx.Err()
	}
}

func (a *gatedAdapter) SubmitTrade(ctx context.Context, req domain.TradeRequest) (domain.TradeResult, error) {
	return domain.TradeResult{}, nil
}

func waitCall(t *testing.T, a *gatedAdapter) estCall {
	t.Helper()
	select {
	case c := <-a.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for estimate call")
		return estCall{}
	}
}

func assertNoCall(t *testing.T, a *gatedAdapter, within time.Duration) {
	t.Helper()
	select {
	case c := <-a.calls:
		t.Fatalf("unexpected estimate call: %+v", c.req)
	case <-time.After(within):
	}
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal(msg)
}

func newTestEstimator(t *testing.T, debounce, refresh time.Duration) (*FeeEstimator, *gatedAdapter, *gatedAdapter) {
	t.Helper()
	evm := newGatedAdapter(domain.ChainEVM)
	nova := newGatedAdapter(domain.ChainNova)
	est := NewFeeEstimator(NewTradeRouter(evm, nova), debounce, refresh)
	est.Start(context.Background())
	t.Cleanup(est.Close)
	return est, evm, nova
}

func TestFeeEstimatorDebouncesInput(t *testing.T) {
	est, evm, _ := newTestEstimator(t, 25*time.Millisecond, time.Hour)

	// Two edits inside the quiet period: only the second may quote.
	est.SetInputs(domain.ChainEVM, domain.SideBuy, 1.5, 30000)
	est.SetInputs(domain.ChainEVM, domain.SideBuy, 1.5, 30001)

	call := waitCall(t, evm)
	if call.req.Price != 30001 {
		t.Fatalf("expected quote request for price 30001, got %v", call.req.Price)
	}
	call.reply <- feeReply{quote: domain.FeeQuote{Amount: 0.0003, Currency: "ETH"}}

	eventually(t, func() bool {
		q, known := est.Current()
		return known && q.Amount == 0.0003
	}, "quote never resolved")

	// No further requests without input changes (refresh is parked).
	assertNoCall(t, evm, 80*time.Millisecond)
}

func TestFeeEstimatorLastIssuedWins(t *testing.T) {
	est, evm, _ := newTestEstimator(t, 5*time.Millisecond, time.Hour)

	est.SetInputs(domain.ChainEVM, domain.SideBuy, 1, 30000)
	first := waitCall(t, evm)

	est.SetInputs(domain.ChainEVM, domain.SideBuy, 1, 31000)
	second := waitCall(t, evm)

	// Resolve out of order: the fresher request first, then the stale one.
	second.reply <- feeReply{quote: domain.FeeQuote{Amount: 2, Currency: "ETH"}}
	eventually(t, func() bool {
		q, known := est.Current()
		return known && q.Amount == 2
	}, "fresh quote never resolved")

	first.reply <- feeReply{quote: domain.FeeQuote{Amount: 1, Currency: "ETH"}}
	time.Sleep(30 * time.Millisecond)

	if q, _ := est.Current(); q.Amount != 2 {
		t.Fatalf("stale resolution overwrote fresher quote: %+v", q)
	}
}

func TestFeeEstimatorChainSwitchInvalidatesImmediately(t *testing.T) {
	est, evm, nova := newTestEstimator(t, 5*time.Millisecond, time.Hour)

	est.SetInputs(domain.ChainEVM, domain.SideBuy, 1, 100)
	waitCall(t, evm).reply <- feeReply{quote: domain.FeeQuote{Amount: 0.1, Currency: "ETH"}}
	eventually(t, func() bool { _, known := est.Current(); return known }, "initial quote never resolved")

	// The old currency must disappear before the new chain's quote lands.
	est.SetInputs(domain.ChainNova, domain.SideBuy, 1, 100)
	if _, known := est.Current(); known {
		t.Fatal("quote must be unknown immediately after chain switch")
	}

	waitCall(t, nova).reply <- feeReply{quote: domain.FeeQuote{Amount: 0.002, Currency: "UNOVA"}}
	eventually(t, func() bool {
		q, known := est.Current()
		return known && q.Currency == "UNOVA"
	}, "nova quote never resolved")
}

func TestFeeEstimatorInvalidInputsSkipAdapter(t *testing.T) {
	est, evm, _ := newTestEstimator(t, 5*time.Millisecond, time.Hour)

	est.SetInputs(domain.ChainEVM, domain.SideBuy, 0, 30000)
	assertNoCall(t, evm, 50*time.Millisecond)
	if _, known := est.Current(); known {
		t.Fatal("invalid inputs must leave the quote unknown")
	}

	est.SetInputs("", domain.SideBuy, 1, 30000)
	assertNoCall(t, evm, 50*time.Millisecond)
}

func TestFeeEstimatorPeriodicRefresh(t *testing.T) {
	est, evm, _ := newTestEstimator(t, 5*time.Millisecond, 20*time.Millisecond)

	est.SetInputs(domain.ChainEVM, domain.SideBuy, 1, 100)
	waitCall(t, evm).reply <- feeReply{quote: domain.FeeQuote{Amount: 0.1, Currency: "ETH"}}

	// Gas drift: the next tick re-quotes without any input change.
	refreshed := waitCall(t, evm)
	refreshed.reply <- feeReply{quote: domain.FeeQuote{Amount: 0.2, Currency: "ETH"}}

	eventually(t, func() bool {
		q, known := est.Current()
		return known && q.Amount == 0.2
	}, "refresh quote never resolved")
}

func TestFeeEstimatorErrorResolvesToUnknown(t *testing.T) {
	est, evm, _ := newTestEstimator(t, 5*time.Millisecond, time.Hour)

	est.SetInputs(domain.ChainEVM, domain.SideBuy, 1, 100)
	waitCall(t, evm).reply <- feeReply{err: domain.ErrFeeUnavailable}

	time.Sleep(30 * time.Millisecond)
	if _, known := est.Current(); known {
		t.Fatal("estimation failure must resolve to unknown, not a stale quote")
	}
}
