package service

import (
	"context"
	"fmt"

	"novatrade/internal/application/port"
	"novatrade/internal/domain"
)

// TradeRouter dispatches fee and submission requests to the adapter matching
// the request's chain tag. The adapter set is fixed at construction; a
// request is never routed to more than one adapter and a failure on one
// chain is never retried on another.
type TradeRouter struct {
	adapters map[domain.ChainID]port.ChainAdapter
}

// NewTradeRouter builds a router over the given adapters, keyed by their
// self-reported chain id.
func NewTradeRouter(adapters ...port.ChainAdapter) *TradeRouter {
	m := make(map[domain.ChainID]port.ChainAdapter, len(adapters))
	for _, a := range adapters {
		m[a.Name()] = a
	}
	return &TradeRouter{adapters: m}
}

func (r *TradeRouter) adapter(chain domain.ChainID) (port.ChainAdapter, error) {
	a, ok := r.adapters[chain]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedChain, chain)
	}
	return a, nil
}

// EstimateFee routes a fee request to the chain's adapter.
func (r *TradeRouter) EstimateFee(ctx context.Context, req domain.TradeRequest) (domain.FeeQuote, error) {
	a, err := r.adapter(req.Chain)
	if err != nil {
		return domain.FeeQuote{}, err
	}
	return a.EstimateFee(ctx, req)
}

// SubmitTrade routes a submission to the chain's adapter.
func (r *TradeRouter) SubmitTrade(ctx context.Context, req domain.TradeRequest) (domain.TradeResult, error) {
	a, err := r.adapter(req.Chain)
	if err != nil {
		return domain.TradeResult{}, err
	}
	return a.SubmitTrade(ctx, req)
}

// Chains returns the configured chain tags, for display and diagnostics.
func (r *TradeRouter) Chains() []domain.ChainID {
	out := make([]domain.ChainID, 0, len(r.adapters))
	for id := range r.adapters {
		out = append(out, id)
	}
	return out
}
