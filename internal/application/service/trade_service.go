package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"novatrade/internal/application/port"
	"novatrade/internal/domain"
)

// TradeService validates trade parameters and hands them to the router.
// Spot and perp share the same execution path; the market kind is carried as
// metadata only. Each PlaceTrade call is an independent operation — the
// service does not deduplicate identical-looking requests.
type TradeService struct {
	kind    domain.MarketKind
	router  *TradeRouter
	journal port.Journal
}

// NewTradeService creates a service for one market kind. journal may be nil
// when order history is not wanted.
func NewTradeService(kind domain.MarketKind, router *TradeRouter, journal port.Journal) *TradeService {
	return &TradeService{kind: kind, router: router, journal: journal}
}

// Kind returns the market kind this service trades.
func (s *TradeService) Kind() domain.MarketKind { return s.kind }

// PlaceTrade validates and submits one trade. Invalid parameters fail fast
// without reaching any adapter. Submission failures come back verbatim so
// the caller can decide whether to resubmit.
func (s *TradeService) PlaceTrade(ctx context.Context, symbol string, req domain.TradeRequest) (domain.TradeResult, error) {
	if err := req.Validate(); err != nil {
		return domain.TradeResult{}, err
	}

	res, err := s.router.SubmitTrade(ctx, req)
	if err != nil {
		return domain.TradeResult{}, err
	}

	log.Info().
		Str("kind", string(s.kind)).
		Str("chain", string(req.Chain)).
		Str("side", string(req.Side)).
		Str("tx", res.TxID).
		Msg("trade submitted")

	if s.journal != nil {
		rec := &domain.OrderRecord{
			TxID:      res.TxID,
			Kind:      s.kind,
			Chain:     req.Chain,
			Symbol:    symbol,
			Side:      req.Side,
			Amount:    req.Amount,
			Price:     req.Price,
			Status:    domain.OrderStatusSubmitted,
			CreatedAt: time.Now().UnixMilli(),
		}
		if jerr := s.journal.RecordOrder(ctx, rec); jerr != nil {
			// The trade already went out; a journal miss only costs history.
			log.Warn().Err(jerr).Str("tx", res.TxID).Msg("order journal write failed")
		}
	}

	return res, nil
}

// OpenOrders lists the most recent journal entries, newest first. Without a
// journal the list is empty, not an error.
func (s *TradeService) OpenOrders(ctx context.Context, limit int) ([]*domain.OrderRecord, error) {
	if s.journal == nil {
		return nil, nil
	}
	return s.journal.ListOrders(ctx, limit)
}

// QuoteFee validates and routes a one-shot fee estimate. Most callers want
// the FeeEstimator instead; this is the direct path for pre-submit checks.
func (s *TradeService) QuoteFee(ctx context.Context, req domain.TradeRequest) (domain.FeeQuote, error) {
	if err := req.Validate(); err != nil {
		return domain.FeeQuote{}, err
	}
	quote, err := s.router.EstimateFee(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedChain) {
			return domain.FeeQuote{}, err
		}
		return domain.FeeQuote{}, fmt.Errorf("%w: %v", domain.ErrFeeUnavailable, err)
	}
	return quote, nil
}
