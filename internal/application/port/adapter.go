package port

import (
	"context"

	"novatrade/internal/domain"
)

// ChainAdapter is the per-chain capability contract. Exactly one adapter
// handles a given request; the router never retries on another chain.
//
// EstimateFee attempts a real cost simulation first and falls back to a
// conservative static quote, so it only errors when even the fallback is
// unusable. SubmitTrade returns the taxonomy errors from the domain package.
type ChainAdapter interface {
	Name() domain.ChainID
	EstimateFee(ctx context.Context, req domain.TradeRequest) (domain.FeeQuote, error)
	SubmitTrade(ctx context.Context, req domain.TradeRequest) (domain.TradeResult, error)
}

// Wallet is the external signing capability supplied by the wallet-connection
// collaborator. SignAndSend prompts the user, signs the chain payload and
// broadcasts it, returning the transaction id. The prompt is user-driven and
// may block indefinitely; cancelling ctx abandons the prompt.
//
// Key material never enters this module.
type Wallet interface {
	SignAndSend(ctx context.Context, chain domain.ChainID, payload []byte) (string, error)
}
