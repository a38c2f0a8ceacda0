package solana

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"novatrade/internal/application/port"
	"novatrade/internal/domain"
	"novatrade/internal/infrastructure/chain"
	"novatrade/internal/infrastructure/config"
)

const lamportsPerSol = 1e9

// Adapter executes trades through the market program on Solana. The wallet
// owns message assembly and signing; the adapter builds the instruction and
// tracks confirmation.
type Adapter struct {
	cfg    config.ChainConfig
	wallet port.Wallet
	rpc    *chain.RPCClient
}

func New(cfg config.ChainConfig, wallet port.Wallet) *Adapter {
	return &Adapter{
		cfg:    cfg,
		wallet: wallet,
		rpc:    chain.NewRPCClient(cfg.RPCURL),
	}
}

func (a *Adapter) Name() domain.ChainID { return domain.ChainSolana }

// instruction is the program call handed to the wallet for assembly.
type instruction struct {
	Program string      `json:"program"`
	Payer   string      `json:"payer"`
	Side    domain.Side `json:"side"`
	Amount  float64     `json:"amount"`
	Price   float64     `json:"price"`
}

func (a *Adapter) instruction(req domain.TradeRequest) instruction {
	return instruction{
		Program: a.cfg.Program,
		Payer:   req.Address,
		Side:    req.Side,
		Amount:  req.Amount,
		Price:   req.Price,
	}
}

type simulateResult struct {
	Value struct {
		Err json.RawMessage `json:"err"`
	} `json:"value"`
}

type feeResult struct {
	Value *uint64 `json:"value"`
}

// EstimateFee simulates the trade instruction, then asks the node to price
// the message. Lamports convert to SOL for display. Any failure, including a
// program that would fail on-chain, yields the configured fallback fee.
func (a *Adapter) EstimateFee(ctx context.Context, req domain.TradeRequest) (domain.FeeQuote, error) {
	fallback := domain.FeeQuote{Amount: a.cfg.FallbackFee, Currency: a.cfg.Currency}

	var sim simulateResult
	err := a.rpc.Call(ctx, "simulateTransaction", []any{a.instruction(req)}, &sim)
	if err != nil || (len(sim.Value.Err) > 0 && string(sim.Value.Err) != "null") {
		log.Debug().Err(err).Msg("solana simulation failed, using fallback fee")
		return fallback, nil
	}

	var fee feeResult
	err = a.rpc.Call(ctx, "getFeeForMessage", []any{a.instruction(req)}, &fee)
	if err != nil || fee.Value == nil {
		log.Debug().Err(err).Msg("solana fee lookup failed, using fallback fee")
		return fallback, nil
	}
	return domain.FeeQuote{
		Amount:   float64(*fee.Value) / lamportsPerSol,
		Currency: a.cfg.Currency,
	}, nil
}

type signatureStatus struct {
	Value []*struct {
		ConfirmationStatus string          `json:"confirmationStatus"`
		Err                json.RawMessage `json:"err"`
	} `json:"value"`
}

// SubmitTrade signs and sends the instruction via the wallet, then waits for
// the signature to confirm. A program error on the confirmed transaction is
// a rejection.
func (a *Adapter) SubmitTrade(ctx context.Context, req domain.TradeRequest) (domain.TradeResult, error) {
	if a.wallet == nil {
		return domain.TradeResult{}, fmt.Errorf("%w: no solana signer connected", domain.ErrWalletUnavailable)
	}

	payload, err := json.Marshal(a.instruction(req))
	if err != nil {
		return domain.TradeResult{}, err
	}

	sig, err := a.wallet.SignAndSend(ctx, domain.ChainSolana, payload)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return domain.TradeResult{}, fmt.Errorf("%w: signature request cancelled", domain.ErrSubmissionRejected)
		}
		return domain.TradeResult{}, fmt.Errorf("%w: %v", domain.ErrSubmissionRejected, err)
	}

	if err := a.waitConfirmed(ctx, sig); err != nil {
		return domain.TradeResult{}, err
	}
	return domain.TradeResult{TxID: sig}, nil
}

// waitConfirmed polls signature status until confirmed or finalized.
func (a *Adapter) waitConfirmed(ctx context.Context, sig string) error {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		var status signatureStatus
		err := a.rpc.Call(ctx, "getSignatureStatuses", []any{[]string{sig}}, &status)
		if err != nil {
			var rpcErr *chain.RPCError
			if !errors.As(err, &rpcErr) {
				return err
			}
		} else if len(status.Value) > 0 && status.Value[0] != nil {
			s := status.Value[0]
			if len(s.Err) > 0 && string(s.Err) != "null" {
				return fmt.Errorf("%w: transaction %s failed: %s", domain.ErrSubmissionRejected, sig, s.Err)
			}
			if s.ConfirmationStatus == "confirmed" || s.ConfirmationStatus == "finalized" {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: confirmation abandoned: %v", domain.ErrSubmissionRejected, ctx.Err())
		case <-ticker.C:
		}
	}
}
