package nova

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"novatrade/internal/application/port"
	"novatrade/internal/domain"
	"novatrade/internal/infrastructure/chain"
	"novatrade/internal/infrastructure/config"
)

// gasAdjustment pads simulated gas the way cosmos "auto" fee mode does.
const gasAdjustment = 1.4

// Adapter executes trades on the nova chain (Cosmos-style) by sending a
// contract-execute message through the connected wallet. Fee estimation
// simulates the transaction for gas and prices it at the configured
// gas price in the chain's micro denom.
type Adapter struct {
	cfg    config.ChainConfig
	wallet port.Wallet
	rpc    *chain.RPCClient
}

func New(cfg config.ChainConfig, wallet port.Wallet) *Adapter {
	if cfg.Currency == "" && cfg.Denom != "" {
		cfg.Currency = strings.ToUpper(cfg.Denom)
	}
	return &Adapter{
		cfg:    cfg,
		wallet: wallet,
		rpc:    chain.NewRPCClient(cfg.RPCURL),
	}
}

func (a *Adapter) Name() domain.ChainID { return domain.ChainNova }

// executeMsg is the contract execute payload.
type executeMsg struct {
	ExecuteTrade struct {
		Side   domain.Side `json:"side"`
		Amount float64     `json:"amount"`
		Price  float64     `json:"price"`
	} `json:"execute_trade"`
}

// txPayload is what the wallet signs and broadcasts.
type txPayload struct {
	Sender   string     `json:"sender"`
	Contract string     `json:"contract"`
	Msg      executeMsg `json:"msg"`
}

func (a *Adapter) payload(req domain.TradeRequest) []byte {
	var msg executeMsg
	msg.ExecuteTrade.Side = req.Side
	msg.ExecuteTrade.Amount = req.Amount
	msg.ExecuteTrade.Price = req.Price

	b, _ := json.Marshal(txPayload{
		Sender:   req.Address,
		Contract: a.cfg.Contract,
		Msg:      msg,
	})
	return b
}

type simulateResult struct {
	GasUsed int64 `json:"gas_used,string"`
}

// EstimateFee simulates the execute message for gas. Simulation failure is
// non-fatal: the configured fallback fee is returned instead.
func (a *Adapter) EstimateFee(ctx context.Context, req domain.TradeRequest) (domain.FeeQuote, error) {
	var sim simulateResult
	err := a.rpc.Call(ctx, "tx_simulate", map[string]any{
		"tx": json.RawMessage(a.payload(req)),
	}, &sim)
	if err != nil || sim.GasUsed <= 0 {
		log.Debug().Err(err).Msg("nova gas simulation failed, using fallback fee")
		return domain.FeeQuote{Amount: a.cfg.FallbackFee, Currency: a.cfg.Currency}, nil
	}

	gas := float64(sim.GasUsed) * gasAdjustment
	// Gas price is quoted in the micro denom (1e6 per display unit).
	fee := gas * a.cfg.GasPrice / 1e6
	return domain.FeeQuote{Amount: fee, Currency: a.cfg.Currency}, nil
}

type txResult struct {
	TxResult struct {
		Code int    `json:"code"`
		Log  string `json:"log"`
	} `json:"tx_result"`
}

// SubmitTrade signs and broadcasts the execute message via the wallet, then
// waits for the transaction result. A non-zero execution code is a
// rejection, not a success with a footnote.
func (a *Adapter) SubmitTrade(ctx context.Context, req domain.TradeRequest) (domain.TradeResult, error) {
	if a.wallet == nil {
		return domain.TradeResult{}, fmt.Errorf("%w: no nova signer connected", domain.ErrWalletUnavailable)
	}

	txID, err := a.wallet.SignAndSend(ctx, domain.ChainNova, a.payload(req))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return domain.TradeResult{}, fmt.Errorf("%w: signature request cancelled", domain.ErrSubmissionRejected)
		}
		return domain.TradeResult{}, fmt.Errorf("%w: %v", domain.ErrSubmissionRejected, err)
	}

	res, err := a.waitTx(ctx, txID)
	if err != nil {
		return domain.TradeResult{}, err
	}
	if res.TxResult.Code != 0 {
		return domain.TradeResult{}, fmt.Errorf("%w: code %d: %s",
			domain.ErrSubmissionRejected, res.TxResult.Code, res.TxResult.Log)
	}
	return domain.TradeResult{TxID: txID}, nil
}

// waitTx polls until the transaction is indexed. The wallet already
// broadcast it, so "not found yet" just means we keep waiting; only the
// context bounds the wait.
func (a *Adapter) waitTx(ctx context.Context, txID string) (*txResult, error) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		var res txResult
		err := a.rpc.Call(ctx, "tx", map[string]any{"hash": txID}, &res)
		if err == nil {
			return &res, nil
		}

		var rpcErr *chain.RPCError
		if !errors.As(err, &rpcErr) {
			return nil, err // transport failure, already ErrChainUnreachable
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: confirmation abandoned: %v", domain.ErrSubmissionRejected, ctx.Err())
		case <-ticker.C:
		}
	}
}
