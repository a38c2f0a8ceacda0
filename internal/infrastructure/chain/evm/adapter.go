package evm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/rs/zerolog/log"

	"novatrade/internal/application/port"
	"novatrade/internal/domain"
	"novatrade/internal/infrastructure/chain"
	"novatrade/internal/infrastructure/config"
)

// Adapter executes trades against the market contract on an EVM chain. Call
// data is ABI-packed here; signing and broadcasting stay with the wallet.
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

func (a *Adapter) Name() domain.ChainID { return domain.ChainEVM }

// callMsg is the eth_call / eth_estimateGas parameter object.
type callMsg struct {
	From string `json:"from,omitempty"`
	To   string `json:"to"`
	Gas  string `json:"gas,omitempty"`
	Data string `json:"data"`
}

func (a *Adapter) callMsg(req domain.TradeRequest) callMsg {
	msg := callMsg{
		From: req.Address,
		To:   a.cfg.Contract,
		Data: hexData(encodeExecuteTrade(req.Side, req.Amount, req.Price)),
	}
	if a.cfg.GasLimit > 0 {
		msg.Gas = fmt.Sprintf("0x%x", a.cfg.GasLimit)
	}
	return msg
}

// EstimateFee prices the call as estimated gas times the current gas price,
// in the chain's native currency. Any node-side failure falls back to the
// configured static fee rather than surfacing an error.
func (a *Adapter) EstimateFee(ctx context.Context, req domain.TradeRequest) (domain.FeeQuote, error) {
	fallback := domain.FeeQuote{Amount: a.cfg.FallbackFee, Currency: a.cfg.Currency}

	var gasHex string
	if err := a.rpc.Call(ctx, "eth_estimateGas", []any{a.callMsg(req)}, &gasHex); err != nil {
		log.Debug().Err(err).Msg("evm gas estimation failed, using fallback fee")
		return fallback, nil
	}
	gas, ok := parseHexUint(gasHex)
	if !ok {
		log.Debug().Str("gas", gasHex).Msg("evm node returned malformed gas, using fallback fee")
		return fallback, nil
	}

	var priceHex string
	if err := a.rpc.Call(ctx, "eth_gasPrice", []any{}, &priceHex); err != nil {
		log.Debug().Err(err).Msg("evm gas price lookup failed, using fallback fee")
		return fallback, nil
	}
	price, ok := parseHexUint(priceHex)
	if !ok {
		log.Debug().Str("gasPrice", priceHex).Msg("evm node returned malformed gas price, using fallback fee")
		return fallback, nil
	}

	wei := new(big.Int).Mul(gas, price)
	return domain.FeeQuote{Amount: fromWei(wei), Currency: a.cfg.Currency}, nil
}

// receipt is the slice of eth_getTransactionReceipt we care about.
type receipt struct {
	TxHash string `json:"transactionHash"`
	Status string `json:"status"`
}

// SubmitTrade hands the packed transaction to the wallet, then waits for a
// mined receipt. Status 0x0 means the contract reverted.
func (a *Adapter) SubmitTrade(ctx context.Context, req domain.TradeRequest) (domain.TradeResult, error) {
	if a.wallet == nil {
		return domain.TradeResult{}, fmt.Errorf("%w: no evm signer connected", domain.ErrWalletUnavailable)
	}

	payload, err := json.Marshal(a.callMsg(req))
	if err != nil {
		return domain.TradeResult{}, err
	}

	txHash, err := a.wallet.SignAndSend(ctx, domain.ChainEVM, payload)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return domain.TradeResult{}, fmt.Errorf("%w: signature request cancelled", domain.ErrSubmissionRejected)
		}
		return domain.TradeResult{}, fmt.Errorf("%w: %v", domain.ErrSubmissionRejected, err)
	}

	rec, err := a.waitReceipt(ctx, txHash)
	if err != nil {
		return domain.TradeResult{}, err
	}
	if rec.Status == "0x0" {
		return domain.TradeResult{}, fmt.Errorf("%w: transaction %s reverted", domain.ErrSubmissionRejected, txHash)
	}
	return domain.TradeResult{TxID: txHash}, nil
}

// waitReceipt polls until the transaction is mined. The node returns null
// for pending transactions, which leaves the receipt empty.
func (a *Adapter) waitReceipt(ctx context.Context, txHash string) (*receipt, error) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		var rec receipt
		err := a.rpc.Call(ctx, "eth_getTransactionReceipt", []any{txHash}, &rec)
		if err != nil {
			var rpcErr *chain.RPCError
			if !errors.As(err, &rpcErr) {
				return nil, err
			}
		} else if rec.TxHash != "" {
			return &rec, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: confirmation abandoned: %v", domain.ErrSubmissionRejected, ctx.Err())
		case <-ticker.C:
		}
	}
}
