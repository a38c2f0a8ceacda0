package evm

import (
	"novatrade/internal/application/port"
	"novatrade/internal/domain"
	"novatrade/internal/infrastructure/chain"
	"novatrade/internal/infrastructure/config"
)

func init() {
	chain.Register(domain.ChainEVM, func(cfg config.ChainConfig, wallet port.Wallet) port.ChainAdapter {
		return New(cfg, wallet)
	})
}
