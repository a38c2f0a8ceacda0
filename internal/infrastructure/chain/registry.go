package chain

import (
	"github.com/rs/zerolog/log"

	"novatrade/internal/application/port"
	"novatrade/internal/domain"
	"novatrade/internal/infrastructure/config"
)

// Factory builds a chain adapter from its endpoint config and the external
// wallet signer. Wallet may be nil; adapters then refuse submissions with
// ErrWalletUnavailable while fee estimation keeps working.
type Factory func(cfg config.ChainConfig, wallet port.Wallet) port.ChainAdapter

var registry = make(map[domain.ChainID]Factory)

// Register installs an adapter factory for a chain. Called from init() in
// each chain subpackage, so importing a subpackage is enough to enable it.
func Register(id domain.ChainID, factory Factory) {
	if factory == nil {
		log.Warn().Str("chain", string(id)).Msg("nil chain adapter factory ignored")
		return
	}
	if _, exists := registry[id]; exists {
		log.Warn().Str("chain", string(id)).Msg("chain adapter factory already registered, overwriting")
	}
	registry[id] = factory
}

// Get returns the registered factory for a chain.
func Get(id domain.ChainID) (Factory, bool) {
	f, ok := registry[id]
	return f, ok
}
