package domain

// ChainID identifies one of the supported execution chains.
// The set is closed: adding a chain means adding an adapter and a
// registry entry, never touching dispatch logic.
type ChainID string

const (
	ChainNova   ChainID = "nova"   // Cosmos-style, contract-execute messages
	ChainEVM    ChainID = "evm"    // EVM-style, ABI contract calls
	ChainSolana ChainID = "solana" // Solana-style, program instructions
)

// Known reports whether id belongs to the supported chain set.
func (c ChainID) Known() bool {
	switch c {
	case ChainNova, ChainEVM, ChainSolana:
		return true
	}
	return false
}

// Side is the direction of a trade.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// MarketKind distinguishes spot from perpetual markets. In this layer it is
// metadata only; both kinds share the same execution path.
type MarketKind string

const (
	MarketSpot MarketKind = "spot"
	MarketPerp MarketKind = "perp"
)
