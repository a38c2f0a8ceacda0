package domain

// TradeRequest carries everything an adapter needs to price or submit one
// trade. Built fresh per submission and never mutated after validation.
type TradeRequest struct {
	Chain   ChainID
	Address string // opaque per-chain account identifier
	Side    Side
	Amount  float64
	Price   float64
}

// Validate enforces the pre-trade invariants shared by every chain.
func (r TradeRequest) Validate() error {
	if r.Amount <= 0 || r.Price <= 0 {
		return ErrInvalidAmount
	}
	if !r.Chain.Known() {
		return ErrUnsupportedChain
	}
	return nil
}

// TradeResult is the chain's acknowledgement of a submitted trade. The
// transaction id encoding is chain-specific and only used for display/lookup.
type TradeResult struct {
	TxID string
}

// FeeQuote is an ephemeral pre-trade cost estimate. Each quote supersedes the
// previous one; quotes are never persisted.
type FeeQuote struct {
	Amount   float64
	Currency string
}

// Trade is a single executed market trade as delivered by the data feed.
type Trade struct {
	Price     float64 `json:"price"`
	Amount    float64 `json:"amount"`
	Side      Side    `json:"side"`
	Timestamp int64   `json:"timestamp"` // unix ms
}

// Candle is one OHLC bucket. Time is the bucket-start timestamp in seconds,
// aligned to the bucket width by the producer.
type Candle struct {
	Time   int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume,omitempty"`
}

// OrderRecord is the journal entry written after a successful submission.
// It backs the open-orders view; it plays no part in routing.
type OrderRecord struct {
	TxID      string
	Kind      MarketKind
	Chain     ChainID
	Symbol    string
	Side      Side
	Amount    float64
	Price     float64
	Status    string
	CreatedAt int64 // unix ms
}

// Order statuses recorded in the journal.
const (
	OrderStatusSubmitted = "submitted"
	OrderStatusFilled    = "filled"
	OrderStatusCancelled = "cancelled"
)
