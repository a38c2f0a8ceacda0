package domain

import (
	"errors"
	"testing"
)

func TestTradeRequestValidate(t *testing.T) {
	cases := []struct {
		name string
		req  TradeRequest
		want error
	}{
		{"valid", TradeRequest{Chain: ChainEVM, Side: SideBuy, Amount: 1.5, Price: 30000}, nil},
		{"zero amount", TradeRequest{Chain: ChainEVM, Side: SideBuy, Amount: 0, Price: 30000}, ErrInvalidAmount},
		{"negative price", TradeRequest{Chain: ChainNova, Side: SideSell, Amount: 1, Price: -1}, ErrInvalidAmount},
		{"unknown chain", TradeRequest{Chain: "near", Side: SideBuy, Amount: 1, Price: 1}, ErrUnsupportedChain},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if !errors.Is(err, tc.want) && !(err == nil && tc.want == nil) {
				t.Errorf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}
}
