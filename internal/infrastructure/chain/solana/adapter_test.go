package solana

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"novatrade/internal/domain"
	"novatrade/internal/infrastructure/config"
)

func newNode(t *testing.T, results map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var call struct {
			Method string `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
			t.Errorf("bad rpc request: %v", err)
		}
		res, ok := results[call.Method]
		if !ok || res == nil {
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"code": -32002, "message": "simulation failed"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"result": res})
	}))
}

func testConfig(url string) config.ChainConfig {
	return config.ChainConfig{
		RPCURL:      url,
		Program:     "NovaTrade111111111111111111111111111111111",
		Currency:    "SOL",
		FallbackFee: 0.000005,
	}
}

var buyReq = domain.TradeRequest{
	Chain:   domain.ChainSolana,
	Address: "TraderPubkey",
	Side:    domain.SideBuy,
	Amount:  2,
	Price:   50,
}

func TestEstimateFeeFromNode(t *testing.T) {
	node := newNode(t, map[string]any{
		"simulateTransaction": map[string]any{"value": map[string]any{"err": nil}},
		"getFeeForMessage":    map[string]any{"value": 5000},
	})
	defer node.Close()

	a := New(testConfig(node.URL), nil)
	quote, err := a.EstimateFee(context.Background(), buyReq)
	if err != nil {
		t.Fatalf("EstimateFee: %v", err)
	}
	if want := 5000 / 1e9; quote.Amount != want {
		t.Errorf("fee = %v, want %v", quote.Amount, want)
	}
	if quote.Currency != "SOL" {
		t.Errorf("currency = %q, want SOL", quote.Currency)
	}
}

func TestEstimateFeeFallsBackOnSimulationFailure(t *testing.T) {
	node := newNode(t, map[string]any{"simulateTransaction": nil})
	defer node.Close()

	a := New(testConfig(node.URL), nil)
	quote, err := a.EstimateFee(context.Background(), buyReq)
	if err != nil {
		t.Fatalf("simulation failure must not surface an error, got %v", err)
	}
	if quote.Amount != 0.000005 || quote.Currency != "SOL" {
		t.Errorf("quote = %+v, want fallback {0.000005 SOL}", quote)
	}
}

func TestEstimateFeeFallsBackOnProgramError(t *testing.T) {
	node := newNode(t, map[string]any{
		"simulateTransaction": map[string]any{
			"value": map[string]any{"err": map[string]any{"InstructionError": []any{0, "Custom"}}},
		},
	})
	defer node.Close()

	a := New(testConfig(node.URL), nil)
	quote, err := a.EstimateFee(context.Background(), buyReq)
	if err != nil {
		t.Fatalf("program error must not surface, got %v", err)
	}
	if quote.Amount != 0.000005 {
		t.Errorf("quote = %+v, want fallback amount", quote)
	}
}

type stubWallet struct {
	sig string
	err error
}

func (w *stubWallet) SignAndSend(ctx context.Context, chain domain.ChainID, payload []byte) (string, error) {
	return w.sig, w.err
}

func TestSubmitTradeWithoutWallet(t *testing.T) {
	a := New(testConfig("http://127.0.0.1:1"), nil)
	_, err := a.SubmitTrade(context.Background(), buyReq)
	if !errors.Is(err, domain.ErrWalletUnavailable) {
		t.Fatalf("err = %v, want ErrWalletUnavailable", err)
	}
}

func TestSubmitTradeConfirmed(t *testing.T) {
	node := newNode(t, map[string]any{
		"getSignatureStatuses": map[string]any{
			"value": []any{map[string]any{"confirmationStatus": "confirmed", "err": nil}},
		},
	})
	defer node.Close()

	a := New(testConfig(node.URL), &stubWallet{sig: "5ig"})
	res, err := a.SubmitTrade(context.Background(), buyReq)
	if err != nil {
		t.Fatalf("SubmitTrade: %v", err)
	}
	if res.TxID != "5ig" {
		t.Errorf("txID = %q, want 5ig", res.TxID)
	}
}

func TestSubmitTradeFailedOnChain(t *testing.T) {
	node := newNode(t, map[string]any{
		"getSignatureStatuses": map[string]any{
			"value": []any{map[string]any{
				"confirmationStatus": "confirmed",
				"err":                map[string]any{"InstructionError": []any{0, "Custom"}},
			}},
		},
	})
	defer node.Close()

	a := New(testConfig(node.URL), &stubWallet{sig: "5ig"})
	_, err := a.SubmitTrade(context.Background(), buyReq)
	if !errors.Is(err, domain.ErrSubmissionRejected) {
		t.Fatalf("err = %v, want ErrSubmissionRejected", err)
	}
}
