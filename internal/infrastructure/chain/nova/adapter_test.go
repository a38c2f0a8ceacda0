package nova

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
				"error": map[string]any{"code": -32603, "message": "simulation failed"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"result": res})
	}))
}

func testConfig(url string) config.ChainConfig {
	return config.ChainConfig{
		RPCURL:      url,
		Contract:    "nova1contract",
		Denom:       "unova",
		Currency:    "UNOVA",
		FallbackFee: 0.005,
		GasPrice:    0.025,
	}
}

var sellReq = domain.TradeRequest{
	Chain:   domain.ChainNova,
	Address: "nova1trader",
	Side:    domain.SideSell,
	Amount:  3,
	Price:   9.5,
}

func TestEstimateFeeFromSimulation(t *testing.T) {
	node := newNode(t, map[string]any{
		"tx_simulate": map[string]any{"gas_used": "100000"},
	})
	defer node.Close()

	a := New(testConfig(node.URL), nil)
	quote, err := a.EstimateFee(context.Background(), sellReq)
	if err != nil {
		t.Fatalf("EstimateFee: %v", err)
	}
	want := 100000 * gasAdjustment * 0.025 / 1e6
	if quote.Amount != want {
		t.Errorf("fee = %v, want %v", quote.Amount, want)
	}
	if quote.Currency != "UNOVA" {
		t.Errorf("currency = %q, want UNOVA", quote.Currency)
	}
}

func TestEstimateFeeFallsBackOnSimulationFailure(t *testing.T) {
	node := newNode(t, map[string]any{"tx_simulate": nil})
	defer node.Close()

	a := New(testConfig(node.URL), nil)
	quote, err := a.EstimateFee(context.Background(), sellReq)
	if err != nil {
		t.Fatalf("simulation failure must not surface an error, got %v", err)
	}
	if quote.Amount != 0.005 || quote.Currency != "UNOVA" {
		t.Errorf("quote = %+v, want fallback {0.005 UNOVA}", quote)
	}
}

func TestCurrencyDefaultsToDenom(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.Currency = ""
	a := New(cfg, nil)

	quote, err := a.EstimateFee(context.Background(), sellReq)
	if err != nil {
		t.Fatalf("EstimateFee: %v", err)
	}
	if quote.Currency != "UNOVA" {
		t.Errorf("currency = %q, want UNOVA derived from denom", quote.Currency)
	}
}

type stubWallet struct {
	txID string
	err  error
}

func (w *stubWallet) SignAndSend(ctx context.Context, chain domain.ChainID, payload []byte) (string, error) {
	return w.txID, w.err
}

func TestSubmitTradeWithoutWallet(t *testing.T) {
	a := New(testConfig("http://127.0.0.1:1"), nil)
	_, err := a.SubmitTrade(context.Background(), sellReq)
	if !errors.Is(err, domain.ErrWalletUnavailable) {
		t.Fatalf("err = %v, want ErrWalletUnavailable", err)
	}
}

func TestSubmitTradeRejectedByChain(t *testing.T) {
	node := newNode(t, map[string]any{
		"tx": map[string]any{
			"tx_result": map[string]any{"code": 5, "log": "insufficient funds"},
		},
	})
	defer node.Close()

	a := New(testConfig(node.URL), &stubWallet{txID: "ABC123"})
	_, err := a.SubmitTrade(context.Background(), sellReq)
	if !errors.Is(err, domain.ErrSubmissionRejected) {
		t.Fatalf("err = %v, want ErrSubmissionRejected", err)
	}
}

func TestSubmitTradeConfirmed(t *testing.T) {
	node := newNode(t, map[string]any{
		"tx": map[string]any{
			"tx_result": map[string]any{"code": 0, "log": ""},
		},
	})
	defer node.Close()

	a := New(testConfig(node.URL), &stubWallet{txID: "ABC123"})
	res, err := a.SubmitTrade(context.Background(), sellReq)
	if err != nil {
		t.Fatalf("SubmitTrade: %v", err)
	}
	if res.TxID != "ABC123" {
		t.Errorf("txID = %q, want ABC123", res.TxID)
	}
}

func TestSignRejectionMapsToSubmissionRejected(t *testing.T) {
	a := New(testConfig("http://127.0.0.1:1"), &stubWallet{err: context.Canceled})
	_, err := a.SubmitTrade(context.Background(), sellReq)
	if !errors.Is(err, domain.ErrSubmissionRejected) {
		t.Fatalf("err = %v, want ErrSubmissionRejected", err)
	}
}
