package marketdata

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"novatrade/internal/domain"
)

func TestRecentTrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/trades" {
			t.Errorf("path = %q, want /trades", r.URL.Path)
		}
		if got := r.URL.Query().Get("market"); got != "NOVA-USD" {
			t.Errorf("market = %q, want NOVA-USD", got)
		}
		json.NewEncoder(w).Encode([]domain.Trade{
			{Price: 101, Amount: 2, Side: domain.SideBuy, Timestamp: 1700000000500},
			{Price: 100, Amount: 1, Side: domain.SideSell, Timestamp: 1700000000000},
		})
	}))
	defer srv.Close()

	trades, err := NewRESTClient(srv.URL).RecentTrades(context.Background(), "NOVA-USD")
	if err != nil {
		t.Fatalf("RecentTrades: %v", err)
	}
	if len(trades) != 2 {
		t.Fatalf("got %d trades, want 2", len(trades))
	}
	if trades[0].Price != 101 {
		t.Errorf("newest trade price = %v, want 101", trades[0].Price)
	}
}

func TestOHLC(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/candles" {
			t.Errorf("path = %q, want /candles", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]domain.Candle{
			{Time: 1700000000, Open: 100, High: 105, Low: 99, Close: 104},
			{Time: 1700000060, Open: 104, High: 106, Low: 103, Close: 105},
		})
	}))
	defer srv.Close()

	candles, err := NewRESTClient(srv.URL).OHLC(context.Background(), "NOVA-USD")
	if err != nil {
		t.Fatalf("OHLC: %v", err)
	}
	if len(candles) != 2 || candles[1].Time != 1700000060 {
		t.Fatalf("unexpected candles: %+v", candles)
	}
}

func TestQueryHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown market", http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := NewRESTClient(srv.URL).RecentTrades(context.Background(), "NOPE"); err == nil {
		t.Fatal("want error on http 404, got nil")
	}
}
