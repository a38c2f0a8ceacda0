package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"novatrade/internal/domain"
)

// RESTClient pulls bulk market history over the exchange's HTTP API. It is
// the seed source for a feed; live updates come over the websocket streams.
type RESTClient struct {
	baseURL string
	client  *http.Client
}

func NewRESTClient(baseURL string) *RESTClient {
	return &RESTClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// RecentTrades returns the latest trades for a symbol, newest first.
func (c *RESTClient) RecentTrades(ctx context.Context, symbol string) ([]domain.Trade, error) {
	var trades []domain.Trade
	if err := c.get(ctx, "/trades", symbol, &trades); err != nil {
		return nil, err
	}
	return trades, nil
}

// OHLC returns historical candles for a symbol, oldest first.
func (c *RESTClient) OHLC(ctx context.Context, symbol string) ([]domain.Candle, error) {
	var candles []domain.Candle
	if err := c.get(ctx, "/candles", symbol, &candles); err != nil {
		return nil, err
	}
	return candles, nil
}

func (c *RESTClient) get(ctx context.Context, path, symbol string, out any) error {
	u := c.baseURL + path + "?market=" + url.QueryEscape(symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("market query %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("market query %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("market query %s: http %d: %s", path, resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("market query %s: decode: %w", path, err)
	}
	return nil
}
