package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"novatrade/internal/domain"
)

// RPCClient is a minimal JSON-RPC 2.0 client shared by the chain adapters.
// Transport failures map to domain.ErrChainUnreachable so callers can tell
// "node down" apart from "node said no".
type RPCClient struct {
	url    string
	client *http.Client
}

func NewRPCClient(url string) *RPCClient {
	return &RPCClient{
		url: strings.TrimRight(strings.TrimSpace(url), "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// RPCError is the error object returned by a node. It is a chain-level
// response, not a transport failure.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// Call performs one JSON-RPC request, decoding the result into out when out
// is non-nil.
func (c *RPCClient) Call(ctx context.Context, method string, params, out any) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrChainUnreachable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrChainUnreachable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: http %d: %s", domain.ErrChainUnreachable, resp.StatusCode, raw)
	}

	var r rpcResponse
	if err := json.Unmarshal(raw, &r); err != nil {
		return fmt.Errorf("decode rpc response: %w", err)
	}
	if r.Error != nil {
		return r.Error
	}
	if out != nil && len(r.Result) > 0 {
		if err := json.Unmarshal(r.Result, out); err != nil {
			return fmt.Errorf("decode rpc result: %w", err)
		}
	}
	return nil
}
