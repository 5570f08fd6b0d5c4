package gigaverse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultBaseURL = "https://gigaverse.io/api"

// SessionOptions carries the per-session credentials and endpoint
// configuration. It is passed explicitly into the client and the action
// handlers; there is no global settings store.
type SessionOptions struct {
	BaseURL       string
	AuthToken     string
	WalletAddress string
}

// GameClient is the surface of the external dungeon API this agent
// depends on.
type GameClient interface {
	// GetEnergy fetches the stored energy accounting for a wallet.
	GetEnergy(ctx context.Context, address string) (*EnergyState, error)

	// FetchDungeonState fetches the current run state without mutating it.
	FetchDungeonState(ctx context.Context) (*APIResponse, error)

	// PlayMove plays a combat or loot move in the live run.
	PlayMove(ctx context.Context, payload ActionPayload) (*APIResponse, error)

	// StartRun begins a fresh dungeon run.
	StartRun(ctx context.Context, payload ActionPayload) (*APIResponse, error)
}

// HTTPClient implements GameClient against the live dungeon API.
type HTTPClient struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// Ensure HTTPClient implements GameClient interface
var _ GameClient = (*HTTPClient)(nil)

// NewHTTPClient creates a game client from session options.
func NewHTTPClient(opts SessionOptions) *HTTPClient {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HTTPClient{
		baseURL:   baseURL,
		authToken: opts.AuthToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *HTTPClient) GetEnergy(ctx context.Context, address string) (*EnergyState, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/offchain/player/energy/"+address, nil)
	if err != nil {
		return nil, err
	}

	var state EnergyState
	if err := json.Unmarshal(body, &state); err != nil {
		return nil, fmt.Errorf("failed to parse energy response: %w", err)
	}
	return &state, nil
}

func (c *HTTPClient) FetchDungeonState(ctx context.Context) (*APIResponse, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/game/dungeon/state", nil)
	if err != nil {
		return nil, err
	}
	return parseAPIResponse(body)
}

func (c *HTTPClient) PlayMove(ctx context.Context, payload ActionPayload) (*APIResponse, error) {
	return c.postAction(ctx, payload)
}

func (c *HTTPClient) StartRun(ctx context.Context, payload ActionPayload) (*APIResponse, error) {
	return c.postAction(ctx, payload)
}

func (c *HTTPClient) postAction(ctx context.Context, payload ActionPayload) (*APIResponse, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal action payload: %w", err)
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/game/dungeon/action", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, err
	}
	return parseAPIResponse(body)
}

func (c *HTTPClient) doRequest(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.authToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

func parseAPIResponse(body []byte) (*APIResponse, error) {
	var out APIResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &out, nil
}
