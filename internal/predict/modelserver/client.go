// Package modelserver provides a client for the serving process that
// hosts the persisted crop model.
package modelserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/agrokarfi/agrokarfi/internal/provider/resilience"
)

// ProviderName identifies this provider.
const ProviderName = "modelserver"

// ClientConfig holds configuration for the model server client.
type ClientConfig struct {
	// BaseURL is the serving process base URL.
	BaseURL string

	// APIKey authenticates to the serving process (optional).
	APIKey string

	// HTTPClient is the HTTP client to use (must implement HTTPDoer).
	// If nil, a default resilient client is created.
	HTTPClient HTTPDoer
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a model server client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient HTTPDoer
}

// NewClient creates a new model server client.
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		// Inference is local and fast; fail over to the error path
		// quickly rather than holding the request open.
		clientCfg.Timeout = 5 * time.Second
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

type predictRequest struct {
	Features []float64 `json:"features"`
}

type predictResponse struct {
	Label *int `json:"label"`
}

// Predict submits one feature vector and returns the integer crop label.
func (c *Client) Predict(ctx context.Context, features []float64) (int, error) {
	body, err := json.Marshal(predictRequest{Features: features})
	if err != nil {
		return 0, fmt.Errorf("marshal predict request: %w", err)
	}

	endpoint := c.baseURL + "/v1/predict"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("predict: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %d from predict endpoint", resp.StatusCode)
	}

	var result predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("decode predict response: %w", err)
	}
	if result.Label == nil {
		return 0, fmt.Errorf("predict response missing label")
	}

	return *result.Label, nil
}
