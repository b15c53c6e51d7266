package earthengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agrokarfi/agrokarfi/internal/provider/resilience"
)

const (
	// ProviderName identifies the engine for logging.
	ProviderName = "earthengine"
)

// ClientConfig holds configuration for the engine client.
type ClientConfig struct {
	// BaseURL is the compute gateway base URL (required). The gateway
	// holds the service-account credential and evaluates expressions.
	BaseURL string

	// APIKey authenticates against the gateway (optional).
	APIKey string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults. Engine reductions
	// can be slow, so the default timeout is raised to 25s.
	HTTPClient HTTPDoer

	// Logger for client operations.
	Logger zerolog.Logger
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the geospatial compute gateway over REST.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new engine client.
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		rc := resilience.DefaultClientConfig(ProviderName)
		rc.Timeout = 25 * time.Second
		rc.MaxRetries = 1
		httpClient = resilience.NewClient(rc)
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the engine name.
func (c *Client) Name() string {
	return ProviderName
}

type reduceRegionResponse struct {
	Values map[string]*float64 `json:"values"`
}

type thumbnailResponse struct {
	URL       string `json:"url"`
	BandCount int    `json:"band_count"`
}

// ReduceRegion computes per-band statistics over the request polygon.
// Bands the engine could not resolve are omitted from the result; an empty
// result maps to ErrNoData.
func (c *Client) ReduceRegion(ctx context.Context, req ReduceRegionRequest) (map[string]float64, error) {
	var result reduceRegionResponse
	if err := c.post(ctx, "/v1/reduce-region", req, &result); err != nil {
		return nil, err
	}

	values := make(map[string]float64, len(result.Values))
	for band, v := range result.Values {
		// Null band values mean the reduction found no pixels.
		if v != nil {
			values[band] = *v
		}
	}

	if len(values) == 0 {
		return nil, ErrNoData
	}

	return values, nil
}

// Thumbnail renders a composite thumbnail clipped to the request geometry.
func (c *Client) Thumbnail(ctx context.Context, req ThumbnailRequest) (ThumbnailResult, error) {
	var result thumbnailResponse
	if err := c.post(ctx, "/v1/thumbnail", req, &result); err != nil {
		return ThumbnailResult{}, err
	}

	return ThumbnailResult{
		URL:       result.URL,
		BandCount: result.BandCount,
	}, nil
}

// post sends a JSON request to the gateway and decodes the response.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNoData
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
