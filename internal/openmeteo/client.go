// Package openmeteo provides a client for the Open-Meteo API, the
// point-based secondary source for climate normals.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/agrokarfi/agrokarfi/internal/provider/resilience"
	"github.com/agrokarfi/agrokarfi/internal/signal"
)

const (
	// DefaultBaseURL is the base URL for the Open-Meteo API.
	DefaultBaseURL = "https://api.open-meteo.com"

	// ProviderName identifies this provider.
	ProviderName = "open-meteo"

	// timezone pins daily aggregation to West Africa Time.
	timezone = "Africa/Lagos"
)

// ClientConfig holds configuration for the Open-Meteo client.
type ClientConfig struct {
	// BaseURL is the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// HTTPClient is the HTTP client to use (must implement HTTPDoer).
	// If nil, a default resilient client is created.
	HTTPClient HTTPDoer
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is an Open-Meteo API client.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
}

// NewClient creates a new Open-Meteo client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

type forecastResponse struct {
	Daily struct {
		TemperatureMean  []float64 `json:"temperature_2m_mean"`
		PrecipitationSum []float64 `json:"precipitation_sum"`
	} `json:"daily"`
}

// QueryClimate fetches point climate values: the current mean daily 2m
// temperature and daily precipitation total. Coarse next to the
// multi-decade primary normals, but good enough for a degraded response.
func (c *Client) QueryClimate(ctx context.Context, lat, lon float64) (signal.ClimateNormals, error) {
	query := url.Values{}
	query.Set("latitude", fmt.Sprintf("%.6f", lat))
	query.Set("longitude", fmt.Sprintf("%.6f", lon))
	query.Set("daily", "temperature_2m_mean,precipitation_sum")
	query.Set("timezone", timezone)

	endpoint := fmt.Sprintf("%s/v1/forecast?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return signal.ClimateNormals{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return signal.ClimateNormals{}, fmt.Errorf("query climate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return signal.ClimateNormals{}, fmt.Errorf("unexpected status %d from forecast endpoint", resp.StatusCode)
	}

	var result forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return signal.ClimateNormals{}, fmt.Errorf("decode forecast response: %w", err)
	}

	if len(result.Daily.TemperatureMean) == 0 || len(result.Daily.PrecipitationSum) == 0 {
		return signal.ClimateNormals{}, fmt.Errorf("%w: open-meteo returned no daily values", signal.ErrUnavailable)
	}

	return signal.ClimateNormals{
		MeanTempC:         result.Daily.TemperatureMean[0],
		RainfallMMPerYear: result.Daily.PrecipitationSum[0],
	}, nil
}
