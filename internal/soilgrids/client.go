// Package soilgrids provides a client for the ISRIC SoilGrids REST API,
// the point-based secondary source for soil chemistry.
package soilgrids

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
	// DefaultBaseURL is the base URL for the SoilGrids REST API.
	DefaultBaseURL = "https://rest.isric.org/soilgrids/v2.0"

	// ProviderName identifies this provider.
	ProviderName = "soilgrids"

	// Property values are stored scaled by 10, same as the raster assets.
	valueScale = 10.0
)

// ClientConfig holds configuration for the SoilGrids client.
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

// Client is a SoilGrids API client.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
}

// NewClient creates a new SoilGrids client.
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

// API response types (from the SoilGrids properties query).

type propertiesResponse struct {
	Properties struct {
		Layers []layerData `json:"layers"`
	} `json:"properties"`
}

type layerData struct {
	Name   string `json:"name"`
	Depths []struct {
		Label  string `json:"label"`
		Values struct {
			Mean *float64 `json:"mean"`
		} `json:"values"`
	} `json:"depths"`
}

// QueryTopsoil fetches mean topsoil (0-5 cm) pH and organic carbon at a
// point. Either property missing from the response makes the sample
// unavailable.
func (c *Client) QueryTopsoil(ctx context.Context, lat, lon float64) (signal.SoilSample, error) {
	query := url.Values{}
	query.Set("lat", fmt.Sprintf("%.6f", lat))
	query.Set("lon", fmt.Sprintf("%.6f", lon))
	query.Add("property", "phh2o")
	query.Add("property", "soc")
	query.Set("depth", "0-5cm")
	query.Set("value", "mean")

	endpoint := fmt.Sprintf("%s/properties/query?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return signal.SoilSample{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return signal.SoilSample{}, fmt.Errorf("query soil properties: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return signal.SoilSample{}, fmt.Errorf("unexpected status %d from properties endpoint", resp.StatusCode)
	}

	var result propertiesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return signal.SoilSample{}, fmt.Errorf("decode properties response: %w", err)
	}

	ph, phOK := meanForProperty(result.Properties.Layers, "phh2o")
	carbon, carbonOK := meanForProperty(result.Properties.Layers, "soc")
	if !phOK || !carbonOK {
		return signal.SoilSample{}, fmt.Errorf("%w: soilgrids point has no topsoil mean", signal.ErrUnavailable)
	}

	return signal.SoilSample{
		PH:               ph / valueScale,
		OrganicCarbonPct: carbon / valueScale,
	}, nil
}

// meanForProperty extracts the first depth mean of the named layer.
func meanForProperty(layers []layerData, name string) (float64, bool) {
	for _, layer := range layers {
		if layer.Name != name {
			continue
		}
		for _, depth := range layer.Depths {
			if depth.Values.Mean != nil {
				return *depth.Values.Mean, true
			}
		}
	}
	return 0, false
}
