package modelserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/predict", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))

		var req predictRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Features, 11)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"label": 8}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL:    server.URL,
		APIKey:     "secret",
		HTTPClient: server.Client(),
	})

	label, err := client.Predict(context.Background(), make([]float64, 11))
	require.NoError(t, err)
	assert.Equal(t, 8, label)
}

func TestPredictServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, HTTPClient: server.Client()})

	_, err := client.Predict(context.Background(), make([]float64, 11))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
}

func TestPredictMissingLabel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, HTTPClient: server.Client()})

	_, err := client.Predict(context.Background(), make([]float64, 11))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing label")
}
