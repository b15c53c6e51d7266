package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrokarfi/agrokarfi/internal/api"
	"github.com/agrokarfi/agrokarfi/internal/predict"
	"github.com/agrokarfi/agrokarfi/internal/survey"
	"github.com/agrokarfi/agrokarfi/pkg/geo"
)

type routerSurveyor struct{}

func (routerSurveyor) Survey(_ context.Context, vertices []geo.Coordinate) (*survey.Report, error) {
	return &survey.Report{PolygonBounds: vertices, StateName: "Kano"}, nil
}

type routerPredictor struct{}

func (routerPredictor) Predict(context.Context, predict.Features) (string, error) {
	return "Rice", nil
}

type routerAdviser struct{}

func (routerAdviser) Chat(context.Context, string, string, map[string]any) string {
	return "ok"
}

func newTestRouter() http.Handler {
	return api.NewRouter(api.RouterConfig{
		Version:   "test",
		Logger:    zerolog.Nop(),
		Surveyor:  routerSurveyor{},
		Predictor: routerPredictor{},
		Adviser:   routerAdviser{},
	})
}

func TestRouterRoutes(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodPost, "/calculate", `{"polygon": [[12.0, 8.5], [12.01, 8.5], [12.01, 8.51]]}`, http.StatusOK},
		{http.MethodPost, "/predict", `{"state": "Kano"}`, http.StatusOK},
		{http.MethodPost, "/chat", `{"message": "hi", "info": {}}`, http.StatusOK},
		{http.MethodGet, "/v1/ops/health", "", http.StatusOK},
		{http.MethodGet, "/v1/ops/ready", "", http.StatusOK},
		{http.MethodGet, "/calculate", "", http.StatusMethodNotAllowed},
		{http.MethodGet, "/nope", "", http.StatusNotFound},
	}

	for _, tc := range tests {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
		if tc.body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)
		assert.Equal(t, tc.want, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestRouterSetsRequestID(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}
