package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pelorus-nav/searisk/internal/incidents"
	"github.com/pelorus-nav/searisk/internal/models"
	"github.com/pelorus-nav/searisk/internal/ports"
	"github.com/pelorus-nav/searisk/internal/routing"
	"github.com/pelorus-nav/searisk/internal/service"
)

type mockAssessor struct {
	assessFunc  func(ctx context.Context, req service.AssessRequest) (*service.RouteAssessment, error)
	compareFunc func(ctx context.Context, req service.AlternativesRequest) (*service.AlternativesResult, error)
}

func (m *mockAssessor) Assess(ctx context.Context, req service.AssessRequest) (*service.RouteAssessment, error) {
	return m.assessFunc(ctx, req)
}

func (m *mockAssessor) CompareAlternatives(
	ctx context.Context,
	req service.AlternativesRequest,
) (*service.AlternativesResult, error) {
	return m.compareFunc(ctx, req)
}

type mockResolver struct {
	resolveFunc func(ctx context.Context, name string) (*ports.Port, error)
}

func (m *mockResolver) Resolve(ctx context.Context, name string) (*ports.Port, error) {
	return m.resolveFunc(ctx, name)
}

type mockAdmin struct {
	reloadErr error
	stats     incidents.Stats
}

func (m *mockAdmin) Reload(_ context.Context) error { return m.reloadErr }
func (m *mockAdmin) Stats() incidents.Stats         { return m.stats }

func sampleAssessment() *service.RouteAssessment {
	return &service.RouteAssessment{
		ID:          "test-id",
		Origin:      ports.Port{Name: "Singapore", Location: models.GeoPoint{Latitude: 1.29, Longitude: 103.85}},
		Destination: ports.Port{Name: "Port Said", Location: models.GeoPoint{Latitude: 31.26, Longitude: 32.30}},
		DistanceKm:  8000,
		Route: &models.AnnotatedRoute{
			Path: models.RoutePath{
				{Latitude: 1.29, Longitude: 103.85},
				{Latitude: 31.26, Longitude: 32.30},
			},
			Segments: []models.SegmentRisk{{Label: models.RiskSafe}},
			Label:    models.RiskSafe,
		},
		Summary:   "Singapore to Port Said",
		CreatedAt: time.Now().UTC(),
	}
}

func newTestApp(assessor Assessor, resolver PortResolver, admin IncidentAdmin) *fiber.App {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewApp(log, NewHandler(log, assessor, resolver, admin, 3))
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) (int, []byte) {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(fiber.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, raw
}

func TestAssessRoute(t *testing.T) {
	t.Run("returns assessment", func(t *testing.T) {
		assessor := &mockAssessor{
			assessFunc: func(_ context.Context, _ service.AssessRequest) (*service.RouteAssessment, error) {
				return sampleAssessment(), nil
			},
		}
		app := newTestApp(assessor, &mockResolver{}, &mockAdmin{})

		code, raw := postJSON(t, app, "/api/v1/routes/assess", service.AssessRequest{
			Origin:      service.Endpoint{Port: "singapore"},
			Destination: service.Endpoint{Port: "port said"},
		})

		require.Equal(t, fiber.StatusOK, code)

		var got service.RouteAssessment
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, "test-id", got.ID)
		assert.Equal(t, models.RiskSafe, got.Route.Label)
	})

	t.Run("geojson format", func(t *testing.T) {
		assessor := &mockAssessor{
			assessFunc: func(_ context.Context, _ service.AssessRequest) (*service.RouteAssessment, error) {
				return sampleAssessment(), nil
			},
		}
		app := newTestApp(assessor, &mockResolver{}, &mockAdmin{})

		code, raw := postJSON(t, app, "/api/v1/routes/assess?format=geojson", service.AssessRequest{
			Origin:      service.Endpoint{Port: "singapore"},
			Destination: service.Endpoint{Port: "port said"},
		})

		require.Equal(t, fiber.StatusOK, code)

		var got service.GeoJSONFeatureCollection
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, "FeatureCollection", got.Type)
		require.NotEmpty(t, got.Features)
		assert.Equal(t, "LineString", got.Features[0].Geometry.Type)
	})

	t.Run("malformed body is 400", func(t *testing.T) {
		app := newTestApp(&mockAssessor{}, &mockResolver{}, &mockAdmin{})

		req := httptest.NewRequest(fiber.MethodPost, "/api/v1/routes/assess", strings.NewReader("{not json"))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("no route maps to 404", func(t *testing.T) {
		assessor := &mockAssessor{
			assessFunc: func(_ context.Context, _ service.AssessRequest) (*service.RouteAssessment, error) {
				return nil, routing.ErrNoRouteFound
			},
		}
		app := newTestApp(assessor, &mockResolver{}, &mockAdmin{})

		code, raw := postJSON(t, app, "/api/v1/routes/assess", service.AssessRequest{})

		assert.Equal(t, fiber.StatusNotFound, code)
		assert.Contains(t, string(raw), "no route found")
	})

	t.Run("invalid endpoint maps to 400", func(t *testing.T) {
		assessor := &mockAssessor{
			assessFunc: func(_ context.Context, _ service.AssessRequest) (*service.RouteAssessment, error) {
				return nil, service.ErrInvalidEndpoint
			},
		}
		app := newTestApp(assessor, &mockResolver{}, &mockAdmin{})

		code, _ := postJSON(t, app, "/api/v1/routes/assess", service.AssessRequest{})

		assert.Equal(t, fiber.StatusBadRequest, code)
	})

	t.Run("provider outage maps to 502", func(t *testing.T) {
		assessor := &mockAssessor{
			assessFunc: func(_ context.Context, _ service.AssessRequest) (*service.RouteAssessment, error) {
				return nil, routing.ErrProviderUnavailable
			},
		}
		app := newTestApp(assessor, &mockResolver{}, &mockAdmin{})

		code, _ := postJSON(t, app, "/api/v1/routes/assess", service.AssessRequest{})

		assert.Equal(t, fiber.StatusBadGateway, code)
	})
}

func TestCompareAlternatives(t *testing.T) {
	t.Run("returns ranking", func(t *testing.T) {
		assessor := &mockAssessor{
			compareFunc: func(_ context.Context, _ service.AlternativesRequest) (*service.AlternativesResult, error) {
				return &service.AlternativesResult{
					Origin: ports.Port{Name: "Singapore"},
					Ranked: []service.Alternative{{Destination: "Port Said"}},
				}, nil
			},
		}
		app := newTestApp(assessor, &mockResolver{}, &mockAdmin{})

		code, raw := postJSON(t, app, "/api/v1/routes/alternatives", service.AlternativesRequest{
			Origin:       service.Endpoint{Port: "singapore"},
			Destinations: []service.Endpoint{{Port: "port said"}},
		})

		require.Equal(t, fiber.StatusOK, code)

		var got service.AlternativesResult
		require.NoError(t, json.Unmarshal(raw, &got))
		require.Len(t, got.Ranked, 1)
		assert.Equal(t, "Port Said", got.Ranked[0].Destination)
	})

	t.Run("too many candidates is 400", func(t *testing.T) {
		app := newTestApp(&mockAssessor{}, &mockResolver{}, &mockAdmin{})

		code, raw := postJSON(t, app, "/api/v1/routes/alternatives", service.AlternativesRequest{
			Origin: service.Endpoint{Port: "singapore"},
			Destinations: []service.Endpoint{
				{Port: "a"}, {Port: "b"}, {Port: "c"}, {Port: "d"},
			},
		})

		assert.Equal(t, fiber.StatusBadRequest, code)
		assert.Contains(t, string(raw), "too many candidate destinations")
	})
}

func TestResolvePort(t *testing.T) {
	t.Run("resolves", func(t *testing.T) {
		resolver := &mockResolver{resolveFunc: func(_ context.Context, name string) (*ports.Port, error) {
			assert.Equal(t, "rotterdam", name)
			return &ports.Port{Name: "Rotterdam", Country: "Netherlands"}, nil
		}}
		app := newTestApp(&mockAssessor{}, resolver, &mockAdmin{})

		req := httptest.NewRequest(fiber.MethodGet, "/api/v1/ports/resolve?name=rotterdam", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var got ports.Port
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, "Rotterdam", got.Name)
	})

	t.Run("missing name is 400", func(t *testing.T) {
		app := newTestApp(&mockAssessor{}, &mockResolver{}, &mockAdmin{})

		req := httptest.NewRequest(fiber.MethodGet, "/api/v1/ports/resolve", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown port is 404", func(t *testing.T) {
		resolver := &mockResolver{resolveFunc: func(_ context.Context, _ string) (*ports.Port, error) {
			return nil, ports.ErrPortNotFound
		}}
		app := newTestApp(&mockAssessor{}, resolver, &mockAdmin{})

		req := httptest.NewRequest(fiber.MethodGet, "/api/v1/ports/resolve?name=atlantis", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestIncidentAdmin(t *testing.T) {
	t.Run("reload ok", func(t *testing.T) {
		admin := &mockAdmin{stats: incidents.Stats{Count: 42}}
		app := newTestApp(&mockAssessor{}, &mockResolver{}, admin)

		req := httptest.NewRequest(fiber.MethodPost, "/api/v1/incidents/reload", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"status":"ok"`)
		assert.Contains(t, string(raw), `"count":42`)
	})

	t.Run("reload failure keeps stats and reports error", func(t *testing.T) {
		admin := &mockAdmin{reloadErr: assert.AnError, stats: incidents.Stats{Count: 42}}
		app := newTestApp(&mockAssessor{}, &mockResolver{}, admin)

		req := httptest.NewRequest(fiber.MethodPost, "/api/v1/incidents/reload", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"count":42`)
	})

	t.Run("stats", func(t *testing.T) {
		admin := &mockAdmin{stats: incidents.Stats{Count: 7, Skipped: 2}}
		app := newTestApp(&mockAssessor{}, &mockResolver{}, admin)

		req := httptest.NewRequest(fiber.MethodGet, "/api/v1/incidents/stats", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var got incidents.Stats
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, 7, got.Count)
		assert.Equal(t, 2, got.Skipped)
	})
}
