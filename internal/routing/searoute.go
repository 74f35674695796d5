package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pelorus-nav/searisk/internal/models"
)

// SeaRouteClient implements the Provider interface against a searoute-server
// style HTTP service that returns a GeoJSON LineString following shipping
// lanes.
type SeaRouteClient struct {
	client  HTTPClient   // HTTP client for making requests
	baseURL string       // Base URL of the sea-route service
	log     *slog.Logger // Logger for logging operations
}

// seaRouteResponse is a GeoJSON Feature with a LineString geometry. The wire
// format carries coordinates in lon,lat order.
type seaRouteResponse struct {
	Geometry struct {
		Coordinates [][]float64 `json:"coordinates"` // [lon, lat]
	} `json:"geometry"`
	Properties struct {
		Length float64 `json:"length"`
		Units  string  `json:"units"`
	} `json:"properties"`
}

// NewSeaRouteClient creates a routing client for the given base URL. A
// non-positive timeout falls back to the default.
func NewSeaRouteClient(baseURL string, timeout time.Duration, log *slog.Logger) *SeaRouteClient {
	const defaultTimeout = 30 * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &SeaRouteClient{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		log:     log,
	}
}

// NewSeaRouteClientWithClient allows injecting custom HTTP client.
// Useful for testing with mocked HTTP clients.
func NewSeaRouteClientWithClient(client HTTPClient, baseURL string, log *slog.Logger) *SeaRouteClient {
	return &SeaRouteClient{client: client, baseURL: baseURL, log: log}
}

// GetRoute requests a sea-lane route between the two points. A 404 or an
// empty coordinate sequence maps to ErrNoRouteFound; transport failures and
// server errors map to ErrProviderUnavailable.
func (sc *SeaRouteClient) GetRoute(
	ctx context.Context,
	origin, destination models.GeoPoint,
) (models.RoutePath, error) {
	sc.log.DebugContext(ctx, "Requesting sea route",
		"origin_lat", origin.Latitude, "origin_lon", origin.Longitude,
		"dest_lat", destination.Latitude, "dest_lon", destination.Longitude)

	reqURL, err := url.Parse(sc.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("origin", formatLonLat(origin))
	query.Set("destination", formatLonLat(destination))
	query.Set("units", "km")
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := sc.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// continue
	case http.StatusNotFound:
		return nil, ErrNoRouteFound
	default:
		body, _ := io.ReadAll(resp.Body)
		sc.log.ErrorContext(ctx, "Sea-route service error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var result seaRouteResponse
	if err = json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode sea-route response: %w", err)
	}

	const coordPairLength = 2
	route := make(models.RoutePath, 0, len(result.Geometry.Coordinates))
	for _, pair := range result.Geometry.Coordinates {
		if len(pair) != coordPairLength {
			continue
		}
		route = append(route, models.GeoPoint{Longitude: pair[0], Latitude: pair[1]})
	}

	if len(route) < 2 {
		return nil, ErrNoRouteFound
	}

	sc.log.DebugContext(ctx, "Sea route received", "points", len(route), "length_km", result.Properties.Length)

	return route, nil
}

func formatLonLat(p models.GeoPoint) string {
	return strconv.FormatFloat(p.Longitude, 'f', -1, 64) + "," + strconv.FormatFloat(p.Latitude, 'f', -1, 64)
}
