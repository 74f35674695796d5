package weather

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

// OpenMeteoProvider implements the Provider interface using the Open-Meteo
// forecast API. Open-Meteo is keyless, which makes it the default for
// deployments without an OpenWeather subscription.
type OpenMeteoProvider struct {
	client  HTTPClient   // HTTP client for making requests
	baseURL string       // Base URL for the Open-Meteo API
	log     *slog.Logger // Logger for logging operations
}

// openMeteoResponse is the current-conditions subset of the Open-Meteo
// payload.
type openMeteoResponse struct {
	Current struct {
		Time          string  `json:"time"`
		Precipitation float64 `json:"precipitation"`
		WindSpeed     float64 `json:"wind_speed_10m"` // m/s, requested explicitly
		WindGusts     float64 `json:"wind_gusts_10m"`
	} `json:"current"`
}

// NewOpenMeteoProvider creates a new Open-Meteo provider. A non-positive
// timeout falls back to the default.
func NewOpenMeteoProvider(timeout time.Duration, log *slog.Logger) *OpenMeteoProvider {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &OpenMeteoProvider{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.open-meteo.com/v1/forecast",
		log:     log,
	}
}

// NewOpenMeteoProviderWithClient creates an Open-Meteo provider with a custom
// HTTP client. Useful for testing with mocked HTTP clients.
func NewOpenMeteoProviderWithClient(client HTTPClient, log *slog.Logger) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		client:  client,
		baseURL: "https://api.open-meteo.com/v1/forecast",
		log:     log,
	}
}

// GetForecast fetches current conditions at the given point. Wind is
// requested in m/s and converted to km/h. Open-Meteo carries no condition
// text, so classification of its samples rests on wind and precipitation.
func (om *OpenMeteoProvider) GetForecast(
	ctx context.Context,
	point models.GeoPoint,
) (*models.WeatherSample, error) {
	om.log.DebugContext(ctx, "Fetching weather from Open-Meteo", "lat", point.Latitude, "lon", point.Longitude)

	reqURL, err := url.Parse(om.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("latitude", strconv.FormatFloat(point.Latitude, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(point.Longitude, 'f', -1, 64))
	query.Set("current", "precipitation,wind_speed_10m,wind_gusts_10m")
	query.Set("wind_speed_unit", "ms")
	query.Set("timezone", "UTC")
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := om.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// continue
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	default:
		body, _ := io.ReadAll(resp.Body)
		om.log.ErrorContext(ctx, "Open-Meteo API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var result openMeteoResponse
	if err = json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode open-meteo response: %w", err)
	}

	observedAt := time.Now().UTC()
	if ts, errTime := time.Parse("2006-01-02T15:04", result.Current.Time); errTime == nil {
		observedAt = ts
	}

	return &models.WeatherSample{
		Location:     point,
		WindSpeedKph: result.Current.WindSpeed * msToKph,
		GustKph:      result.Current.WindGusts * msToKph,
		PrecipMm:     result.Current.Precipitation,
		ObservedAt:   observedAt,
		Provider:     "openmeteo",
	}, nil
}
