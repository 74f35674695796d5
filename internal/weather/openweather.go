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
	"golang.org/x/time/rate"
)

// OpenWeatherBaseURL is the OpenWeather current-conditions endpoint.
const OpenWeatherBaseURL = "https://api.openweathermap.org/data/2.5/weather"

// msToKph converts wind speeds from m/s (OpenWeather metric units) to km/h.
const msToKph = 3.6

// defaultTimeout bounds provider requests when no timeout is configured.
const defaultTimeout = 15 * time.Second

// OpenWeatherProvider implements the Provider interface using the OpenWeather
// current-weather API. Requires an API key and rate limits outgoing requests.
type OpenWeatherProvider struct {
	client  HTTPClient    // HTTP client for making requests
	baseURL string        // Base URL for the OpenWeather API
	apiKey  string        // API key for the OpenWeather account
	log     *slog.Logger  // Logger for logging operations
	limiter *rate.Limiter // Rate limiter
}

// openWeatherResponse is the subset of the OpenWeather payload the scorer
// consumes.
type openWeatherResponse struct {
	Wind struct {
		Speed float64 `json:"speed"` // m/s in metric units
		Gust  float64 `json:"gust"`
	} `json:"wind"`
	Rain struct {
		OneHour float64 `json:"1h"`
	} `json:"rain"`
	Snow struct {
		OneHour float64 `json:"1h"`
	} `json:"snow"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Dt int64 `json:"dt"`
}

// NewOpenWeatherProvider creates a new OpenWeather provider. A non-positive
// timeout falls back to the default.
func NewOpenWeatherProvider(apiKey string, rateLimit int, timeout time.Duration, log *slog.Logger) *OpenWeatherProvider {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &OpenWeatherProvider{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL: OpenWeatherBaseURL,
		apiKey:  apiKey,
		log:     log,
		limiter: rate.NewLimiter(rate.Limit(rateLimit), rateLimit),
	}
}

// NewOpenWeatherProviderWithClient allows injecting custom HTTP client.
// Useful for testing with mocked HTTP clients.
func NewOpenWeatherProviderWithClient(
	client HTTPClient,
	apiKey string,
	limiter *rate.Limiter,
	log *slog.Logger,
) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		client:  client,
		baseURL: OpenWeatherBaseURL,
		apiKey:  apiKey,
		log:     log,
		limiter: limiter,
	}
}

// GetForecast fetches current conditions at the given point. Wind speeds are
// converted from m/s to km/h and hourly rain and snow are summed into one
// precipitation figure.
func (op *OpenWeatherProvider) GetForecast(
	ctx context.Context,
	point models.GeoPoint,
) (*models.WeatherSample, error) {
	if err := op.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	op.log.DebugContext(ctx, "Fetching weather from OpenWeather", "lat", point.Latitude, "lon", point.Longitude)

	reqURL, err := url.Parse(op.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("lat", strconv.FormatFloat(point.Latitude, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(point.Longitude, 'f', -1, 64))
	query.Set("appid", op.apiKey)
	query.Set("units", "metric")
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := op.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// continue
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("%w: invalid API key", ErrUnavailable)
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	default:
		body, _ := io.ReadAll(resp.Body)
		op.log.ErrorContext(ctx, "OpenWeather API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var result openWeatherResponse
	if err = json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode openweather response: %w", err)
	}

	condition := ""
	if len(result.Weather) > 0 {
		condition = result.Weather[0].Description
	}

	sample := &models.WeatherSample{
		Location:     point,
		WindSpeedKph: result.Wind.Speed * msToKph,
		GustKph:      result.Wind.Gust * msToKph,
		PrecipMm:     result.Rain.OneHour + result.Snow.OneHour,
		Condition:    condition,
		ObservedAt:   time.Unix(result.Dt, 0).UTC(),
		Provider:     "openweather",
	}

	op.log.DebugContext(ctx, "OpenWeather sample",
		"wind_kph", sample.WindSpeedKph, "precip_mm", sample.PrecipMm, "condition", sample.Condition)

	return sample, nil
}
