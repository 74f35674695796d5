package weather

import (
	"context"
	"errors"
	"net/http"

	"github.com/pelorus-nav/searisk/internal/models"
)

// Provider is an interface that defines a method for fetching a weather
// sample at a geographical point. The core functions with zero samples:
// callers absorb provider errors as "missing weather signal".
type Provider interface {
	GetForecast(ctx context.Context, point models.GeoPoint) (*models.WeatherSample, error)
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Common errors for weather providers.
var (
	// ErrUnavailable is returned when the provider is down or rejects the
	// configured credentials.
	ErrUnavailable = errors.New("weather provider unavailable")
	// ErrRateLimited is returned when the provider rejects the request for
	// quota reasons.
	ErrRateLimited = errors.New("weather provider rate limited")
)
