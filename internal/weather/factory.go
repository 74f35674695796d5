package weather

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ProviderType represents the type of weather provider.
type ProviderType string

const (
	// ProviderTypeOpenWeather represents the OpenWeather API provider.
	ProviderTypeOpenWeather ProviderType = "openweather"
	// ProviderTypeOpenMeteo represents the Open-Meteo API provider.
	ProviderTypeOpenMeteo ProviderType = "openmeteo"
)

// ProviderConfig holds configuration for creating a weather provider.
type ProviderConfig struct {
	Type      ProviderType  // Type of provider to create
	APIKey    string        // API key (used by OpenWeather provider)
	RateLimit int           // Rate limit for requests per second (used by OpenWeather provider)
	Timeout   time.Duration // Per-request HTTP timeout, zero for the default
	Logger    *slog.Logger  // Logger for the provider
}

// NewProvider creates a weather provider based on the provided configuration.
//
// Supported provider types:
// - "openweather": OpenWeather current-weather API (requires API key)
// - "openmeteo": Open-Meteo forecast API (free, no API key required)
//
// Returns an error if the provider type is unsupported or if provider creation fails.
func NewProvider(config ProviderConfig) (Provider, error) {
	switch config.Type {
	case ProviderTypeOpenWeather:
		if config.APIKey == "" {
			return nil, errors.New("API key is required for OpenWeather provider")
		}
		if config.RateLimit == 0 {
			config.RateLimit = 5
			config.Logger.Warn("Rate limit for OpenWeather API not set, set a default value", "value", config.RateLimit)
		}
		return NewOpenWeatherProvider(config.APIKey, config.RateLimit, config.Timeout, config.Logger), nil
	case ProviderTypeOpenMeteo:
		return NewOpenMeteoProvider(config.Timeout, config.Logger), nil
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", config.Type)
	}
}
