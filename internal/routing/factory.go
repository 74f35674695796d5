package routing

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ProviderType represents the type of routing provider.
type ProviderType string

const (
	// ProviderTypeSeaRoute represents an HTTP sea-lane routing service.
	ProviderTypeSeaRoute ProviderType = "searoute"
	// ProviderTypeGreatCircle represents the built-in geodesic fallback.
	ProviderTypeGreatCircle ProviderType = "greatcircle"
)

// ProviderConfig holds configuration for creating a routing provider.
type ProviderConfig struct {
	Type    ProviderType  // Type of provider to create
	BaseURL string        // Base URL of the sea-route service (searoute only)
	StepKm  float64       // Vertex spacing of geodesic routes (greatcircle only)
	Timeout time.Duration // Per-request HTTP timeout (searoute only), zero for the default
	Logger  *slog.Logger  // Logger for the provider
}

// NewProvider creates a routing provider based on the provided configuration.
func NewProvider(config ProviderConfig) (Provider, error) {
	switch config.Type {
	case ProviderTypeSeaRoute:
		if config.BaseURL == "" {
			return nil, errors.New("base URL is required for sea-route provider")
		}
		return NewSeaRouteClient(config.BaseURL, config.Timeout, config.Logger), nil
	case ProviderTypeGreatCircle:
		return NewGreatCircleProvider(config.StepKm, config.Logger), nil
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", config.Type)
	}
}
