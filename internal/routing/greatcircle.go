package routing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pelorus-nav/searisk/internal/geo"
	"github.com/pelorus-nav/searisk/internal/models"
)

// GreatCircleProvider is a fallback Provider for deployments without a
// sea-route service. It returns the resampled geodesic between the two
// points. The path ignores land masses, so it is only fit for open-water
// estimates and development use.
type GreatCircleProvider struct {
	stepKm float64
	log    *slog.Logger
}

// NewGreatCircleProvider creates a geodesic provider whose returned routes
// carry a vertex at most stepKm apart.
func NewGreatCircleProvider(stepKm float64, log *slog.Logger) *GreatCircleProvider {
	const defaultStepKm = 100.0
	if stepKm <= 0 {
		stepKm = defaultStepKm
	}

	return &GreatCircleProvider{stepKm: stepKm, log: log}
}

// GetRoute returns the resampled straight-line path from origin to
// destination.
func (gc *GreatCircleProvider) GetRoute(
	ctx context.Context,
	origin, destination models.GeoPoint,
) (models.RoutePath, error) {
	if err := origin.Validate(); err != nil {
		return nil, fmt.Errorf("origin: %w", err)
	}
	if err := destination.Validate(); err != nil {
		return nil, fmt.Errorf("destination: %w", err)
	}

	route := models.RoutePath(geo.ResamplePair(origin, destination, gc.stepKm))
	gc.log.DebugContext(ctx, "Great-circle route built",
		"points", len(route), "length_km", geo.RouteLengthKm(route))

	return route, nil
}
