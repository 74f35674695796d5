package routing

import (
	"context"
	"errors"
	"net/http"

	"github.com/pelorus-nav/searisk/internal/models"
)

// Provider is an interface that defines a method for computing a sea route
// between two resolved coordinates. The core treats any non-empty ordered
// coordinate sequence as a valid route and does not validate navigability.
type Provider interface {
	GetRoute(ctx context.Context, origin, destination models.GeoPoint) (models.RoutePath, error)
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Common errors for routing providers.
var (
	// ErrNoRouteFound is returned when no sea route connects the two points.
	// It is the only error that halts an assessment before scoring.
	ErrNoRouteFound = errors.New("no route found between ports")
	// ErrProviderUnavailable is returned when the routing provider is down.
	ErrProviderUnavailable = errors.New("routing provider unavailable")
)
