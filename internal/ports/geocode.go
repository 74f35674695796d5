package ports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pelorus-nav/searisk/internal/models"
	"googlemaps.github.io/maps"
)

// MapsGeocoder resolves place names through the Google Maps Geocoding API.
// It backs the Resolver when the WPI table has no match for a queried name.
type MapsGeocoder struct {
	client GoogleAPIClient // client is the Google Maps API client
	log    *slog.Logger    // log is the logger for logging operations
}

// GoogleAPIClient is the subset of the Google Maps client the geocoder uses.
type GoogleAPIClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// ErrEmptyGeocodeResponse is returned when the Google Maps API responds with an empty result.
var ErrEmptyGeocodeResponse = errors.New("get empty response from Google Maps API")

// NewMapsGeocoder creates a geocoder over an initialized Google Maps client.
func NewMapsGeocoder(client GoogleAPIClient, log *slog.Logger) *MapsGeocoder {
	return &MapsGeocoder{client: client, log: log}
}

// Geocode resolves a free-text place name to coordinates using the Google
// Maps Geocoding API.
func (mg *MapsGeocoder) Geocode(ctx context.Context, name string) (*models.GeoPoint, error) {
	mg.log.DebugContext(ctx, "Geocoding port name using Google Maps", "name", name)

	req := maps.GeocodingRequest{Address: name}
	results, err := mg.client.Geocode(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("failed to geocode port name: %w", err)
	}

	if len(results) == 0 {
		return nil, ErrEmptyGeocodeResponse
	}
	loc := results[0].Geometry.Location

	return &models.GeoPoint{Latitude: loc.Lat, Longitude: loc.Lng}, nil
}
