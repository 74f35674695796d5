package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pelorus-nav/searisk/internal/eco"
	"github.com/pelorus-nav/searisk/internal/models"
	"github.com/pelorus-nav/searisk/internal/routing"
)

func TestCompareAlternatives(t *testing.T) {
	t.Run("ranks nearer destination first", func(t *testing.T) {
		svc := newTestService(t, straightRouter(), calmWeather(), nil)

		got, err := svc.CompareAlternatives(context.Background(), AlternativesRequest{
			Origin: Endpoint{Port: "singapore"},
			Destinations: []Endpoint{
				{Port: "rotterdam"},
				{Port: "port said"},
			},
		})

		require.NoError(t, err)
		require.Len(t, got.Ranked, 2)
		assert.Equal(t, "Singapore", got.Origin.Name)
		// Port Said is closer, so it wins on every distance-driven column.
		assert.Equal(t, "Port Said", got.Ranked[0].Destination)
		assert.Equal(t, "Rotterdam", got.Ranked[1].Destination)
		assert.Less(t, got.Ranked[0].Score, got.Ranked[1].Score)
		require.NotNil(t, got.Ranked[0].Assessment)
		assert.Empty(t, got.Ranked[0].Error)
	})

	t.Run("risk weight flips the winner", func(t *testing.T) {
		// The incident cluster sits on the Port Said endpoint only.
		records := []models.IncidentRecord{
			{Location: models.GeoPoint{Latitude: 31.26, Longitude: 32.30}, Severity: 1.0},
			{Location: models.GeoPoint{Latitude: 31.27, Longitude: 32.31}, Severity: 1.0},
			{Location: models.GeoPoint{Latitude: 31.25, Longitude: 32.29}, Severity: 1.0},
		}
		svc := newTestService(t, straightRouter(), calmWeather(), records)

		riskOnly := eco.RankWeights{Risk: 1}
		got, err := svc.CompareAlternatives(context.Background(), AlternativesRequest{
			Origin: Endpoint{Port: "singapore"},
			Destinations: []Endpoint{
				{Port: "port said"},
				{Port: "rotterdam"},
			},
			Weights: &riskOnly,
		})

		require.NoError(t, err)
		require.Len(t, got.Ranked, 2)
		assert.Equal(t, "Rotterdam", got.Ranked[0].Destination)
	})

	t.Run("failed candidate drops to the end with its error", func(t *testing.T) {
		router := &stubRouter{routeFunc: func(_ context.Context, _, d models.GeoPoint) (models.RoutePath, error) {
			if d.Latitude > 50 { // Rotterdam
				return nil, routing.ErrNoRouteFound
			}
			return models.RoutePath{{Latitude: 1.29, Longitude: 103.85}, d}, nil
		}}
		svc := newTestService(t, router, calmWeather(), nil)

		got, err := svc.CompareAlternatives(context.Background(), AlternativesRequest{
			Origin: Endpoint{Port: "singapore"},
			Destinations: []Endpoint{
				{Port: "rotterdam"},
				{Port: "port said"},
			},
		})

		require.NoError(t, err)
		require.Len(t, got.Ranked, 2)
		assert.Equal(t, "Port Said", got.Ranked[0].Destination)
		assert.Equal(t, "rotterdam", got.Ranked[1].Destination)
		assert.Contains(t, got.Ranked[1].Error, "no route found")
		assert.Nil(t, got.Ranked[1].Assessment)
	})

	t.Run("no destinations rejected", func(t *testing.T) {
		svc := newTestService(t, straightRouter(), calmWeather(), nil)

		_, err := svc.CompareAlternatives(context.Background(), AlternativesRequest{
			Origin: Endpoint{Port: "singapore"},
		})

		require.ErrorIs(t, err, ErrNoDestinations)
	})

	t.Run("unresolvable origin is fatal", func(t *testing.T) {
		svc := newTestService(t, straightRouter(), calmWeather(), nil)

		_, err := svc.CompareAlternatives(context.Background(), AlternativesRequest{
			Origin:       Endpoint{Port: "atlantis"},
			Destinations: []Endpoint{{Port: "port said"}},
		})

		require.Error(t, err)
	})
}
