// Package service orchestrates the assessment pipeline: endpoint resolution,
// route fetch, weather sampling, risk classification and voyage economics.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/pelorus-nav/searisk/internal/eco"
	"github.com/pelorus-nav/searisk/internal/geo"
	"github.com/pelorus-nav/searisk/internal/incidents"
	"github.com/pelorus-nav/searisk/internal/metrics"
	"github.com/pelorus-nav/searisk/internal/models"
	"github.com/pelorus-nav/searisk/internal/ports"
	"github.com/pelorus-nav/searisk/internal/risk"
	"github.com/pelorus-nav/searisk/internal/routing"
	"github.com/pelorus-nav/searisk/internal/weather"
)

// ErrInvalidEndpoint is returned when a request endpoint carries neither a
// port name nor a coordinate pair.
var ErrInvalidEndpoint = errors.New("endpoint must carry a port name or lat/lon coordinates")

// PortResolver resolves free-text port names to coordinates.
type PortResolver interface {
	Resolve(ctx context.Context, name string) (*ports.Port, error)
}

// IncidentIndexer hands out the active incident index. The store swaps
// indexes on reload, so every assessment asks for the current one.
type IncidentIndexer interface {
	Current() *incidents.Index
}

// Endpoint is one end of a requested route: either a free-text port name or
// direct coordinates, which bypass resolution.
type Endpoint struct {
	Port string   `json:"port,omitempty"`
	Lat  *float64 `json:"lat,omitempty"`
	Lon  *float64 `json:"lon,omitempty"`
}

// AssessRequest describes a single route assessment.
type AssessRequest struct {
	Origin      Endpoint         `json:"origin"`
	Destination Endpoint         `json:"destination"`
	Vessel      eco.VesselParams `json:"vessel"`
}

// RouteAssessment is the full assessment result handed to delivery.
type RouteAssessment struct {
	ID          string                 `json:"id"`
	Origin      ports.Port             `json:"origin"`
	Destination ports.Port             `json:"destination"`
	DistanceKm  float64                `json:"distance_km"`
	DistanceNm  float64                `json:"distance_nm"`
	Route       *models.AnnotatedRoute `json:"route"`
	Eco         eco.VoyageEstimate     `json:"eco"`
	Summary     string                 `json:"summary"`
	CreatedAt   time.Time              `json:"created_at"`
}

// Config holds the pipeline constants of the assessment service.
type Config struct {
	Scorer         risk.Config           // Scorer configures the per-point risk scorer.
	Classifier     risk.ClassifierConfig // Classifier configures resampling and labeling.
	WeatherSamples int                   // WeatherSamples is how many route points get a forecast per request.
	NumWorkers     int                   // NumWorkers bounds the alternatives worker pool.
}

// DefaultConfig returns the documented defaults: default scorer and
// classifier constants, 4 weather samples, 4 workers.
func DefaultConfig() Config {
	const defaultSamples, defaultWorkers = 4, 4

	return Config{
		Scorer:         risk.DefaultConfig(),
		Classifier:     risk.DefaultClassifierConfig(),
		WeatherSamples: defaultSamples,
		NumWorkers:     defaultWorkers,
	}
}

// AssessmentService runs the assessment pipeline. It is safe for concurrent
// use; per-request state never leaves the call.
type AssessmentService struct {
	log         *slog.Logger
	resolver    PortResolver
	router      routing.Provider
	routerName  string // provider label for metrics
	weather     weather.Provider // may be nil, which degrades to missing weather
	weatherName string
	incidents   IncidentIndexer
	metrics     *metrics.Metrics
	cfg         Config
}

// NewAssessmentService creates a new instance of AssessmentService. Provider
// names label the request metrics. The weather provider may be nil; routing
// and incidents must not be.
func NewAssessmentService(
	log *slog.Logger,
	resolver PortResolver,
	router routing.Provider,
	routerName string,
	weatherProvider weather.Provider,
	weatherName string,
	indexer IncidentIndexer,
	mtr *metrics.Metrics,
	cfg Config,
) *AssessmentService {
	return &AssessmentService{
		log:         log,
		resolver:    resolver,
		router:      router,
		routerName:  routerName,
		weather:     weatherProvider,
		weatherName: weatherName,
		incidents:   indexer,
		metrics:     mtr,
		cfg:         cfg,
	}
}

// Assess runs the full pipeline for one origin/destination pair. Only a
// missing route or an unresolvable endpoint fails the request; weather
// failures degrade to a flagged missing signal.
func (s *AssessmentService) Assess(ctx context.Context, req AssessRequest) (*RouteAssessment, error) {
	origin, err := s.resolveEndpoint(ctx, req.Origin)
	if err != nil {
		s.metrics.Assessments.WithLabelValues("failure").Inc()
		return nil, fmt.Errorf("resolve origin: %w", err)
	}
	destination, err := s.resolveEndpoint(ctx, req.Destination)
	if err != nil {
		s.metrics.Assessments.WithLabelValues("failure").Inc()
		return nil, fmt.Errorf("resolve destination: %w", err)
	}

	assessment, err := s.assessResolved(ctx, *origin, *destination, req.Vessel)
	if err != nil {
		s.metrics.Assessments.WithLabelValues("failure").Inc()
		return nil, err
	}

	s.metrics.Assessments.WithLabelValues("success").Inc()

	return assessment, nil
}

// assessResolved is the pipeline after endpoint resolution. The alternatives
// fan-out enters here so candidate failures are counted by the caller.
func (s *AssessmentService) assessResolved(
	ctx context.Context,
	origin, destination ports.Port,
	vessel eco.VesselParams,
) (*RouteAssessment, error) {
	startTime := time.Now()
	route, err := s.router.GetRoute(ctx, origin.Location, destination.Location)
	s.metrics.RequestSeconds.WithLabelValues(s.routerName).Observe(time.Since(startTime).Seconds())

	if err != nil {
		s.metrics.ProviderErrors.WithLabelValues(s.routerName).Inc()
		s.log.ErrorContext(ctx, "Failed to fetch route",
			"origin", origin.Name, "destination", destination.Name, "error", err)

		return nil, fmt.Errorf("fetch route: %w", err)
	}

	samples := s.sampleWeather(ctx, route)

	scorer := risk.NewScorer(s.incidents.Current(), s.cfg.Scorer)
	annotated, err := risk.NewClassifier(scorer, s.cfg.Classifier).Classify(route, samples)
	if err != nil {
		return nil, fmt.Errorf("classify route: %w", err)
	}

	distanceKm := geo.RouteLengthKm(route)
	estimate := eco.Estimate(distanceKm, vessel)

	assessment := &RouteAssessment{
		ID:          uuid.NewString(),
		Origin:      origin,
		Destination: destination,
		DistanceKm:  distanceKm,
		DistanceNm:  estimate.DistanceNm,
		Route:       annotated,
		Eco:         estimate,
		CreatedAt:   time.Now().UTC(),
	}
	assessment.Summary = summarize(assessment)

	return assessment, nil
}

// resolveEndpoint turns a request endpoint into a concrete port. Direct
// coordinates bypass the resolver but still pass coordinate validation.
func (s *AssessmentService) resolveEndpoint(ctx context.Context, endpoint Endpoint) (*ports.Port, error) {
	if endpoint.Lat != nil && endpoint.Lon != nil {
		point := models.GeoPoint{Latitude: *endpoint.Lat, Longitude: *endpoint.Lon}
		if err := point.Validate(); err != nil {
			return nil, err
		}

		return &ports.Port{
			Name:     fmt.Sprintf("%.4f,%.4f", point.Latitude, point.Longitude),
			Location: point,
		}, nil
	}
	if endpoint.Port == "" {
		return nil, ErrInvalidEndpoint
	}

	return s.resolver.Resolve(ctx, endpoint.Port)
}

// sampleWeather fetches forecasts at evenly spread route points. Provider
// errors are absorbed: the affected points simply carry no sample and the
// classifier flags them as missing weather.
func (s *AssessmentService) sampleWeather(ctx context.Context, route models.RoutePath) []models.WeatherSample {
	if s.weather == nil || s.cfg.WeatherSamples <= 0 || len(route) == 0 {
		return nil
	}

	samples := make([]models.WeatherSample, 0, s.cfg.WeatherSamples)
	for _, point := range samplePoints(route, s.cfg.WeatherSamples) {
		startTime := time.Now()
		sample, err := s.weather.GetForecast(ctx, point)
		s.metrics.RequestSeconds.WithLabelValues(s.weatherName).Observe(time.Since(startTime).Seconds())

		if err != nil {
			s.metrics.ProviderErrors.WithLabelValues(s.weatherName).Inc()
			s.log.WarnContext(ctx, "Weather sample failed, degrading to missing signal",
				"lat", point.Latitude, "lon", point.Longitude, "error", err)

			continue
		}
		samples = append(samples, *sample)
	}

	return samples
}

// samplePoints picks count route vertices spread evenly along the path, the
// endpoints always included. Duplicate indexes on short routes collapse.
func samplePoints(route models.RoutePath, count int) []models.GeoPoint {
	if count >= len(route) {
		return route
	}
	if count == 1 {
		return models.RoutePath{route[0]}
	}

	points := make([]models.GeoPoint, 0, count)
	lastIdx := -1
	for i := 0; i < count; i++ {
		idx := int(math.Round(float64(i) * float64(len(route)-1) / float64(count-1)))
		if idx == lastIdx {
			continue
		}
		points = append(points, route[idx])
		lastIdx = idx
	}

	return points
}

// summarize renders the one-line human summary of an assessment.
func summarize(a *RouteAssessment) string {
	summary := fmt.Sprintf("%s to %s: %.0f km (%.0f nm), ETA %.1f h, risk %s, dominant hazard %s",
		a.Origin.Name,
		a.Destination.Name,
		a.DistanceKm,
		a.DistanceNm,
		a.Eco.EtaHours,
		a.Route.Label,
		a.Route.DominantHazard,
	)
	if a.Route.WeatherMissing {
		summary += " (weather data incomplete)"
	}

	return summary
}
