// Package risk computes composite hazard scores for route points and
// classifies whole routes into safe and risky segments.
package risk

import (
	"strings"

	"github.com/pelorus-nav/searisk/internal/geo"
	"github.com/pelorus-nav/searisk/internal/models"
)

// Weather severity tiers. Condition text and wind speed map onto one of
// these fixed weights.
const (
	tierBenign   = 0.0
	tierModerate = 0.5
	tierSevere   = 1.0
)

// Condition keyword classes. A storm-class condition forces the severe tier;
// a precip-class condition raises at least the moderate tier.
var (
	stormConditions  = []string{"storm", "hurricane", "typhoon", "cyclone", "squall", "thunder", "gale", "tornado"}
	precipConditions = []string{"rain", "snow", "drizzle", "sleet", "shower", "hail"}
)

// Config holds the tunable constants of the scorer. The values are
// operational estimates pending validation against real incident outcomes,
// so they are configuration inputs rather than hardwired algorithmic truths.
type Config struct {
	RadiusKm        float64 // RadiusKm is the incident proximity radius; incidents beyond it contribute nothing.
	IncidentWeight  float64 // IncidentWeight scales the incident term in the combined score.
	WeatherWeight   float64 // WeatherWeight scales the weather term in the combined score.
	ScoreCap        float64 // ScoreCap saturates the combined score so incident clusters cannot explode thresholds.
	ModerateWindKph float64 // ModerateWindKph is the wind cut for the moderate tier.
	SevereWindKph   float64 // SevereWindKph is the wind cut for the severe tier.
}

// DefaultConfig returns the documented defaults: 50 km radius, 0.7/0.3
// incident-dominant weights, cap 2.0, wind cuts 30/60 kph.
func DefaultConfig() Config {
	return Config{
		RadiusKm:        50,
		IncidentWeight:  0.7,
		WeatherWeight:   0.3,
		ScoreCap:        2.0,
		ModerateWindKph: 30,
		SevereWindKph:   60,
	}
}

// IncidentIndex answers proximity queries against the incident dataset.
type IncidentIndex interface {
	Nearby(p models.GeoPoint, radiusKm float64) []models.IncidentRecord
}

// PointScore is the hazard assessment of a single route point.
type PointScore struct {
	Score          float64       // Score is the normalized combined score in [0, 1].
	IncidentTerm   float64       // IncidentTerm is the raw, unweighted incident contribution.
	WeatherTerm    float64       // WeatherTerm is the weather tier weight.
	WeatherMissing bool          // WeatherMissing is set when no weather sample applied at this point.
	Dominant       models.Hazard // Dominant names the larger weighted term.
}

// Scorer combines incident proximity and weather severity into a hazard
// value for single points. It is stateless per call and safe for concurrent
// use over the shared read-only index.
type Scorer struct {
	index IncidentIndex
	cfg   Config
}

// NewScorer creates a scorer over the given incident index.
func NewScorer(index IncidentIndex, cfg Config) *Scorer {
	return &Scorer{index: index, cfg: cfg}
}

// ScorePoint scores one point. sample may be nil, in which case the weather
// term is zero and the result is flagged so callers can surface the missing
// signal; a point with no nearby incident and no weather scores exactly 0.
func (s *Scorer) ScorePoint(p models.GeoPoint, sample *models.WeatherSample) PointScore {
	result := PointScore{WeatherMissing: sample == nil}

	for _, incident := range s.index.Nearby(p, s.cfg.RadiusKm) {
		result.IncidentTerm += incident.Severity * s.proximityWeight(geo.Distance(p, incident.Location))
	}
	if sample != nil {
		result.WeatherTerm = s.weatherTier(sample)
	}

	weightedIncident := s.cfg.IncidentWeight * result.IncidentTerm
	weightedWeather := s.cfg.WeatherWeight * result.WeatherTerm

	combined := weightedIncident + weightedWeather
	result.Score = min(1, combined/s.cfg.ScoreCap)

	switch {
	case combined == 0:
		result.Dominant = models.HazardNone
	case weightedIncident >= weightedWeather:
		result.Dominant = models.HazardPiracy
	default:
		result.Dominant = models.HazardWeather
	}

	return result
}

// proximityWeight decays linearly from 1 at distance zero to 0 at the
// configured radius, so closer incidents weigh more.
func (s *Scorer) proximityWeight(distanceKm float64) float64 {
	if distanceKm >= s.cfg.RadiusKm {
		return 0
	}

	return 1 - distanceKm/s.cfg.RadiusKm
}

// weatherTier maps a sample's wind speed and condition text onto a severity
// tier. Keyless providers carry no condition text, so measured precipitation
// also raises the moderate tier.
func (s *Scorer) weatherTier(sample *models.WeatherSample) float64 {
	condition := strings.ToLower(sample.Condition)
	for _, keyword := range stormConditions {
		if strings.Contains(condition, keyword) {
			return tierSevere
		}
	}
	if sample.WindSpeedKph >= s.cfg.SevereWindKph {
		return tierSevere
	}

	if sample.WindSpeedKph >= s.cfg.ModerateWindKph || sample.PrecipMm > 0 {
		return tierModerate
	}
	for _, keyword := range precipConditions {
		if strings.Contains(condition, keyword) {
			return tierModerate
		}
	}

	return tierBenign
}
