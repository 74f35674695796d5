package risk

import (
	"fmt"

	"github.com/pelorus-nav/searisk/internal/geo"
	"github.com/pelorus-nav/searisk/internal/models"
)

// ClassifierConfig holds the tunable constants of the route classifier.
type ClassifierConfig struct {
	// IntervalKm is the resampling interval. Half the default incident radius,
	// so proximity checks cannot step over a hazard circle between samples.
	IntervalKm float64
	// CautionThreshold (t1) and HighRiskThreshold (t2) map scores to labels.
	// Both bounds are closed from below: a score exactly at t1 is CAUTION.
	CautionThreshold  float64
	HighRiskThreshold float64
	// WeatherMaxDistanceKm bounds how far a weather sample still applies to a
	// scored point. Points with no sample in range are flagged weather-missing.
	WeatherMaxDistanceKm float64
}

// DefaultClassifierConfig returns the documented defaults: 25 km interval,
// thresholds 0.3/0.6, 500 km weather applicability.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		IntervalKm:           25,
		CautionThreshold:     0.3,
		HighRiskThreshold:    0.6,
		WeatherMaxDistanceKm: 500,
	}
}

// Label maps a normalized score to its risk label.
func (c ClassifierConfig) Label(score float64) models.RiskLabel {
	switch {
	case score < c.CautionThreshold:
		return models.RiskSafe
	case score < c.HighRiskThreshold:
		return models.RiskCaution
	default:
		return models.RiskHigh
	}
}

// Classifier turns a route plus a scorer into an annotated route. It is
// stateless per request; concurrent classifications share only the read-only
// incident index underneath the scorer.
type Classifier struct {
	scorer *Scorer
	cfg    ClassifierConfig
}

// NewClassifier creates a classifier over the given scorer.
func NewClassifier(scorer *Scorer, cfg ClassifierConfig) *Classifier {
	return &Classifier{scorer: scorer, cfg: cfg}
}

// Classify resamples the route, scores every resampled point and labels each
// original segment with the maximum score of its points. The maximum, never
// the mean: one severe sub-point must not be diluted by calm neighbors. The
// route aggregate is the worst segment score; the mean is reported alongside
// for comparing alternative routes.
func (c *Classifier) Classify(route models.RoutePath, samples []models.WeatherSample) (*models.AnnotatedRoute, error) {
	if err := route.Validate(); err != nil {
		return nil, fmt.Errorf("classify route: %w", err)
	}

	annotated := &models.AnnotatedRoute{
		Path:           route,
		Segments:       make([]models.SegmentRisk, 0, len(route)-1),
		DominantHazard: models.HazardNone,
	}

	var scoreSum float64
	for i := 0; i+1 < len(route); i++ {
		segment := c.classifySegment(i, route[i], route[i+1], samples)
		annotated.Segments = append(annotated.Segments, segment)

		scoreSum += segment.Score
		if segment.WeatherMissing {
			annotated.WeatherMissing = true
		}
		if segment.Score >= annotated.MaxScore {
			annotated.MaxScore = segment.Score
			annotated.DominantHazard = segment.DominantHazard
		}
	}

	annotated.MeanScore = scoreSum / float64(len(annotated.Segments))
	annotated.Label = c.cfg.Label(annotated.MaxScore)

	return annotated, nil
}

// classifySegment scores one original route segment over its resampled
// points.
func (c *Classifier) classifySegment(index int, start, end models.GeoPoint, samples []models.WeatherSample) models.SegmentRisk {
	segment := models.SegmentRisk{
		Index:          index,
		Start:          start,
		End:            end,
		DistanceKm:     geo.Distance(start, end),
		DominantHazard: models.HazardNone,
	}

	for _, point := range geo.ResamplePair(start, end, c.cfg.IntervalKm) {
		score := c.scorer.ScorePoint(point, c.nearestSample(point, samples))
		if score.WeatherMissing {
			segment.WeatherMissing = true
		}
		if score.Score >= segment.Score {
			segment.Score = score.Score
			segment.DominantHazard = score.Dominant
		}
	}
	segment.Label = c.cfg.Label(segment.Score)

	return segment
}

// nearestSample returns the closest weather sample within the applicability
// distance, or nil when none applies.
func (c *Classifier) nearestSample(p models.GeoPoint, samples []models.WeatherSample) *models.WeatherSample {
	var (
		best     *models.WeatherSample
		bestDist float64
	)
	for i := range samples {
		dist := geo.Distance(p, samples[i].Location)
		if dist > c.cfg.WeatherMaxDistanceKm {
			continue
		}
		if best == nil || dist < bestDist {
			best = &samples[i]
			bestDist = dist
		}
	}

	return best
}
