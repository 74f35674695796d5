package models

// RiskLabel classifies a route segment by its normalized risk score.
type RiskLabel string

const (
	// RiskSafe marks a segment whose score is below the caution threshold.
	RiskSafe RiskLabel = "SAFE"
	// RiskCaution marks a segment at or above the caution threshold.
	RiskCaution RiskLabel = "CAUTION"
	// RiskHigh marks a segment at or above the high-risk threshold.
	RiskHigh RiskLabel = "HIGH_RISK"
)

// Hazard names the dominant contributing factor of a risk score.
type Hazard string

const (
	// HazardNone means no factor contributed to the score.
	HazardNone Hazard = "none"
	// HazardPiracy means incident proximity dominated the score.
	HazardPiracy Hazard = "piracy"
	// HazardWeather means weather severity dominated the score.
	HazardWeather Hazard = "weather"
)

// SegmentRisk is the risk assessment of one route segment, the stretch
// between two consecutive route points.
type SegmentRisk struct {
	Index          int       `json:"index"`           // Index is the segment position along the route.
	Start          GeoPoint  `json:"start"`           // Start is the segment's first point.
	End            GeoPoint  `json:"end"`             // End is the segment's second point.
	DistanceKm     float64   `json:"distance_km"`     // DistanceKm is the great-circle segment length.
	Score          float64   `json:"score"`           // Score is the normalized risk score in [0, 1].
	Label          RiskLabel `json:"label"`           // Label is the classification of Score.
	DominantHazard Hazard    `json:"dominant_hazard"` // DominantHazard names the larger weighted term.
	WeatherMissing bool      `json:"weather_missing"` // WeatherMissing is set when no weather sample applied.
}

// AnnotatedRoute is the sole scoring output artifact: the original path plus
// per-segment risk and a worst-case aggregate summary. Derived per request,
// never cached across requests with different inputs.
type AnnotatedRoute struct {
	Path           RoutePath     `json:"path"`
	Segments       []SegmentRisk `json:"segments"`
	MaxScore       float64       `json:"max_score"`  // MaxScore is the maximum segment score (worst-case aggregate).
	MeanScore      float64       `json:"mean_score"` // MeanScore is the mean segment score, for route comparison.
	Label          RiskLabel     `json:"label"`
	DominantHazard Hazard        `json:"dominant_hazard"`
	WeatherMissing bool          `json:"weather_missing"` // WeatherMissing is set when any segment lacked weather data.
}
