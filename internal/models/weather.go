package models

import "time"

// WeatherSample is a point weather observation supplied per request by an
// external provider. Samples are ephemeral and never persisted by the core.
type WeatherSample struct {
	Location     GeoPoint  `json:"location"`      // Location is where the sample was taken.
	WindSpeedKph float64   `json:"wind_kph"`      // WindSpeedKph is sustained wind speed in km/h.
	GustKph      float64   `json:"gust_kph"`      // GustKph is gust speed in km/h.
	PrecipMm     float64   `json:"precip_mm_1h"`  // PrecipMm is precipitation over the last hour in mm.
	Condition    string    `json:"condition"`     // Condition is the provider's free-text condition description.
	ObservedAt   time.Time `json:"observed_at"`   // ObservedAt is the observation timestamp.
	Provider     string    `json:"provider"`      // Provider names the source ("openweather", "openmeteo").
}
