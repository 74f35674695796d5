package service

// GeoJSON export of an assessment for map rendering layers. Coordinates are
// emitted in GeoJSON lon-lat order.

type GeoJSONGeometry struct {
	Type        string       `json:"type"`
	Coordinates [][2]float64 `json:"coordinates"`
}

type GeoJSONFeature struct {
	Type       string          `json:"type"`
	Geometry   GeoJSONGeometry `json:"geometry"`
	Properties map[string]any  `json:"properties"`
}

type GeoJSONFeatureCollection struct {
	Type     string           `json:"type"`
	Features []GeoJSONFeature `json:"features"`
}

// ToGeoJSON renders an assessment as a feature collection: one LineString
// for the whole route with the voyage properties, then one short LineString
// per segment carrying its label and score for styling.
func ToGeoJSON(a *RouteAssessment) *GeoJSONFeatureCollection {
	path := make([][2]float64, len(a.Route.Path))
	for i, point := range a.Route.Path {
		path[i] = [2]float64{point.Longitude, point.Latitude}
	}

	collection := &GeoJSONFeatureCollection{
		Type: "FeatureCollection",
		Features: []GeoJSONFeature{{
			Type:     "Feature",
			Geometry: GeoJSONGeometry{Type: "LineString", Coordinates: path},
			Properties: map[string]any{
				"id":              a.ID,
				"origin":          a.Origin.Name,
				"destination":     a.Destination.Name,
				"distance_km":     a.DistanceKm,
				"distance_nm":     a.DistanceNm,
				"eta_hours":       a.Eco.EtaHours,
				"fuel_tonnes":     a.Eco.FuelTonnes,
				"co2_tonnes":      a.Eco.CO2Tonnes,
				"cost_usd":        a.Eco.CostUSD,
				"risk_label":      string(a.Route.Label),
				"max_score":       a.Route.MaxScore,
				"mean_score":      a.Route.MeanScore,
				"dominant_hazard": string(a.Route.DominantHazard),
				"weather_missing": a.Route.WeatherMissing,
			},
		}},
	}

	for _, segment := range a.Route.Segments {
		collection.Features = append(collection.Features, GeoJSONFeature{
			Type: "Feature",
			Geometry: GeoJSONGeometry{
				Type: "LineString",
				Coordinates: [][2]float64{
					{segment.Start.Longitude, segment.Start.Latitude},
					{segment.End.Longitude, segment.End.Latitude},
				},
			},
			Properties: map[string]any{
				"segment":         segment.Index,
				"label":           string(segment.Label),
				"score":           segment.Score,
				"dominant_hazard": string(segment.DominantHazard),
				"weather_missing": segment.WeatherMissing,
			},
		})
	}

	return collection
}
