// Package eco estimates voyage economics from route distance: transit time,
// fuel burn, CO2 emissions and bunker cost, plus the normalized weighted
// ranking used to compare alternative destinations.
package eco

import (
	"sort"

	"github.com/pelorus-nav/searisk/internal/geo"
)

// FuelType identifies a bunker fuel grade.
type FuelType string

const (
	FuelHFO   FuelType = "HFO"
	FuelVLSFO FuelType = "VLSFO"
	FuelMGO   FuelType = "MGO"
	FuelMDO   FuelType = "MDO"
	FuelLNG   FuelType = "LNG"
)

// emissionFactors holds tonnes of CO2 emitted per tonne of fuel burned.
var emissionFactors = map[FuelType]float64{
	FuelHFO:   3.114,
	FuelVLSFO: 3.114,
	FuelMGO:   3.206,
	FuelMDO:   3.206,
	FuelLNG:   2.750,
}

// bunkerPrices holds indicative fuel prices in USD per tonne.
var bunkerPrices = map[FuelType]float64{
	FuelHFO:   500,
	FuelVLSFO: 600,
	FuelMGO:   900,
	FuelMDO:   900,
	FuelLNG:   1000,
}

// VesselParams describes the vessel assumptions behind an estimate.
type VesselParams struct {
	SpeedKn        float64  `json:"speed_kn"`        // SpeedKn is the service speed in knots.
	ConsumptionTpd float64  `json:"consumption_tpd"` // ConsumptionTpd is fuel burn in tonnes per day at that speed.
	Fuel           FuelType `json:"fuel_type"`       // Fuel selects emission factor and bunker price.
}

// DefaultVesselParams returns the documented defaults: 18 kn, 30 t/day,
// VLSFO.
func DefaultVesselParams() VesselParams {
	return VesselParams{SpeedKn: 18, ConsumptionTpd: 30, Fuel: FuelVLSFO}
}

// withDefaults fills unset fields so partial API input still estimates.
func (vp VesselParams) withDefaults() VesselParams {
	defaults := DefaultVesselParams()
	if vp.SpeedKn <= 0 {
		vp.SpeedKn = defaults.SpeedKn
	}
	if vp.ConsumptionTpd <= 0 {
		vp.ConsumptionTpd = defaults.ConsumptionTpd
	}
	if _, ok := emissionFactors[vp.Fuel]; !ok {
		vp.Fuel = defaults.Fuel
	}

	return vp
}

// VoyageEstimate is the economic summary of one route at the given vessel
// parameters.
type VoyageEstimate struct {
	DistanceNm       float64      `json:"distance_nm"`
	EtaHours         float64      `json:"eta_hours"`
	FuelTonnes       float64      `json:"fuel_tonnes"`
	CO2Tonnes        float64      `json:"co2_tonnes"`
	CostUSD          float64      `json:"cost_usd"`
	IntensityKgPerNm float64      `json:"co2_intensity_kg_per_nm"` // kg CO2 per nautical mile
	Params           VesselParams `json:"params"`
}

// Estimate computes the voyage economics for a distance in kilometers.
func Estimate(distanceKm float64, params VesselParams) VoyageEstimate {
	params = params.withDefaults()

	nm := geo.KmToNm(distanceKm)
	etaHours := nm / params.SpeedKn
	days := etaHours / 24
	fuelTonnes := params.ConsumptionTpd * days
	co2Tonnes := fuelTonnes * emissionFactors[params.Fuel]

	const minNm = 1e-6

	return VoyageEstimate{
		DistanceNm:       nm,
		EtaHours:         etaHours,
		FuelTonnes:       fuelTonnes,
		CO2Tonnes:        co2Tonnes,
		CostUSD:          fuelTonnes * bunkerPrices[params.Fuel],
		IntensityKgPerNm: co2Tonnes * 1000 / max(nm, minNm),
		Params:           params,
	}
}

// Candidate is one destination in an alternatives comparison.
type Candidate struct {
	Name      string  `json:"name"`
	EtaHours  float64 `json:"eta_hours"`
	CostUSD   float64 `json:"cost_usd"`
	CO2Tonnes float64 `json:"co2_tonnes"`
	RiskScore float64 `json:"risk_score"`
}

// RankWeights weighs the normalized candidate columns. Lower combined score
// wins.
type RankWeights struct {
	Time float64 `json:"time"`
	Cost float64 `json:"cost"`
	CO2  float64 `json:"co2"`
	Risk float64 `json:"risk"`
}

// DefaultRankWeights returns the even 0.25 split.
func DefaultRankWeights() RankWeights {
	return RankWeights{Time: 0.25, Cost: 0.25, CO2: 0.25, Risk: 0.25}
}

// Ranked is a candidate with its combined comparison score.
type Ranked struct {
	Candidate
	Score float64 `json:"score"`
}

// Rank min-max normalizes every column across the candidates and orders them
// by the weighted sum, best (lowest) first. Ties keep input order.
func Rank(candidates []Candidate, weights RankWeights) []Ranked {
	if len(candidates) == 0 {
		return nil
	}

	etas := normalize(candidates, func(c Candidate) float64 { return c.EtaHours })
	costs := normalize(candidates, func(c Candidate) float64 { return c.CostUSD })
	co2s := normalize(candidates, func(c Candidate) float64 { return c.CO2Tonnes })
	risks := normalize(candidates, func(c Candidate) float64 { return c.RiskScore })

	ranked := make([]Ranked, len(candidates))
	for i, candidate := range candidates {
		ranked[i] = Ranked{
			Candidate: candidate,
			Score: etas[i]*weights.Time +
				costs[i]*weights.Cost +
				co2s[i]*weights.CO2 +
				risks[i]*weights.Risk,
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score < ranked[j].Score })

	return ranked
}

// normalize maps a column to [0,1] via (x-min)/range, zero everywhere when
// the range is zero.
func normalize(candidates []Candidate, value func(Candidate) float64) []float64 {
	minVal, maxVal := value(candidates[0]), value(candidates[0])
	for _, c := range candidates[1:] {
		v := value(c)
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}

	out := make([]float64, len(candidates))
	span := maxVal - minVal
	if span == 0 {
		return out
	}
	for i, c := range candidates {
		out[i] = (value(c) - minVal) / span
	}

	return out
}
