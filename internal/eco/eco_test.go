package eco

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimate(t *testing.T) {
	t.Run("defaults applied to zero params", func(t *testing.T) {
		est := Estimate(1000/0.539957, VesselParams{}) // 1000 nm worth of km

		assert.InDelta(t, 1000, est.DistanceNm, 0.5)
		assert.Equal(t, FuelVLSFO, est.Params.Fuel)
		assert.InDelta(t, 18.0, est.Params.SpeedKn, 1e-9)
		// 1000 nm at 18 kn is ~55.56 h, ~2.315 days, ~69.4 t of fuel.
		assert.InDelta(t, 1000.0/18, est.EtaHours, 0.05)
		assert.InDelta(t, 30*(1000.0/18/24), est.FuelTonnes, 0.05)
	})

	t.Run("emission factor and price per fuel", func(t *testing.T) {
		params := VesselParams{SpeedKn: 24, ConsumptionTpd: 48, Fuel: FuelLNG}
		est := Estimate(2400, params)

		nm := 2400 * 0.539957
		eta := nm / 24
		fuel := 48 * eta / 24

		assert.InDelta(t, fuel*2.750, est.CO2Tonnes, 1e-6)
		assert.InDelta(t, fuel*1000, est.CostUSD, 1e-6)
	})

	t.Run("MGO pricing", func(t *testing.T) {
		est := Estimate(1000, VesselParams{SpeedKn: 18, ConsumptionTpd: 30, Fuel: FuelMGO})

		assert.InDelta(t, est.FuelTonnes*900, est.CostUSD, 1e-6)
		assert.InDelta(t, est.FuelTonnes*3.206, est.CO2Tonnes, 1e-6)
	})

	t.Run("intensity guards against zero distance", func(t *testing.T) {
		est := Estimate(0, DefaultVesselParams())

		assert.Zero(t, est.CO2Tonnes)
		assert.Zero(t, est.IntensityKgPerNm)
	})

	t.Run("unknown fuel falls back to VLSFO", func(t *testing.T) {
		est := Estimate(1000, VesselParams{SpeedKn: 18, ConsumptionTpd: 30, Fuel: FuelType("coal")})

		assert.Equal(t, FuelVLSFO, est.Params.Fuel)
	})
}

func TestRank(t *testing.T) {
	t.Run("lowest weighted score wins", func(t *testing.T) {
		candidates := []Candidate{
			{Name: "far and risky", EtaHours: 100, CostUSD: 50000, CO2Tonnes: 200, RiskScore: 0.9},
			{Name: "best", EtaHours: 40, CostUSD: 20000, CO2Tonnes: 80, RiskScore: 0.1},
			{Name: "middle", EtaHours: 70, CostUSD: 35000, CO2Tonnes: 140, RiskScore: 0.5},
		}

		ranked := Rank(candidates, DefaultRankWeights())

		require.Len(t, ranked, 3)
		assert.Equal(t, "best", ranked[0].Name)
		assert.Equal(t, "middle", ranked[1].Name)
		assert.Equal(t, "far and risky", ranked[2].Name)
		assert.Zero(t, ranked[0].Score)
		assert.InDelta(t, 1.0, ranked[2].Score, 1e-9)
	})

	t.Run("identical columns rank zero and keep order", func(t *testing.T) {
		candidates := []Candidate{
			{Name: "a", EtaHours: 50, CostUSD: 1000, CO2Tonnes: 10, RiskScore: 0.2},
			{Name: "b", EtaHours: 50, CostUSD: 1000, CO2Tonnes: 10, RiskScore: 0.2},
		}

		ranked := Rank(candidates, DefaultRankWeights())

		require.Len(t, ranked, 2)
		assert.Equal(t, "a", ranked[0].Name)
		assert.Zero(t, ranked[0].Score)
		assert.Zero(t, ranked[1].Score)
	})

	t.Run("weights steer the outcome", func(t *testing.T) {
		candidates := []Candidate{
			{Name: "fast but risky", EtaHours: 40, CostUSD: 30000, CO2Tonnes: 100, RiskScore: 0.9},
			{Name: "slow but safe", EtaHours: 90, CostUSD: 30000, CO2Tonnes: 100, RiskScore: 0.05},
		}

		riskFirst := Rank(candidates, RankWeights{Time: 0.1, Cost: 0.1, CO2: 0.1, Risk: 0.7})
		timeFirst := Rank(candidates, RankWeights{Time: 0.7, Cost: 0.1, CO2: 0.1, Risk: 0.1})

		assert.Equal(t, "slow but safe", riskFirst[0].Name)
		assert.Equal(t, "fast but risky", timeFirst[0].Name)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Nil(t, Rank(nil, DefaultRankWeights()))
	})
}
