package incidents_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/Flaque/filet"
	"github.com/pelorus-nav/searisk/internal/incidents"
	"github.com/pelorus-nav/searisk/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVSource_Load(t *testing.T) {
	defer filet.CleanUp(t)
	logger := slog.Default()
	ctx := context.Background()

	t.Run("loads records with aliased headers", func(t *testing.T) {
		file := filet.TmpFile(t, "", "Latitude,Longitude,severity,date,Vessel\n"+
			"3.1,101.5,2.5,2023-04-12,MV Aurora\n"+
			"1.29,103.85,,,\n")

		records, skipped, err := incidents.NewCSVSource(file.Name(), logger).Load(ctx)

		require.NoError(t, err)
		assert.Zero(t, skipped)
		require.Len(t, records, 2)
		assert.InEpsilon(t, 2.5, records[0].Severity, 1e-9)
		assert.Equal(t, 2023, records[0].OccurredAt.Year())
		assert.Equal(t, "MV Aurora", records[0].Attrs["Vessel"])
		// Missing severity falls back to the default weight.
		assert.InEpsilon(t, models.DefaultIncidentSeverity, records[1].Severity, 1e-9)
		assert.Nil(t, records[1].Attrs)
	})

	t.Run("strips a UTF-8 BOM from the first header cell", func(t *testing.T) {
		file := filet.TmpFile(t, "", "\uFEFFLAT,LON\n3.1,101.5\n")

		records, skipped, err := incidents.NewCSVSource(file.Name(), logger).Load(ctx)

		require.NoError(t, err)
		assert.Zero(t, skipped)
		require.Len(t, records, 1)
	})

	t.Run("discards malformed rows and counts them", func(t *testing.T) {
		file := filet.TmpFile(t, "", "LAT,LON\n"+
			"3.1,101.5\n"+
			"not-a-number,101.5\n"+
			"91.0,101.5\n"+
			",\n")

		records, skipped, err := incidents.NewCSVSource(file.Name(), logger).Load(ctx)

		require.NoError(t, err)
		assert.Len(t, records, 1)
		assert.Equal(t, 3, skipped)
	})

	t.Run("parses DMS coordinates", func(t *testing.T) {
		file := filet.TmpFile(t, "", "LAT,LON\n"+
			`12°34'56"N,45°30'0"E`+"\n")

		records, skipped, err := incidents.NewCSVSource(file.Name(), logger).Load(ctx)

		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Zero(t, skipped)
		assert.InDelta(t, 12.582, records[0].Location.Latitude, 0.001)
		assert.InDelta(t, 45.5, records[0].Location.Longitude, 0.001)
	})

	t.Run("southern and western hemispheres are negative", func(t *testing.T) {
		file := filet.TmpFile(t, "", "LAT,LON\n"+
			`10°30'0"S,62°0'0"W`+"\n")

		records, _, err := incidents.NewCSVSource(file.Name(), logger).Load(ctx)

		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.InDelta(t, -10.5, records[0].Location.Latitude, 0.001)
		assert.InDelta(t, -62.0, records[0].Location.Longitude, 0.001)
	})

	t.Run("wraps longitudes past 180", func(t *testing.T) {
		file := filet.TmpFile(t, "", "LAT,LON\n3.0,283.4\n")

		records, _, err := incidents.NewCSVSource(file.Name(), logger).Load(ctx)

		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.InDelta(t, -76.6, records[0].Location.Longitude, 0.001)
	})

	t.Run("deduplicates exact locations", func(t *testing.T) {
		file := filet.TmpFile(t, "", "LAT,LON\n3.1,101.5\n3.1,101.5\n")

		records, _, err := incidents.NewCSVSource(file.Name(), logger).Load(ctx)

		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("empty file yields empty index without error", func(t *testing.T) {
		file := filet.TmpFile(t, "", "")

		records, skipped, err := incidents.NewCSVSource(file.Name(), logger).Load(ctx)

		require.NoError(t, err)
		assert.Empty(t, records)
		assert.Zero(t, skipped)
	})

	t.Run("missing file yields empty index without error", func(t *testing.T) {
		records, skipped, err := incidents.NewCSVSource("/nonexistent/incidents.csv", logger).Load(ctx)

		require.NoError(t, err)
		assert.Empty(t, records)
		assert.Zero(t, skipped)
	})

	t.Run("file without coordinate columns yields empty index", func(t *testing.T) {
		file := filet.TmpFile(t, "", "Vessel,Flag\nMV Aurora,PA\n")

		records, _, err := incidents.NewCSVSource(file.Name(), logger).Load(ctx)

		require.NoError(t, err)
		assert.Empty(t, records)
	})
}
