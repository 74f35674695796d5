package incidents_test

import (
	"context"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/pelorus-nav/searisk/internal/incidents"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const incidentsQuery = `
		SELECT latitude, longitude, severity, occurred_at
		FROM public.incidents
		ORDER BY occurred_at ASC;
	`

func ptr[T any](v T) *T { return &v }

func TestPostgresSource_Load(t *testing.T) {
	t.Parallel()
	logger := slog.Default()
	ctx := context.Background()
	columns := []string{"latitude", "longitude", "severity", "occurred_at"}

	t.Run("error - query incidents", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(regexp.QuoteMeta(incidentsQuery)).WillReturnError(assert.AnError)

		records, skipped, err := incidents.NewPostgresSource(mock, logger).Load(ctx)

		require.Nil(t, records)
		assert.Zero(t, skipped)
		require.Error(t, err)
		require.ErrorContains(t, err, "failed to query incidents")
		require.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - rows error", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(regexp.QuoteMeta(incidentsQuery)).
			WillReturnRows(
				pgxmock.NewRows(columns).
					AddRow(ptr(3.1), ptr(101.5), ptr(1.0), ptr(time.Now())).
					RowError(1, assert.AnError),
			)

		records, _, err := incidents.NewPostgresSource(mock, logger).Load(ctx)

		require.Nil(t, records)
		require.Error(t, err)
		require.ErrorContains(t, err, "failed to read incident row")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success - skips NULL and invalid coordinates", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		occurred := time.Date(2023, 4, 12, 0, 0, 0, 0, time.UTC)
		mock.ExpectQuery(regexp.QuoteMeta(incidentsQuery)).
			WillReturnRows(
				pgxmock.NewRows(columns).
					AddRow(ptr(3.1), ptr(101.5), ptr(2.5), ptr(occurred)).
					AddRow((*float64)(nil), ptr(101.5), (*float64)(nil), (*time.Time)(nil)).
					AddRow(ptr(95.0), ptr(101.5), (*float64)(nil), (*time.Time)(nil)).
					AddRow(ptr(1.29), ptr(103.85), (*float64)(nil), (*time.Time)(nil)),
			)

		records, skipped, err := incidents.NewPostgresSource(mock, logger).Load(ctx)

		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, 2, skipped)
		assert.InEpsilon(t, 2.5, records[0].Severity, 1e-9)
		assert.Equal(t, occurred, records[0].OccurredAt)
		assert.InEpsilon(t, 1.0, records[1].Severity, 1e-9)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
