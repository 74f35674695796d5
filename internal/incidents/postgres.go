package incidents

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pelorus-nav/searisk/internal/models"
)

// Database is the subset of pgxpool.Pool the Postgres source needs.
type Database interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSource loads incident records from a Postgres mirror of the piracy
// dataset, for deployments that replicate the tabular file into SQL.
type PostgresSource struct {
	db  Database
	log *slog.Logger
}

// NewPostgresSource creates a loader over the given database connection.
func NewPostgresSource(db Database, log *slog.Logger) *PostgresSource {
	return &PostgresSource{db: db, log: log}
}

// Load fetches all incident rows. Rows with NULL or out-of-range coordinates
// are the SQL shape of a malformed dataset row: they are skipped and counted,
// never fatal.
func (s *PostgresSource) Load(ctx context.Context) ([]models.IncidentRecord, int, error) {
	query := `
		SELECT latitude, longitude, severity, occurred_at
		FROM public.incidents
		ORDER BY occurred_at ASC;
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query incidents: %w", err)
	}
	defer rows.Close()

	var (
		records []models.IncidentRecord
		skipped int
	)
	for rows.Next() {
		var (
			lat, lon, sev *float64
			occurredAt    *time.Time
		)
		if errScan := rows.Scan(&lat, &lon, &sev, &occurredAt); errScan != nil {
			return nil, 0, fmt.Errorf("failed to scan incident row: %w", errScan)
		}

		if lat == nil || lon == nil {
			skipped++
			continue
		}
		point := models.GeoPoint{Latitude: *lat, Longitude: *lon}
		if point.Validate() != nil {
			skipped++
			continue
		}

		rec := models.IncidentRecord{Location: point, Severity: models.DefaultIncidentSeverity}
		if sev != nil && *sev > 0 {
			rec.Severity = *sev
		}
		if occurredAt != nil {
			rec.OccurredAt = *occurredAt
		}
		records = append(records, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read incident row: %w", err)
	}

	s.log.InfoContext(ctx, "Incident dataset loaded from database", "records", len(records), "skipped", skipped)

	return records, skipped, nil
}
