package incidents

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pelorus-nav/searisk/internal/models"
)

// Column alias tables for the piracy incident CSV. Real-world dumps of this
// dataset disagree on header naming, so the loader resolves columns against
// these sets instead of requiring one canonical header.
var (
	latAliases = map[string]bool{
		"LAT": true, "Latitude": true, "latitude": true, "Lat": true,
		"LATITUDE": true, "Y": true, "y": true, "lat_dd": true,
	}
	lonAliases = map[string]bool{
		"LON": true, "Longitude": true, "longitude": true, "Lon": true,
		"LONGITUDE": true, "X": true, "x": true, "lon_dd": true,
		"LONG": true, "long": true, "LNG": true, "lng": true,
	}
	severityAliases = map[string]bool{
		"severity": true, "Severity": true, "SEVERITY": true,
		"weight": true, "Weight": true,
	}
	dateAliases = map[string]bool{
		"date": true, "Date": true, "DATE": true,
		"timestamp": true, "Timestamp": true, "occurred_at": true, "incident_date": true,
	}
)

// dmsRe matches degrees-minutes-seconds coordinates like `12°34'56"N` or
// `12-34-56 N`, with minutes and seconds optional.
var dmsRe = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)[\-\s°]?(\d+(?:\.\d+)?)?(?:[\-\s']?(\d+(?:\.\d+)?))?\s*"?\s*([NSEW])\s*$`)

var dateLayouts = []string{
	"2006-01-02", "02/01/2006", "01/02/2006", "2006-01-02T15:04:05Z07:00", "2006-01-02 15:04:05",
}

// CSVSource loads incident records from a tabular file on disk.
type CSVSource struct {
	path string
	log  *slog.Logger
}

// NewCSVSource creates a loader for the given CSV file path.
func NewCSVSource(path string, log *slog.Logger) *CSVSource {
	return &CSVSource{path: path, log: log}
}

// Load parses the CSV file into incident records. Malformed rows (missing or
// unparseable coordinates) are discarded and counted rather than failing the
// whole load. A missing, empty or headerless file yields zero records and no
// error: risk scoring degrades to "no incident signal" instead of crashing.
func (s *CSVSource) Load(ctx context.Context) ([]models.IncidentRecord, int, error) {
	file, err := os.Open(s.path)
	if err != nil {
		s.log.WarnContext(ctx, "Incident dataset not readable, loading empty index", "path", s.path, "error", err)
		return nil, 0, nil
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	// DMS coordinates carry a bare double quote for seconds, e.g. 12°34'56"N.
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		s.log.WarnContext(ctx, "Incident dataset has no header, loading empty index", "path", s.path, "error", err)
		return nil, 0, nil
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\uFEFF"))
	}

	latCol := findColumn(header, latAliases, "lat", "y")
	lonCol := findColumn(header, lonAliases, "lon", "x", "long", "lng")
	if latCol < 0 || lonCol < 0 {
		s.log.WarnContext(ctx, "Incident dataset has no coordinate columns, loading empty index",
			"path", s.path, "header", header)
		return nil, 0, nil
	}
	sevCol := findColumn(header, severityAliases)
	dateCol := findColumn(header, dateAliases)

	var (
		records []models.IncidentRecord
		skipped int
		seen    = make(map[models.GeoPoint]bool)
	)
	for {
		row, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			skipped++
			continue
		}

		rec, ok := s.parseRow(header, row, latCol, lonCol, sevCol, dateCol)
		if !ok {
			skipped++
			continue
		}
		// Exact duplicate locations collapse to one record.
		if seen[rec.Location] {
			continue
		}
		seen[rec.Location] = true
		records = append(records, rec)
	}

	s.log.InfoContext(ctx, "Incident dataset loaded", "path", s.path, "records", len(records), "skipped", skipped)

	return records, skipped, nil
}

func (s *CSVSource) parseRow(header, row []string, latCol, lonCol, sevCol, dateCol int) (models.IncidentRecord, bool) {
	if latCol >= len(row) || lonCol >= len(row) {
		return models.IncidentRecord{}, false
	}

	lat, ok := parseCoordinate(row[latCol])
	if !ok {
		return models.IncidentRecord{}, false
	}
	lon, ok := parseCoordinate(row[lonCol])
	if !ok {
		return models.IncidentRecord{}, false
	}
	// Some dumps publish eastern longitudes on a 0..360 axis.
	if lon > 180 && lon <= 360 {
		lon -= 360
	}

	point := models.GeoPoint{Latitude: lat, Longitude: lon}
	if point.Validate() != nil {
		return models.IncidentRecord{}, false
	}

	rec := models.IncidentRecord{Location: point, Severity: models.DefaultIncidentSeverity}
	if sevCol >= 0 && sevCol < len(row) {
		if sev, errSev := strconv.ParseFloat(strings.TrimSpace(row[sevCol]), 64); errSev == nil && sev > 0 {
			rec.Severity = sev
		}
	}
	if dateCol >= 0 && dateCol < len(row) {
		rec.OccurredAt = parseDate(row[dateCol])
	}

	for i, col := range header {
		if i == latCol || i == lonCol || i == sevCol || i == dateCol || i >= len(row) {
			continue
		}
		if value := strings.TrimSpace(row[i]); value != "" {
			if rec.Attrs == nil {
				rec.Attrs = make(map[string]string)
			}
			rec.Attrs[col] = value
		}
	}

	return rec, true
}

// findColumn resolves a header column by alias set first, then by prefix.
func findColumn(header []string, aliases map[string]bool, prefixes ...string) int {
	for i, col := range header {
		if aliases[col] {
			return i
		}
	}
	for i, col := range header {
		lower := strings.ToLower(col)
		for _, prefix := range prefixes {
			if strings.HasPrefix(lower, prefix) {
				return i
			}
		}
	}

	return -1
}

// parseCoordinate accepts decimal degrees or DMS notation with an optional
// hemisphere suffix.
func parseCoordinate(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	s = strings.NewReplacer("º", "°", "’", "'", "”", `"`).Replace(s)

	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, true
	}

	m := dmsRe.FindStringSubmatch(strings.ToUpper(s))
	if m == nil {
		return 0, false
	}
	deg, _ := strconv.ParseFloat(m[1], 64)
	var mins, secs float64
	if m[2] != "" {
		mins, _ = strconv.ParseFloat(m[2], 64)
	}
	if m[3] != "" {
		secs, _ = strconv.ParseFloat(m[3], 64)
	}

	dec := deg + mins/60 + secs/3600
	if m[4] == "S" || m[4] == "W" {
		dec = -dec
	}

	return dec, true
}

func parseDate(raw string) time.Time {
	s := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}

	return time.Time{}
}
