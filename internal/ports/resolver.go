// Package ports resolves free-text port names to coordinates using the World
// Port Index table, with an optional geocoding fallback for names the table
// does not carry.
package ports

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/pelorus-nav/searisk/internal/models"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrPortNotFound is returned when a name resolves to no known port.
var ErrPortNotFound = errors.New("port not found")

// Maritime boilerplate tokens dropped during canonical name matching, so
// "Port of Rotterdam" and "Rotterdam Harbour" resolve to the same key.
var stopwords = map[string]bool{
	"port": true, "pelabuhan": true, "pel": true, "harbour": true, "harbor": true,
	"terminal": true, "marine": true, "maritime": true, "of": true, "the": true,
	"pt": true, "portos": true,
}

var parenRe = regexp.MustCompile(`\(.*?\)`)

// Port is a resolved port with its WPI attributes.
type Port struct {
	Name     string          `json:"name"`
	Country  string          `json:"country"`
	Location models.GeoPoint `json:"location"`
}

// Geocoder resolves a free-text place name to coordinates. Used as a
// fallback when the WPI table has no match.
type Geocoder interface {
	Geocode(ctx context.Context, name string) (*models.GeoPoint, error)
}

// Resolver matches free-text port names against the World Port Index.
type Resolver struct {
	byKey    map[string]Port
	keys     []string // sorted canonical keys, for deterministic fallback matching
	geocoder Geocoder // optional, may be nil
	log      *slog.Logger
}

// NewResolver loads the WPI CSV and builds the name table. The file must
// carry "Main Port Name", "Latitude" and "Longitude" columns; a column whose
// name contains "country" is picked up when present. geocoder may be nil.
func NewResolver(path string, geocoder Geocoder, log *slog.Logger) (*Resolver, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open port index: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read port index header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\uFEFF"))
	}

	nameCol, latCol, lonCol := -1, -1, -1
	countryCol := -1
	for i, col := range header {
		switch col {
		case "Main Port Name":
			nameCol = i
		case "Latitude":
			latCol = i
		case "Longitude":
			lonCol = i
		}
		if countryCol < 0 && strings.Contains(strings.ToLower(col), "country") {
			countryCol = i
		}
	}
	if nameCol < 0 || latCol < 0 || lonCol < 0 {
		return nil, fmt.Errorf("port index missing required columns, found: %v", header)
	}

	byKey := make(map[string]Port)
	for {
		row, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			continue
		}
		if nameCol >= len(row) || latCol >= len(row) || lonCol >= len(row) {
			continue
		}

		name := strings.TrimSpace(row[nameCol])
		key := CanonName(name)
		if key == "" {
			continue
		}
		lat, okLat := parseWPICoordinate(row[latCol])
		lon, okLon := parseWPICoordinate(row[lonCol])
		if !okLat || !okLon {
			continue
		}
		point := models.GeoPoint{Latitude: lat, Longitude: lon}
		if point.Validate() != nil {
			continue
		}

		port := Port{Name: name, Location: point}
		if countryCol >= 0 && countryCol < len(row) {
			port.Country = normCountry(row[countryCol])
		}
		if _, exists := byKey[key]; !exists {
			byKey[key] = port
		}
	}

	keys := make([]string, 0, len(byKey))
	for key := range byKey {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	log.Info("Port index loaded", "path", path, "ports", len(byKey))

	return &Resolver{byKey: byKey, keys: keys, geocoder: geocoder, log: log}, nil
}

// Count returns the number of indexed ports.
func (r *Resolver) Count() int {
	return len(r.byKey)
}

// Resolve matches a free-text name to a port. Exact canonical match wins;
// otherwise the first canonical key containing (or contained in) the query is
// used; otherwise the geocoder fallback, when configured, supplies bare
// coordinates under the queried name.
func (r *Resolver) Resolve(ctx context.Context, name string) (*Port, error) {
	key := CanonName(name)
	if key == "" {
		return nil, fmt.Errorf("%w: empty name", ErrPortNotFound)
	}

	if port, ok := r.byKey[key]; ok {
		return &port, nil
	}

	for _, candidate := range r.keys {
		if strings.Contains(candidate, key) || strings.Contains(key, candidate) {
			port := r.byKey[candidate]
			r.log.DebugContext(ctx, "Port resolved by partial match", "query", name, "matched", port.Name)
			return &port, nil
		}
	}

	if r.geocoder != nil {
		point, err := r.geocoder.Geocode(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("%w: geocoding fallback failed: %w", ErrPortNotFound, err)
		}
		r.log.InfoContext(ctx, "Port resolved via geocoding fallback", "query", name)
		return &Port{Name: name, Location: *point}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrPortNotFound, name)
}

// CanonName normalizes a port name for matching: accents stripped, lowered,
// parenthesized qualifiers and punctuation removed, maritime stopwords
// dropped.
func CanonName(name string) string {
	if name == "" {
		return ""
	}

	stripped, _, err := transform.String(transform.Chain(
		norm.NFKD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	), name)
	if err != nil {
		stripped = name
	}

	s := strings.ToLower(stripped)
	s = parenRe.ReplaceAllString(s, " ")

	var b strings.Builder
	for _, ch := range s {
		if unicode.IsPunct(ch) || unicode.IsSymbol(ch) {
			b.WriteRune(' ')
		} else {
			b.WriteRune(ch)
		}
	}

	tokens := strings.Fields(b.String())
	kept := tokens[:0]
	for _, tok := range tokens {
		if !stopwords[tok] {
			kept = append(kept, tok)
		}
	}

	return strings.Join(kept, " ")
}

// parseWPICoordinate accepts decimal degrees, tolerating the comma decimal
// separator some WPI editions ship with.
func parseWPICoordinate(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", ".")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}

	return v, true
}

// normCountry trims qualifiers like "(Netherlands) / Europe" down to the
// leading country name.
func normCountry(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "Unknown"
	}
	for _, sep := range []string{"(", "/", ",", " - "} {
		if idx := strings.Index(s, sep); idx >= 0 {
			s = s[:idx]
		}
	}

	return strings.TrimSpace(s)
}
