package incidents

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pelorus-nav/searisk/internal/models"
)

// Source loads the incident dataset from its backing storage.
type Source interface {
	Load(ctx context.Context) ([]models.IncidentRecord, int, error)
}

// Stats describes the currently loaded dataset.
type Stats struct {
	Count       int       `json:"count"`
	Skipped     int       `json:"skipped"`
	LoadedAt    time.Time `json:"loaded_at"`
	Hash        string    `json:"hash"`
	ReloadCount int       `json:"reload_count"`
	LastError   string    `json:"last_error,omitempty"`
}

// Store holds the process-wide incident index behind an atomic pointer.
// Readers always see a complete index; Reload builds a new one and swaps it
// in. A failed reload keeps the previous index and records the error.
type Store struct {
	source Source
	log    *slog.Logger

	indexPtr atomic.Value // stores *Index

	mu       sync.RWMutex
	lastHash string
	stats    Stats
}

// NewStore creates a store and performs the initial load. A load error is
// returned but still leaves the store usable with an empty index, so the
// scoring pipeline starts with "no incident signal" rather than not at all.
func NewStore(ctx context.Context, source Source, log *slog.Logger) (*Store, error) {
	st := &Store{source: source, log: log}
	st.indexPtr.Store(NewIndex(nil, 0))
	err := st.Reload(ctx)

	return st, err
}

// Current returns the active index. Never nil.
func (st *Store) Current() *Index {
	index, _ := st.indexPtr.Load().(*Index)
	return index
}

// Stats returns load statistics for the active index.
func (st *Store) Stats() Stats {
	st.mu.RLock()
	defer st.mu.RUnlock()

	return st.stats
}

// Reload loads the dataset and atomically swaps the index when its content
// changed. Unchanged content leaves the active index in place. Reload is safe
// to call concurrently from the watcher and the admin endpoint: the
// hash-compare-and-swap runs under the store mutex.
func (st *Store) Reload(ctx context.Context) error {
	records, skipped, err := st.source.Load(ctx)

	st.mu.Lock()
	defer st.mu.Unlock()

	if err != nil {
		st.stats.LastError = err.Error()

		return err
	}

	hash := recordHash(records)
	if hash == st.lastHash {
		return nil
	}

	st.indexPtr.Store(NewIndex(records, skipped))
	st.lastHash = hash
	st.stats = Stats{
		Count:       len(records),
		Skipped:     skipped,
		LoadedAt:    time.Now(),
		Hash:        hash[:12],
		ReloadCount: st.stats.ReloadCount + 1,
	}

	return nil
}

// Watch periodically reloads the dataset until the context is canceled.
// Reload errors are logged and recorded in stats; the previous index keeps
// serving.
func (st *Store) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			st.log.InfoContext(ctx, "Incident dataset watcher stopped.")
			return
		case <-ticker.C:
			if err := st.Reload(ctx); err != nil {
				st.log.ErrorContext(ctx, "Incident dataset reload failed, keeping previous index", "error", err)
			}
		}
	}
}

// recordHash computes a deterministic content hash over the loaded records so
// unchanged data never triggers an index swap.
func recordHash(records []models.IncidentRecord) string {
	h := sha256.New()
	buf := make([]byte, 8)
	for _, rec := range records {
		binary.BigEndian.PutUint64(buf, math.Float64bits(rec.Location.Latitude))
		h.Write(buf)
		binary.BigEndian.PutUint64(buf, math.Float64bits(rec.Location.Longitude))
		h.Write(buf)
		binary.BigEndian.PutUint64(buf, math.Float64bits(rec.Severity))
		h.Write(buf)
	}

	return hex.EncodeToString(h.Sum(nil))
}
