// Package importer bulk-loads the location tree from a JSON export. Records
// are grouped by depth so parents land before children, then each depth level
// is written in batches with bounded concurrency.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"staylist/internal/domain"
)

const batchSize = 200

type record struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Type        string  `json:"location_type"`
	CountryCode string  `json:"country_code"`
	StateAbbr   *string `json:"state_abbr"`
	City        *string `json:"city"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	ParentID    *string `json:"parent_id"`
}

type Loader struct {
	locations domain.LocationRepository
	workers   int
}

func New(locations domain.LocationRepository, workers int) *Loader {
	if workers <= 0 {
		workers = 4
	}
	return &Loader{locations: locations, workers: workers}
}

// LoadFile parses and validates the export, then upserts it. Returns the
// number of locations written. Validation failures abort before any write.
func (l *Loader) LoadFile(ctx context.Context, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var records []record
	if err := json.Unmarshal(raw, &records); err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}

	levels := map[domain.LocationType][]domain.Location{}
	for i, r := range records {
		loc := domain.Location{
			ID: r.ID, Title: r.Title, Type: domain.LocationType(r.Type),
			CountryCode: r.CountryCode, StateAbbr: r.StateAbbr, City: r.City,
			Lat: r.Lat, Lon: r.Lon, ParentID: r.ParentID,
		}
		if err := loc.Validate(); err != nil {
			return 0, fmt.Errorf("record %d (%s): %w", i, r.ID, err)
		}
		levels[loc.Type] = append(levels[loc.Type], loc)
	}

	total := 0
	// countries first, then states, then cities, so parent FKs resolve
	for _, t := range []domain.LocationType{domain.LocationCountry, domain.LocationState, domain.LocationCity} {
		n, err := l.upsertLevel(ctx, levels[t])
		if err != nil {
			return total, err
		}
		total += n
		log.Info().Str("level", string(t)).Int("count", n).Msg("locations imported")
	}
	return total, nil
}

func (l *Loader) upsertLevel(ctx context.Context, locs []domain.Location) (int, error) {
	if len(locs) == 0 {
		return 0, nil
	}
	sem := semaphore.NewWeighted(int64(l.workers))
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for start := 0; start < len(locs); start += batchSize {
		end := start + batchSize
		if end > len(locs) {
			end = len(locs)
		}
		batch := locs[start:end]

		if err := sem.Acquire(ctx, 1); err != nil {
			// drain in-flight batches so no write outlives the return
			wg.Wait()
			return 0, err
		}
		wg.Add(1)
		go func(batch []domain.Location) {
			defer wg.Done()
			defer sem.Release(1)
			if err := l.locations.BulkUpsert(ctx, batch); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(batch)
	}
	wg.Wait()
	if firstErr != nil {
		return 0, firstErr
	}
	return len(locs), nil
}
