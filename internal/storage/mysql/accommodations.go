package mysql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"staylist/internal/adapters/observability"
	"staylist/internal/domain"
)

// AccommodationStore persists listings across the feed-ranged partition
// tables. Routing is transparent: callers see one logical table.
type AccommodationStore struct {
	db     *sqlx.DB
	router Router
}

type accommodationRow struct {
	ID           string    `db:"id"`
	Feed         int       `db:"feed"`
	Title        string    `db:"title"`
	CountryCode  string    `db:"country_code"`
	BedroomCount int       `db:"bedroom_count"`
	ReviewScore  float64   `db:"review_score"`
	USDRate      float64   `db:"usd_rate"`
	Lat          float64   `db:"lat"`
	Lon          float64   `db:"lon"`
	Amenities    []byte    `db:"amenities"`
	LocationID   string    `db:"location_id"`
	UserID       int64     `db:"user_id"`
	Published    bool      `db:"published"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r accommodationRow) toDomain() (domain.Accommodation, error) {
	a := domain.Accommodation{
		ID:           r.ID,
		Feed:         r.Feed,
		Title:        r.Title,
		CountryCode:  r.CountryCode,
		BedroomCount: r.BedroomCount,
		ReviewScore:  r.ReviewScore,
		USDRate:      r.USDRate,
		Lat:          r.Lat,
		Lon:          r.Lon,
		LocationID:   r.LocationID,
		UserID:       r.UserID,
		Published:    r.Published,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if len(r.Amenities) > 0 {
		if err := json.Unmarshal(r.Amenities, &a.Amenities); err != nil {
			return domain.Accommodation{}, fmt.Errorf("amenities for %s: %w", a.Key(), err)
		}
	}
	return a, nil
}

func (s *AccommodationStore) Create(ctx context.Context, a domain.Accommodation) error {
	if err := a.Validate(); err != nil {
		return err
	}
	table := s.router.AccommodationPartition(a.Feed)
	amen, err := json.Marshal(a.Amenities)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, fmt.Sprintf(insertAccommodationSQL, table),
		a.ID, a.Feed, a.Title, a.CountryCode, a.BedroomCount, a.ReviewScore, a.USDRate,
		a.Lat, a.Lon, string(amen), a.LocationID, a.UserID, a.Published, nullTime(a.CreatedAt),
	)
	if err != nil {
		return classify(err)
	}
	observability.ObservePartitionWrite(string(table))
	return nil
}

func (s *AccommodationStore) Get(ctx context.Context, key domain.AccommodationKey) (domain.Accommodation, error) {
	table := s.router.AccommodationPartition(key.Feed)
	var row accommodationRow
	if err := s.db.GetContext(ctx, &row, fmt.Sprintf(getAccommodationSQL, table), key.ID, key.Feed); err != nil {
		return domain.Accommodation{}, classify(err)
	}
	return row.toDomain()
}

func (s *AccommodationStore) Update(ctx context.Context, a domain.Accommodation) error {
	if err := a.Validate(); err != nil {
		return err
	}
	table := s.router.AccommodationPartition(a.Feed)
	amen, err := json.Marshal(a.Amenities)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(updateAccommodationSQL, table),
		a.Title, a.CountryCode, a.BedroomCount, a.ReviewScore, a.USDRate,
		a.Lat, a.Lon, string(amen), a.LocationID, a.Published,
		a.ID, a.Feed,
	)
	if err != nil {
		return classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	observability.ObservePartitionWrite(string(table))
	return nil
}

func (s *AccommodationStore) Delete(ctx context.Context, key domain.AccommodationKey) error {
	table := s.router.AccommodationPartition(key.Feed)
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(deleteAccommodationSQL, table), key.ID, key.Feed)
	if err != nil {
		return classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns listings newest first, ids ascending on created_at ties. With
// a feed in the filter this is a single-partition read; without one it is a
// UNION ALL scan over every partition, and an error on any partition aborts
// the whole scan rather than returning partial results.
func (s *AccommodationStore) List(ctx context.Context, f domain.AccommodationFilter) ([]domain.Accommodation, error) {
	where, args := buildAccommodationWhere(f)

	var query string
	var queryArgs []any
	if f.Feed != nil {
		table := s.router.AccommodationPartition(*f.Feed)
		query = fmt.Sprintf("SELECT%s FROM %s%s", selectAccommodationCols, table, where)
		queryArgs = args
	} else {
		observability.ObservePartitionScan("accommodation")
		parts := s.router.AccommodationPartitions()
		subs := make([]string, 0, len(parts))
		for _, table := range parts {
			subs = append(subs, fmt.Sprintf("SELECT%s FROM %s%s", selectAccommodationCols, table, where))
			queryArgs = append(queryArgs, args...)
		}
		query = "SELECT * FROM (" + strings.Join(subs, " UNION ALL ") + ") AS all_partitions"
	}
	query += " ORDER BY created_at DESC, id ASC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		queryArgs = append(queryArgs, f.Limit)
	}

	var rows []accommodationRow
	if err := s.db.SelectContext(ctx, &rows, query, queryArgs...); err != nil {
		return nil, classify(err)
	}
	out := make([]domain.Accommodation, 0, len(rows))
	for _, r := range rows {
		a, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func buildAccommodationWhere(f domain.AccommodationFilter) (string, []any) {
	var conds []string
	var args []any
	if f.Feed != nil {
		conds = append(conds, "feed = ?")
		args = append(args, *f.Feed)
	}
	if f.Published != nil {
		conds = append(conds, "published = ?")
		args = append(args, *f.Published)
	}
	if f.UserID != nil {
		conds = append(conds, "user_id = ?")
		args = append(args, *f.UserID)
	}
	if f.CountryCode != nil {
		conds = append(conds, "country_code = ?")
		args = append(args, *f.CountryCode)
	}
	if f.LocationID != nil {
		conds = append(conds, "location_id = ?")
		args = append(args, *f.LocationID)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
