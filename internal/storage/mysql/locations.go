package mysql

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"staylist/internal/domain"
)

// LocationStore holds the geographic tree. No partitioning; read-heavy.
type LocationStore struct {
	db *sqlx.DB
}

type locationRow struct {
	ID          string         `db:"id"`
	Title       string         `db:"title"`
	Type        string         `db:"location_type"`
	CountryCode string         `db:"country_code"`
	StateAbbr   sql.NullString `db:"state_abbr"`
	City        sql.NullString `db:"city"`
	Lat         float64        `db:"lat"`
	Lon         float64        `db:"lon"`
	ParentID    sql.NullString `db:"parent_id"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r locationRow) toDomain() domain.Location {
	l := domain.Location{
		ID:          r.ID,
		Title:       r.Title,
		Type:        domain.LocationType(r.Type),
		CountryCode: r.CountryCode,
		Lat:         r.Lat,
		Lon:         r.Lon,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.StateAbbr.Valid {
		s := r.StateAbbr.String
		l.StateAbbr = &s
	}
	if r.City.Valid {
		c := r.City.String
		l.City = &c
	}
	if r.ParentID.Valid {
		p := r.ParentID.String
		l.ParentID = &p
	}
	return l
}

func (s *LocationStore) Create(ctx context.Context, l domain.Location) error {
	if err := l.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, upsertLocationSQL,
		l.ID, l.Title, string(l.Type), l.CountryCode,
		valStr(l.StateAbbr), valStr(l.City), l.Lat, l.Lon, valStr(l.ParentID),
	)
	return classify(err)
}

func (s *LocationStore) Get(ctx context.Context, id string) (domain.Location, error) {
	var row locationRow
	if err := s.db.GetContext(ctx, &row, getLocationSQL, id); err != nil {
		return domain.Location{}, classify(err)
	}
	return row.toDomain(), nil
}

// ChildrenOf returns a node's immediate children in title order.
func (s *LocationStore) ChildrenOf(ctx context.Context, id string) ([]domain.Location, error) {
	return s.selectLocations(ctx, childrenOfSQL, id)
}

func (s *LocationStore) ListByType(ctx context.Context, t domain.LocationType) ([]domain.Location, error) {
	return s.selectLocations(ctx, listByTypeSQL, string(t))
}

func (s *LocationStore) selectLocations(ctx context.Context, query string, arg any) ([]domain.Location, error) {
	var rows []locationRow
	if err := s.db.SelectContext(ctx, &rows, query, arg); err != nil {
		return nil, classify(err)
	}
	out := make([]domain.Location, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// BulkUpsert validates then upserts a batch; used by the importer. Parents
// must sort before children within the batch so the FK holds.
func (s *LocationStore) BulkUpsert(ctx context.Context, ls []domain.Location) error {
	if len(ls) == 0 {
		return nil
	}
	for _, l := range ls {
		if err := l.Validate(); err != nil {
			return err
		}
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, l := range ls {
		if _, err := tx.ExecContext(ctx, upsertLocationSQL,
			l.ID, l.Title, string(l.Type), l.CountryCode,
			valStr(l.StateAbbr), valStr(l.City), l.Lat, l.Lon, valStr(l.ParentID),
		); err != nil {
			return classify(err)
		}
	}
	return tx.Commit()
}
