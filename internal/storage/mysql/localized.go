package mysql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"staylist/internal/adapters/observability"
	"staylist/internal/domain"
)

// LocalizedStore persists per-language content in the language-listed
// partition tables. Inserts go straight into the resolved partition rather
// than through any generic routing, so the router stays the single source of
// placement truth.
type LocalizedStore struct {
	db     *sqlx.DB
	router Router
}

type localizedRow struct {
	ID              int64  `db:"id"`
	AccommodationID string `db:"accommodation_id"`
	Language        string `db:"language"`
	Description     string `db:"description"`
	Policy          []byte `db:"policy"`
}

func (r localizedRow) toDomain() (domain.LocalizeAccommodation, error) {
	l := domain.LocalizeAccommodation{
		ID:              r.ID,
		AccommodationID: r.AccommodationID,
		Language:        r.Language,
		Description:     r.Description,
	}
	if len(r.Policy) > 0 {
		if err := json.Unmarshal(r.Policy, &l.Policy); err != nil {
			return domain.LocalizeAccommodation{}, fmt.Errorf("policy for %s/%s: %w", l.AccommodationID, l.Language, err)
		}
	}
	return l, nil
}

// Create resolves the language partition (hard failure for unmapped codes)
// and inserts. The uniqueness pre-check is a fast-fail only; the UNIQUE
// (accommodation_id, language) index in the partition table is the backstop
// for the check-then-insert race, and its violation surfaces as the same
// IntegrityError.
func (s *LocalizedStore) Create(ctx context.Context, l *domain.LocalizeAccommodation) error {
	if err := l.Validate(); err != nil {
		return err
	}
	table, err := s.router.LanguagePartition(l.Language)
	if err != nil {
		return err
	}

	var exists bool
	if err := s.db.GetContext(ctx, &exists, fmt.Sprintf(existsLocalizedSQL, table), l.AccommodationID, l.Language); err != nil {
		return classify(err)
	}
	if exists {
		return &domain.IntegrityError{Constraint: "unique"}
	}

	policy, err := json.Marshal(l.Policy)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(insertLocalizedSQL, table),
		l.AccommodationID, l.Language, l.Description, string(policy))
	if err != nil {
		return classify(err)
	}
	// ids auto-increment per partition; unique only together with language
	l.ID, _ = res.LastInsertId()
	observability.ObservePartitionWrite(string(table))
	return nil
}

// Get is always a routed point lookup: language is known at query time by
// design, so no scan path exists here.
func (s *LocalizedStore) Get(ctx context.Context, accommodationID, language string) (domain.LocalizeAccommodation, error) {
	table, err := s.router.LanguagePartition(language)
	if err != nil {
		return domain.LocalizeAccommodation{}, err
	}
	var row localizedRow
	if err := s.db.GetContext(ctx, &row, fmt.Sprintf(getLocalizedSQL, table), accommodationID, language); err != nil {
		return domain.LocalizeAccommodation{}, classify(err)
	}
	return row.toDomain()
}

// ListForAccommodation fans out over every language partition. An error on
// any partition aborts the whole read.
func (s *LocalizedStore) ListForAccommodation(ctx context.Context, accommodationID string) ([]domain.LocalizeAccommodation, error) {
	observability.ObservePartitionScan("localize_accommodation")
	var out []domain.LocalizeAccommodation
	for _, table := range s.router.LanguagePartitions() {
		var rows []localizedRow
		if err := s.db.SelectContext(ctx, &rows, fmt.Sprintf(listLocalizedSQL, table), accommodationID); err != nil {
			return nil, classify(err)
		}
		for _, r := range rows {
			l, err := r.toDomain()
			if err != nil {
				return nil, err
			}
			out = append(out, l)
		}
	}
	return out, nil
}

// DeleteForAccommodation is the application-level cascade: it removes the
// accommodation's rows from every configured partition in one transaction,
// without the caller knowing which partitions held rows.
func (s *LocalizedStore) DeleteForAccommodation(ctx context.Context, accommodationID string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range s.router.LanguagePartitions() {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(deleteLocalizedSQL, table), accommodationID); err != nil {
			return classify(err)
		}
	}
	return tx.Commit()
}
