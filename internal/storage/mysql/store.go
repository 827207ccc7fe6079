// Package mysql implements the storage ports over MySQL. Partitioned entities
// live in plain per-partition tables; every write resolves its table through
// the partition router before touching the database.
package mysql

import (
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"staylist/internal/domain"
	"staylist/internal/partition"
)

// Stores bundles every repository over one connection pool.
type Stores struct {
	Accommodations *AccommodationStore
	Localized      *LocalizedStore
	Locations      *LocationStore
	Users          *UserStore
	Images         *ImageStore
}

func New(db *sqlx.DB, router Router) *Stores {
	return &Stores{
		Accommodations: &AccommodationStore{db: db, router: router},
		Localized:      &LocalizedStore{db: db, router: router},
		Locations:      &LocationStore{db: db},
		Users:          &UserStore{db: db},
		Images:         &ImageStore{db: db},
	}
}

// Router is the slice of the partition router the stores need.
type Router interface {
	AccommodationPartition(feed int) partition.ID
	LanguagePartition(lang string) (partition.ID, error)
	AccommodationPartitions() []partition.ID
	LanguagePartitions() []partition.ID
}

// classify maps driver errors onto the domain taxonomy. Constraint violations
// become IntegrityError so a raced duplicate and a pre-checked duplicate look
// the same to callers; everything else propagates untouched.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case 1062: // ER_DUP_ENTRY
			return &domain.IntegrityError{Constraint: "unique", Err: err}
		case 1452: // ER_NO_REFERENCED_ROW_2
			return &domain.IntegrityError{Constraint: "foreign key", Err: err}
		case 1451: // ER_ROW_IS_REFERENCED_2
			return &domain.IntegrityError{Constraint: "referenced", Err: err}
		case 1048: // ER_BAD_NULL_ERROR
			return &domain.IntegrityError{Constraint: "not null", Err: err}
		}
	}
	return err
}

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
