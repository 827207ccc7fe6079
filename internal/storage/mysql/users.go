package mysql

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"staylist/internal/domain"
)

// UserStore holds accounts and group membership. Auth decisions live
// upstream; this store only answers identity and scoping questions.
type UserStore struct {
	db *sqlx.DB
}

type userRow struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash []byte    `db:"password_hash"`
	Active       bool      `db:"is_active"`
	Staff        bool      `db:"is_staff"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r userRow) toDomain() domain.User {
	return domain.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Active:       r.Active,
		Staff:        r.Staff,
		CreatedAt:    r.CreatedAt,
	}
}

func (s *UserStore) Create(ctx context.Context, u *domain.User) error {
	res, err := s.db.ExecContext(ctx, insertUserSQL,
		u.Username, u.Email, u.PasswordHash, u.Active, u.Staff)
	if err != nil {
		return classify(err)
	}
	u.ID, _ = res.LastInsertId()
	return nil
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	return s.getWhere(ctx, "username = ?", username)
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.getWhere(ctx, "email = ?", email)
}

func (s *UserStore) Get(ctx context.Context, id int64) (domain.User, error) {
	return s.getWhere(ctx, "id = ?", id)
}

func (s *UserStore) getWhere(ctx context.Context, cond string, arg any) (domain.User, error) {
	var row userRow
	query := "SELECT" + selectUserCols + " FROM users WHERE " + cond
	if err := s.db.GetContext(ctx, &row, query, arg); err != nil {
		return domain.User{}, classify(err)
	}
	return row.toDomain(), nil
}

func (s *UserStore) AddToGroup(ctx context.Context, userID int64, group string) error {
	if _, err := s.db.ExecContext(ctx, ensureGroupSQL, group); err != nil {
		return classify(err)
	}
	_, err := s.db.ExecContext(ctx, addToGroupSQL, userID, group)
	return classify(err)
}

func (s *UserStore) InGroup(ctx context.Context, userID int64, group string) (bool, error) {
	var in bool
	if err := s.db.GetContext(ctx, &in, inGroupSQL, userID, group); err != nil {
		return false, classify(err)
	}
	return in, nil
}
