package app

import (
	"context"
	"errors"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"staylist/internal/domain"
)

var emailRe = regexp.MustCompile(`^[\w.\-]+@[\w\-]+(\.[\w\-]+)+$`)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// SignupService creates property-owner accounts. New accounts start inactive
// and wait for admin activation; activation itself belongs to the admin
// layer, not here.
type SignupService struct {
	users domain.UserRepository
}

func NewSignupService(users domain.UserRepository) *SignupService {
	return &SignupService{users: users}
}

type SignupRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (s *SignupService) Signup(ctx context.Context, req SignupRequest) (domain.User, error) {
	if req.Username == "" || !usernameRe.MatchString(req.Username) {
		return domain.User{}, &domain.ValidationError{Field: "username", Reason: "must be alphanumeric"}
	}
	if !emailRe.MatchString(req.Email) {
		return domain.User{}, &domain.ValidationError{Field: "email", Reason: "enter a valid email address"}
	}
	if req.Password == "" {
		return domain.User{}, &domain.ValidationError{Field: "password", Reason: "required"}
	}
	if req.Password != req.ConfirmPassword {
		return domain.User{}, &domain.ValidationError{Field: "confirm_password", Reason: "passwords do not match"}
	}

	// fast-fail duplicate checks; the unique indexes on username/email are
	// the backstop and surface as IntegrityError on a race
	if _, err := s.users.GetByUsername(ctx, req.Username); err == nil {
		return domain.User{}, &domain.ValidationError{Field: "username", Reason: "already taken"}
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, err
	}
	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return domain.User{}, &domain.ValidationError{Field: "email", Reason: "already registered"}
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}
	u := domain.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Active:       false,
	}
	if err := s.users.Create(ctx, &u); err != nil {
		return domain.User{}, err
	}
	if err := s.users.AddToGroup(ctx, u.ID, domain.GroupPropertyOwners); err != nil {
		return domain.User{}, err
	}
	return u, nil
}
