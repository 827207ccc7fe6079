package domain

import "context"

// AccommodationFilter narrows List. When Feed is nil the store scans every
// partition and merges, so callers see one logical table.
type AccommodationFilter struct {
	Feed        *int
	Published   *bool
	UserID      *int64
	CountryCode *string
	LocationID  *string
	Limit       int
}

type AccommodationRepository interface {
	Create(ctx context.Context, a Accommodation) error
	Get(ctx context.Context, key AccommodationKey) (Accommodation, error)
	Update(ctx context.Context, a Accommodation) error
	Delete(ctx context.Context, key AccommodationKey) error
	List(ctx context.Context, f AccommodationFilter) ([]Accommodation, error)
}

type LocalizedRepository interface {
	Create(ctx context.Context, l *LocalizeAccommodation) error
	Get(ctx context.Context, accommodationID, language string) (LocalizeAccommodation, error)
	ListForAccommodation(ctx context.Context, accommodationID string) ([]LocalizeAccommodation, error)
	DeleteForAccommodation(ctx context.Context, accommodationID string) error
}

type LocationRepository interface {
	Create(ctx context.Context, l Location) error
	Get(ctx context.Context, id string) (Location, error)
	ChildrenOf(ctx context.Context, id string) ([]Location, error)
	ListByType(ctx context.Context, t LocationType) ([]Location, error)
	BulkUpsert(ctx context.Context, ls []Location) error
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByUsername(ctx context.Context, username string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Get(ctx context.Context, id int64) (User, error)
	AddToGroup(ctx context.Context, userID int64, group string) error
	InGroup(ctx context.Context, userID int64, group string) (bool, error)
}

type ImageRepository interface {
	Add(ctx context.Context, img *AccommodationImage) error
	ListFor(ctx context.Context, key AccommodationKey) ([]AccommodationImage, error)
	DeleteFor(ctx context.Context, key AccommodationKey) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// AccommodationView is the localized read model: base listing fields plus the
// requested language's description and policy when a translation exists.
type AccommodationView struct {
	Accommodation
	Language    string
	Description *string
	Policy      map[string]string
}
