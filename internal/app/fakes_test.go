package app_test

import (
	"context"
	"sort"
	"strings"

	"staylist/internal/domain"
)

// ---- fakes ----

type fakeAccommodations struct {
	items map[domain.AccommodationKey]domain.Accommodation
}

func newFakeAccommodations() *fakeAccommodations {
	return &fakeAccommodations{items: map[domain.AccommodationKey]domain.Accommodation{}}
}

func (f *fakeAccommodations) Create(ctx context.Context, a domain.Accommodation) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if _, ok := f.items[a.Key()]; ok {
		return &domain.IntegrityError{Constraint: "unique"}
	}
	f.items[a.Key()] = a
	return nil
}

func (f *fakeAccommodations) Get(ctx context.Context, key domain.AccommodationKey) (domain.Accommodation, error) {
	a, ok := f.items[key]
	if !ok {
		return domain.Accommodation{}, domain.ErrNotFound
	}
	return a, nil
}

func (f *fakeAccommodations) Update(ctx context.Context, a domain.Accommodation) error {
	if _, ok := f.items[a.Key()]; !ok {
		return domain.ErrNotFound
	}
	f.items[a.Key()] = a
	return nil
}

func (f *fakeAccommodations) Delete(ctx context.Context, key domain.AccommodationKey) error {
	if _, ok := f.items[key]; !ok {
		return domain.ErrNotFound
	}
	delete(f.items, key)
	return nil
}

func (f *fakeAccommodations) List(ctx context.Context, q domain.AccommodationFilter) ([]domain.Accommodation, error) {
	var out []domain.Accommodation
	for _, a := range f.items {
		if q.Published != nil && a.Published != *q.Published {
			continue
		}
		if q.UserID != nil && a.UserID != *q.UserID {
			continue
		}
		if q.Feed != nil && a.Feed != *q.Feed {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

type fakeLocalized struct {
	items   map[string]domain.LocalizeAccommodation // key: accommodationID + ":" + lang
	deleted []string
	nextID  int64
}

func newFakeLocalized() *fakeLocalized {
	return &fakeLocalized{items: map[string]domain.LocalizeAccommodation{}}
}

func lkey(accommodationID, lang string) string { return accommodationID + ":" + lang }

func (f *fakeLocalized) Create(ctx context.Context, l *domain.LocalizeAccommodation) error {
	if err := l.Validate(); err != nil {
		return err
	}
	k := lkey(l.AccommodationID, l.Language)
	if _, ok := f.items[k]; ok {
		return &domain.IntegrityError{Constraint: "unique"}
	}
	f.nextID++
	l.ID = f.nextID
	f.items[k] = *l
	return nil
}

func (f *fakeLocalized) Get(ctx context.Context, accommodationID, lang string) (domain.LocalizeAccommodation, error) {
	l, ok := f.items[lkey(accommodationID, lang)]
	if !ok {
		return domain.LocalizeAccommodation{}, domain.ErrNotFound
	}
	return l, nil
}

func (f *fakeLocalized) ListForAccommodation(ctx context.Context, accommodationID string) ([]domain.LocalizeAccommodation, error) {
	var out []domain.LocalizeAccommodation
	for k, l := range f.items {
		if strings.HasPrefix(k, accommodationID+":") {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLocalized) DeleteForAccommodation(ctx context.Context, accommodationID string) error {
	f.deleted = append(f.deleted, accommodationID)
	for k := range f.items {
		if strings.HasPrefix(k, accommodationID+":") {
			delete(f.items, k)
		}
	}
	return nil
}

type fakeImages struct {
	items map[domain.AccommodationKey][]domain.AccommodationImage
}

func newFakeImages() *fakeImages {
	return &fakeImages{items: map[domain.AccommodationKey][]domain.AccommodationImage{}}
}

func (f *fakeImages) Add(ctx context.Context, img *domain.AccommodationImage) error {
	k := domain.AccommodationKey{ID: img.AccommodationID, Feed: img.Feed}
	img.ID = int64(len(f.items[k]) + 1)
	f.items[k] = append(f.items[k], *img)
	return nil
}

func (f *fakeImages) ListFor(ctx context.Context, key domain.AccommodationKey) ([]domain.AccommodationImage, error) {
	return f.items[key], nil
}

func (f *fakeImages) DeleteFor(ctx context.Context, key domain.AccommodationKey) error {
	delete(f.items, key)
	return nil
}

type fakeLocations struct {
	items map[string]domain.Location
}

func newFakeLocations() *fakeLocations {
	return &fakeLocations{items: map[string]domain.Location{}}
}

func (f *fakeLocations) Create(ctx context.Context, l domain.Location) error {
	if err := l.Validate(); err != nil {
		return err
	}
	f.items[l.ID] = l
	return nil
}

func (f *fakeLocations) Get(ctx context.Context, id string) (domain.Location, error) {
	l, ok := f.items[id]
	if !ok {
		return domain.Location{}, domain.ErrNotFound
	}
	return l, nil
}

func (f *fakeLocations) ChildrenOf(ctx context.Context, id string) ([]domain.Location, error) {
	var out []domain.Location
	for _, l := range f.items {
		if l.ParentID != nil && *l.ParentID == id {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (f *fakeLocations) ListByType(ctx context.Context, t domain.LocationType) ([]domain.Location, error) {
	var out []domain.Location
	for _, l := range f.items {
		if l.Type == t {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (f *fakeLocations) BulkUpsert(ctx context.Context, ls []domain.Location) error {
	for _, l := range ls {
		if err := l.Validate(); err != nil {
			return err
		}
		f.items[l.ID] = l
	}
	return nil
}

type fakeUsers struct {
	items  map[int64]domain.User
	groups map[int64][]string
	nextID int64
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{items: map[int64]domain.User{}, groups: map[int64][]string{}}
}

func (f *fakeUsers) Create(ctx context.Context, u *domain.User) error {
	for _, ex := range f.items {
		if ex.Username == u.Username || ex.Email == u.Email {
			return &domain.IntegrityError{Constraint: "unique"}
		}
	}
	f.nextID++
	u.ID = f.nextID
	f.items[u.ID] = *u
	return nil
}

func (f *fakeUsers) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	for _, u := range f.items {
		if u.Username == username {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	for _, u := range f.items {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (f *fakeUsers) Get(ctx context.Context, id int64) (domain.User, error) {
	u, ok := f.items[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) AddToGroup(ctx context.Context, userID int64, group string) error {
	f.groups[userID] = append(f.groups[userID], group)
	return nil
}

func (f *fakeUsers) InGroup(ctx context.Context, userID int64, group string) (bool, error) {
	for _, g := range f.groups[userID] {
		if g == group {
			return true, nil
		}
	}
	return false, nil
}

type fakeCache struct {
	store   map[string]any
	deleted []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c.store == nil {
		return false, nil
	}
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *domain.AccommodationView:
		*d = v.(domain.AccommodationView)
	case *domain.LocalizeAccommodation:
		*d = v.(domain.LocalizeAccommodation)
	}
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.deleted = append(c.deleted, key)
	delete(c.store, key)
	return nil
}

func ptr[T any](v T) *T { return &v }
