package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"staylist/internal/domain"
)

// ListingService owns the write paths: accommodations, their localized
// content, images and locations. Deletes cascade in application code because
// the localized rows live in language partitions the caller knows nothing
// about.
type ListingService struct {
	accommodations domain.AccommodationRepository
	localized      domain.LocalizedRepository
	images         domain.ImageRepository
	locations      domain.LocationRepository
	cache          domain.Cache
	languages      []string
}

func NewListingService(
	accommodations domain.AccommodationRepository,
	localized domain.LocalizedRepository,
	images domain.ImageRepository,
	locations domain.LocationRepository,
	cache domain.Cache,
	languages []string,
) *ListingService {
	return &ListingService{
		accommodations: accommodations,
		localized:      localized,
		images:         images,
		locations:      locations,
		cache:          cache,
		languages:      languages,
	}
}

func (s *ListingService) CreateAccommodation(ctx context.Context, a domain.Accommodation) error {
	return s.accommodations.Create(ctx, a)
}

func (s *ListingService) UpdateAccommodation(ctx context.Context, a domain.Accommodation) error {
	if err := s.accommodations.Update(ctx, a); err != nil {
		return err
	}
	s.invalidateAllLangs(ctx, a.Key())
	return nil
}

func (s *ListingService) SetPublished(ctx context.Context, key domain.AccommodationKey, published bool) error {
	a, err := s.accommodations.Get(ctx, key)
	if err != nil {
		return err
	}
	a.Published = published
	if err := s.accommodations.Update(ctx, a); err != nil {
		return err
	}
	s.invalidateAllLangs(ctx, key)
	return nil
}

// DeleteAccommodation removes the listing and everything hanging off it:
// localized rows across every language partition, then image records, then
// the listing row itself.
func (s *ListingService) DeleteAccommodation(ctx context.Context, key domain.AccommodationKey) error {
	if err := s.localized.DeleteForAccommodation(ctx, key.ID); err != nil {
		return err
	}
	if err := s.images.DeleteFor(ctx, key); err != nil {
		return err
	}
	if err := s.accommodations.Delete(ctx, key); err != nil {
		return err
	}
	s.invalidateAllLangs(ctx, key)
	return nil
}

// CreateLocalization authors a translation for the listing identified by
// key. Only the affected language's cached view is evicted.
func (s *ListingService) CreateLocalization(ctx context.Context, key domain.AccommodationKey, l *domain.LocalizeAccommodation) error {
	l.AccommodationID = key.ID
	if err := s.localized.Create(ctx, l); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.Del(ctx, accommodationCacheKey(key, l.Language))
		_ = s.cache.Del(ctx, localizationCacheKey(l.AccommodationID, l.Language))
	}
	return nil
}

func (s *ListingService) CreateLocation(ctx context.Context, l domain.Location) error {
	return s.locations.Create(ctx, l)
}

// AttachImage records an uploaded image under a fresh stored name; the
// original name only contributes its extension.
func (s *ListingService) AttachImage(ctx context.Context, key domain.AccommodationKey, originalName string) (domain.AccommodationImage, error) {
	img := domain.AccommodationImage{
		AccommodationID: key.ID,
		Feed:            key.Feed,
		FileName:        uuid.NewString() + filepath.Ext(originalName),
	}
	if err := s.images.Add(ctx, &img); err != nil {
		return domain.AccommodationImage{}, err
	}
	return img, nil
}

func (s *ListingService) invalidateAllLangs(ctx context.Context, key domain.AccommodationKey) {
	if s.cache == nil {
		return
	}
	for _, lang := range s.languages {
		_ = s.cache.Del(ctx, accommodationCacheKey(key, lang))
	}
}

func accommodationCacheKey(key domain.AccommodationKey, lang string) string {
	return fmt.Sprintf("accommodation:%s:%d:%s", key.ID, key.Feed, lang)
}

func localizationCacheKey(accommodationID, lang string) string {
	return fmt.Sprintf("localization:%s:%s", accommodationID, lang)
}
