package app

import (
	"context"
	"errors"
	"time"

	"staylist/internal/domain"
)

// QueryService serves the read paths with a cache in front of the point
// lookups. Cross-partition listings are not cached; they hit storage.
type QueryService struct {
	accommodations domain.AccommodationRepository
	localized      domain.LocalizedRepository
	cache          domain.Cache
	cacheTTL       time.Duration
}

func NewQueryService(a domain.AccommodationRepository, l domain.LocalizedRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{accommodations: a, localized: l, cache: c, cacheTTL: ttl}
}

// GetAccommodation returns the localized view for one listing. A missing
// translation leaves the view bare; an unsupported language is a hard error
// from the router and propagates as such.
func (s *QueryService) GetAccommodation(ctx context.Context, key domain.AccommodationKey, lang string) (domain.AccommodationView, error) {
	ck := accommodationCacheKey(key, lang)
	var view domain.AccommodationView
	if ok, _ := s.cache.Get(ctx, ck, &view); ok {
		return view, nil
	}

	a, err := s.accommodations.Get(ctx, key)
	if err != nil {
		return domain.AccommodationView{}, err
	}
	view = domain.AccommodationView{Accommodation: a, Language: lang}

	loc, err := s.localized.Get(ctx, key.ID, lang)
	switch {
	case err == nil:
		view.Description = &loc.Description
		view.Policy = loc.Policy
	case errors.Is(err, domain.ErrNotFound):
		// no translation authored for this language; serve the base listing
	default:
		return domain.AccommodationView{}, err
	}

	_ = s.cache.Set(ctx, ck, view, int(s.cacheTTL.Seconds()))
	return view, nil
}

func (s *QueryService) ListAccommodations(ctx context.Context, f domain.AccommodationFilter) ([]domain.Accommodation, error) {
	return s.accommodations.List(ctx, f)
}

func (s *QueryService) GetLocalization(ctx context.Context, accommodationID, lang string) (domain.LocalizeAccommodation, error) {
	ck := localizationCacheKey(accommodationID, lang)
	var l domain.LocalizeAccommodation
	if ok, _ := s.cache.Get(ctx, ck, &l); ok {
		return l, nil
	}
	l, err := s.localized.Get(ctx, accommodationID, lang)
	if err != nil {
		return domain.LocalizeAccommodation{}, err
	}
	_ = s.cache.Set(ctx, ck, l, int(s.cacheTTL.Seconds()))
	return l, nil
}
