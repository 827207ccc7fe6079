package domain

import (
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"
)

// MaxAmenityLen bounds each amenity entry.
const MaxAmenityLen = 100

// AccommodationKey is the composite identity of a listing. id alone is not
// unique across feed partitions, so lookups always carry both parts.
type AccommodationKey struct {
	ID   string
	Feed int
}

func (k AccommodationKey) String() string { return fmt.Sprintf("%s/%d", k.ID, k.Feed) }

type Accommodation struct {
	ID           string
	Feed         int // partition key; immutable once the row exists
	Title        string
	CountryCode  string
	BedroomCount int
	ReviewScore  float64 // one fractional digit
	USDRate      float64 // two fractional digits
	Lat, Lon     float64
	Amenities    []string
	LocationID   string
	UserID       int64
	Published    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (a Accommodation) Key() AccommodationKey { return AccommodationKey{ID: a.ID, Feed: a.Feed} }

func (a Accommodation) Validate() error {
	if a.ID == "" {
		return &ValidationError{Field: "id", Reason: "required"}
	}
	if a.Title == "" {
		return &ValidationError{Field: "title", Reason: "required"}
	}
	if len(a.CountryCode) != 2 {
		return &ValidationError{Field: "country_code", Reason: "must be a 2-letter code"}
	}
	if a.LocationID == "" {
		return &ValidationError{Field: "location", Reason: "required"}
	}
	if a.UserID == 0 {
		return &ValidationError{Field: "user", Reason: "required"}
	}
	for _, am := range a.Amenities {
		if utf8.RuneCountInString(am) > MaxAmenityLen {
			return &ValidationError{Field: "amenities", Reason: fmt.Sprintf("entry exceeds %d characters", MaxAmenityLen)}
		}
	}
	return nil
}

// ValidateAmenities checks a raw amenities document before it is accepted:
// a JSON array whose every element is a string of at most MaxAmenityLen
// characters. One bad entry rejects the whole list.
func ValidateAmenities(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &ValidationError{Field: "amenities", Reason: "must be a JSON array"}
	}
	out := make([]string, 0, len(items))
	for i, it := range items {
		s, ok := it.(string)
		if !ok {
			return nil, &ValidationError{Field: "amenities", Reason: fmt.Sprintf("element %d is not a string", i)}
		}
		if utf8.RuneCountInString(s) > MaxAmenityLen {
			return nil, &ValidationError{Field: "amenities", Reason: fmt.Sprintf("element %d exceeds %d characters", i, MaxAmenityLen)}
		}
		out = append(out, s)
	}
	return out, nil
}
