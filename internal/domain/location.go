package domain

import "time"

type LocationType string

const (
	LocationCountry LocationType = "country"
	LocationState   LocationType = "state"
	LocationCity    LocationType = "city"
)

// Location is a node in the geographic tree (country -> state -> city).
// IDs are caller-assigned and hierarchical, e.g. "US", "US-NY", "US-NY-NYC".
type Location struct {
	ID          string
	Title       string
	Type        LocationType
	CountryCode string
	StateAbbr   *string
	City        *string
	Lat, Lon    float64
	ParentID    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (l Location) Validate() error {
	if l.ID == "" {
		return &ValidationError{Field: "id", Reason: "required"}
	}
	if l.Title == "" {
		return &ValidationError{Field: "title", Reason: "required"}
	}
	switch l.Type {
	case LocationCountry, LocationState, LocationCity:
	default:
		return &ValidationError{Field: "location_type", Reason: "must be country, state or city"}
	}
	if len(l.CountryCode) != 2 {
		return &ValidationError{Field: "country_code", Reason: "must be a 2-letter code"}
	}
	// state_abbr and city are not optional for the deeper levels; absence is a
	// hard validation failure, not a silent default.
	if l.Type == LocationState || l.Type == LocationCity {
		if l.StateAbbr == nil || *l.StateAbbr == "" {
			return &ValidationError{Field: "state_abbr", Reason: "required for state and city locations"}
		}
	}
	if l.Type == LocationCity {
		if l.City == nil || *l.City == "" {
			return &ValidationError{Field: "city", Reason: "required for city locations"}
		}
	}
	return nil
}
