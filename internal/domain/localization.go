package domain

// LocalizeAccommodation holds per-language text for a listing. Rows live in
// the partition selected by Language; IDs auto-increment per partition, so a
// row is re-resolved via (AccommodationID, Language), never by bare ID.
type LocalizeAccommodation struct {
	ID              int64
	AccommodationID string
	Language        string // 2-letter code, the partition key
	Description     string
	Policy          map[string]string
}

func (l LocalizeAccommodation) Validate() error {
	if l.AccommodationID == "" {
		return &ValidationError{Field: "accommodation", Reason: "required"}
	}
	if len(l.Language) != 2 {
		return &ValidationError{Field: "language", Reason: "must be a 2-letter code"}
	}
	return nil
}
