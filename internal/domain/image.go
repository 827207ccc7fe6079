package domain

import "time"

// AccommodationImage references a stored image file for a listing. Images are
// not partitioned; they follow the listing through its composite key.
type AccommodationImage struct {
	ID              int64
	AccommodationID string
	Feed            int
	FileName        string
	UploadedAt      time.Time
}
