package mysql

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"staylist/internal/domain"
)

// ImageStore keeps image records keyed by the listing's composite key. The
// table is not partitioned; it is a downstream consumer of accommodation
// references only.
type ImageStore struct {
	db *sqlx.DB
}

type imageRow struct {
	ID              int64     `db:"id"`
	AccommodationID string    `db:"accommodation_id"`
	Feed            int       `db:"feed"`
	FileName        string    `db:"file_name"`
	UploadedAt      time.Time `db:"uploaded_at"`
}

func (s *ImageStore) Add(ctx context.Context, img *domain.AccommodationImage) error {
	res, err := s.db.ExecContext(ctx, insertImageSQL, img.AccommodationID, img.Feed, img.FileName)
	if err != nil {
		return classify(err)
	}
	img.ID, _ = res.LastInsertId()
	return nil
}

func (s *ImageStore) ListFor(ctx context.Context, key domain.AccommodationKey) ([]domain.AccommodationImage, error) {
	var rows []imageRow
	if err := s.db.SelectContext(ctx, &rows, listImagesSQL, key.ID, key.Feed); err != nil {
		return nil, classify(err)
	}
	out := make([]domain.AccommodationImage, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.AccommodationImage{
			ID:              r.ID,
			AccommodationID: r.AccommodationID,
			Feed:            r.Feed,
			FileName:        r.FileName,
			UploadedAt:      r.UploadedAt,
		})
	}
	return out, nil
}

func (s *ImageStore) DeleteFor(ctx context.Context, key domain.AccommodationKey) error {
	_, err := s.db.ExecContext(ctx, deleteImagesSQL, key.ID, key.Feed)
	return classify(err)
}
