package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicpulse/grievance-service/internal/domain"
)

// MediaRepository stores opaque media references. Append-only.
type MediaRepository interface {
	Create(ctx context.Context, media *domain.Media) error
	ListByGrievance(ctx context.Context, grievanceID string) ([]domain.Media, error)
	CountByPurpose(ctx context.Context, grievanceID string, purpose domain.MediaPurpose) (int, error)
}

type mediaRepository struct {
	pool *pgxpool.Pool
}

// NewMediaRepository instantiates the repository.
func NewMediaRepository(pool *pgxpool.Pool) MediaRepository {
	return &mediaRepository{pool: pool}
}

func (r *mediaRepository) Create(ctx context.Context, media *domain.Media) error {
	const query = `
        INSERT INTO media (grievance_id, url, purpose, uploader_id, mime_type)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		media.GrievanceID,
		media.URL,
		media.Purpose,
		media.UploaderID,
		media.MimeType,
	).Scan(&media.ID, &media.CreatedAt)
}

func (r *mediaRepository) ListByGrievance(ctx context.Context, grievanceID string) ([]domain.Media, error) {
	const query = `
        SELECT id, grievance_id, url, purpose, uploader_id, mime_type, created_at
        FROM media WHERE grievance_id=$1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, grievanceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Media
	for rows.Next() {
		var media domain.Media
		if err := rows.Scan(
			&media.ID,
			&media.GrievanceID,
			&media.URL,
			&media.Purpose,
			&media.UploaderID,
			&media.MimeType,
			&media.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, media)
	}
	return result, rows.Err()
}

func (r *mediaRepository) CountByPurpose(ctx context.Context, grievanceID string, purpose domain.MediaPurpose) (int, error) {
	const query = `SELECT COUNT(*) FROM media WHERE grievance_id=$1 AND purpose=$2`
	var count int
	if err := r.pool.QueryRow(ctx, query, grievanceID, purpose).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
