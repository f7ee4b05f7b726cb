package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicpulse/grievance-service/internal/domain"
)

// TimelineRepository stores immutable audit entries.
type TimelineRepository interface {
	Create(ctx context.Context, entry *domain.TimelineEntry) error
	ListByGrievance(ctx context.Context, grievanceID string, limit, offset int) ([]domain.TimelineEntry, error)
}

type timelineRepository struct {
	pool *pgxpool.Pool
}

// NewTimelineRepository instantiates the repository.
func NewTimelineRepository(pool *pgxpool.Pool) TimelineRepository {
	return &timelineRepository{pool: pool}
}

func (r *timelineRepository) Create(ctx context.Context, entry *domain.TimelineEntry) error {
	const query = `
        INSERT INTO timeline (grievance_id, event, actor_type, actor_id, old_value, new_value, remark)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.GrievanceID,
		entry.Event,
		entry.ActorType,
		entry.ActorID,
		entry.OldValue,
		entry.NewValue,
		entry.Remark,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *timelineRepository) ListByGrievance(ctx context.Context, grievanceID string, limit, offset int) ([]domain.TimelineEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, grievance_id, event, actor_type, actor_id, old_value, new_value, remark, created_at
        FROM timeline WHERE grievance_id=$1 ORDER BY created_at LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, grievanceID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TimelineEntry
	for rows.Next() {
		var entry domain.TimelineEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.GrievanceID,
			&entry.Event,
			&entry.ActorType,
			&entry.ActorID,
			&entry.OldValue,
			&entry.NewValue,
			&entry.Remark,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
