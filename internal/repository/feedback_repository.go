package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicpulse/grievance-service/internal/domain"
)

// FeedbackRepository stores citizen feedback, at most one row per grievance.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *domain.Feedback) error
	GetByGrievance(ctx context.Context, grievanceID string) (*domain.Feedback, error)
}

type feedbackRepository struct {
	pool *pgxpool.Pool
}

// NewFeedbackRepository instantiates the repository.
func NewFeedbackRepository(pool *pgxpool.Pool) FeedbackRepository {
	return &feedbackRepository{pool: pool}
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *domain.Feedback) error {
	const query = `
        INSERT INTO feedback (grievance_id, rating, comment)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		feedback.GrievanceID,
		feedback.Rating,
		feedback.Comment,
	).Scan(&feedback.ID, &feedback.CreatedAt)
}

func (r *feedbackRepository) GetByGrievance(ctx context.Context, grievanceID string) (*domain.Feedback, error) {
	const query = `
        SELECT id, grievance_id, rating, comment, created_at
        FROM feedback WHERE grievance_id=$1`
	var feedback domain.Feedback
	if err := r.pool.QueryRow(ctx, query, grievanceID).Scan(
		&feedback.ID,
		&feedback.GrievanceID,
		&feedback.Rating,
		&feedback.Comment,
		&feedback.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &feedback, nil
}
