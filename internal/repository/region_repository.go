package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicpulse/grievance-service/internal/domain"
)

// RegionRepository reads the geographic reference table used to resolve
// legacy region codes/ids to state and district names.
type RegionRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Region, error)
	GetByCode(ctx context.Context, code string) (*domain.Region, error)
	List(ctx context.Context) ([]domain.Region, error)
}

type regionRepository struct {
	pool *pgxpool.Pool
}

// NewRegionRepository instantiates the repository.
func NewRegionRepository(pool *pgxpool.Pool) RegionRepository {
	return &regionRepository{pool: pool}
}

func (r *regionRepository) GetByID(ctx context.Context, id string) (*domain.Region, error) {
	const query = `
        SELECT id, name, code, type, parent_id, lat, lng
        FROM regions WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *regionRepository) GetByCode(ctx context.Context, code string) (*domain.Region, error) {
	const query = `
        SELECT id, name, code, type, parent_id, lat, lng
        FROM regions WHERE code=$1`
	return r.fetchSingle(ctx, query, code)
}

func (r *regionRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Region, error) {
	var region domain.Region
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&region.ID,
		&region.Name,
		&region.Code,
		&region.Type,
		&region.ParentID,
		&region.Lat,
		&region.Lng,
	); err != nil {
		return nil, err
	}
	return &region, nil
}

func (r *regionRepository) List(ctx context.Context) ([]domain.Region, error) {
	const query = `
        SELECT id, name, code, type, parent_id, lat, lng
        FROM regions ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Region
	for rows.Next() {
		var region domain.Region
		if err := rows.Scan(
			&region.ID,
			&region.Name,
			&region.Code,
			&region.Type,
			&region.ParentID,
			&region.Lat,
			&region.Lng,
		); err != nil {
			return nil, err
		}
		result = append(result, region)
	}
	return result, rows.Err()
}
