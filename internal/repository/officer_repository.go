package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicpulse/grievance-service/internal/domain"
)

// OfficerRepository is the staff directory. The lifecycle core only reads it;
// writes exist for administration and seeding.
type OfficerRepository interface {
	Create(ctx context.Context, officer *domain.Officer) error
	Update(ctx context.Context, officer *domain.Officer) error
	GetByID(ctx context.Context, id string) (*domain.Officer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Officer, error)
	List(ctx context.Context, filter OfficerFilter) ([]domain.Officer, error)
}

// OfficerFilter defines query params for directory listing.
type OfficerFilter struct {
	Role         *domain.StaffRole
	DepartmentID *string
	State        *string
	District     *string
	RegionCode   *string
	RegionID     *string
	Active       *bool
	Limit        int
	Offset       int
}

type officerRepository struct {
	pool *pgxpool.Pool
}

// NewOfficerRepository instantiates the repository.
func NewOfficerRepository(pool *pgxpool.Pool) OfficerRepository {
	return &officerRepository{pool: pool}
}

func (r *officerRepository) Create(ctx context.Context, o *domain.Officer) error {
	const query = `
        INSERT INTO officers (name, email, password_hash, role, department_id, state, district, region_code, region_id, active_flag)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		o.Name,
		o.Email,
		o.PasswordHash,
		o.Role,
		o.DepartmentID,
		nullable(o.Geo.State),
		nullable(o.Geo.District),
		nullable(o.Geo.RegionCode),
		nullable(o.Geo.RegionID),
		o.Active,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
}

func (r *officerRepository) Update(ctx context.Context, o *domain.Officer) error {
	const query = `
        UPDATE officers
        SET name=$1, email=$2, password_hash=$3, role=$4, department_id=$5,
            state=$6, district=$7, region_code=$8, region_id=$9, active_flag=$10, updated_at=NOW()
        WHERE id=$11`

	cmd, err := r.pool.Exec(ctx, query,
		o.Name,
		o.Email,
		o.PasswordHash,
		o.Role,
		o.DepartmentID,
		nullable(o.Geo.State),
		nullable(o.Geo.District),
		nullable(o.Geo.RegionCode),
		nullable(o.Geo.RegionID),
		o.Active,
		o.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *officerRepository) GetByID(ctx context.Context, id string) (*domain.Officer, error) {
	return r.fetchSingle(ctx, "id=$1", id)
}

func (r *officerRepository) GetByEmail(ctx context.Context, email string) (*domain.Officer, error) {
	return r.fetchSingle(ctx, "email=$1", email)
}

func (r *officerRepository) fetchSingle(ctx context.Context, clause string, arg any) (*domain.Officer, error) {
	query := `
        SELECT id, name, email, password_hash, role, department_id, state, district, region_code, region_id, active_flag, created_at, updated_at
        FROM officers WHERE ` + clause
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, pgx.ErrNoRows
	}
	return scanOfficer(rows)
}

func (r *officerRepository) List(ctx context.Context, filter OfficerFilter) ([]domain.Officer, error) {
	query := `
        SELECT id, name, email, password_hash, role, department_id, state, district, region_code, region_id, active_flag, created_at, updated_at
        FROM officers`
	args := []any{}
	clauses := []string{}

	if filter.Role != nil {
		args = append(args, *filter.Role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("department_id=$%d", len(args)))
	}
	if filter.State != nil {
		args = append(args, *filter.State)
		clauses = append(clauses, fmt.Sprintf("state=$%d", len(args)))
	}
	if filter.District != nil {
		args = append(args, *filter.District)
		clauses = append(clauses, fmt.Sprintf("district=$%d", len(args)))
	}
	if filter.RegionCode != nil {
		args = append(args, *filter.RegionCode)
		clauses = append(clauses, fmt.Sprintf("region_code=$%d", len(args)))
	}
	if filter.RegionID != nil {
		args = append(args, *filter.RegionID)
		clauses = append(clauses, fmt.Sprintf("region_id=$%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		clauses = append(clauses, fmt.Sprintf("active_flag=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY created_at DESC"
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Officer
	for rows.Next() {
		o, err := scanOfficer(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	return result, rows.Err()
}

func scanOfficer(rows pgx.Rows) (*domain.Officer, error) {
	var o domain.Officer
	var state, district, regionCode, regionID *string
	if err := rows.Scan(
		&o.ID,
		&o.Name,
		&o.Email,
		&o.PasswordHash,
		&o.Role,
		&o.DepartmentID,
		&state,
		&district,
		&regionCode,
		&regionID,
		&o.Active,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	o.Geo = domain.GeoScope{
		State:      deref(state),
		District:   deref(district),
		RegionCode: deref(regionCode),
		RegionID:   deref(regionID),
	}
	return &o, nil
}
