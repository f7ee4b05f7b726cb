package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicpulse/grievance-service/internal/domain"
)

// GrievanceFilter captures listing parameters.
type GrievanceFilter struct {
	CitizenID    *string
	AssigneeID   *string
	DepartmentID *string
	Statuses     []domain.GrievanceStatus
	Priorities   []domain.Priority
	State        *string
	District     *string
	RegionCode   *string
	Limit        int
	Offset       int
}

// GeoCountRow is one aggregate row from the active-grievance recount.
type GeoCountRow struct {
	State    string
	District string
	Count    int
}

// GrievanceRepository encapsulates grievance persistence.
type GrievanceRepository interface {
	Create(ctx context.Context, grievance *domain.Grievance) error
	Update(ctx context.Context, grievance *domain.Grievance) error
	GetByID(ctx context.Context, id string) (*domain.Grievance, error)
	ListWithFilter(ctx context.Context, filter GrievanceFilter) ([]domain.Grievance, error)
	CountByStatus(ctx context.Context) (map[domain.GrievanceStatus]int, error)
	CountActiveByPriority(ctx context.Context) (map[domain.Priority]int, error)
	CountActiveByGeo(ctx context.Context) ([]GeoCountRow, error)
}

type grievanceRepository struct {
	pool *pgxpool.Pool
}

// NewGrievanceRepository instantiates repository.
func NewGrievanceRepository(pool *pgxpool.Pool) GrievanceRepository {
	return &grievanceRepository{pool: pool}
}

func (r *grievanceRepository) Create(ctx context.Context, g *domain.Grievance) error {
	const query = `
        INSERT INTO grievances (title, description, citizen_id, department_id, assignee_id, status, priority, category, state, district, region_code, region_id, location)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		g.Title,
		g.Description,
		g.CitizenID,
		g.DepartmentID,
		g.AssigneeID,
		g.Status,
		g.Priority,
		g.Category,
		nullable(g.Geo.State),
		nullable(g.Geo.District),
		nullable(g.Geo.RegionCode),
		nullable(g.Geo.RegionID),
		g.Location,
	).Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
}

func (r *grievanceRepository) Update(ctx context.Context, g *domain.Grievance) error {
	const query = `
        UPDATE grievances SET department_id=$1, assignee_id=$2, status=$3, category=$4,
            state=$5, district=$6, region_code=$7, region_id=$8, updated_at=NOW()
        WHERE id=$9
        RETURNING updated_at`
	if err := r.pool.QueryRow(ctx, query,
		g.DepartmentID,
		g.AssigneeID,
		g.Status,
		g.Category,
		nullable(g.Geo.State),
		nullable(g.Geo.District),
		nullable(g.Geo.RegionCode),
		nullable(g.Geo.RegionID),
		g.ID,
	).Scan(&g.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return pgx.ErrNoRows
		}
		return err
	}
	return nil
}

func (r *grievanceRepository) GetByID(ctx context.Context, id string) (*domain.Grievance, error) {
	const query = `
        SELECT id, title, description, citizen_id, department_id, assignee_id,
               status, priority, category, state, district, region_code, region_id, location,
               created_at, updated_at
        FROM grievances WHERE id=$1`
	rows, err := r.pool.Query(ctx, query, id)
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
	return scanGrievance(rows)
}

func (r *grievanceRepository) ListWithFilter(ctx context.Context, filter GrievanceFilter) ([]domain.Grievance, error) {
	base := `SELECT id, title, description, citizen_id, department_id, assignee_id,
                    status, priority, category, state, district, region_code, region_id, location,
                    created_at, updated_at
             FROM grievances`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CitizenID != nil {
		args = append(args, *filter.CitizenID)
		clauses = append(clauses, fmt.Sprintf("citizen_id=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("assignee_id=$%d", len(args)))
	}
	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("department_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
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

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Grievance
	for rows.Next() {
		g, err := scanGrievance(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *g)
	}
	return result, rows.Err()
}

func (r *grievanceRepository) CountByStatus(ctx context.Context) (map[domain.GrievanceStatus]int, error) {
	const query = `SELECT status, COUNT(*) FROM grievances GROUP BY status`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.GrievanceStatus]int)
	for rows.Next() {
		var status domain.GrievanceStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *grievanceRepository) CountActiveByPriority(ctx context.Context) (map[domain.Priority]int, error) {
	const query = `SELECT priority, COUNT(*) FROM grievances WHERE status <> $1 GROUP BY priority`
	rows, err := r.pool.Query(ctx, query, domain.StatusResolved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.Priority]int)
	for rows.Next() {
		var priority domain.Priority
		var count int
		if err := rows.Scan(&priority, &count); err != nil {
			return nil, err
		}
		counts[priority] = count
	}
	return counts, rows.Err()
}

func (r *grievanceRepository) CountActiveByGeo(ctx context.Context) ([]GeoCountRow, error) {
	const query = `
        SELECT state, COALESCE(district, ''), COUNT(*)
        FROM grievances
        WHERE status <> $1 AND state IS NOT NULL
        GROUP BY state, district`
	rows, err := r.pool.Query(ctx, query, domain.StatusResolved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []GeoCountRow
	for rows.Next() {
		var row GeoCountRow
		if err := rows.Scan(&row.State, &row.District, &row.Count); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func scanGrievance(rows pgx.Rows) (*domain.Grievance, error) {
	var g domain.Grievance
	var state, district, regionCode, regionID *string
	if err := rows.Scan(
		&g.ID,
		&g.Title,
		&g.Description,
		&g.CitizenID,
		&g.DepartmentID,
		&g.AssigneeID,
		&g.Status,
		&g.Priority,
		&g.Category,
		&state,
		&district,
		&regionCode,
		&regionID,
		&g.Location,
		&g.CreatedAt,
		&g.UpdatedAt,
	); err != nil {
		return nil, err
	}
	g.Geo = domain.GeoScope{
		State:      deref(state),
		District:   deref(district),
		RegionCode: deref(regionCode),
		RegionID:   deref(regionID),
	}
	return &g, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
