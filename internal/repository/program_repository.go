package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/health-info-service/internal/domain"
)

// ProgramRepository encapsulates health program persistence.
type ProgramRepository interface {
	Create(ctx context.Context, program *domain.HealthProgram) error
	GetByID(ctx context.Context, id string) (*domain.HealthProgram, error)
	GetByName(ctx context.Context, name string) (*domain.HealthProgram, error)
	List(ctx context.Context) ([]domain.HealthProgram, error)
}

type programRepository struct {
	pool *pgxpool.Pool
}

// NewProgramRepository instantiates repository.
func NewProgramRepository(pool *pgxpool.Pool) ProgramRepository {
	return &programRepository{pool: pool}
}

func (r *programRepository) Create(ctx context.Context, program *domain.HealthProgram) error {
	const query = `
        INSERT INTO health_programs (name, created_by)
        VALUES ($1, $2)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		program.Name,
		program.CreatedBy,
	).Scan(&program.ID, &program.CreatedAt)
}

func (r *programRepository) GetByID(ctx context.Context, id string) (*domain.HealthProgram, error) {
	const query = `
        SELECT id, name, created_by, created_at
        FROM health_programs WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *programRepository) GetByName(ctx context.Context, name string) (*domain.HealthProgram, error) {
	const query = `
        SELECT id, name, created_by, created_at
        FROM health_programs WHERE name=$1`
	return r.fetchSingle(ctx, query, name)
}

func (r *programRepository) List(ctx context.Context) ([]domain.HealthProgram, error) {
	const query = `
        SELECT id, name, created_by, created_at
        FROM health_programs ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.HealthProgram
	for rows.Next() {
		var program domain.HealthProgram
		if err := rows.Scan(
			&program.ID,
			&program.Name,
			&program.CreatedBy,
			&program.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, program)
	}
	return result, rows.Err()
}

func (r *programRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.HealthProgram, error) {
	var program domain.HealthProgram
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&program.ID,
		&program.Name,
		&program.CreatedBy,
		&program.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &program, nil
}
