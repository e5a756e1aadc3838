package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/health-info-service/internal/domain"
)

// EnrollmentRepository encapsulates enrollment persistence.
type EnrollmentRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Enrollment, error)
	ListByClient(ctx context.Context, clientID string) ([]domain.Enrollment, error)
	// EnrollMany inserts enrollments for the given programs in a single
	// transaction. Pairs that already exist are skipped; only newly
	// created enrollments are returned.
	EnrollMany(ctx context.Context, clientID string, programIDs []string) ([]domain.Enrollment, error)
	UpdateStatus(ctx context.Context, id string, status domain.EnrollmentStatus) (*domain.Enrollment, error)
}

type enrollmentRepository struct {
	pool *pgxpool.Pool
}

// NewEnrollmentRepository instantiates repository.
func NewEnrollmentRepository(pool *pgxpool.Pool) EnrollmentRepository {
	return &enrollmentRepository{pool: pool}
}

func (r *enrollmentRepository) GetByID(ctx context.Context, id string) (*domain.Enrollment, error) {
	const query = `
        SELECT id, client_id, program_id, status, enrolled_at, updated_at
        FROM enrollments WHERE id=$1`

	var enrollment domain.Enrollment
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&enrollment.ID,
		&enrollment.ClientID,
		&enrollment.ProgramID,
		&enrollment.Status,
		&enrollment.EnrolledAt,
		&enrollment.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *enrollmentRepository) ListByClient(ctx context.Context, clientID string) ([]domain.Enrollment, error) {
	const query = `
        SELECT id, client_id, program_id, status, enrolled_at, updated_at
        FROM enrollments WHERE client_id=$1 ORDER BY enrolled_at`

	rows, err := r.pool.Query(ctx, query, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Enrollment
	for rows.Next() {
		var enrollment domain.Enrollment
		if err := rows.Scan(
			&enrollment.ID,
			&enrollment.ClientID,
			&enrollment.ProgramID,
			&enrollment.Status,
			&enrollment.EnrolledAt,
			&enrollment.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, enrollment)
	}
	return result, rows.Err()
}

func (r *enrollmentRepository) EnrollMany(ctx context.Context, clientID string, programIDs []string) ([]domain.Enrollment, error) {
	const query = `
        INSERT INTO enrollments (client_id, program_id, status)
        VALUES ($1, $2, $3)
        ON CONFLICT (client_id, program_id) DO NOTHING
        RETURNING id, enrolled_at, updated_at`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var created []domain.Enrollment
	for _, programID := range programIDs {
		enrollment := domain.Enrollment{
			ClientID:  clientID,
			ProgramID: programID,
			Status:    domain.EnrollmentStatusActive,
		}
		err := tx.QueryRow(ctx, query, clientID, programID, enrollment.Status).
			Scan(&enrollment.ID, &enrollment.EnrolledAt, &enrollment.UpdatedAt)
		if err == pgx.ErrNoRows {
			// conflict with a concurrent enrollment; skip
			continue
		}
		if err != nil {
			return nil, err
		}
		created = append(created, enrollment)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

func (r *enrollmentRepository) UpdateStatus(ctx context.Context, id string, status domain.EnrollmentStatus) (*domain.Enrollment, error) {
	const query = `
        UPDATE enrollments SET status=$1, updated_at=NOW()
        WHERE id=$2
        RETURNING id, client_id, program_id, status, enrolled_at, updated_at`

	var enrollment domain.Enrollment
	if err := r.pool.QueryRow(ctx, query, status, id).Scan(
		&enrollment.ID,
		&enrollment.ClientID,
		&enrollment.ProgramID,
		&enrollment.Status,
		&enrollment.EnrolledAt,
		&enrollment.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &enrollment, nil
}
