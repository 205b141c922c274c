package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-risk-lab/internal/domain"
	"solana-risk-lab/internal/storage"
)

// PoolAssessmentStore implements storage.PoolAssessmentStore using PostgreSQL.
type PoolAssessmentStore struct {
	pool *Pool
}

// NewPoolAssessmentStore creates a new PoolAssessmentStore.
func NewPoolAssessmentStore(pool *Pool) *PoolAssessmentStore {
	return &PoolAssessmentStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PoolAssessmentStore = (*PoolAssessmentStore)(nil)

// Insert adds a new assessment. Returns ErrDuplicateKey if
// (pool, assessed_at) exists.
func (s *PoolAssessmentStore) Insert(ctx context.Context, a *domain.PoolAssessment) error {
	if a == nil || a.Pool == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO pool_assessments (
			pool, status, confidence, reasons, assessed_at
		) VALUES (
			$1, $2, $3, $4, $5
		)
	`

	_, err := s.pool.Exec(ctx, query,
		a.Pool, a.Status, a.Confidence, a.Reasons, a.AssessedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert pool assessment: %w", err)
	}
	return nil
}

// GetLatest retrieves the most recent assessment for a pool.
func (s *PoolAssessmentStore) GetLatest(ctx context.Context, pool string) (*domain.PoolAssessment, error) {
	query := `
		SELECT pool, status, confidence, reasons, assessed_at
		FROM pool_assessments
		WHERE pool = $1
		ORDER BY assessed_at DESC
		LIMIT 1
	`

	row := s.pool.QueryRow(ctx, query, pool)
	a, err := scanPoolAssessment(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest pool assessment: %w", err)
	}
	return a, nil
}

// ListByPool retrieves all assessments for a pool, ordered by
// assessed_at ASC.
func (s *PoolAssessmentStore) ListByPool(ctx context.Context, pool string) ([]*domain.PoolAssessment, error) {
	query := `
		SELECT pool, status, confidence, reasons, assessed_at
		FROM pool_assessments
		WHERE pool = $1
		ORDER BY assessed_at ASC
	`

	rows, err := s.pool.Query(ctx, query, pool)
	if err != nil {
		return nil, fmt.Errorf("list pool assessments: %w", err)
	}
	defer rows.Close()

	var assessments []*domain.PoolAssessment
	for rows.Next() {
		var a domain.PoolAssessment

		err := rows.Scan(&a.Pool, &a.Status, &a.Confidence, &a.Reasons, &a.AssessedAt)
		if err != nil {
			return nil, fmt.Errorf("scan pool assessment row: %w", err)
		}

		assessments = append(assessments, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pool assessment rows: %w", err)
	}

	return assessments, nil
}

// scanPoolAssessment scans a single row into a PoolAssessment.
func scanPoolAssessment(row pgx.Row) (*domain.PoolAssessment, error) {
	var a domain.PoolAssessment

	err := row.Scan(&a.Pool, &a.Status, &a.Confidence, &a.Reasons, &a.AssessedAt)
	if err != nil {
		return nil, err
	}

	return &a, nil
}
