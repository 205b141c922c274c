package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-risk-lab/internal/domain"
	"solana-risk-lab/internal/storage"
)

// WalletAssessmentStore implements storage.WalletAssessmentStore using PostgreSQL.
type WalletAssessmentStore struct {
	pool *Pool
}

// NewWalletAssessmentStore creates a new WalletAssessmentStore.
func NewWalletAssessmentStore(pool *Pool) *WalletAssessmentStore {
	return &WalletAssessmentStore{pool: pool}
}

// Compile-time interface check.
var _ storage.WalletAssessmentStore = (*WalletAssessmentStore)(nil)

// Insert adds a new assessment. Returns ErrDuplicateKey if
// (wallet, assessed_at) exists.
func (s *WalletAssessmentStore) Insert(ctx context.Context, a *domain.WalletAssessment) error {
	if a == nil || a.Wallet == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO wallet_assessments (
			wallet, score, tier, percentile,
			portfolio_diversity, protocol_safety, transaction_hygiene,
			liquidity_health, exposure_management,
			assessed_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7,
			$8, $9,
			$10
		)
	`

	_, err := s.pool.Exec(ctx, query,
		a.Wallet, a.Score, a.Tier, a.Percentile,
		a.Breakdown.PortfolioDiversity, a.Breakdown.ProtocolSafety, a.Breakdown.TransactionHygiene,
		a.Breakdown.LiquidityHealth, a.Breakdown.ExposureManagement,
		a.AssessedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert wallet assessment: %w", err)
	}
	return nil
}

// GetLatest retrieves the most recent assessment for a wallet.
func (s *WalletAssessmentStore) GetLatest(ctx context.Context, wallet string) (*domain.WalletAssessment, error) {
	query := `
		SELECT
			wallet, score, tier, percentile,
			portfolio_diversity, protocol_safety, transaction_hygiene,
			liquidity_health, exposure_management,
			assessed_at
		FROM wallet_assessments
		WHERE wallet = $1
		ORDER BY assessed_at DESC
		LIMIT 1
	`

	row := s.pool.QueryRow(ctx, query, wallet)
	a, err := scanWalletAssessment(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest wallet assessment: %w", err)
	}
	return a, nil
}

// ListByWallet retrieves all assessments for a wallet, ordered by
// assessed_at ASC.
func (s *WalletAssessmentStore) ListByWallet(ctx context.Context, wallet string) ([]*domain.WalletAssessment, error) {
	query := `
		SELECT
			wallet, score, tier, percentile,
			portfolio_diversity, protocol_safety, transaction_hygiene,
			liquidity_health, exposure_management,
			assessed_at
		FROM wallet_assessments
		WHERE wallet = $1
		ORDER BY assessed_at ASC
	`

	rows, err := s.pool.Query(ctx, query, wallet)
	if err != nil {
		return nil, fmt.Errorf("list wallet assessments: %w", err)
	}
	defer rows.Close()

	return scanWalletAssessments(rows)
}

// ListLatestScores returns the most recent score of every wallet.
func (s *WalletAssessmentStore) ListLatestScores(ctx context.Context) ([]int, error) {
	query := `
		SELECT DISTINCT ON (wallet) score
		FROM wallet_assessments
		ORDER BY wallet, assessed_at DESC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list latest scores: %w", err)
	}
	defer rows.Close()

	var scores []int
	for rows.Next() {
		var score int
		if err := rows.Scan(&score); err != nil {
			return nil, fmt.Errorf("scan latest score row: %w", err)
		}
		scores = append(scores, score)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate latest score rows: %w", err)
	}

	return scores, nil
}

// scanWalletAssessment scans a single row into a WalletAssessment.
func scanWalletAssessment(row pgx.Row) (*domain.WalletAssessment, error) {
	var a domain.WalletAssessment

	err := row.Scan(
		&a.Wallet, &a.Score, &a.Tier, &a.Percentile,
		&a.Breakdown.PortfolioDiversity, &a.Breakdown.ProtocolSafety, &a.Breakdown.TransactionHygiene,
		&a.Breakdown.LiquidityHealth, &a.Breakdown.ExposureManagement,
		&a.AssessedAt,
	)
	if err != nil {
		return nil, err
	}

	return &a, nil
}

// scanWalletAssessments scans multiple rows into a slice of WalletAssessment.
func scanWalletAssessments(rows pgx.Rows) ([]*domain.WalletAssessment, error) {
	var assessments []*domain.WalletAssessment

	for rows.Next() {
		var a domain.WalletAssessment

		err := rows.Scan(
			&a.Wallet, &a.Score, &a.Tier, &a.Percentile,
			&a.Breakdown.PortfolioDiversity, &a.Breakdown.ProtocolSafety, &a.Breakdown.TransactionHygiene,
			&a.Breakdown.LiquidityHealth, &a.Breakdown.ExposureManagement,
			&a.AssessedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan wallet assessment row: %w", err)
		}

		assessments = append(assessments, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet assessment rows: %w", err)
	}

	return assessments, nil
}
