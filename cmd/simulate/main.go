// Package main builds a synthetic wallet corpus, scores every wallet
// and persists the assessments. The stored scores become the empirical
// percentile corpus used by the scoring API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"solana-risk-lab/internal/domain"
	"solana-risk-lab/internal/scoring"
	chstore "solana-risk-lab/internal/storage/clickhouse"
	"solana-risk-lab/internal/storage/migrations"
	pgstore "solana-risk-lab/internal/storage/postgres"
	"solana-risk-lab/internal/synthetic"
)

func main() {
	// Parse flags
	count := flag.Int("count", 500, "Number of synthetic wallets to score")
	prefix := flag.String("prefix", "sim-wallet", "Wallet identifier prefix")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string")
	dryRun := flag.Bool("dry-run", false, "Score without persisting, print the distribution only")
	flag.Parse()

	ctx := context.Background()

	if *count <= 0 {
		fmt.Fprintln(os.Stderr, "Error: --count must be positive")
		os.Exit(1)
	}
	if !*dryRun && (*postgresDSN == "" || *clickhouseDSN == "") {
		fmt.Fprintln(os.Stderr, "Error: --postgres-dsn and --clickhouse-dsn are required (use --dry-run to score without persisting)")
		os.Exit(1)
	}

	// Score the corpus. Wallet identifiers are derived from the prefix,
	// so the same flags always produce the same corpus.
	assessedAt := time.Now().UnixMilli()
	assessments := make([]*domain.WalletAssessment, *count)
	points := make([]*domain.ScorePoint, *count)
	tiers := make(map[domain.Tier]int)

	for i := 0; i < *count; i++ {
		wallet := fmt.Sprintf("%s-%04d", *prefix, i)
		result := scoring.Score(synthetic.Features(wallet))

		assessments[i] = &domain.WalletAssessment{
			Wallet:     wallet,
			Score:      result.Score,
			Tier:       result.Tier,
			Percentile: result.Percentile,
			Breakdown:  result.Breakdown,
			AssessedAt: assessedAt,
		}
		points[i] = &domain.ScorePoint{
			Wallet:      wallet,
			TimestampMs: assessedAt,
			Score:       result.Score,
			Tier:        result.Tier,
		}
		tiers[result.Tier]++
	}

	printDistribution(*count, tiers)

	if *dryRun {
		return
	}

	if err := persist(ctx, *postgresDSN, *clickhouseDSN, assessments, points); err != nil {
		fmt.Fprintf(os.Stderr, "Error persisting corpus: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Persisted %d assessments\n", *count)
}

// printDistribution prints the tier histogram of the scored corpus.
func printDistribution(count int, tiers map[domain.Tier]int) {
	fmt.Printf("Scored %d synthetic wallets:\n", count)
	for _, tier := range []domain.Tier{domain.TierS, domain.TierA, domain.TierB, domain.TierC, domain.TierD, domain.TierF} {
		if n := tiers[tier]; n > 0 {
			fmt.Printf("  %s: %d (%.1f%%)\n", tier, n, 100*float64(n)/float64(count))
		}
	}
}

// persist writes assessments to PostgreSQL and score points to
// ClickHouse, applying migrations first.
func persist(ctx context.Context, postgresDSN, clickhouseDSN string, assessments []*domain.WalletAssessment, points []*domain.ScorePoint) error {
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		return fmt.Errorf("postgres migrations: %w", err)
	}

	conn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		return fmt.Errorf("clickhouse migrations: %w", err)
	}
	defer conn.Close()

	walletStore := pgstore.NewWalletAssessmentStore(pool)
	for _, a := range assessments {
		if err := walletStore.Insert(ctx, a); err != nil {
			return fmt.Errorf("insert assessment for %s: %w", a.Wallet, err)
		}
	}

	if err := chstore.NewScoreTimeseriesStore(conn).InsertBulk(ctx, points); err != nil {
		return fmt.Errorf("insert score points: %w", err)
	}

	return nil
}
