// Package main provides the unified risk service:
// - Scoring API: wallet risk scores with empirical percentiles
// - Yield API: yield trap classification for pools
// - Pricing: stabilized service price with safeguard checks,
//   re-evaluated on a schedule and persisted as snapshots
// - Telemetry: WebSocket market price feed into a rolling cache
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"solana-risk-lab/internal/domain"
	"solana-risk-lab/internal/observability"
	"solana-risk-lab/internal/pricing"
	"solana-risk-lab/internal/scoring"
	"solana-risk-lab/internal/storage"
	chstore "solana-risk-lab/internal/storage/clickhouse"
	"solana-risk-lab/internal/storage/memory"
	"solana-risk-lab/internal/storage/migrations"
	pgstore "solana-risk-lab/internal/storage/postgres"
	"solana-risk-lab/internal/telemetry"
	"solana-risk-lab/internal/yieldtrap"
)

// Server holds all components of the risk service.
type Server struct {
	// Configuration
	basePrice     float64
	estimatedCost float64
	launchDate    time.Time
	congestion    float64
	reserveRatio  float64
	pollInterval  time.Duration

	// Stores
	stores *allStores

	// Components
	cache  *telemetry.PriceCache
	feed   *telemetry.Feed
	usage  *usageTracker
	logger *log.Logger

	// State
	mu          sync.Mutex
	started     time.Time
	lastPollRun time.Time
	pollRuns    int
}

// allStores holds all storage implementations.
type allStores struct {
	walletStore     storage.WalletAssessmentStore
	poolStore       storage.PoolAssessmentStore
	snapshotStore   storage.PricingSnapshotStore
	marketStore     storage.MarketPriceStore
	scoreTimeseries storage.ScoreTimeseriesStore
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	listenAddr := flag.String("listen-addr", ":8080", "HTTP listen address")
	feedEndpoint := flag.String("feed-endpoint", os.Getenv("PRICE_FEED_ENDPOINT"), "Market price WebSocket endpoint (optional)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	migrate := flag.Bool("migrate", true, "Apply database migrations on startup")
	basePrice := flag.Float64("base-price", 0.05, "Base service price in SOL")
	estimatedCost := flag.Float64("estimated-cost", 0.02, "Estimated cost per request in SOL")
	launchDate := flag.String("launch-date", "", "Service launch date (YYYY-MM-DD)")
	congestion := flag.Float64("congestion", 0.0, "Network congestion level (0-1)")
	reserveRatio := flag.Float64("reserve-ratio", 1.0, "Treasury reserve ratio (0-1)")
	pollInterval := flag.Duration("poll-interval", 1*time.Hour, "Pricing evaluation interval")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	launch, err := parseLaunchDate(*launchDate)
	if err != nil {
		logger.Fatalf("Invalid --launch-date: %v", err)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create stores
	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory, *migrate)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Create server
	server := &Server{
		basePrice:     *basePrice,
		estimatedCost: *estimatedCost,
		launchDate:    launch,
		congestion:    *congestion,
		reserveRatio:  *reserveRatio,
		pollInterval:  *pollInterval,
		stores:        stores,
		cache:         telemetry.NewPriceCache(),
		usage:         newUsageTracker(),
		logger:        logger,
		started:       time.Now(),
	}

	// Connect the market price feed when an endpoint is configured.
	if *feedEndpoint != "" {
		feed, err := telemetry.NewFeed(ctx, *feedEndpoint, server.cache, stores.marketStore,
			log.New(os.Stdout, "[feed] ", log.LstdFlags|log.Lshortfile), nil)
		if err != nil {
			logger.Fatalf("Failed to connect price feed: %v", err)
		}
		server.feed = feed
		defer feed.Close()
		logger.Printf("Price feed connected: %s", *feedEndpoint)
	} else {
		logger.Println("No price feed configured, pricing runs without market telemetry")
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Start pricing poll
	go server.runPollLoop(ctx)

	// Start HTTP server
	httpServer := &http.Server{
		Addr:    *listenAddr,
		Handler: server.routes(),
	}

	go func() {
		logger.Printf("Listening on %s", *listenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("HTTP server error: %v", err)
		}
	}()

	sig := <-sigCh
	logger.Printf("Received signal %v, shutting down...", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("HTTP shutdown error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// parseLaunchDate parses the launch date flag, defaulting to today so a
// fresh deployment starts in the launch phase.
func parseLaunchDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC().Truncate(24 * time.Hour), nil
	}
	return time.Parse("2006-01-02", s)
}

// createStores creates all required stores and applies migrations.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory, migrate bool) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			walletStore:     memory.NewWalletAssessmentStore(),
			poolStore:       memory.NewPoolAssessmentStore(),
			snapshotStore:   memory.NewPricingSnapshotStore(),
			marketStore:     memory.NewMarketPriceStore(),
			scoreTimeseries: memory.NewScoreTimeseriesStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if migrate {
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}
	}

	// ClickHouse
	var chConn *chstore.Conn
	if migrate {
		chConn, err = migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	} else {
		chConn, err = chstore.NewConn(ctx, clickhouseDSN)
	}
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}

	stores := &allStores{
		// PostgreSQL stores (assessments + snapshots)
		walletStore:   pgstore.NewWalletAssessmentStore(pool),
		poolStore:     pgstore.NewPoolAssessmentStore(pool),
		snapshotStore: pgstore.NewPricingSnapshotStore(pool),

		// ClickHouse stores (timeseries)
		marketStore:     chstore.NewMarketPriceStore(chConn),
		scoreTimeseries: chstore.NewScoreTimeseriesStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

// routes builds the HTTP mux.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/score", s.handleScore)
	mux.HandleFunc("/api/yield", s.handleYield)
	mux.HandleFunc("/api/price", s.handlePrice)
	mux.HandleFunc("/api/safeguards", s.handleSafeguards)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/status", s.handleStatus)
	mux.Handle("/metrics", observability.Handler())

	return mux
}

// handleScore scores a wallet feature vector and persists the result.
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var features domain.FeatureVector
	if err := json.NewDecoder(r.Body).Decode(&features); err != nil {
		observability.RecordScoringError()
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := telemetry.ValidateAddress(features.Wallet); err != nil {
		observability.RecordScoringError()
		http.Error(w, "invalid wallet address: "+err.Error(), http.StatusBadRequest)
		return
	}

	start := time.Now()

	// Empirical percentile from every previously assessed wallet.
	corpus, err := s.stores.walletStore.ListLatestScores(r.Context())
	if err != nil {
		s.logger.Printf("load percentile corpus: %v", err)
		corpus = nil
	}
	observability.UpdateCorpusSize(len(corpus))

	result := scoring.ScoreWithCorpus(features, corpus)
	now := time.Now().UnixMilli()

	assessment := &domain.WalletAssessment{
		Wallet:     features.Wallet,
		Score:      result.Score,
		Tier:       result.Tier,
		Percentile: result.Percentile,
		Breakdown:  result.Breakdown,
		AssessedAt: now,
	}
	if err := s.stores.walletStore.Insert(r.Context(), assessment); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		s.logger.Printf("persist wallet assessment: %v", err)
	}

	point := &domain.ScorePoint{
		Wallet:      features.Wallet,
		TimestampMs: now,
		Score:       result.Score,
		Tier:        result.Tier,
	}
	if err := s.stores.scoreTimeseries.InsertBulk(r.Context(), []*domain.ScorePoint{point}); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		s.logger.Printf("persist score point: %v", err)
	}

	s.usage.record(time.Now())
	observability.RecordScore(string(result.Tier), time.Since(start).Seconds())

	writeJSON(w, result)
}

// handleYield classifies a pool's yield and persists the assessment.
func (s *Server) handleYield(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var params domain.YieldTrapParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := telemetry.ValidatePoolAddress(params.Pool); err != nil {
		http.Error(w, "invalid pool address: "+err.Error(), http.StatusBadRequest)
		return
	}

	start := time.Now()
	assessment := yieldtrap.Classify(params)

	record := &domain.PoolAssessment{
		Pool:       params.Pool,
		Status:     assessment.Status,
		Confidence: assessment.Confidence,
		Reasons:    assessment.Reasons,
		AssessedAt: time.Now().UnixMilli(),
	}
	if err := s.stores.poolStore.Insert(r.Context(), record); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		s.logger.Printf("persist pool assessment: %v", err)
	}

	s.usage.record(time.Now())
	observability.RecordClassification(string(assessment.Status), time.Since(start).Seconds())

	writeJSON(w, assessment)
}

// handlePrice evaluates the stabilized price from current telemetry.
// Query parameters override the flag-configured congestion level.
func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, err := s.pricingContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result := pricing.Stabilize(s.basePrice, s.estimatedCost, ctx)
	observability.RecordPricingEvaluation(string(result.Phase), result.FinalPrice)

	writeJSON(w, result)
}

// handleSafeguards runs the safeguard checks against current telemetry.
func (s *Server) handleSafeguards(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, err := s.pricingContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	status := pricing.CheckSafeguards(ctx)
	recordSafeguardAlerts(status)

	writeJSON(w, status)
}

// pricingContext assembles a PricingContext from the price cache, the
// usage tracker and flag-configured telemetry. Recognized query
// parameters: congestion, reserve_ratio.
func (s *Server) pricingContext(r *http.Request) (domain.PricingContext, error) {
	ctx := s.cache.Context(s.launchDate, time.Now().UTC())

	daily, monthly := s.usage.volumes(time.Now())
	ctx.DailyVolume = daily
	ctx.MonthlyVolume = monthly
	ctx.NetworkCongestion = s.congestion
	ctx.ReserveRatio = s.reserveRatio

	if r != nil {
		if v := r.URL.Query().Get("congestion"); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || f < 0 || f > 1 {
				return ctx, fmt.Errorf("congestion must be a number in [0, 1]")
			}
			ctx.NetworkCongestion = f
		}
		if v := r.URL.Query().Get("reserve_ratio"); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || f < 0 {
				return ctx, fmt.Errorf("reserve_ratio must be a non-negative number")
			}
			ctx.ReserveRatio = f
		}
	}

	return ctx, nil
}

// runPollLoop re-evaluates pricing on a schedule and persists snapshots.
func (s *Server) runPollLoop(ctx context.Context) {
	s.logger.Printf("Starting pricing poll (interval: %v)", s.pollInterval)

	// Evaluate immediately on start
	s.runPoll(ctx)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runPoll(ctx)
		}
	}
}

// runPoll runs one pricing evaluation and persists the snapshot.
func (s *Server) runPoll(ctx context.Context) {
	pctx, err := s.pricingContext(nil)
	if err != nil {
		s.logger.Printf("Pricing poll: %v", err)
		return
	}

	result := pricing.Stabilize(s.basePrice, s.estimatedCost, pctx)
	status := pricing.CheckSafeguards(pctx)

	snapshot := &domain.PricingSnapshot{
		Phase:                result.Phase,
		BasePrice:            s.basePrice,
		FinalPrice:           result.FinalPrice,
		VolumeMultiplier:     result.VolumeMultiplier,
		CongestionMultiplier: result.CongestionMultiplier,
		MarketMultiplier:     result.MarketMultiplier,
		AdjustmentApplied:    result.AdjustmentApplied,
		Reason:               result.Reason,
		CreatedAt:            time.Now().UnixMilli(),
	}

	insertCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.stores.snapshotStore.Insert(insertCtx, snapshot); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		s.logger.Printf("Persist pricing snapshot: %v", err)
		return
	}

	observability.RecordPricingEvaluation(string(result.Phase), result.FinalPrice)
	recordSafeguardAlerts(status)
	observability.UpdatePriceCachePoints(s.cache.Size())
	observability.DefaultMetrics.LastSuccessfulPoll.SetToCurrentTime()

	s.mu.Lock()
	s.lastPollRun = time.Now()
	s.pollRuns++
	s.mu.Unlock()

	s.logger.Printf("Pricing poll: phase=%s final=%.6f adjusted=%t", result.Phase, result.FinalPrice, result.AdjustmentApplied)
}

// recordSafeguardAlerts emits one metric per fired alert.
func recordSafeguardAlerts(status domain.SafeguardStatus) {
	if status.TreasuryReserveAlert {
		observability.RecordSafeguardAlert("treasury_reserve")
	}
	if status.LowVolumeAlert {
		observability.RecordSafeguardAlert("low_volume")
	}
	if status.MarketVolatilityAlert {
		observability.RecordSafeguardAlert("market_volatility")
	}
	if status.MarginAlert {
		observability.RecordSafeguardAlert("margin")
	}
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status       string    `json:"status"`
	Uptime       string    `json:"uptime"`
	FeedMessages uint64    `json:"feed_messages"`
	CachedPrices int       `json:"cached_prices"`
	LastPollRun  time.Time `json:"last_poll_run,omitempty"`
	PollRuns     int       `json:"poll_runs"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	lastPoll := s.lastPollRun
	pollRuns := s.pollRuns
	started := s.started
	s.mu.Unlock()

	resp := StatusResponse{
		Status:       "running",
		Uptime:       time.Since(started).String(),
		CachedPrices: s.cache.Size(),
		LastPollRun:  lastPoll,
		PollRuns:     pollRuns,
	}
	if s.feed != nil {
		resp.FeedMessages = s.feed.Messages()
	}

	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// usageTracker counts served API requests in daily buckets so the
// pricing context can carry real volume figures. Buckets older than 30
// days are pruned on access.
type usageTracker struct {
	mu      sync.Mutex
	buckets map[int64]int // day number -> request count
}

func newUsageTracker() *usageTracker {
	return &usageTracker{buckets: make(map[int64]int)}
}

func (u *usageTracker) record(now time.Time) {
	day := now.Unix() / 86400

	u.mu.Lock()
	defer u.mu.Unlock()

	u.buckets[day]++
	for d := range u.buckets {
		if d < day-30 {
			delete(u.buckets, d)
		}
	}
}

// volumes returns the request counts for the current day and the
// trailing 30 days.
func (u *usageTracker) volumes(now time.Time) (daily, monthly int) {
	day := now.Unix() / 86400

	u.mu.Lock()
	defer u.mu.Unlock()

	for d, count := range u.buckets {
		if d == day {
			daily = count
		}
		if d >= day-30 {
			monthly += count
		}
	}
	return daily, monthly
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
