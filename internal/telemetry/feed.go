package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"solana-risk-lab/internal/domain"
	"solana-risk-lab/internal/observability"
	"solana-risk-lab/internal/storage"
)

// FeedConfig configures the market price feed client.
type FeedConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultFeedConfig returns default feed configuration.
func DefaultFeedConfig() FeedConfig {
	return FeedConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// Feed consumes a WebSocket market price stream and pushes every
// observation into a PriceCache, and into a timeseries store when one
// is configured.
type Feed struct {
	endpoint string
	config   FeedConfig
	cache    *PriceCache
	store    storage.MarketPriceStore // optional
	logger   *log.Logger

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	// messages counts successfully handled price messages.
	messages atomic.Uint64

	done chan struct{}
	wg   sync.WaitGroup
}

// NewFeed creates a feed client and connects to the endpoint.
// The store may be nil, in which case observations stay cache-only.
func NewFeed(ctx context.Context, endpoint string, cache *PriceCache, store storage.MarketPriceStore, logger *log.Logger, config *FeedConfig) (*Feed, error) {
	cfg := DefaultFeedConfig()
	if config != nil {
		cfg = *config
	}

	f := &Feed{
		endpoint: endpoint,
		config:   cfg,
		cache:    cache,
		store:    store,
		logger:   logger,
		done:     make(chan struct{}),
	}

	if err := f.connect(ctx); err != nil {
		return nil, err
	}

	f.wg.Add(1)
	go f.readLoop()

	f.wg.Add(1)
	go f.pingLoop()

	return f, nil
}

// connect establishes the WebSocket connection.
func (f *Feed) connect(ctx context.Context) error {
	f.connMu.Lock()
	defer f.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, f.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	f.conn = conn
	return nil
}

// Messages returns the count of handled price messages.
func (f *Feed) Messages() uint64 {
	return f.messages.Load()
}

// Close closes the feed connection and waits for loops to exit.
func (f *Feed) Close() error {
	if f.closed.Swap(true) {
		return nil // Already closed
	}

	close(f.done)

	f.connMu.Lock()
	if f.conn != nil {
		f.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		f.conn.Close()
	}
	f.connMu.Unlock()

	f.wg.Wait()
	return nil
}

// readLoop reads price messages and reconnects with exponential
// backoff on connection errors.
func (f *Feed) readLoop() {
	defer f.wg.Done()

	reconnectDelay := f.config.ReconnectDelay

	for !f.closed.Load() {
		f.connMu.Lock()
		conn := f.conn
		f.connMu.Unlock()

		if conn == nil {
			if !f.waitOrDone(reconnectDelay) {
				return
			}
			reconnectDelay = f.nextDelay(reconnectDelay)
			f.reconnect()
			continue
		}

		conn.SetReadDeadline(time.Now().Add(f.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if f.closed.Load() {
				return
			}

			f.logger.Printf("feed: read error, reconnecting: %v", err)

			f.connMu.Lock()
			f.conn.Close()
			f.conn = nil
			f.connMu.Unlock()

			if !f.waitOrDone(reconnectDelay) {
				return
			}
			reconnectDelay = f.nextDelay(reconnectDelay)
			f.reconnect()
			continue
		}

		// Reset delay on successful read
		reconnectDelay = f.config.ReconnectDelay

		f.handleMessage(message)
	}
}

// reconnect attempts a single reconnection.
func (f *Feed) reconnect() {
	if f.closed.Load() {
		return
	}

	observability.DefaultMetrics.FeedReconnects.Inc()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := f.connect(ctx); err != nil {
		f.logger.Printf("feed: reconnect failed: %v", err)
	}
}

// waitOrDone sleeps for d, returning false if the feed closed.
func (f *Feed) waitOrDone(d time.Duration) bool {
	select {
	case <-f.done:
		return false
	case <-time.After(d):
		return true
	}
}

func (f *Feed) nextDelay(d time.Duration) time.Duration {
	d *= 2
	if d > f.config.MaxReconnectDelay {
		d = f.config.MaxReconnectDelay
	}
	return d
}

// priceMessage is the wire format of one feed observation.
type priceMessage struct {
	TimestampMs int64   `json:"timestamp_ms"`
	PriceUSD    float64 `json:"price_usd"`
}

// handleMessage parses one feed message and records the observation.
func (f *Feed) handleMessage(message []byte) {
	var msg priceMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		f.logger.Printf("feed: malformed message dropped: %v", err)
		return
	}
	if msg.TimestampMs <= 0 || msg.PriceUSD <= 0 {
		return
	}

	point := domain.MarketPricePoint{
		TimestampMs: msg.TimestampMs,
		PriceUSD:    msg.PriceUSD,
	}
	f.cache.Record(point)
	f.messages.Add(1)
	observability.RecordFeedMessage()

	if f.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := f.store.InsertBulk(ctx, []*domain.MarketPricePoint{&point})
		cancel()
		// Re-delivered observations after a reconnect are expected.
		if err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			f.logger.Printf("feed: persist observation: %v", err)
		}
	}
}

// pingLoop sends periodic ping frames to keep the connection alive.
func (f *Feed) pingLoop() {
	defer f.wg.Done()

	ticker := time.NewTicker(f.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-f.done:
			return
		case <-ticker.C:
			f.connMu.Lock()
			if f.conn != nil {
				f.conn.SetWriteDeadline(time.Now().Add(f.config.WriteTimeout))
				if err := f.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					// Connection might be dead, reader will handle reconnect
				}
			}
			f.connMu.Unlock()
		}
	}
}
