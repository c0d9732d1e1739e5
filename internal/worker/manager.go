package worker

import (
	"context"
	"log"
	"sync"
	"time"
)

const (
	// DefaultPollInterval is how often the queue is checked for due posts
	DefaultPollInterval = 10 * time.Second

	// DefaultBatchSize is the maximum number of posts published per poll
	DefaultBatchSize = 100

	// DefaultCleanupInterval is how often expired refresh tokens are purged
	DefaultCleanupInterval = 1 * time.Hour

	// DefaultTokenRetention keeps expired tokens around this long before
	// deletion, so reuse detection still works shortly after expiry.
	DefaultTokenRetention = 7 * 24 * time.Hour
)

// TokenCleaner purges refresh tokens that expired longer than olderThan ago.
type TokenCleaner interface {
	DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Manager runs the deferred-publication loop in a background goroutine,
// plus a slower sweep that purges expired refresh tokens.
type Manager struct {
	handler         *Handler
	tokenCleaner    TokenCleaner
	pollInterval    time.Duration
	batchSize       int64
	cleanupInterval time.Duration
	tokenRetention  time.Duration

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// ManagerConfig holds configuration for the worker manager.
type ManagerConfig struct {
	PollInterval    time.Duration
	BatchSize       int64
	CleanupInterval time.Duration
	TokenRetention  time.Duration
}

// DefaultManagerConfig returns sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		PollInterval:    DefaultPollInterval,
		BatchSize:       DefaultBatchSize,
		CleanupInterval: DefaultCleanupInterval,
		TokenRetention:  DefaultTokenRetention,
	}
}

// NewManager creates a new worker manager. tokenCleaner may be nil to
// disable the token sweep.
func NewManager(handler *Handler, tokenCleaner TokenCleaner, cfg ManagerConfig) *Manager {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultCleanupInterval
	}
	if cfg.TokenRetention <= 0 {
		cfg.TokenRetention = DefaultTokenRetention
	}

	return &Manager{
		handler:         handler,
		tokenCleaner:    tokenCleaner,
		pollInterval:    cfg.PollInterval,
		batchSize:       cfg.BatchSize,
		cleanupInterval: cfg.CleanupInterval,
		tokenRetention:  cfg.TokenRetention,
	}
}

// Start begins the publication loop.
// Call Stop() to gracefully shut down.
func (m *Manager) Start(ctx context.Context) {
	m.ctx, m.cancel = context.WithCancel(ctx)

	log.Printf("[Manager] Starting publication worker (poll=%v batch=%d)",
		m.pollInterval, m.batchSize)

	m.wg.Add(1)
	go m.run()

	if m.tokenCleaner != nil {
		m.wg.Add(1)
		go m.runTokenCleanup()
	}
}

// Stop gracefully shuts down the worker.
// Blocks until the loop has finished.
func (m *Manager) Stop() {
	log.Printf("[Manager] Stopping publication worker...")
	m.cancel()
	m.wg.Wait()
	log.Printf("[Manager] Publication worker stopped")
}

// run is the main poll loop.
func (m *Manager) run() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	// Process anything that came due while the server was down.
	m.poll()

	for {
		select {
		case <-m.ctx.Done():
			log.Printf("[Manager] Publication worker shutting down")
			return
		case <-ticker.C:
			m.poll()
		}
	}
}

func (m *Manager) poll() {
	published, err := m.handler.ProcessDue(m.ctx, time.Now(), m.batchSize)
	if err != nil {
		log.Printf("[Manager] Poll FAILED: %v", err)
		return
	}
	if published > 0 {
		log.Printf("[Manager] Poll OK: published=%d", published)
	}
}

// runTokenCleanup periodically deletes long-expired refresh tokens.
func (m *Manager) runTokenCleanup() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			deleted, err := m.tokenCleaner.DeleteExpired(m.ctx, m.tokenRetention)
			if err != nil {
				log.Printf("[Manager] Token cleanup FAILED: %v", err)
				continue
			}
			if deleted > 0 {
				log.Printf("[Manager] Token cleanup: deleted=%d", deleted)
			}
		}
	}
}
