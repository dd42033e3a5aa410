package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DatabaseConfig represents database connection configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	Database        string
	Username        string
	Password        string
	Schema          string
	MaxConnections  int
	MinConnections  int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	SSLMode         string
}

// Validate validates the database configuration.
func (c DatabaseConfig) Validate() error {
	if c.Host == "" {
		return errors.New("host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	if c.Database == "" {
		return errors.New("database is required")
	}
	if c.Username == "" {
		return errors.New("username is required")
	}
	if c.Schema == "" {
		return errors.New("schema is required")
	}
	return nil
}

// NewDatabaseConnection creates a new database connection pool.
func NewDatabaseConnection(config DatabaseConfig) (*pgxpool.Pool, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	sslMode := config.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	connString := fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s search_path=%s",
		config.Host, config.Port, config.Database, config.Username, config.Password, sslMode, config.Schema,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	if config.MaxConnections > 0 {
		poolConfig.MaxConns = int32(config.MaxConnections)
	} else {
		poolConfig.MaxConns = 10
	}

	if config.MinConnections >= 0 {
		poolConfig.MinConns = int32(config.MinConnections)
	} else {
		poolConfig.MinConns = 0
	}

	if config.ConnMaxLifetime > 0 {
		poolConfig.MaxConnLifetime = config.ConnMaxLifetime
	}

	if config.ConnMaxIdleTime > 0 {
		poolConfig.MaxConnIdleTime = config.ConnMaxIdleTime
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if pingErr := pool.Ping(ctx); pingErr != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", pingErr)
	}

	return pool, nil
}

// Default health metrics cache configuration.
const (
	DefaultCacheTTL     = 5 * time.Second
	DefaultCacheEnabled = false
)

// HealthCheckCacheConfig configures health metrics caching.
type HealthCheckCacheConfig struct {
	TTL     time.Duration
	Enabled bool
}

// IsValid returns true if the cache configuration is usable for caching.
func (c HealthCheckCacheConfig) IsValid() bool {
	return c.Enabled && c.TTL > 0
}

// metricsCache caches health metrics with a TTL.
type metricsCache struct {
	data      *HealthMetrics
	timestamp time.Time
	mutex     sync.RWMutex
	config    HealthCheckCacheConfig
}

func newMetricsCache(config HealthCheckCacheConfig) *metricsCache {
	return &metricsCache{
		config: config,
	}
}

// get retrieves cached metrics or fetches fresh ones with the fetcher.
func (c *metricsCache) get(ctx context.Context, fetcher func(context.Context) *HealthMetrics) *HealthMetrics {
	if !c.config.IsValid() {
		return fetcher(ctx)
	}

	c.mutex.RLock()
	if c.data != nil && !c.isExpired() {
		cached := c.data
		c.mutex.RUnlock()
		return cached
	}
	c.mutex.RUnlock()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	// Another goroutine may have refreshed while we waited for the lock.
	if c.data != nil && !c.isExpired() {
		return c.data
	}

	metrics := fetcher(ctx)
	c.data = metrics
	c.timestamp = time.Now()
	return metrics
}

func (c *metricsCache) isExpired() bool {
	return time.Since(c.timestamp) >= c.config.TTL
}

// metricsCollector gathers database health metrics from the pool.
type metricsCollector struct {
	pool *pgxpool.Pool
}

func newMetricsCollector(pool *pgxpool.Pool) *metricsCollector {
	return &metricsCollector{
		pool: pool,
	}
}

func (c *metricsCollector) isPoolValid() bool {
	return c.pool != nil
}

func (c *metricsCollector) collect(ctx context.Context) *HealthMetrics {
	if !c.isPoolValid() {
		return nil
	}

	start := time.Now()

	// Ping measures response time; the error shows up in the connection stats.
	_ = c.pool.Ping(ctx)
	responseTime := time.Since(start)

	stats := c.pool.Stat()

	return &HealthMetrics{
		TotalConnections:  stats.TotalConns(),
		ActiveConnections: stats.AcquiredConns(),
		IdleConnections:   stats.IdleConns(),
		ResponseTime:      responseTime,
	}
}

// HealthCheckerOption defines functional options for DatabaseHealthChecker.
type HealthCheckerOption func(*DatabaseHealthChecker)

// WithCache enables health metrics caching with the given configuration.
func WithCache(config HealthCheckCacheConfig) HealthCheckerOption {
	return func(hc *DatabaseHealthChecker) {
		hc.cache = newMetricsCache(config)
	}
}

// DatabaseHealthChecker checks database health with optional metrics caching.
type DatabaseHealthChecker struct {
	collector *metricsCollector
	cache     *metricsCache
}

// NewDatabaseHealthChecker creates a new health checker.
func NewDatabaseHealthChecker(pool *pgxpool.Pool, opts ...HealthCheckerOption) *DatabaseHealthChecker {
	hc := &DatabaseHealthChecker{
		collector: newMetricsCollector(pool),
		cache:     newMetricsCache(HealthCheckCacheConfig{TTL: DefaultCacheTTL, Enabled: DefaultCacheEnabled}),
	}

	for _, opt := range opts {
		opt(hc)
	}

	return hc
}

// IsHealthy checks if the database answers a ping.
func (h *DatabaseHealthChecker) IsHealthy(ctx context.Context) bool {
	if !h.collector.isPoolValid() {
		return false
	}

	return h.collector.pool.Ping(ctx) == nil
}

// HealthMetrics represents database health metrics.
type HealthMetrics struct {
	TotalConnections  int32
	ActiveConnections int32
	IdleConnections   int32
	ResponseTime      time.Duration
}

// GetMetrics returns database health metrics, cached when configured.
func (h *DatabaseHealthChecker) GetMetrics(ctx context.Context) *HealthMetrics {
	return h.cache.get(ctx, h.collector.collect)
}
