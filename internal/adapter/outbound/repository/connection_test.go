package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabaseConfig_Validation(t *testing.T) {
	tests := []struct {
		name        string
		config      DatabaseConfig
		expectError bool
		errorMsg    string
	}{
		{
			name: "complete config passes",
			config: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "codemeta",
				Username: "dev",
				Password: "dev",
				Schema:   "codemeta",
			},
			expectError: false,
		},
		{
			name: "missing host fails",
			config: DatabaseConfig{
				Port:     5432,
				Database: "codemeta",
				Username: "dev",
				Password: "dev",
				Schema:   "codemeta",
			},
			expectError: true,
			errorMsg:    "host is required",
		},
		{
			name: "zero port fails",
			config: DatabaseConfig{
				Host:     "localhost",
				Port:     0,
				Database: "codemeta",
				Username: "dev",
				Password: "dev",
				Schema:   "codemeta",
			},
			expectError: true,
			errorMsg:    "port must be between 1 and 65535",
		},
		{
			name: "port above range fails",
			config: DatabaseConfig{
				Host:     "localhost",
				Port:     70000,
				Database: "codemeta",
				Username: "dev",
				Password: "dev",
				Schema:   "codemeta",
			},
			expectError: true,
			errorMsg:    "port must be between 1 and 65535",
		},
		{
			name: "missing database fails",
			config: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				Username: "dev",
				Password: "dev",
				Schema:   "codemeta",
			},
			expectError: true,
			errorMsg:    "database is required",
		},
		{
			name: "missing username fails",
			config: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "codemeta",
				Password: "dev",
				Schema:   "codemeta",
			},
			expectError: true,
			errorMsg:    "username is required",
		},
		{
			name: "missing schema fails",
			config: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "codemeta",
				Username: "dev",
				Password: "dev",
			},
			expectError: true,
			errorMsg:    "schema is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()

			if tt.expectError {
				require.Error(t, err)
				assert.Equal(t, tt.errorMsg, err.Error())
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestNewDatabaseConnection_RejectsInvalidConfig(t *testing.T) {
	pool, err := NewDatabaseConnection(DatabaseConfig{})

	require.Error(t, err)
	assert.Nil(t, pool)
	assert.Contains(t, err.Error(), "host is required")
}

func TestHealthCheckCacheConfig_IsValid(t *testing.T) {
	tests := []struct {
		name   string
		config HealthCheckCacheConfig
		want   bool
	}{
		{"enabled with positive TTL", HealthCheckCacheConfig{TTL: time.Second, Enabled: true}, true},
		{"enabled with zero TTL", HealthCheckCacheConfig{TTL: 0, Enabled: true}, false},
		{"disabled", HealthCheckCacheConfig{TTL: time.Second, Enabled: false}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.config.IsValid())
		})
	}
}

func TestDatabaseHealthChecker_NilPool(t *testing.T) {
	checker := NewDatabaseHealthChecker(nil)
	ctx := context.Background()

	assert.False(t, checker.IsHealthy(ctx))
	assert.Nil(t, checker.GetMetrics(ctx))
}

func TestMetricsCache_CachesWithinTTL(t *testing.T) {
	cache := newMetricsCache(HealthCheckCacheConfig{TTL: time.Minute, Enabled: true})

	fetches := 0
	fetcher := func(context.Context) *HealthMetrics {
		fetches++
		return &HealthMetrics{TotalConnections: int32(fetches)}
	}

	ctx := context.Background()
	first := cache.get(ctx, fetcher)
	second := cache.get(ctx, fetcher)

	require.NotNil(t, first)
	assert.Same(t, first, second)
	assert.Equal(t, 1, fetches)
}

func TestMetricsCache_DisabledAlwaysFetches(t *testing.T) {
	cache := newMetricsCache(HealthCheckCacheConfig{Enabled: false})

	fetches := 0
	fetcher := func(context.Context) *HealthMetrics {
		fetches++
		return &HealthMetrics{}
	}

	ctx := context.Background()
	cache.get(ctx, fetcher)
	cache.get(ctx, fetcher)

	assert.Equal(t, 2, fetches)
}
