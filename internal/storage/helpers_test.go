package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ibor-valuation/internal/config"
)

// testContext creates a context with timeout for tests
func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// newTestCache starts a miniredis server and returns a cache service on it
func newTestCache(t *testing.T, ttl time.Duration) (*CacheService, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return NewCacheService(NewRedisCacheFromClient(client), ttl), mr
}

func testPostgresConfig() *config.PostgresConfig {
	return &config.PostgresConfig{
		Host:           "localhost",
		Port:           "5432",
		Database:       "ibor_test",
		User:           "ibor",
		Password:       "ibor_dev_password",
		MaxConnections: 4,
	}
}

func testClickHouseConfig() *config.ClickHouseConfig {
	return &config.ClickHouseConfig{
		Host:         "localhost",
		Port:         "9000",
		Database:     "ibor_test",
		User:         "default",
		Password:     "clickhouse_dev_password",
		MaxOpenConns: 4,
		MaxIdleConns: 2,
		DialTimeout:  2 * time.Second,
		QueryTimeout: 10 * time.Second,
	}
}
