// Package repository persists report runs in PostgreSQL.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"javasegment/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultMaxConnections = 10
	connectTimeout        = 5 * time.Second
)

// ValidateDatabaseConfig checks the settings needed to open a pool.
func ValidateDatabaseConfig(c config.DatabaseConfig) error {
	if c.Host == "" {
		return errors.New("host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	if c.Name == "" {
		return errors.New("database is required")
	}
	if c.User == "" {
		return errors.New("username is required")
	}
	return nil
}

// PoolConfig builds the pgxpool configuration for c.
func PoolConfig(c config.DatabaseConfig) (*pgxpool.Config, error) {
	if err := ValidateDatabaseConfig(c); err != nil {
		return nil, err
	}
	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}
	if c.Schema == "" {
		c.Schema = "public"
	}

	poolConfig, err := pgxpool.ParseConfig(c.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	poolConfig.MaxConns = defaultMaxConnections
	if c.MaxConnections > 0 {
		poolConfig.MaxConns = int32(c.MaxConnections) //nolint:gosec // bounded by configuration
	}
	return poolConfig, nil
}

// NewDatabaseConnection opens a connection pool and verifies it with a ping.
func NewDatabaseConnection(ctx context.Context, c config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := PoolConfig(c)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if pingErr := pool.Ping(pingCtx); pingErr != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", pingErr)
	}
	return pool, nil
}
