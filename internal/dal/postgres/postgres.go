package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"
	"github.com/spf13/viper"
)

// GenericConn is an interface that works with both pgxpool.Pool and pgx.Tx.
type GenericConn interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Config holds connection and pool settings.
type Config struct {
	DSN               string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration

	// ConnectAttempts bounds the startup ping loop.
	ConnectAttempts uint64
	ConnectDelay    time.Duration
	ConnectMaxDelay time.Duration

	// MigrationsPath is a goose migrations directory. Empty disables migrations.
	MigrationsPath string
}

// ConfigFromViper reads the postgres section of the configuration.
func ConfigFromViper() Config {
	return Config{
		DSN:               viper.GetString("postgres.dsn"),
		MaxConns:          viper.GetInt32("postgres.max_conns"),
		MinConns:          viper.GetInt32("postgres.min_conns"),
		MaxConnLifetime:   viper.GetDuration("postgres.max_conn_lifetime"),
		MaxConnIdleTime:   viper.GetDuration("postgres.max_conn_idle_time"),
		HealthCheckPeriod: viper.GetDuration("postgres.health_check_period"),
		ConnectAttempts:   viper.GetUint64("postgres.connect.max_attempts"),
		ConnectDelay:      viper.GetDuration("postgres.connect.delay"),
		ConnectMaxDelay:   viper.GetDuration("postgres.connect.max_delay"),
		MigrationsPath:    viper.GetString("postgres.migrations_path"),
	}
}

// Client represents a Postgres client.
type Client struct {
	pool *pgxpool.Pool
}

// Pool returns the underlying connection pool.
func (p *Client) Pool() *pgxpool.Pool {
	return p.pool
}

// Close closes the database connection for graceful shutdown.
func (p *Client) Close() {
	p.pool.Close()
}

// Ping runs a trivial query to check that the database answers.
func (p *Client) Ping(ctx context.Context) error {
	var one int
	if err := p.pool.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// MustNewClient creates a new Postgres client from the configuration.
func MustNewClient() *Client {
	client, err := NewClient(context.Background(), ConfigFromViper())
	if err != nil {
		panic(err)
	}

	return client
}

// NewClient creates a pool, waits until the database answers and applies
// migrations.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	if cfg.HealthCheckPeriod > 0 {
		poolConfig.HealthCheckPeriod = cfg.HealthCheckPeriod
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := waitForDatabase(ctx, pool, cfg); err != nil {
		pool.Close()

		return nil, err
	}

	if cfg.MigrationsPath != "" {
		if err := migrate(pool, cfg.MigrationsPath); err != nil {
			pool.Close()

			return nil, err
		}
	}

	return &Client{
		pool: pool,
	}, nil
}

func waitForDatabase(ctx context.Context, pool *pgxpool.Pool, cfg Config) error {
	attempts := cfg.ConnectAttempts
	if attempts == 0 {
		attempts = 1
	}
	delay := cfg.ConnectDelay
	if delay <= 0 {
		delay = time.Second
	}

	backoff := retry.NewExponential(delay)
	if cfg.ConnectMaxDelay > 0 {
		backoff = retry.WithCappedDuration(cfg.ConnectMaxDelay, backoff)
	}
	backoff = retry.WithMaxRetries(attempts-1, backoff)

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := pool.Ping(ctx); err != nil {
			slog.Warn("Database is not ready", "attempt", attempt, "max_attempts", attempts, "error", err)

			return retry.RetryableError(err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database after %d attempts: %w", attempt, err)
	}

	slog.Info("Connected to database", "attempts", attempt)

	return nil
}

// migrate runs goose migrations using the stdlib adapter over the pool.
func migrate(pool *pgxpool.Pool, path string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	if err := goose.Up(db, path); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}
