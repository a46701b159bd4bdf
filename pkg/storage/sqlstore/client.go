// Copyright 2025 Certen Protocol
//
// Package sqlstore implements the storage contract on Postgres via
// database/sql and lib/pq: a functional-options constructor, explicit
// pool tuning, and a PingContext liveness check before the client is
// considered ready.
package sqlstore

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
)

//go:embed migrations/0001_init.sql
var initSchema string

// Config holds the pool-tuning knobs for a Client.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns conservative pool defaults.
func DefaultConfig(dsn string) Config {
	return Config{
		DSN:             dsn,
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxIdleTime: 5 * time.Minute,
		ConnMaxLifetime: time.Hour,
	}
}

// Client wraps a pooled *sql.DB with a component logger.
type Client struct {
	db     *sql.DB
	cfg    Config
	logger *log.Logger
}

// ClientOption configures a Client at construction.
type ClientOption func(*Client)

// WithLogger overrides the Client's default logger.
func WithLogger(l *log.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// NewClient opens the pool, applies tuning, and verifies connectivity
// with PingContext before returning.
func NewClient(ctx context.Context, cfg Config, opts ...ClientOption) (*Client, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	c := &Client{
		db:     db,
		cfg:    cfg,
		logger: log.New(log.Writer(), "[SQLStore] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlstore: ping: %w", err)
	}
	c.logger.Printf("connected, max_open=%d max_idle=%d", cfg.MaxOpenConns, cfg.MaxIdleConns)
	return c, nil
}

// Close releases the pool.
func (c *Client) Close() error {
	return c.db.Close()
}

// InitSchema applies the embedded schema migration. Idempotent: every
// CREATE uses IF NOT EXISTS and the root-node insert uses ON CONFLICT
// DO NOTHING.
func (c *Client) InitSchema(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, initSchema); err != nil {
		return fmt.Errorf("sqlstore: init schema: %w", err)
	}
	c.logger.Printf("schema initialized")
	return nil
}
