// Social Media Analytics Manager - Creator Analytics Sync Service
// Copyright 2026 Shreyash Singh (ShreyashSingh857)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000

// Package database implements the DuckDB-backed analytics store.
//
// All writes are append-only snapshots or natural-key upserts; history is
// never rewritten. Time-series tables (account_snapshots, content_snapshots)
// only ever gain rows, while identity tables (connected_accounts,
// content_items, comments, channel_daily_metrics) upsert on their natural
// keys so repeated sync runs are idempotent.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/config"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/logging"
)

// DB wraps the DuckDB connection pool.
type DB struct {
	conn *sql.DB
	path string
}

// New opens (creating if necessary) the DuckDB database at cfg.Path and
// initializes the schema.
func New(cfg config.DatabaseConfig) (*DB, error) {
	if cfg.Path != ":memory:" {
		dir := filepath.Dir(cfg.Path)
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	conn, err := sql.Open("duckdb", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// DuckDB is an in-process engine; a single writer connection avoids
	// write-write conflicts between concurrent sync runs.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	db := &DB{conn: conn, path: cfg.Path}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := db.applyPragmas(ctx, cfg); err != nil {
		_ = conn.Close()
		return nil, err
	}

	if err := db.initSchema(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Info().Str("path", cfg.Path).Msg("Database initialized")
	return db, nil
}

func (db *DB) applyPragmas(ctx context.Context, cfg config.DatabaseConfig) error {
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	if _, err := db.conn.ExecContext(ctx, fmt.Sprintf("SET threads = %d", threads)); err != nil {
		return fmt.Errorf("failed to set threads: %w", err)
	}
	if cfg.MaxMemory != "" {
		if _, err := db.conn.ExecContext(ctx, fmt.Sprintf("SET memory_limit = '%s'", cfg.MaxMemory)); err != nil {
			return fmt.Errorf("failed to set memory limit: %w", err)
		}
	}
	return nil
}

// Conn exposes the underlying pool for callers that need raw access in tests.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Ping verifies connectivity.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the database.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close()
}
