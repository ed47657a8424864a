// Social Media Analytics Manager - Creator Analytics Sync Service
// Copyright 2026 Shreyash Singh (ShreyashSingh857)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000

package database

import (
	"context"
	"fmt"
)

// schemaStatements defines the analytics store schema. Statements are
// idempotent so startup can run them unconditionally.
var schemaStatements = []string{
	`CREATE SEQUENCE IF NOT EXISTS seq_account_snapshots START 1`,
	`CREATE SEQUENCE IF NOT EXISTS seq_content_snapshots START 1`,

	`CREATE TABLE IF NOT EXISTS connected_accounts (
		id                  VARCHAR PRIMARY KEY,
		user_id             VARCHAR NOT NULL,
		platform            VARCHAR NOT NULL,
		external_account_id VARCHAR NOT NULL,
		account_name        VARCHAR NOT NULL DEFAULT '',
		account_handle      VARCHAR NOT NULL DEFAULT '',
		avatar_url          VARCHAR NOT NULL DEFAULT '',
		access_token        VARCHAR NOT NULL DEFAULT '',
		refresh_token       VARCHAR NOT NULL DEFAULT '',
		token_expires_at    TIMESTAMP,
		is_active           BOOLEAN NOT NULL DEFAULT true,
		last_synced_at      TIMESTAMP,
		created_at          TIMESTAMP NOT NULL DEFAULT current_timestamp,
		updated_at          TIMESTAMP NOT NULL DEFAULT current_timestamp,
		UNIQUE (user_id, platform, external_account_id)
	)`,

	`CREATE TABLE IF NOT EXISTS account_snapshots (
		id             BIGINT PRIMARY KEY DEFAULT nextval('seq_account_snapshots'),
		account_id     VARCHAR NOT NULL,
		follower_count BIGINT NOT NULL DEFAULT 0,
		total_views    BIGINT NOT NULL DEFAULT 0,
		media_count    BIGINT NOT NULL DEFAULT 0,
		recorded_at    TIMESTAMP NOT NULL DEFAULT current_timestamp
	)`,

	`CREATE TABLE IF NOT EXISTS content_items (
		id            VARCHAR PRIMARY KEY,
		account_id    VARCHAR NOT NULL,
		external_id   VARCHAR NOT NULL,
		title         VARCHAR NOT NULL DEFAULT '',
		description   VARCHAR NOT NULL DEFAULT '',
		thumbnail_url VARCHAR NOT NULL DEFAULT '',
		url           VARCHAR NOT NULL DEFAULT '',
		content_type  VARCHAR NOT NULL DEFAULT 'video',
		published_at  TIMESTAMP,
		updated_at    TIMESTAMP NOT NULL DEFAULT current_timestamp,
		UNIQUE (account_id, external_id)
	)`,

	`CREATE TABLE IF NOT EXISTS content_snapshots (
		id              BIGINT PRIMARY KEY DEFAULT nextval('seq_content_snapshots'),
		content_id      VARCHAR NOT NULL,
		views           BIGINT NOT NULL DEFAULT 0,
		likes           BIGINT NOT NULL DEFAULT 0,
		comments        BIGINT NOT NULL DEFAULT 0,
		shares          BIGINT NOT NULL DEFAULT 0,
		engagement_rate DOUBLE NOT NULL DEFAULT 0,
		recorded_at     TIMESTAMP NOT NULL DEFAULT current_timestamp
	)`,

	`CREATE TABLE IF NOT EXISTS channel_daily_metrics (
		account_id         VARCHAR NOT NULL,
		date               DATE NOT NULL,
		views              BIGINT NOT NULL DEFAULT 0,
		watch_time_hours   DOUBLE NOT NULL DEFAULT 0,
		subscribers_gained BIGINT NOT NULL DEFAULT 0,
		recorded_at        TIMESTAMP NOT NULL DEFAULT current_timestamp,
		PRIMARY KEY (account_id, date)
	)`,

	`CREATE TABLE IF NOT EXISTS comments (
		external_id   VARCHAR PRIMARY KEY,
		content_id    VARCHAR NOT NULL,
		author_name   VARCHAR NOT NULL DEFAULT '',
		author_avatar VARCHAR NOT NULL DEFAULT '',
		text          VARCHAR NOT NULL DEFAULT '',
		like_count    BIGINT NOT NULL DEFAULT 0,
		published_at  TIMESTAMP,
		updated_at    TIMESTAMP NOT NULL DEFAULT current_timestamp
	)`,

	`CREATE INDEX IF NOT EXISTS idx_account_snapshots_account_time
		ON account_snapshots (account_id, recorded_at)`,
	`CREATE INDEX IF NOT EXISTS idx_content_snapshots_content_time
		ON content_snapshots (content_id, recorded_at)`,
	`CREATE INDEX IF NOT EXISTS idx_content_items_account
		ON content_items (account_id)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_content
		ON comments (content_id)`,
	`CREATE INDEX IF NOT EXISTS idx_accounts_active
		ON connected_accounts (is_active)`,
}

// initSchema creates tables, sequences and indexes if they do not exist.
func (db *DB) initSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}
