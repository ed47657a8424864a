// Social Media Analytics Manager - Creator Analytics Sync Service
// Copyright 2026 Shreyash Singh (ShreyashSingh857)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/metrics"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/models"
)

// InsertAccountSnapshot appends one account-level measurement. Never updates.
func (db *DB) InsertAccountSnapshot(ctx context.Context, snap *models.AccountSnapshot) error {
	if snap.RecordedAt.IsZero() {
		snap.RecordedAt = time.Now().UTC()
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO account_snapshots (account_id, follower_count, total_views, media_count, recorded_at)
		VALUES (?, ?, ?, ?, ?)`,
		snap.AccountID, snap.FollowerCount, snap.TotalViews, snap.MediaCount, snap.RecordedAt)
	if err != nil {
		return fmt.Errorf("failed to insert account snapshot: %w", err)
	}
	metrics.RowsWrittenTotal.WithLabelValues("account_snapshots").Inc()
	return nil
}

// UpsertDailyMetrics writes the daily series, one upsert per (account, date).
// The upstream analytics API restates recent days, so existing rows are
// overwritten rather than preserved.
func (db *DB) UpsertDailyMetrics(ctx context.Context, dailies []models.DailyMetric) error {
	if len(dailies) == 0 {
		return nil
	}
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	for _, d := range dailies {
		recordedAt := d.RecordedAt
		if recordedAt.IsZero() {
			recordedAt = now
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO channel_daily_metrics (account_id, date, views, watch_time_hours, subscribers_gained, recorded_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (account_id, date) DO UPDATE SET
				views              = excluded.views,
				watch_time_hours   = excluded.watch_time_hours,
				subscribers_gained = excluded.subscribers_gained,
				recorded_at        = excluded.recorded_at`,
			d.AccountID, d.Date, d.Views, d.WatchTimeHours, d.SubscribersGained, recordedAt)
		if err != nil {
			return fmt.Errorf("failed to upsert daily metric for %s: %w", d.Date, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit daily metrics: %w", err)
	}
	metrics.RowsWrittenTotal.WithLabelValues("channel_daily_metrics").Add(float64(len(dailies)))
	return nil
}

// UpsertContentItem inserts or updates a content item on its natural key
// (account_id, external_id) and returns the internal content id.
func (db *DB) UpsertContentItem(ctx context.Context, item *models.ContentItem) (string, error) {
	now := time.Now().UTC()
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO content_items (id, account_id, external_id, title, description,
			thumbnail_url, url, content_type, published_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (account_id, external_id) DO UPDATE SET
			title         = excluded.title,
			description   = excluded.description,
			thumbnail_url = excluded.thumbnail_url,
			url           = excluded.url,
			content_type  = excluded.content_type,
			published_at  = excluded.published_at,
			updated_at    = excluded.updated_at`,
		item.ID, item.AccountID, item.ExternalID, item.Title, item.Description,
		item.ThumbnailURL, item.URL, item.Type, nullableTime(item.PublishedAt), item.UpdatedAt)
	if err != nil {
		return "", fmt.Errorf("failed to upsert content item: %w", err)
	}

	var id string
	err = db.conn.QueryRowContext(ctx,
		`SELECT id FROM content_items WHERE account_id = ? AND external_id = ?`,
		item.AccountID, item.ExternalID).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to read back content item id: %w", err)
	}
	item.ID = id
	metrics.RowsWrittenTotal.WithLabelValues("content_items").Inc()
	return id, nil
}

// InsertContentSnapshot appends one per-content measurement. Never updates.
func (db *DB) InsertContentSnapshot(ctx context.Context, snap *models.ContentSnapshot) error {
	if snap.RecordedAt.IsZero() {
		snap.RecordedAt = time.Now().UTC()
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO content_snapshots (content_id, views, likes, comments, shares, engagement_rate, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		snap.ContentID, snap.Views, snap.Likes, snap.Comments, snap.Shares,
		snap.EngagementRate, snap.RecordedAt)
	if err != nil {
		return fmt.Errorf("failed to insert content snapshot: %w", err)
	}
	metrics.RowsWrittenTotal.WithLabelValues("content_snapshots").Inc()
	return nil
}

// UpsertComments writes a batch of comments keyed on their upstream id.
func (db *DB) UpsertComments(ctx context.Context, comments []models.Comment) error {
	if len(comments) == 0 {
		return nil
	}
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	for _, c := range comments {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO comments (external_id, content_id, author_name, author_avatar,
				text, like_count, published_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (external_id) DO UPDATE SET
				author_name   = excluded.author_name,
				author_avatar = excluded.author_avatar,
				text          = excluded.text,
				like_count    = excluded.like_count,
				updated_at    = excluded.updated_at`,
			c.ExternalID, c.ContentID, c.AuthorName, c.AuthorAvatar,
			c.Text, c.LikeCount, nullableTime(c.PublishedAt), now)
		if err != nil {
			return fmt.Errorf("failed to upsert comment %s: %w", c.ExternalID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit comments: %w", err)
	}
	metrics.RowsWrittenTotal.WithLabelValues("comments").Add(float64(len(comments)))
	return nil
}

// LatestAccountSnapshot returns the most recent account snapshot, or
// ErrNotFound before the first successful sync.
func (db *DB) LatestAccountSnapshot(ctx context.Context, accountID string) (*models.AccountSnapshot, error) {
	var s models.AccountSnapshot
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, account_id, follower_count, total_views, media_count, recorded_at
		FROM account_snapshots
		WHERE account_id = ?
		ORDER BY recorded_at DESC, id DESC
		LIMIT 1`, accountID).
		Scan(&s.ID, &s.AccountID, &s.FollowerCount, &s.TotalViews, &s.MediaCount, &s.RecordedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest account snapshot: %w", err)
	}
	return &s, nil
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
