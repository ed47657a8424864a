// Social Media Analytics Manager - Creator Analytics Sync Service
// Copyright 2026 Shreyash Singh (ShreyashSingh857)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/models"
)

// DailyMetricsRange returns daily rows for [from, to] inclusive, ascending
// by date. Dates are YYYY-MM-DD strings.
func (db *DB) DailyMetricsRange(ctx context.Context, accountID, from, to string) ([]models.DailyMetric, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT account_id, strftime(date, '%Y-%m-%d'), views, watch_time_hours, subscribers_gained, recorded_at
		FROM channel_daily_metrics
		WHERE account_id = ? AND date >= ? AND date <= ?
		ORDER BY date`, accountID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily metrics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.DailyMetric
	for rows.Next() {
		var d models.DailyMetric
		if err := rows.Scan(&d.AccountID, &d.Date, &d.Views, &d.WatchTimeHours,
			&d.SubscribersGained, &d.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan daily metric: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListContentWithLatestSnapshot returns up to limit content items for the
// account, newest first, each paired with its latest snapshot if one exists.
func (db *DB) ListContentWithLatestSnapshot(ctx context.Context, accountID string, limit int) ([]models.ContentWithStats, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT ci.id, ci.account_id, ci.external_id, ci.title, ci.description,
			ci.thumbnail_url, ci.url, ci.content_type, ci.published_at, ci.updated_at,
			cs.id, cs.views, cs.likes, cs.comments, cs.shares, cs.engagement_rate, cs.recorded_at
		FROM content_items ci
		LEFT JOIN (
			SELECT *, row_number() OVER (PARTITION BY content_id ORDER BY recorded_at DESC, id DESC) AS rn
			FROM content_snapshots
		) cs ON cs.content_id = ci.id AND cs.rn = 1
		WHERE ci.account_id = ?
		ORDER BY ci.published_at DESC NULLS LAST
		LIMIT ?`, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query content: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.ContentWithStats
	for rows.Next() {
		var cw models.ContentWithStats
		var publishedAt sql.NullTime
		var snapID, views, likes, comments, shares sql.NullInt64
		var engagement sql.NullFloat64
		var recordedAt sql.NullTime

		err := rows.Scan(&cw.Item.ID, &cw.Item.AccountID, &cw.Item.ExternalID,
			&cw.Item.Title, &cw.Item.Description, &cw.Item.ThumbnailURL,
			&cw.Item.URL, &cw.Item.Type, &publishedAt, &cw.Item.UpdatedAt,
			&snapID, &views, &likes, &comments, &shares, &engagement, &recordedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan content row: %w", err)
		}
		if publishedAt.Valid {
			cw.Item.PublishedAt = publishedAt.Time
		}
		if snapID.Valid {
			cw.Snapshot = &models.ContentSnapshot{
				ID:             snapID.Int64,
				ContentID:      cw.Item.ID,
				Views:          views.Int64,
				Likes:          likes.Int64,
				Comments:       comments.Int64,
				Shares:         shares.Int64,
				EngagementRate: engagement.Float64,
				RecordedAt:     recordedAt.Time,
			}
		}
		out = append(out, cw)
	}
	return out, rows.Err()
}

// ListComments returns up to limit comments for a content item, most liked
// first.
func (db *DB) ListComments(ctx context.Context, contentID string, limit int) ([]models.Comment, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT external_id, content_id, author_name, author_avatar, text,
			like_count, published_at, updated_at
		FROM comments
		WHERE content_id = ?
		ORDER BY like_count DESC, published_at DESC
		LIMIT ?`, contentID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.Comment
	for rows.Next() {
		var c models.Comment
		var publishedAt sql.NullTime
		if err := rows.Scan(&c.ExternalID, &c.ContentID, &c.AuthorName,
			&c.AuthorAvatar, &c.Text, &c.LikeCount, &publishedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		if publishedAt.Valid {
			c.PublishedAt = publishedAt.Time
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
