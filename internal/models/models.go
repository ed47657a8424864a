// Social Media Analytics Manager - Creator Analytics Sync Service
// Copyright 2026 Shreyash Singh (ShreyashSingh857)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000

// Package models defines the persisted entities of the analytics store and
// the shared API response envelope.
//
// Two kinds of rows exist:
//
//   - Dimension rows (ConnectedAccount, ContentItem, Comment): mutable,
//     upserted by natural key, representing current known state.
//   - Snapshots (AccountSnapshot, ContentSnapshot) and DailyMetric: the
//     measured time series. Snapshots are append-only; DailyMetric is
//     upserted per (account, date) because the upstream source itself
//     restates recent days.
//
// "Latest" for any snapshot series is always max(recorded_at) per natural
// key; there is no is_latest flag to maintain.
package models

import "time"

// Platform identifies the external platform an account belongs to.
type Platform string

// Supported platforms.
const (
	PlatformYouTube   Platform = "youtube"
	PlatformInstagram Platform = "instagram"
)

// Valid reports whether p is a platform this service can sync.
func (p Platform) Valid() bool {
	return p == PlatformYouTube || p == PlatformInstagram
}

// ConnectedAccount is one linked external account per (user, platform).
// At most one active row exists per (user_id, platform, external_account_id);
// that triple is the upsert conflict key. Rows are deactivated, never deleted.
type ConnectedAccount struct {
	ID                string     `json:"id"`
	UserID            string     `json:"user_id"`
	Platform          Platform   `json:"platform"`
	ExternalAccountID string     `json:"external_account_id"`
	AccountName       string     `json:"account_name"`
	AccountHandle     string     `json:"account_handle,omitempty"`
	AvatarURL         string     `json:"avatar_url,omitempty"`
	AccessToken       string     `json:"-"`
	RefreshToken      string     `json:"-"`
	TokenExpiresAt    *time.Time `json:"token_expires_at,omitempty"`
	IsActive          bool       `json:"is_active"`
	LastSyncedAt      *time.Time `json:"last_synced_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// AccountSnapshot is an immutable point-in-time measurement of account-level
// totals. One is appended per successful profile sync.
type AccountSnapshot struct {
	ID            int64     `json:"id"`
	AccountID     string    `json:"account_id"`
	FollowerCount int64     `json:"follower_count"`
	TotalViews    int64     `json:"total_views"`
	MediaCount    int64     `json:"media_count"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// ContentItem is one piece of content (video or post) owned by an account.
// Unique on (account_id, external_id); title and thumbnail are overwritten on
// re-sync since this is a mutable dimension, not a snapshot.
type ContentItem struct {
	ID           string    `json:"id"`
	AccountID    string    `json:"account_id"`
	ExternalID   string    `json:"external_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	URL          string    `json:"url,omitempty"`
	Type         string    `json:"type"`
	PublishedAt  time.Time `json:"published_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Content type tags.
const (
	ContentTypeVideo = "video"
	ContentTypeReel  = "reel"
	ContentTypePost  = "post"
)

// ContentSnapshot is an immutable per-content, per-sync measurement of
// engagement counters. Append-only.
type ContentSnapshot struct {
	ID             int64     `json:"id"`
	ContentID      string    `json:"content_id"`
	Views          int64     `json:"views"`
	Likes          int64     `json:"likes"`
	Comments       int64     `json:"comments"`
	Shares         int64     `json:"shares"`
	EngagementRate float64   `json:"engagement_rate"`
	RecordedAt     time.Time `json:"recorded_at"`
}

// DailyMetric is one row per (account, calendar date) as reported by the
// upstream analytics API. Unique on (account_id, date); re-synced days
// overwrite since the upstream source is authoritative for recent days.
type DailyMetric struct {
	AccountID         string    `json:"account_id"`
	Date              string    `json:"date"` // YYYY-MM-DD
	Views             int64     `json:"views"`
	WatchTimeHours    float64   `json:"watch_time_hours"`
	SubscribersGained int64     `json:"subscribers_gained"`
	RecordedAt        time.Time `json:"recorded_at"`
}

// Comment is one upstream comment, unique on its external comment id.
// Like counts change on re-sync, so comments are upserted.
type Comment struct {
	ExternalID   string    `json:"external_id"`
	ContentID    string    `json:"content_id"`
	AuthorName   string    `json:"author_name"`
	AuthorAvatar string    `json:"author_avatar,omitempty"`
	Text         string    `json:"text"`
	LikeCount    int64     `json:"like_count"`
	PublishedAt  time.Time `json:"published_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ContentWithStats pairs a content item with its most recent snapshot for
// read-side listings. Snapshot is nil when no sync has recorded one yet;
// callers render that as "not yet synced", never as an error.
type ContentWithStats struct {
	Item     ContentItem      `json:"item"`
	Snapshot *ContentSnapshot `json:"snapshot,omitempty"`
}

// AccountOverview is the read-side summary for one connected account.
type AccountOverview struct {
	Account  ConnectedAccount `json:"account"`
	Snapshot *AccountSnapshot `json:"snapshot,omitempty"`
}

// APIResponse is the common JSON envelope for all API responses.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data,omitempty"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response metadata.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	Count     int       `json:"count,omitempty"`
}

// APIError describes an API-level error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
