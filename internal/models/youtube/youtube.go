// Social Media Analytics Manager - Creator Analytics Sync Service
// Copyright 2026 Shreyash Singh (ShreyashSingh857)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000

// Package youtube defines typed response structs for the YouTube Data API v3
// and the YouTube Analytics API v2.
//
// The structs model only the fields the sync pipeline reads. Numeric
// statistics arrive as JSON strings from the Data API and are declared as
// strings here; parsing to integers happens at the ingestion boundary so a
// malformed counter degrades to zero instead of failing the whole payload.
package youtube

// Thumbnail is a single thumbnail variant.
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Thumbnails is the set of thumbnail variants attached to a resource.
type Thumbnails struct {
	Default Thumbnail `json:"default"`
	Medium  Thumbnail `json:"medium"`
	High    Thumbnail `json:"high"`
}

// BestURL returns the highest-resolution thumbnail available.
func (t Thumbnails) BestURL() string {
	if t.High.URL != "" {
		return t.High.URL
	}
	if t.Medium.URL != "" {
		return t.Medium.URL
	}
	return t.Default.URL
}

// ChannelList is the response of channels.list (part=snippet,statistics,contentDetails).
type ChannelList struct {
	Items []Channel `json:"items"`
}

// Channel is one channel resource.
type Channel struct {
	ID             string         `json:"id"`
	Snippet        ChannelSnippet `json:"snippet"`
	Statistics     ChannelStats   `json:"statistics"`
	ContentDetails ContentDetails `json:"contentDetails"`
}

// ChannelSnippet carries channel display metadata.
type ChannelSnippet struct {
	Title      string     `json:"title"`
	CustomURL  string     `json:"customUrl"`
	Thumbnails Thumbnails `json:"thumbnails"`
}

// ChannelStats carries channel-level counters (JSON strings per API contract).
type ChannelStats struct {
	ViewCount       string `json:"viewCount"`
	SubscriberCount string `json:"subscriberCount"`
	VideoCount      string `json:"videoCount"`
}

// ContentDetails exposes the uploads playlist used to list recent videos.
type ContentDetails struct {
	RelatedPlaylists RelatedPlaylists `json:"relatedPlaylists"`
}

// RelatedPlaylists holds well-known playlist ids for a channel.
type RelatedPlaylists struct {
	Uploads string `json:"uploads"`
}

// AnalyticsReport is the response of the Analytics API reports query
// (dimensions=day, metrics=views,estimatedMinutesWatched,subscribersGained).
// Each row is [day, views, estimatedMinutesWatched, subscribersGained].
type AnalyticsReport struct {
	Rows [][]interface{} `json:"rows"`
}

// PlaylistItemList is the response of playlistItems.list.
type PlaylistItemList struct {
	Items []PlaylistItem `json:"items"`
}

// PlaylistItem is one entry of an uploads playlist.
type PlaylistItem struct {
	ContentDetails PlaylistItemContentDetails `json:"contentDetails"`
}

// PlaylistItemContentDetails carries the referenced video id.
type PlaylistItemContentDetails struct {
	VideoID string `json:"videoId"`
}

// VideoList is the response of videos.list (part=snippet,statistics).
type VideoList struct {
	Items []Video `json:"items"`
}

// Video is one video resource with display metadata and counters.
type Video struct {
	ID         string       `json:"id"`
	Snippet    VideoSnippet `json:"snippet"`
	Statistics VideoStats   `json:"statistics"`
}

// VideoSnippet carries video display metadata.
type VideoSnippet struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	PublishedAt string     `json:"publishedAt"` // RFC3339
	Thumbnails  Thumbnails `json:"thumbnails"`
}

// VideoStats carries per-video counters (JSON strings per API contract).
type VideoStats struct {
	ViewCount    string `json:"viewCount"`
	LikeCount    string `json:"likeCount"`
	CommentCount string `json:"commentCount"`
}

// CommentThreadList is the response of commentThreads.list (part=snippet).
type CommentThreadList struct {
	Items []CommentThread `json:"items"`
}

// CommentThread is one top-level comment thread.
type CommentThread struct {
	Snippet CommentThreadSnippet `json:"snippet"`
}

// CommentThreadSnippet wraps the top-level comment of a thread.
type CommentThreadSnippet struct {
	TopLevelComment TopLevelComment `json:"topLevelComment"`
}

// TopLevelComment is the thread's top comment resource.
type TopLevelComment struct {
	ID      string         `json:"id"`
	Snippet CommentSnippet `json:"snippet"`
}

// CommentSnippet carries the comment's display fields.
type CommentSnippet struct {
	AuthorDisplayName     string `json:"authorDisplayName"`
	AuthorProfileImageURL string `json:"authorProfileImageUrl"`
	TextDisplay           string `json:"textDisplay"`
	LikeCount             int64  `json:"likeCount"`
	PublishedAt           string `json:"publishedAt"` // RFC3339
}

// TokenResponse is a successful response from the Google OAuth token endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// TokenError is the error body of a failed token endpoint call.
// Error == "invalid_grant" signals a revoked or expired refresh token.
type TokenError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}
