// Social Media Analytics Manager - Creator Analytics Sync Service
// Copyright 2026 Shreyash Singh (ShreyashSingh857)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000

// Package instagram defines typed response structs for the Facebook Graph
// API calls used to sync an Instagram Business account.
package instagram

// PageList is the response of GET /me/accounts.
type PageList struct {
	Data []Page `json:"data"`
}

// Page is one Facebook page, optionally linked to an IG business account.
type Page struct {
	ID                       string           `json:"id"`
	Name                     string           `json:"name"`
	AccessToken              string           `json:"access_token"`
	InstagramBusinessAccount *BusinessAccount `json:"instagram_business_account"`
}

// BusinessAccount is the IG business account reference attached to a page.
type BusinessAccount struct {
	ID string `json:"id"`
}

// Profile is the response of GET /{ig-user-id} with profile fields.
type Profile struct {
	ID                string `json:"id"`
	Username          string `json:"username"`
	Biography         string `json:"biography"`
	ProfilePictureURL string `json:"profile_picture_url"`
	FollowersCount    int64  `json:"followers_count"`
	MediaCount        int64  `json:"media_count"`
}

// MediaList is the response of GET /{ig-user-id}/media.
type MediaList struct {
	Data []Media `json:"data"`
}

// Media is one IG media item with engagement fields and optional insights.
type Media struct {
	ID            string    `json:"id"`
	Caption       string    `json:"caption"`
	MediaType     string    `json:"media_type"` // IMAGE, VIDEO, CAROUSEL_ALBUM
	MediaURL      string    `json:"media_url"`
	ThumbnailURL  string    `json:"thumbnail_url"`
	Permalink     string    `json:"permalink"`
	Timestamp     string    `json:"timestamp"` // ISO 8601
	LikeCount     int64     `json:"like_count"`
	CommentsCount int64     `json:"comments_count"`
	Insights      *Insights `json:"insights"`
}

// Insights wraps the inline insights edge of a media item.
type Insights struct {
	Data []InsightMetric `json:"data"`
}

// InsightMetric is one named metric series (impressions, reach, engagement).
type InsightMetric struct {
	Name   string         `json:"name"`
	Values []InsightValue `json:"values"`
}

// InsightValue is a single datapoint of an insight metric.
type InsightValue struct {
	Value int64 `json:"value"`
}

// MetricValue returns the first value of the named metric, or 0 when the
// metric is absent (insights are unavailable below follower thresholds).
func (i *Insights) MetricValue(name string) int64 {
	if i == nil {
		return 0
	}
	for _, m := range i.Data {
		if m.Name == name && len(m.Values) > 0 {
			return m.Values[0].Value
		}
	}
	return 0
}
