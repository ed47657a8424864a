// Social Media Analytics Manager - Creator Analytics Sync Service
// Copyright 2026 Shreyash Singh (ShreyashSingh857)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000

package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/config"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/models/youtube"
)

// YouTubeAPI is the surface of the YouTube client consumed by the sync
// pipeline. All calls pass a per-account OAuth access token.
type YouTubeAPI interface {
	FetchChannel(ctx context.Context, accessToken string) (*youtube.Channel, error)
	FetchDailyMetrics(ctx context.Context, accessToken, channelID, startDate, endDate string) (*youtube.AnalyticsReport, error)
	FetchRecentVideoIDs(ctx context.Context, accessToken, uploadsPlaylistID string, max int) ([]string, error)
	FetchVideoStats(ctx context.Context, accessToken string, videoIDs []string) ([]youtube.Video, error)
	FetchComments(ctx context.Context, accessToken, videoID string, max int) ([]youtube.CommentThread, error)
}

// YouTubeClient calls the YouTube Data API v3 and Analytics API v2.
type YouTubeClient struct {
	dataBaseURL      string
	analyticsBaseURL string
	client           *httpClient
}

var _ YouTubeAPI = (*YouTubeClient)(nil)

// NewYouTubeClient creates a YouTube client from configuration.
func NewYouTubeClient(cfg config.YouTubeConfig) *YouTubeClient {
	return &YouTubeClient{
		dataBaseURL:      strings.TrimSuffix(cfg.DataBaseURL, "/"),
		analyticsBaseURL: strings.TrimSuffix(cfg.AnalyticsBaseURL, "/"),
		client:           newHTTPClient(cfg.Timeout, cfg.RequestsPerSecond),
	}
}

// FetchChannel returns the authorized user's own channel with statistics and
// the uploads playlist reference. A token that resolves to no channel yields
// KindNotFound.
func (c *YouTubeClient) FetchChannel(ctx context.Context, accessToken string) (*youtube.Channel, error) {
	q := url.Values{}
	q.Set("part", "snippet,statistics,contentDetails")
	q.Set("mine", "true")

	list, err := getJSON[youtube.ChannelList](ctx, c.client,
		"youtube.channels.list", c.dataBaseURL+"/channels?"+q.Encode(), accessToken)
	if err != nil {
		return nil, err
	}
	if len(list.Items) == 0 {
		return nil, &Error{Kind: KindNotFound, Op: "youtube.channels.list",
			Body: "token has no associated channel"}
	}
	return &list.Items[0], nil
}

// FetchDailyMetrics queries the Analytics API for per-day views, watch
// minutes and subscriber deltas over [startDate, endDate]. Dates are
// YYYY-MM-DD. A channel with no data returns a report with zero rows, which
// is not an error.
func (c *YouTubeClient) FetchDailyMetrics(ctx context.Context, accessToken, channelID, startDate, endDate string) (*youtube.AnalyticsReport, error) {
	q := url.Values{}
	q.Set("ids", "channel=="+channelID)
	q.Set("startDate", startDate)
	q.Set("endDate", endDate)
	q.Set("metrics", "views,estimatedMinutesWatched,subscribersGained")
	q.Set("dimensions", "day")
	q.Set("sort", "day")

	return getJSON[youtube.AnalyticsReport](ctx, c.client,
		"youtube.analytics.reports", c.analyticsBaseURL+"/reports?"+q.Encode(), accessToken)
}

// FetchRecentVideoIDs lists up to max most recent video ids from the
// channel's uploads playlist.
func (c *YouTubeClient) FetchRecentVideoIDs(ctx context.Context, accessToken, uploadsPlaylistID string, max int) ([]string, error) {
	q := url.Values{}
	q.Set("part", "contentDetails")
	q.Set("playlistId", uploadsPlaylistID)
	q.Set("maxResults", fmt.Sprintf("%d", max))

	list, err := getJSON[youtube.PlaylistItemList](ctx, c.client,
		"youtube.playlistItems.list", c.dataBaseURL+"/playlistItems?"+q.Encode(), accessToken)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(list.Items))
	for _, it := range list.Items {
		if it.ContentDetails.VideoID != "" {
			ids = append(ids, it.ContentDetails.VideoID)
		}
	}
	return ids, nil
}

// FetchVideoStats returns snippet and statistics for the given video ids in
// a single batched call.
func (c *YouTubeClient) FetchVideoStats(ctx context.Context, accessToken string, videoIDs []string) ([]youtube.Video, error) {
	if len(videoIDs) == 0 {
		return nil, nil
	}
	q := url.Values{}
	q.Set("part", "snippet,statistics")
	q.Set("id", strings.Join(videoIDs, ","))

	list, err := getJSON[youtube.VideoList](ctx, c.client,
		"youtube.videos.list", c.dataBaseURL+"/videos?"+q.Encode(), accessToken)
	if err != nil {
		return nil, err
	}
	return list.Items, nil
}

// FetchComments returns up to max relevance-ordered top-level comment
// threads for a video. Videos with comments disabled yield KindNotFound or
// KindUnauthorized from the API; the caller treats both as skippable.
func (c *YouTubeClient) FetchComments(ctx context.Context, accessToken, videoID string, max int) ([]youtube.CommentThread, error) {
	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("videoId", videoID)
	q.Set("maxResults", fmt.Sprintf("%d", max))
	q.Set("order", "relevance")
	q.Set("textFormat", "plainText")

	list, err := getJSON[youtube.CommentThreadList](ctx, c.client,
		"youtube.commentThreads.list", c.dataBaseURL+"/commentThreads?"+q.Encode(), accessToken)
	if err != nil {
		return nil, err
	}
	return list.Items, nil
}
