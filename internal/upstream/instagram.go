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
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/models/instagram"
)

// InstagramAPI is the surface of the Graph API client consumed by the sync
// pipeline.
type InstagramAPI interface {
	FetchBusinessAccount(ctx context.Context, accessToken string) (*instagram.BusinessAccount, error)
	FetchProfile(ctx context.Context, accessToken, igUserID string) (*instagram.Profile, error)
	FetchRecentMedia(ctx context.Context, accessToken, igUserID string, limit int) ([]instagram.Media, error)
}

// InstagramClient calls the Facebook Graph API for Instagram Business
// accounts. Graph API tokens ride in the query string, not a header.
type InstagramClient struct {
	baseURL string
	client  *httpClient
}

var _ InstagramAPI = (*InstagramClient)(nil)

// NewInstagramClient creates a Graph API client from configuration.
func NewInstagramClient(cfg config.InstagramConfig) *InstagramClient {
	base := strings.TrimSuffix(cfg.GraphBaseURL, "/")
	if cfg.APIVersion != "" {
		base += "/" + cfg.APIVersion
	}
	return &InstagramClient{
		baseURL: base,
		client:  newHTTPClient(cfg.Timeout, 0),
	}
}

// FetchBusinessAccount walks /me/accounts and returns the first page with a
// linked Instagram business account. No linked account yields KindNotFound.
func (c *InstagramClient) FetchBusinessAccount(ctx context.Context, accessToken string) (*instagram.BusinessAccount, error) {
	q := url.Values{}
	q.Set("fields", "id,name,access_token,instagram_business_account")
	q.Set("access_token", accessToken)

	list, err := getJSON[instagram.PageList](ctx, c.client,
		"instagram.me.accounts", c.baseURL+"/me/accounts?"+q.Encode(), "")
	if err != nil {
		return nil, err
	}
	for _, page := range list.Data {
		if page.InstagramBusinessAccount != nil {
			return page.InstagramBusinessAccount, nil
		}
	}
	return nil, &Error{Kind: KindNotFound, Op: "instagram.me.accounts",
		Body: "no page with a linked instagram business account"}
}

// FetchProfile returns the business account's profile with follower and
// media totals.
func (c *InstagramClient) FetchProfile(ctx context.Context, accessToken, igUserID string) (*instagram.Profile, error) {
	q := url.Values{}
	q.Set("fields", "id,username,biography,profile_picture_url,followers_count,media_count")
	q.Set("access_token", accessToken)

	return getJSON[instagram.Profile](ctx, c.client,
		"instagram.profile", c.baseURL+"/"+igUserID+"?"+q.Encode(), "")
}

// FetchRecentMedia returns up to limit recent media items with engagement
// counters and inline insights. Accounts below the insights follower
// threshold return media without the insights edge; MetricValue then reads
// those metrics as zero.
func (c *InstagramClient) FetchRecentMedia(ctx context.Context, accessToken, igUserID string, limit int) ([]instagram.Media, error) {
	q := url.Values{}
	q.Set("fields", "id,caption,media_type,media_url,thumbnail_url,permalink,timestamp,"+
		"like_count,comments_count,insights.metric(impressions,reach,engagement)")
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("access_token", accessToken)

	list, err := getJSON[instagram.MediaList](ctx, c.client,
		"instagram.media", c.baseURL+"/"+igUserID+"/media?"+q.Encode(), "")
	if err != nil {
		return nil, err
	}
	return list.Data, nil
}
