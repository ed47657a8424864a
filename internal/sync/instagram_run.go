// Social Media Analytics Manager - Creator Analytics Sync Service
// Copyright 2026 Shreyash Singh (ShreyashSingh857)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000

package sync

import (
	"context"
	"fmt"
	"strings"

	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/logging"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/models"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/models/instagram"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/upstream"
)

// runInstagram walks the Instagram stages: profile and content. The Graph
// API offers neither a daily analytics series nor a comment listing for this
// integration, so those stages do not exist on this platform.
func (o *Orchestrator) runInstagram(ctx context.Context, acct *models.ConnectedAccount, token string, result *RunResult) error {
	igUserID, err := o.igProfileStage(ctx, acct, token, result)
	if err != nil {
		return err
	}
	return o.igContentStage(ctx, acct, igUserID, token, result)
}

// igProfileStage resolves the business account (discovering it via
// /me/accounts on a first link), persists identity fields and appends an
// account snapshot. Returns the IG user id; empty when skipped.
func (o *Orchestrator) igProfileStage(ctx context.Context, acct *models.ConnectedAccount, token string, result *RunResult) (string, error) {
	igUserID := acct.ExternalAccountID
	if igUserID == "" {
		biz, err := o.insta.FetchBusinessAccount(ctx, token)
		if err != nil {
			// First link cannot proceed without the business account;
			// NotFound here means no page has one linked.
			return "", err
		}
		igUserID = biz.ID
	}

	profile, err := o.insta.FetchProfile(ctx, token, igUserID)
	if err != nil {
		if upstream.IsUnauthorized(err) || upstream.IsNotFound(err) || acct.ID == "" {
			return "", err
		}
		o.recordSkip(result, StageProfile, err)
		return igUserID, nil
	}

	firstLink := acct.ID == ""
	acct.ExternalAccountID = profile.ID
	acct.AccountName = profile.Username
	acct.AccountHandle = "@" + strings.TrimPrefix(profile.Username, "@")
	acct.AvatarURL = profile.ProfilePictureURL
	if err := o.store.UpsertConnectedAccount(ctx, acct); err != nil {
		if firstLink {
			return "", fmt.Errorf("failed to persist account: %w", err)
		}
		o.recordFailure(result, StageProfile, err, reasonPersistence, 0, 1)
		return profile.ID, nil
	}
	result.AccountID = acct.ID

	snap := &models.AccountSnapshot{
		AccountID:     acct.ID,
		FollowerCount: profile.FollowersCount,
		MediaCount:    profile.MediaCount,
	}
	if err := o.store.InsertAccountSnapshot(ctx, snap); err != nil {
		o.recordFailure(result, StageProfile, err, reasonPersistence, 0, 1)
		return profile.ID, nil
	}
	result.SnapshotsWritten++
	result.addStage(StageResult{Stage: StageProfile, Status: StageCompleted, Items: 1})
	return profile.ID, nil
}

// igContentStage syncs recent media: items upserted, one engagement
// snapshot per media. Views come from the impressions insight; accounts
// below the insights threshold record zero views and a zero rate.
func (o *Orchestrator) igContentStage(ctx context.Context, acct *models.ConnectedAccount, igUserID, token string, result *RunResult) error {
	if igUserID == "" || acct.ID == "" {
		o.recordSkip(result, StageContent,
			fmt.Errorf("business account unknown, profile stage did not complete"))
		return nil
	}

	media, err := o.insta.FetchRecentMedia(ctx, token, igUserID, o.cfg.RecentMedia)
	if err != nil {
		if upstream.IsUnauthorized(err) {
			return err
		}
		o.recordSkip(result, StageContent, err)
		return nil
	}

	synced, failed := 0, 0
	for _, m := range media {
		item := &models.ContentItem{
			AccountID:    acct.ID,
			ExternalID:   m.ID,
			Title:        mediaTitle(m.Caption),
			Description:  m.Caption,
			ThumbnailURL: mediaThumbnail(m),
			URL:          m.Permalink,
			Type:         mediaContentType(m.MediaType),
			PublishedAt:  parseRFC3339(m.Timestamp),
		}
		contentID, err := o.store.UpsertContentItem(ctx, item)
		if err != nil {
			logging.Warn().Err(err).Str("media_id", m.ID).
				Msg("Failed to upsert media, skipping it")
			failed++
			continue
		}

		views := m.Insights.MetricValue("impressions")
		engagement := m.Insights.MetricValue("engagement")
		if engagement == 0 {
			engagement = m.LikeCount + m.CommentsCount
		}
		snap := &models.ContentSnapshot{
			ContentID:      contentID,
			Views:          views,
			Likes:          m.LikeCount,
			Comments:       m.CommentsCount,
			EngagementRate: igEngagementRate(engagement, views),
		}
		if err := o.store.InsertContentSnapshot(ctx, snap); err != nil {
			logging.Warn().Err(err).Str("media_id", m.ID).
				Msg("Failed to write snapshot for media, skipping it")
			failed++
			continue
		}
		synced++
	}

	result.ContentItemsSynced += synced
	if failed > 0 {
		o.recordFailure(result, StageContent,
			fmt.Errorf("%d of %d media failed to persist", failed, len(media)),
			reasonPersistence, synced, failed)
		return nil
	}
	result.addStage(StageResult{Stage: StageContent, Status: StageCompleted, Items: synced})
	return nil
}

// igEngagementRate computes engagement/views as a percentage, one decimal
// place, zero when views are unavailable.
func igEngagementRate(engagement, views int64) float64 {
	if views <= 0 {
		return 0
	}
	return round1(float64(engagement) / float64(views) * 100)
}

// mediaTitle derives a short title from a caption: first line, truncated on
// a rune boundary since captions are full of emoji.
func mediaTitle(caption string) string {
	title := caption
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = title[:i]
	}
	const maxTitle = 80
	if runes := []rune(title); len(runes) > maxTitle {
		title = string(runes[:maxTitle])
	}
	return strings.TrimSpace(title)
}

// mediaThumbnail picks the thumbnail for video media and the media URL
// otherwise.
func mediaThumbnail(m instagram.Media) string {
	if m.ThumbnailURL != "" {
		return m.ThumbnailURL
	}
	return m.MediaURL
}

// mediaContentType maps Graph API media types to content type tags.
func mediaContentType(mediaType string) string {
	if strings.EqualFold(mediaType, "VIDEO") {
		return models.ContentTypeReel
	}
	return models.ContentTypePost
}
