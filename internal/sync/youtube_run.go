// Social Media Analytics Manager - Creator Analytics Sync Service
// Copyright 2026 Shreyash Singh (ShreyashSingh857)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000

package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/logging"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/models"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/models/youtube"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/upstream"
)

// runYouTube walks the four YouTube stages. Token rejections abort; rate
// limits and outages skip the failing stage; persistence failures mark the
// stage failed and the run continues. On a first link the profile stage
// persists the new ConnectedAccount, so its failure is fatal there since
// nothing else can proceed without an account row.
func (o *Orchestrator) runYouTube(ctx context.Context, acct *models.ConnectedAccount, token string, result *RunResult) error {
	channel, err := o.ytProfileStage(ctx, acct, token, result)
	if err != nil {
		return err
	}

	if err := o.ytDailyMetricsStage(ctx, acct, token, result); err != nil {
		return err
	}

	videos, err := o.ytContentStage(ctx, acct, channel, token, result)
	if err != nil {
		return err
	}

	return o.ytCommentsStage(ctx, token, videos, result)
}

// ytProfileStage fetches the channel, persists account identity fields and
// appends an account snapshot. Returns the channel for downstream stages;
// nil when the stage was skipped.
func (o *Orchestrator) ytProfileStage(ctx context.Context, acct *models.ConnectedAccount, token string, result *RunResult) (*youtube.Channel, error) {
	channel, err := o.youtube.FetchChannel(ctx, token)
	if err != nil {
		if upstream.IsUnauthorized(err) || upstream.IsNotFound(err) || acct.ID == "" {
			return nil, err
		}
		o.recordSkip(result, StageProfile, err)
		return nil, nil
	}

	firstLink := acct.ID == ""
	acct.ExternalAccountID = channel.ID
	acct.AccountName = channel.Snippet.Title
	acct.AccountHandle = channel.Snippet.CustomURL
	acct.AvatarURL = channel.Snippet.Thumbnails.BestURL()
	if err := o.store.UpsertConnectedAccount(ctx, acct); err != nil {
		if firstLink {
			// Without an account row nothing downstream has a home.
			return nil, fmt.Errorf("failed to persist account: %w", err)
		}
		o.recordFailure(result, StageProfile, err, reasonPersistence, 0, 1)
		return channel, nil
	}
	result.AccountID = acct.ID

	snap := &models.AccountSnapshot{
		AccountID:     acct.ID,
		FollowerCount: parseCount(channel.Statistics.SubscriberCount),
		TotalViews:    parseCount(channel.Statistics.ViewCount),
		MediaCount:    parseCount(channel.Statistics.VideoCount),
	}
	if err := o.store.InsertAccountSnapshot(ctx, snap); err != nil {
		o.recordFailure(result, StageProfile, err, reasonPersistence, 0, 1)
		return channel, nil
	}
	result.SnapshotsWritten++
	result.addStage(StageResult{Stage: StageProfile, Status: StageCompleted, Items: 1})
	return channel, nil
}

// ytDailyMetricsStage upserts the trailing per-day series from the
// Analytics API. An empty report is a completed stage with zero rows, not
// a failure.
func (o *Orchestrator) ytDailyMetricsStage(ctx context.Context, acct *models.ConnectedAccount, token string, result *RunResult) error {
	if acct.ExternalAccountID == "" {
		o.recordSkip(result, StageDailyMetrics,
			fmt.Errorf("channel id unknown, profile stage did not complete"))
		return nil
	}

	now := time.Now().UTC()
	start := now.AddDate(0, 0, -o.cfg.HistoryDays).Format("2006-01-02")
	end := now.Format("2006-01-02")

	report, err := o.youtube.FetchDailyMetrics(ctx, token, acct.ExternalAccountID, start, end)
	if err != nil {
		if upstream.IsUnauthorized(err) {
			return err
		}
		o.recordSkip(result, StageDailyMetrics, err)
		return nil
	}

	dailies := analyticsRowsToDailies(acct.ID, report.Rows)
	if err := o.store.UpsertDailyMetrics(ctx, dailies); err != nil {
		o.recordFailure(result, StageDailyMetrics, err, reasonPersistence, 0, len(dailies))
		return nil
	}
	result.DailyMetricsUpserted += len(dailies)
	result.addStage(StageResult{Stage: StageDailyMetrics, Status: StageCompleted, Items: len(dailies)})
	return nil
}

// analyticsRowsToDailies converts Analytics API rows
// [day, views, estimatedMinutesWatched, subscribersGained] to daily rows.
// Rows with a malformed day are dropped; malformed numbers degrade to zero.
func analyticsRowsToDailies(accountID string, rows [][]interface{}) []models.DailyMetric {
	out := make([]models.DailyMetric, 0, len(rows))
	for _, row := range rows {
		if len(row) < 4 {
			continue
		}
		day, ok := row[0].(string)
		if !ok || day == "" {
			continue
		}
		minutes := toFloat(row[2])
		out = append(out, models.DailyMetric{
			AccountID:         accountID,
			Date:              day,
			Views:             int64(toFloat(row[1])),
			WatchTimeHours:    round1(minutes / 60),
			SubscribersGained: int64(toFloat(row[3])),
		})
	}
	return out
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}

// ytContentStage syncs the most recent uploads: items upserted, one
// engagement snapshot appended per video. Returns the synced videos with
// their internal content ids for the comments stage.
func (o *Orchestrator) ytContentStage(ctx context.Context, acct *models.ConnectedAccount, channel *youtube.Channel, token string, result *RunResult) ([]syncedVideo, error) {
	if channel == nil || channel.ContentDetails.RelatedPlaylists.Uploads == "" {
		o.recordSkip(result, StageContent,
			fmt.Errorf("uploads playlist unknown, profile stage did not complete"))
		return nil, nil
	}

	ids, err := o.youtube.FetchRecentVideoIDs(ctx, token,
		channel.ContentDetails.RelatedPlaylists.Uploads, o.cfg.RecentVideos)
	if err != nil {
		if upstream.IsUnauthorized(err) {
			return nil, err
		}
		o.recordSkip(result, StageContent, err)
		return nil, nil
	}
	if len(ids) == 0 {
		result.addStage(StageResult{Stage: StageContent, Status: StageCompleted, Items: 0})
		return nil, nil
	}

	videos, err := o.youtube.FetchVideoStats(ctx, token, ids)
	if err != nil {
		if upstream.IsUnauthorized(err) {
			return nil, err
		}
		o.recordSkip(result, StageContent, err)
		return nil, nil
	}

	synced := make([]syncedVideo, 0, len(videos))
	failed := 0
	for _, v := range videos {
		item := &models.ContentItem{
			AccountID:    acct.ID,
			ExternalID:   v.ID,
			Title:        v.Snippet.Title,
			Description:  v.Snippet.Description,
			ThumbnailURL: v.Snippet.Thumbnails.BestURL(),
			URL:          "https://www.youtube.com/watch?v=" + v.ID,
			Type:         models.ContentTypeVideo,
			PublishedAt:  parseRFC3339(v.Snippet.PublishedAt),
		}
		contentID, err := o.store.UpsertContentItem(ctx, item)
		if err != nil {
			// One broken video must not sink its siblings; it gets
			// another chance on the next run.
			logging.Warn().Err(err).Str("video_id", v.ID).
				Msg("Failed to upsert video, skipping it")
			failed++
			continue
		}

		views := parseCount(v.Statistics.ViewCount)
		likes := parseCount(v.Statistics.LikeCount)
		comments := parseCount(v.Statistics.CommentCount)
		snap := &models.ContentSnapshot{
			ContentID:      contentID,
			Views:          views,
			Likes:          likes,
			Comments:       comments,
			EngagementRate: engagementRate(likes, comments, views),
		}
		if err := o.store.InsertContentSnapshot(ctx, snap); err != nil {
			logging.Warn().Err(err).Str("video_id", v.ID).
				Msg("Failed to write snapshot for video, skipping it")
			failed++
			continue
		}
		synced = append(synced, syncedVideo{videoID: v.ID, contentID: contentID})
	}

	result.ContentItemsSynced += len(synced)
	if failed > 0 {
		o.recordFailure(result, StageContent,
			fmt.Errorf("%d of %d videos failed to persist", failed, len(videos)),
			reasonPersistence, len(synced), failed)
		return synced, nil
	}
	result.addStage(StageResult{Stage: StageContent, Status: StageCompleted, Items: len(synced)})
	return synced, nil
}

// syncedVideo links an upstream video id to its internal content id.
type syncedVideo struct {
	videoID   string
	contentID string
}

// ytCommentsStage fetches comments per synced video. A failure for one
// video (comments disabled, transient error) loses that video only; any
// per-video failure marks the stage failed with the count of lost videos,
// and whatever was fetched is still written.
func (o *Orchestrator) ytCommentsStage(ctx context.Context, token string, videos []syncedVideo, result *RunResult) error {
	if o.cfg.CommentsPerItem == 0 {
		result.addStage(StageResult{Stage: StageComments, Status: StageCompleted, Items: 0})
		return nil
	}
	if len(videos) == 0 {
		// Completed-but-empty content stage means there is nothing to
		// fetch; only a skipped content stage propagates as a skip here.
		if stageCompleted(result, StageContent) {
			result.addStage(StageResult{Stage: StageComments, Status: StageCompleted, Items: 0})
			return nil
		}
		o.recordSkip(result, StageComments,
			fmt.Errorf("content stage did not complete, no videos to fetch comments for"))
		return nil
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		sem      = make(chan struct{}, o.cfg.ItemConcurrency)
		upserted int
		failed   int
	)

	for _, v := range videos {
		wg.Add(1)
		sem <- struct{}{}
		go func(v syncedVideo) {
			defer wg.Done()
			defer func() { <-sem }()

			threads, err := o.youtube.FetchComments(ctx, token, v.videoID, o.cfg.CommentsPerItem)
			if err != nil {
				logging.Warn().Err(err).Str("video_id", v.videoID).
					Msg("Skipping comments for video")
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}

			comments := make([]models.Comment, 0, len(threads))
			for _, th := range threads {
				c := th.Snippet.TopLevelComment
				comments = append(comments, models.Comment{
					ExternalID:   c.ID,
					ContentID:    v.contentID,
					AuthorName:   c.Snippet.AuthorDisplayName,
					AuthorAvatar: c.Snippet.AuthorProfileImageURL,
					Text:         c.Snippet.TextDisplay,
					LikeCount:    c.Snippet.LikeCount,
					PublishedAt:  parseRFC3339(c.Snippet.PublishedAt),
				})
			}
			if err := o.store.UpsertComments(ctx, comments); err != nil {
				logging.Warn().Err(err).Str("video_id", v.videoID).
					Msg("Failed to store comments for video")
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}

			mu.Lock()
			upserted += len(comments)
			mu.Unlock()
		}(v)
	}
	wg.Wait()

	result.CommentsUpserted += upserted
	if failed > 0 {
		o.recordFailure(result, StageComments,
			fmt.Errorf("comments failed for %d of %d videos", failed, len(videos)),
			reasonItemFailures, upserted, failed)
		return nil
	}
	result.addStage(StageResult{Stage: StageComments, Status: StageCompleted, Items: upserted})
	return nil
}

// parseRFC3339 parses an API timestamp, zero time on failure.
func parseRFC3339(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
