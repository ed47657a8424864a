// Social Media Analytics Manager - Creator Analytics Sync Service
// Copyright 2026 Shreyash Singh (ShreyashSingh857)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000

package sync

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/config"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/insights"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/models"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/models/youtube"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/tokenvault"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/upstream"
)

func testChannel() *youtube.Channel {
	return &youtube.Channel{
		ID: "UC123",
		Snippet: youtube.ChannelSnippet{
			Title:     "Creator Channel",
			CustomURL: "@creator",
			Thumbnails: youtube.Thumbnails{
				High: youtube.Thumbnail{URL: "https://example.com/avatar.jpg"},
			},
		},
		Statistics: youtube.ChannelStats{
			ViewCount:       "1000000",
			SubscriberCount: "5000",
			VideoCount:      "120",
		},
		ContentDetails: youtube.ContentDetails{
			RelatedPlaylists: youtube.RelatedPlaylists{Uploads: "UU123"},
		},
	}
}

func testReport(days int) *youtube.AnalyticsReport {
	rows := make([][]interface{}, days)
	for i := range rows {
		rows[i] = []interface{}{
			fmt.Sprintf("2026-08-%02d", i%28+1),
			float64(100 + i),
			float64(90), // minutes -> 1.5 hours
			float64(i % 3),
		}
	}
	return &youtube.AnalyticsReport{Rows: rows}
}

func testVideos(n int) ([]string, []youtube.Video) {
	ids := make([]string, n)
	videos := make([]youtube.Video, n)
	for i := range videos {
		id := fmt.Sprintf("vid-%02d", i)
		ids[i] = id
		videos[i] = youtube.Video{
			ID: id,
			Snippet: youtube.VideoSnippet{
				Title:       fmt.Sprintf("Video %d", i),
				PublishedAt: "2026-08-15T10:00:00Z",
			},
			Statistics: youtube.VideoStats{
				ViewCount:    "1000",
				LikeCount:    "40",
				CommentCount: "10",
			},
		}
	}
	return ids, videos
}

func testCommentThreads(videoID string, n int) []youtube.CommentThread {
	threads := make([]youtube.CommentThread, n)
	for i := range threads {
		threads[i] = youtube.CommentThread{
			Snippet: youtube.CommentThreadSnippet{
				TopLevelComment: youtube.TopLevelComment{
					ID: fmt.Sprintf("%s-c%d", videoID, i),
					Snippet: youtube.CommentSnippet{
						AuthorDisplayName: "viewer",
						TextDisplay:       "nice",
						LikeCount:         int64(i),
						PublishedAt:       "2026-08-16T12:00:00Z",
					},
				},
			},
		}
	}
	return threads
}

func TestYouTubeRunFullPipeline(t *testing.T) {
	store := newMemStore()
	seedAccount(store, models.PlatformYouTube, "UC123")

	ids, videos := testVideos(10)
	yt := &fakeYouTube{
		channel:  testChannel(),
		report:   testReport(28),
		videoIDs: ids,
		videos:   videos,
		comments: make(map[string][]youtube.CommentThread),
		commentsErr: map[string]error{
			// Comments disabled on one video must not fail the stage.
			ids[3]: &upstream.Error{Kind: upstream.KindNotFound, Op: "youtube.commentThreads.list"},
		},
	}
	for i, id := range ids {
		if i == 3 {
			continue
		}
		yt.comments[id] = testCommentThreads(id, 2)
	}

	orch := newTestOrchestrator(store, yt, &fakeInstagram{})
	result, err := orch.Run(context.Background(), Request{AccountID: "acct-1"})
	checkNoError(t, err)

	// The broken video surfaces as a failed comments stage; the run as a
	// whole still succeeds with everything else written.
	checkStringEqual(t, "outcome", string(result.Outcome), string(OutcomePartial))
	checkStringEqual(t, "channel", result.Channel, "Creator Channel")
	checkStageStatus(t, result, StageProfile, StageCompleted)
	checkStageStatus(t, result, StageDailyMetrics, StageCompleted)
	checkStageStatus(t, result, StageContent, StageCompleted)
	checkStageStatus(t, result, StageComments, StageFailed)
	comments := findStage(t, result, StageComments)
	checkIntEqual(t, "comment stage failed videos", comments.Failed, 1)
	checkIntEqual(t, "comment stage items", comments.Items, 18)

	checkIntEqual(t, "snapshots written", result.SnapshotsWritten, 1)
	checkIntEqual(t, "daily metrics upserted", result.DailyMetricsUpserted, 28)
	checkIntEqual(t, "content items synced", result.ContentItemsSynced, 10)
	checkIntEqual(t, "comments upserted", result.CommentsUpserted, 18)

	checkIntEqual(t, "stored account snapshots", len(store.accountSnaps), 1)
	checkIntEqual(t, "stored content items", len(store.items), 10)
	checkIntEqual(t, "stored comments", len(store.comments), 18)

	snap := store.accountSnaps[0]
	if snap.FollowerCount != 5000 || snap.TotalViews != 1000000 || snap.MediaCount != 120 {
		t.Errorf("account snapshot counters wrong: %+v", snap)
	}

	// 90 minutes of watch time stores as 1.5 hours.
	var daily models.DailyMetric
	for _, d := range store.dailies {
		daily = d
		break
	}
	checkFloatEqual(t, "watch_time_hours", daily.WatchTimeHours, 1.5)

	// (40 likes + 10 comments) / 1000 views = 5%.
	checkFloatEqual(t, "engagement_rate", store.contentSnaps[0].EngagementRate, 5.0)

	acct := store.accounts["acct-1"]
	if acct.LastSyncedAt == nil {
		t.Error("last_synced_at should be stamped after a successful run")
	}
	checkStringEqual(t, "account handle", acct.AccountHandle, "@creator")
	checkStringEqual(t, "avatar url", acct.AvatarURL, "https://example.com/avatar.jpg")
}

func TestYouTubeRunIsIdempotent(t *testing.T) {
	store := newMemStore()
	seedAccount(store, models.PlatformYouTube, "UC123")

	ids, videos := testVideos(5)
	yt := &fakeYouTube{
		channel:  testChannel(),
		report:   testReport(10),
		videoIDs: ids,
		videos:   videos,
		comments: map[string][]youtube.CommentThread{},
	}
	for _, id := range ids {
		yt.comments[id] = testCommentThreads(id, 3)
	}

	orch := newTestOrchestrator(store, yt, &fakeInstagram{})
	for i := 0; i < 2; i++ {
		_, err := orch.Run(context.Background(), Request{AccountID: "acct-1"})
		checkNoError(t, err)
	}

	// Dimension rows converge; only the snapshot series grows.
	checkIntEqual(t, "content items after two runs", len(store.items), 5)
	checkIntEqual(t, "daily rows after two runs", len(store.dailies), 10)
	checkIntEqual(t, "comments after two runs", len(store.comments), 15)
	checkIntEqual(t, "account snapshots after two runs", len(store.accountSnaps), 2)
	checkIntEqual(t, "content snapshots after two runs", len(store.contentSnaps), 10)
}

func TestYouTubeRunSkipsRateLimitedStage(t *testing.T) {
	store := newMemStore()
	seedAccount(store, models.PlatformYouTube, "UC123")

	ids, videos := testVideos(3)
	yt := &fakeYouTube{
		channel:   testChannel(),
		reportErr: &upstream.Error{Kind: upstream.KindRateLimited, Op: "youtube.analytics.reports", Status: 429},
		videoIDs:  ids,
		videos:    videos,
		comments:  map[string][]youtube.CommentThread{},
	}

	orch := newTestOrchestrator(store, yt, &fakeInstagram{})
	result, err := orch.Run(context.Background(), Request{AccountID: "acct-1"})
	checkNoError(t, err)

	checkStringEqual(t, "outcome", string(result.Outcome), string(OutcomePartial))
	checkStageStatus(t, result, StageDailyMetrics, StageSkipped)
	checkStageStatus(t, result, StageProfile, StageCompleted)
	checkStageStatus(t, result, StageContent, StageCompleted)
	checkIntEqual(t, "daily rows", len(store.dailies), 0)
	checkIntEqual(t, "content items still synced", len(store.items), 3)
}

func TestYouTubeRunUnauthorizedIsFatal(t *testing.T) {
	store := newMemStore()
	seedAccount(store, models.PlatformYouTube, "UC123")

	yt := &fakeYouTube{
		channelErr: &upstream.Error{Kind: upstream.KindUnauthorized, Op: "youtube.channels.list", Status: 401},
	}

	orch := newTestOrchestrator(store, yt, &fakeInstagram{})
	_, err := orch.Run(context.Background(), Request{AccountID: "acct-1"})
	if err == nil {
		t.Fatal("expected fatal error for unauthorized channel fetch")
	}
	if !upstream.IsUnauthorized(err) {
		t.Errorf("expected unauthorized error, got %v", err)
	}
	checkIntEqual(t, "no snapshots written", len(store.accountSnaps), 0)
}

func TestYouTubeFirstLinkCreatesAccount(t *testing.T) {
	store := newMemStore()

	ids, videos := testVideos(2)
	yt := &fakeYouTube{
		channel:  testChannel(),
		report:   testReport(5),
		videoIDs: ids,
		videos:   videos,
		comments: map[string][]youtube.CommentThread{},
	}

	orch := newTestOrchestrator(store, yt, &fakeInstagram{})
	result, err := orch.Run(context.Background(), Request{
		UserID:       "user-9",
		Platform:     "youtube",
		AccessToken:  "provider-token",
		RefreshToken: "provider-refresh",
	})
	checkNoError(t, err)

	if result.AccountID == "" {
		t.Fatal("first link should persist an account and report its id")
	}
	acct, err := store.GetConnectedAccount(context.Background(), result.AccountID)
	checkNoError(t, err)
	checkStringEqual(t, "external account id", acct.ExternalAccountID, "UC123")
	checkStringEqual(t, "account name", acct.AccountName, "Creator Channel")
	checkStringEqual(t, "refresh token", acct.RefreshToken, "provider-refresh")
	checkStringEqual(t, "token source", result.TokenSource, "caller")
}

func TestYouTubeFirstLinkRequiresToken(t *testing.T) {
	orch := newTestOrchestrator(newMemStore(), &fakeYouTube{}, &fakeInstagram{})
	_, err := orch.Run(context.Background(), Request{UserID: "user-9", Platform: "youtube"})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestRunUnknownAccount(t *testing.T) {
	orch := newTestOrchestrator(newMemStore(), &fakeYouTube{}, &fakeInstagram{})
	_, err := orch.Run(context.Background(), Request{AccountID: "missing"})
	if !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestYouTubeContentWriteFailureLosesOneVideo(t *testing.T) {
	store := &flakyStore{memStore: newMemStore()}
	seedAccount(store.memStore, models.PlatformYouTube, "UC123")

	ids, videos := testVideos(3)
	store.failItemUpsert = map[string]bool{ids[1]: true}
	yt := &fakeYouTube{
		channel:  testChannel(),
		report:   testReport(5),
		videoIDs: ids,
		videos:   videos,
		comments: map[string][]youtube.CommentThread{},
	}
	for _, id := range ids {
		yt.comments[id] = testCommentThreads(id, 2)
	}

	orch := newTestOrchestrator(store, yt, &fakeInstagram{})
	result, err := orch.Run(context.Background(), Request{AccountID: "acct-1"})
	checkNoError(t, err)

	// The other two videos still sync; the broken one is reported, not fatal.
	checkStringEqual(t, "outcome", string(result.Outcome), string(OutcomePartial))
	checkStageStatus(t, result, StageContent, StageFailed)
	content := findStage(t, result, StageContent)
	checkIntEqual(t, "content stage items", content.Items, 2)
	checkIntEqual(t, "content stage failed", content.Failed, 1)
	checkStringEqual(t, "content stage reason", content.Reason, "persistence_write_failed")
	checkIntEqual(t, "stored content items", len(store.items), 2)
	checkIntEqual(t, "comments for surviving videos", result.CommentsUpserted, 4)

	acct := store.accounts["acct-1"]
	if acct.LastSyncedAt == nil {
		t.Error("last_synced_at should be stamped, the run completed")
	}
}

func TestYouTubeDailyMetricsWriteFailureContinues(t *testing.T) {
	store := &flakyStore{memStore: newMemStore(), failDailyUpsert: true}
	seedAccount(store.memStore, models.PlatformYouTube, "UC123")

	ids, videos := testVideos(2)
	yt := &fakeYouTube{
		channel:  testChannel(),
		report:   testReport(5),
		videoIDs: ids,
		videos:   videos,
		comments: map[string][]youtube.CommentThread{},
	}

	orch := newTestOrchestrator(store, yt, &fakeInstagram{})
	result, err := orch.Run(context.Background(), Request{AccountID: "acct-1"})
	checkNoError(t, err)

	checkStringEqual(t, "outcome", string(result.Outcome), string(OutcomePartial))
	checkStageStatus(t, result, StageDailyMetrics, StageFailed)
	checkStageStatus(t, result, StageContent, StageCompleted)
	checkIntEqual(t, "daily rows", len(store.dailies), 0)
	checkIntEqual(t, "content items still synced", len(store.items), 2)
}

func TestRefreshTokenHintIsPersistedAndUsed(t *testing.T) {
	store := newMemStore()
	acct := seedAccount(store, models.PlatformYouTube, "UC123")
	expired := time.Now().Add(-time.Minute)
	acct.TokenExpiresAt = &expired
	acct.RefreshToken = "stale-rt"

	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("bad refresh form: %v", err)
		}
		if rt := r.PostForm.Get("refresh_token"); rt != "fresh-rt" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"new-at","expires_in":3600}`))
	}))
	defer tokenSrv.Close()

	ids, videos := testVideos(1)
	yt := &fakeYouTube{
		channel:  testChannel(),
		report:   testReport(3),
		videoIDs: ids,
		videos:   videos,
		comments: map[string][]youtube.CommentThread{},
	}

	vault := tokenvault.New(store, config.GoogleConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		TokenURL:     tokenSrv.URL,
	}, 5*time.Minute)
	orch := NewOrchestrator(store, vault, yt, &fakeInstagram{},
		insights.New(config.InsightsConfig{Enabled: false}), testSyncConfig())

	result, err := orch.Run(context.Background(),
		Request{AccountID: "acct-1", RefreshToken: "fresh-rt"})
	checkNoError(t, err)

	// The caller's newer grant replaces the stale stored one and is the one
	// the refresh ran with.
	checkStringEqual(t, "token source", result.TokenSource, "refreshed")
	stored := store.accounts["acct-1"]
	checkStringEqual(t, "stored refresh token", stored.RefreshToken, "fresh-rt")
	checkStringEqual(t, "stored access token", stored.AccessToken, "new-at")
}

func TestAuthExpiredMakesNoUpstreamCalls(t *testing.T) {
	store := newMemStore()
	acct := seedAccount(store, models.PlatformYouTube, "UC123")
	expired := time.Now().Add(-time.Minute)
	acct.TokenExpiresAt = &expired
	acct.RefreshToken = ""

	yt := &fakeYouTube{channel: testChannel()}
	orch := newTestOrchestrator(store, yt, &fakeInstagram{})

	_, err := orch.Run(context.Background(), Request{AccountID: "acct-1"})
	if !errors.Is(err, tokenvault.ErrAuthExpired) {
		t.Fatalf("expected ErrAuthExpired, got %v", err)
	}
	if n := yt.calls.Load(); n != 0 {
		t.Errorf("expected no upstream calls after auth failure, got %d", n)
	}
	checkIntEqual(t, "no snapshots written", len(store.accountSnaps), 0)
}

func TestYouTubeEmptyChannelCompletes(t *testing.T) {
	store := newMemStore()
	seedAccount(store, models.PlatformYouTube, "UC123")

	yt := &fakeYouTube{
		channel:  testChannel(),
		report:   &youtube.AnalyticsReport{},
		videoIDs: nil,
		comments: map[string][]youtube.CommentThread{},
	}

	orch := newTestOrchestrator(store, yt, &fakeInstagram{})
	result, err := orch.Run(context.Background(), Request{AccountID: "acct-1"})
	checkNoError(t, err)

	// A channel with no uploads and no analytics rows is empty, not broken.
	checkStringEqual(t, "outcome", string(result.Outcome), string(OutcomeCompleted))
	checkIntEqual(t, "content items", result.ContentItemsSynced, 0)
	checkIntEqual(t, "daily rows", result.DailyMetricsUpserted, 0)
}
