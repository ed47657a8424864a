// Social Media Analytics Manager - Creator Analytics Sync Service
// Copyright 2026 Shreyash Singh (ShreyashSingh857)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000

package sync

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/config"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/database"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/insights"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/models"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/models/instagram"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/models/youtube"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/tokenvault"
)

func checkIntEqual(t *testing.T, fieldName string, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("%s: expected %d, got %d", fieldName, want, got)
	}
}

func checkStringEqual(t *testing.T, fieldName, got, want string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: expected %q, got %q", fieldName, want, got)
	}
}

func checkNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func checkFloatEqual(t *testing.T, fieldName string, got, want float64) {
	t.Helper()
	if got != want {
		t.Errorf("%s: expected %v, got %v", fieldName, want, got)
	}
}

// findStage returns the recorded result for one stage, failing the test if
// the stage never ran.
func findStage(t *testing.T, result *RunResult, stage Stage) StageResult {
	t.Helper()
	for _, s := range result.Stages {
		if s.Stage == stage {
			return s
		}
	}
	t.Fatalf("stage %s: not recorded in run result", stage)
	return StageResult{}
}

// checkStageStatus verifies one stage's recorded outcome.
func checkStageStatus(t *testing.T, result *RunResult, stage Stage, want StageStatus) {
	t.Helper()
	for _, s := range result.Stages {
		if s.Stage == stage {
			if s.Status != want {
				t.Errorf("stage %s: expected status %s, got %s (reason %q)",
					stage, want, s.Status, s.Reason)
			}
			return
		}
	}
	t.Errorf("stage %s: not recorded in run result", stage)
}

// memStore is an in-memory Store for pipeline tests.
type memStore struct {
	mu           sync.Mutex
	accounts     map[string]*models.ConnectedAccount
	accountSnaps []models.AccountSnapshot
	dailies      map[string]models.DailyMetric // accountID|date
	items        map[string]*models.ContentItem // accountID|externalID
	contentSnaps []models.ContentSnapshot
	comments     map[string]models.Comment // externalID
	nextID       int
}

var _ database.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		accounts: make(map[string]*models.ConnectedAccount),
		dailies:  make(map[string]models.DailyMetric),
		items:    make(map[string]*models.ContentItem),
		comments: make(map[string]models.Comment),
	}
}

func (s *memStore) genID() string {
	s.nextID++
	return fmt.Sprintf("id-%04d", s.nextID)
}

func (s *memStore) GetConnectedAccount(_ context.Context, id string) (*models.ConnectedAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *memStore) FindConnectedAccount(_ context.Context, userID string, platform models.Platform, externalID string) (*models.ConnectedAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.UserID == userID && a.Platform == platform && a.ExternalAccountID == externalID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *memStore) ListActiveAccounts(_ context.Context) ([]models.ConnectedAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ConnectedAccount
	for _, a := range s.accounts {
		if a.IsActive {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) UpsertConnectedAccount(_ context.Context, acct *models.ConnectedAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.UserID == acct.UserID && a.Platform == acct.Platform &&
			a.ExternalAccountID == acct.ExternalAccountID {
			acct.ID = a.ID
			cp := *acct
			s.accounts[a.ID] = &cp
			return nil
		}
	}
	if acct.ID == "" {
		acct.ID = s.genID()
	}
	cp := *acct
	s.accounts[acct.ID] = &cp
	return nil
}

func (s *memStore) UpdateAccountTokens(_ context.Context, accountID, accessToken string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[accountID]
	if !ok {
		return database.ErrNotFound
	}
	a.AccessToken = accessToken
	a.TokenExpiresAt = &expiresAt
	return nil
}

func (s *memStore) TouchLastSynced(_ context.Context, accountID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[accountID]; ok {
		a.LastSyncedAt = &at
	}
	return nil
}

func (s *memStore) InsertAccountSnapshot(_ context.Context, snap *models.AccountSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap.ID = int64(len(s.accountSnaps) + 1)
	if snap.RecordedAt.IsZero() {
		snap.RecordedAt = time.Now()
	}
	s.accountSnaps = append(s.accountSnaps, *snap)
	return nil
}

func (s *memStore) UpsertDailyMetrics(_ context.Context, dailies []models.DailyMetric) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range dailies {
		s.dailies[d.AccountID+"|"+d.Date] = d
	}
	return nil
}

func (s *memStore) UpsertContentItem(_ context.Context, item *models.ContentItem) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := item.AccountID + "|" + item.ExternalID
	if existing, ok := s.items[key]; ok {
		item.ID = existing.ID
	} else if item.ID == "" {
		item.ID = s.genID()
	}
	cp := *item
	s.items[key] = &cp
	return item.ID, nil
}

func (s *memStore) InsertContentSnapshot(_ context.Context, snap *models.ContentSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap.ID = int64(len(s.contentSnaps) + 1)
	s.contentSnaps = append(s.contentSnaps, *snap)
	return nil
}

func (s *memStore) UpsertComments(_ context.Context, comments []models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range comments {
		s.comments[c.ExternalID] = c
	}
	return nil
}

func (s *memStore) LatestAccountSnapshot(_ context.Context, accountID string) (*models.AccountSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.accountSnaps) - 1; i >= 0; i-- {
		if s.accountSnaps[i].AccountID == accountID {
			cp := s.accountSnaps[i]
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *memStore) DailyMetricsRange(_ context.Context, accountID, from, to string) ([]models.DailyMetric, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.DailyMetric
	for _, d := range s.dailies {
		if d.AccountID == accountID && d.Date >= from && d.Date <= to {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (s *memStore) ListContentWithLatestSnapshot(_ context.Context, accountID string, limit int) ([]models.ContentWithStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ContentWithStats
	for _, item := range s.items {
		if item.AccountID != accountID {
			continue
		}
		cw := models.ContentWithStats{Item: *item}
		for i := len(s.contentSnaps) - 1; i >= 0; i-- {
			if s.contentSnaps[i].ContentID == item.ID {
				cp := s.contentSnaps[i]
				cw.Snapshot = &cp
				break
			}
		}
		out = append(out, cw)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Item.PublishedAt.After(out[j].Item.PublishedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) ListComments(_ context.Context, contentID string, limit int) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Comment
	for _, c := range s.comments {
		if c.ContentID == contentID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LikeCount > out[j].LikeCount })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// flakyStore wraps memStore with write-failure injection so pipeline tests
// can break individual persistence calls.
type flakyStore struct {
	*memStore
	failItemUpsert   map[string]bool // externalID -> fail that item
	failDailyUpsert  bool
	failAcctSnapshot bool
}

func (s *flakyStore) UpsertContentItem(ctx context.Context, item *models.ContentItem) (string, error) {
	if s.failItemUpsert[item.ExternalID] {
		return "", errors.New("write failed")
	}
	return s.memStore.UpsertContentItem(ctx, item)
}

func (s *flakyStore) UpsertDailyMetrics(ctx context.Context, dailies []models.DailyMetric) error {
	if s.failDailyUpsert {
		return errors.New("write failed")
	}
	return s.memStore.UpsertDailyMetrics(ctx, dailies)
}

func (s *flakyStore) InsertAccountSnapshot(ctx context.Context, snap *models.AccountSnapshot) error {
	if s.failAcctSnapshot {
		return errors.New("write failed")
	}
	return s.memStore.InsertAccountSnapshot(ctx, snap)
}

// fakeYouTube serves canned responses with per-call error injection. calls
// counts every request so tests can assert short-circuits.
type fakeYouTube struct {
	calls atomic.Int64

	channel    *youtube.Channel
	channelErr error

	report    *youtube.AnalyticsReport
	reportErr error

	videoIDs    []string
	videoIDsErr error

	videos    []youtube.Video
	videosErr error

	comments    map[string][]youtube.CommentThread
	commentsErr map[string]error
}

func (f *fakeYouTube) FetchChannel(context.Context, string) (*youtube.Channel, error) {
	f.calls.Add(1)
	return f.channel, f.channelErr
}

func (f *fakeYouTube) FetchDailyMetrics(context.Context, string, string, string, string) (*youtube.AnalyticsReport, error) {
	f.calls.Add(1)
	return f.report, f.reportErr
}

func (f *fakeYouTube) FetchRecentVideoIDs(context.Context, string, string, int) ([]string, error) {
	f.calls.Add(1)
	return f.videoIDs, f.videoIDsErr
}

func (f *fakeYouTube) FetchVideoStats(context.Context, string, []string) ([]youtube.Video, error) {
	f.calls.Add(1)
	return f.videos, f.videosErr
}

func (f *fakeYouTube) FetchComments(_ context.Context, _ string, videoID string, _ int) ([]youtube.CommentThread, error) {
	f.calls.Add(1)
	if err, ok := f.commentsErr[videoID]; ok {
		return nil, err
	}
	return f.comments[videoID], nil
}

// fakeInstagram serves canned responses.
type fakeInstagram struct {
	calls atomic.Int64

	business    *instagram.BusinessAccount
	businessErr error

	profile    *instagram.Profile
	profileErr error

	media    []instagram.Media
	mediaErr error
}

func (f *fakeInstagram) FetchBusinessAccount(context.Context, string) (*instagram.BusinessAccount, error) {
	f.calls.Add(1)
	return f.business, f.businessErr
}

func (f *fakeInstagram) FetchProfile(context.Context, string, string) (*instagram.Profile, error) {
	f.calls.Add(1)
	return f.profile, f.profileErr
}

func (f *fakeInstagram) FetchRecentMedia(context.Context, string, string, int) ([]instagram.Media, error) {
	f.calls.Add(1)
	return f.media, f.mediaErr
}

func testSyncConfig() config.SyncConfig {
	return config.SyncConfig{
		HistoryDays:       30,
		RecentVideos:      10,
		RecentMedia:       25,
		CommentsPerItem:   10,
		TokenExpiryMargin: 5 * time.Minute,
		ItemConcurrency:   2,
	}
}

// newTestOrchestrator wires an orchestrator over in-memory fakes. The
// insights trigger is disabled so Notify is a no-op.
func newTestOrchestrator(store database.Store, yt *fakeYouTube, ig *fakeInstagram) *Orchestrator {
	vault := tokenvault.New(store, config.GoogleConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		TokenURL:     "http://127.0.0.1:0/token",
	}, 5*time.Minute)
	return NewOrchestrator(store, vault, yt, ig,
		insights.New(config.InsightsConfig{Enabled: false}), testSyncConfig())
}

// seedAccount stores an active account with a fresh token.
func seedAccount(store *memStore, platform models.Platform, externalID string) *models.ConnectedAccount {
	expires := time.Now().Add(time.Hour)
	acct := &models.ConnectedAccount{
		ID:                "acct-1",
		UserID:            "user-1",
		Platform:          platform,
		ExternalAccountID: externalID,
		AccountName:       "Creator",
		AccessToken:       "stored-token",
		RefreshToken:      "refresh-token",
		TokenExpiresAt:    &expires,
		IsActive:          true,
	}
	store.accounts[acct.ID] = acct
	return acct
}
