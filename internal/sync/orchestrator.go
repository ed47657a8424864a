// Social Media Analytics Manager - Creator Analytics Sync Service
// Copyright 2026 Shreyash Singh (ShreyashSingh857)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000

// Package sync orchestrates account synchronization runs.
//
// A run resolves a token, then walks platform-specific stages in order:
// profile, daily metrics, content, comments. Stage failures caused by
// upstream flakiness (rate limits, outages) skip that stage and continue;
// authorization failures abort the run. All writes are idempotent, so a
// partial run followed by a retry converges to the same stored state.
package sync

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/config"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/database"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/insights"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/logging"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/metrics"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/models"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/tokenvault"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/upstream"
)

// Errors surfaced to the API layer.
var (
	// ErrAccountNotFound: the requested account does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInvalidRequest: the request names neither an existing account nor
	// enough material to link a new one.
	ErrInvalidRequest = errors.New("invalid sync request")
)

// Request describes one sync run.
//
// Two forms exist: re-sync of a known account (AccountID set) and first
// link (UserID, Platform and AccessToken set), which discovers the external
// account from the platform and creates the ConnectedAccount row.
type Request struct {
	AccountID string `json:"account_id,omitempty" validate:"omitempty,uuid4"`
	UserID    string `json:"user_id,omitempty"`
	Platform  string `json:"platform,omitempty" validate:"omitempty,oneof=youtube instagram"`

	// AccessToken, when set, is used for this run without validation.
	AccessToken string `json:"access_token,omitempty"`
	// RefreshToken, when set on a first link, is stored for later runs.
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Orchestrator coordinates sync runs across platforms.
type Orchestrator struct {
	store    database.Store
	vault    *tokenvault.Vault
	youtube  upstream.YouTubeAPI
	insta    upstream.InstagramAPI
	insights *insights.Trigger
	cfg      config.SyncConfig
}

// NewOrchestrator wires the pipeline together.
func NewOrchestrator(store database.Store, vault *tokenvault.Vault,
	yt upstream.YouTubeAPI, ig upstream.InstagramAPI,
	trigger *insights.Trigger, cfg config.SyncConfig) *Orchestrator {
	return &Orchestrator{
		store:    store,
		vault:    vault,
		youtube:  yt,
		insta:    ig,
		insights: trigger,
		cfg:      cfg,
	}
}

// Run executes one sync run. A non-nil RunResult is returned for completed
// and partial runs; fatal failures return an error the caller maps to an
// HTTP status (ErrAccountNotFound, tokenvault.ErrAuthExpired,
// tokenvault.ErrRefreshRejected, upstream errors of kind unauthorized).
func (o *Orchestrator) Run(ctx context.Context, req Request) (*RunResult, error) {
	acct, err := o.resolveAccount(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result := &RunResult{
		AccountID: acct.ID, // empty on first link until profile stage persists
		Platform:  string(acct.Platform),
		Outcome:   OutcomeCompleted,
		StartedAt: start.UTC(),
	}

	tok, err := o.resolveToken(ctx, acct, req)
	if err != nil {
		o.finishRun(result, start, err)
		return nil, err
	}
	result.TokenSource = string(tok.Source)

	switch acct.Platform {
	case models.PlatformYouTube:
		err = o.runYouTube(ctx, acct, tok.AccessToken, result)
	case models.PlatformInstagram:
		err = o.runInstagram(ctx, acct, tok.AccessToken, result)
	default:
		err = fmt.Errorf("%w: unsupported platform %q", ErrInvalidRequest, acct.Platform)
	}
	if err != nil {
		o.finishRun(result, start, err)
		return nil, err
	}
	result.Channel = acct.AccountName

	if acct.ID != "" {
		if err := o.store.TouchLastSynced(ctx, acct.ID, time.Now().UTC()); err != nil {
			logging.Warn().Err(err).Str("account_id", acct.ID).
				Msg("Failed to stamp last_synced_at")
		}
		o.insights.Notify(ctx, acct.ID)
	}

	o.finishRun(result, start, nil)
	return result, nil
}

func (o *Orchestrator) finishRun(result *RunResult, start time.Time, err error) {
	result.Duration = time.Since(start)
	if err != nil {
		result.Outcome = OutcomeFailed
	}
	metrics.SyncRunsTotal.WithLabelValues(result.Platform, string(result.Outcome)).Inc()
	metrics.SyncRunDuration.WithLabelValues(result.Platform).
		Observe(result.Duration.Seconds())

	evt := logging.Info()
	if err != nil {
		evt = logging.Error().Err(err)
	}
	evt.Str("account_id", result.AccountID).
		Str("platform", result.Platform).
		Str("outcome", string(result.Outcome)).
		Dur("duration", result.Duration).
		Int("daily_metrics", result.DailyMetricsUpserted).
		Int("content_items", result.ContentItemsSynced).
		Int("comments", result.CommentsUpserted).
		Msg("Sync run finished")
}

// resolveAccount loads an existing account or builds an unsaved one for a
// first link. First-link accounts get their external id and display fields
// from the profile stage, which also persists them.
func (o *Orchestrator) resolveAccount(ctx context.Context, req Request) (*models.ConnectedAccount, error) {
	if req.AccountID != "" {
		acct, err := o.store.GetConnectedAccount(ctx, req.AccountID)
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("account %s: %w", req.AccountID, ErrAccountNotFound)
		}
		if err != nil {
			return nil, err
		}
		return acct, nil
	}

	platform := models.Platform(req.Platform)
	if req.UserID == "" || !platform.Valid() || req.AccessToken == "" {
		return nil, fmt.Errorf("%w: need account_id, or user_id + platform + access_token", ErrInvalidRequest)
	}

	return &models.ConnectedAccount{
		UserID:       req.UserID,
		Platform:     platform,
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		IsActive:     true,
	}, nil
}

// resolveToken asks the vault for a token, except on a first link where the
// account has no stored state yet and the caller token is mandatory. A
// refresh token hint that differs from the stored one is persisted first, so
// the vault refreshes against the newest grant the caller holds.
func (o *Orchestrator) resolveToken(ctx context.Context, acct *models.ConnectedAccount, req Request) (*tokenvault.Token, error) {
	if acct.ID == "" {
		return &tokenvault.Token{AccessToken: req.AccessToken, Source: tokenvault.SourceCaller}, nil
	}

	if req.RefreshToken != "" && req.RefreshToken != acct.RefreshToken {
		acct.RefreshToken = req.RefreshToken
		if err := o.store.UpsertConnectedAccount(ctx, acct); err != nil {
			logging.Warn().Err(err).Str("account_id", acct.ID).
				Msg("Failed to persist refresh token hint")
		}
	}

	return o.vault.ResolveAccessToken(ctx, acct, req.AccessToken)
}

// stageSkippable reports whether an upstream failure skips the stage
// instead of aborting the run.
func stageSkippable(err error) bool {
	return upstream.IsRateLimited(err) || upstream.IsUnavailable(err)
}

// skipReason condenses a skippable error for the stage result.
func skipReason(err error) string {
	switch {
	case upstream.IsRateLimited(err):
		return "rate_limited"
	case upstream.IsUnavailable(err):
		return "upstream_unavailable"
	case upstream.IsNotFound(err):
		return "not_found"
	default:
		return "error"
	}
}

// Reasons recorded on failed stages.
const (
	reasonPersistence  = "persistence_write_failed"
	reasonItemFailures = "item_failures"
)

// recordSkip logs and records a skipped stage.
func (o *Orchestrator) recordSkip(result *RunResult, stage Stage, err error) {
	logging.Warn().Err(err).
		Str("platform", result.Platform).
		Str("stage", string(stage)).
		Msg("Sync stage skipped")
	metrics.StageFailuresTotal.WithLabelValues(result.Platform, string(stage)).Inc()
	result.addStage(StageResult{Stage: stage, Status: StageSkipped, Reason: skipReason(err)})
}

// recordFailure logs and records a failed stage. The run continues; the
// stage's rows are missing or incomplete until the next run rewrites them.
func (o *Orchestrator) recordFailure(result *RunResult, stage Stage, err error, reason string, items, failed int) {
	logging.Warn().Err(err).
		Str("platform", result.Platform).
		Str("stage", string(stage)).
		Int("items", items).
		Int("failed", failed).
		Msg("Sync stage failed")
	metrics.StageFailuresTotal.WithLabelValues(result.Platform, string(stage)).Inc()
	result.addStage(StageResult{
		Stage: stage, Status: StageFailed, Reason: reason, Items: items, Failed: failed,
	})
}

// parseCount parses an API counter served as a JSON string. Malformed or
// absent counters degrade to zero rather than failing the payload.
func parseCount(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// engagementRate computes (likes+comments)/views as a percentage, one
// decimal place. Zero views yields zero, never a division error.
func engagementRate(likes, comments, views int64) float64 {
	if views <= 0 {
		return 0
	}
	return round1(float64(likes+comments) / float64(views) * 100)
}

// round1 rounds to one decimal place.
func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
