// Social Media Analytics Manager - Creator Analytics Sync Service
// Copyright 2026 Shreyash Singh (ShreyashSingh857)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000

package upstream

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/logging"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/metrics"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/models/instagram"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/models/youtube"
)

// newBreaker builds a circuit breaker for one upstream. Opens after a 60%
// failure rate over at least 10 requests; recovers through half-open after
// 2 minutes. Unauthorized and NotFound are the caller's problem, not the
// upstream's, so they never count as breaker failures.
func newBreaker(name string) *gobreaker.CircuitBreaker[interface{}] {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			return IsUnauthorized(err) || IsNotFound(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("upstream", name).
				Str("from", stateToString(from)).
				Str("to", stateToString(to)).
				Msg("Circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})
}

// castResult type-casts a circuit breaker result.
func castResult[T any](result interface{}, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	typed, ok := result.(*T)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// castSlice type-casts a circuit breaker result holding a slice.
func castSlice[T any](result interface{}, err error) ([]T, error) {
	if err != nil {
		return nil, err
	}
	typed, ok := result.([]T)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// BreakerYouTubeClient wraps a YouTubeAPI with circuit breaker protection.
// When the breaker is open calls fail fast with KindUnavailable, which the
// sync pipeline already treats as a stage skip.
type BreakerYouTubeClient struct {
	api YouTubeAPI
	cb  *gobreaker.CircuitBreaker[interface{}]
}

var _ YouTubeAPI = (*BreakerYouTubeClient)(nil)

// NewBreakerYouTubeClient wraps api in a circuit breaker named youtube-api.
func NewBreakerYouTubeClient(api YouTubeAPI) *BreakerYouTubeClient {
	return &BreakerYouTubeClient{api: api, cb: newBreaker("youtube-api")}
}

func (b *BreakerYouTubeClient) execute(op string, fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, &Error{Kind: KindUnavailable, Op: op, Err: err}
	}
	return result, err
}

func (b *BreakerYouTubeClient) FetchChannel(ctx context.Context, accessToken string) (*youtube.Channel, error) {
	return castResult[youtube.Channel](b.execute("youtube.channels.list", func() (interface{}, error) {
		return b.api.FetchChannel(ctx, accessToken)
	}))
}

func (b *BreakerYouTubeClient) FetchDailyMetrics(ctx context.Context, accessToken, channelID, startDate, endDate string) (*youtube.AnalyticsReport, error) {
	return castResult[youtube.AnalyticsReport](b.execute("youtube.analytics.reports", func() (interface{}, error) {
		return b.api.FetchDailyMetrics(ctx, accessToken, channelID, startDate, endDate)
	}))
}

func (b *BreakerYouTubeClient) FetchRecentVideoIDs(ctx context.Context, accessToken, uploadsPlaylistID string, max int) ([]string, error) {
	return castSlice[string](b.execute("youtube.playlistItems.list", func() (interface{}, error) {
		return b.api.FetchRecentVideoIDs(ctx, accessToken, uploadsPlaylistID, max)
	}))
}

func (b *BreakerYouTubeClient) FetchVideoStats(ctx context.Context, accessToken string, videoIDs []string) ([]youtube.Video, error) {
	return castSlice[youtube.Video](b.execute("youtube.videos.list", func() (interface{}, error) {
		return b.api.FetchVideoStats(ctx, accessToken, videoIDs)
	}))
}

func (b *BreakerYouTubeClient) FetchComments(ctx context.Context, accessToken, videoID string, max int) ([]youtube.CommentThread, error) {
	return castSlice[youtube.CommentThread](b.execute("youtube.commentThreads.list", func() (interface{}, error) {
		return b.api.FetchComments(ctx, accessToken, videoID, max)
	}))
}

// BreakerInstagramClient wraps an InstagramAPI with circuit breaker
// protection.
type BreakerInstagramClient struct {
	api InstagramAPI
	cb  *gobreaker.CircuitBreaker[interface{}]
}

var _ InstagramAPI = (*BreakerInstagramClient)(nil)

// NewBreakerInstagramClient wraps api in a circuit breaker named graph-api.
func NewBreakerInstagramClient(api InstagramAPI) *BreakerInstagramClient {
	return &BreakerInstagramClient{api: api, cb: newBreaker("graph-api")}
}

func (b *BreakerInstagramClient) execute(op string, fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, &Error{Kind: KindUnavailable, Op: op, Err: err}
	}
	return result, err
}

func (b *BreakerInstagramClient) FetchBusinessAccount(ctx context.Context, accessToken string) (*instagram.BusinessAccount, error) {
	return castResult[instagram.BusinessAccount](b.execute("instagram.me.accounts", func() (interface{}, error) {
		return b.api.FetchBusinessAccount(ctx, accessToken)
	}))
}

func (b *BreakerInstagramClient) FetchProfile(ctx context.Context, accessToken, igUserID string) (*instagram.Profile, error) {
	return castResult[instagram.Profile](b.execute("instagram.profile", func() (interface{}, error) {
		return b.api.FetchProfile(ctx, accessToken, igUserID)
	}))
}

func (b *BreakerInstagramClient) FetchRecentMedia(ctx context.Context, accessToken, igUserID string, limit int) ([]instagram.Media, error) {
	return castSlice[instagram.Media](b.execute("instagram.media", func() (interface{}, error) {
		return b.api.FetchRecentMedia(ctx, accessToken, igUserID, limit)
	}))
}
