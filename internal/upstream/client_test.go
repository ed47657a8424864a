// Social Media Analytics Manager - Creator Analytics Sync Service
// Copyright 2026 Shreyash Singh (ShreyashSingh857)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000

package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/config"
)

func newTestYouTubeClient(srvURL string) *YouTubeClient {
	return NewYouTubeClient(config.YouTubeConfig{
		DataBaseURL:      srvURL,
		AnalyticsBaseURL: srvURL,
		Timeout:          5 * time.Second,
	})
}

func TestStatusClassification(t *testing.T) {
	cases := []struct {
		status int
		want   Kind
	}{
		{http.StatusUnauthorized, KindUnauthorized},
		{http.StatusForbidden, KindUnauthorized},
		{http.StatusTooManyRequests, KindRateLimited},
		{http.StatusNotFound, KindNotFound},
		{http.StatusInternalServerError, KindUnavailable},
		{http.StatusBadGateway, KindUnavailable},
		{http.StatusBadRequest, KindUnavailable},
	}
	for _, tc := range cases {
		if got := classifyStatus(tc.status); got != tc.want {
			t.Errorf("classifyStatus(%d): expected %s, got %s", tc.status, tc.want, got)
		}
	}
}

func TestUnauthorizedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid Credentials"}}`))
	}))
	defer srv.Close()

	c := newTestYouTubeClient(srv.URL)
	_, err := c.FetchChannel(context.Background(), "bad-token")
	if !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
	var ue *Error
	if !errors.As(err, &ue) || ue.Status != http.StatusUnauthorized {
		t.Errorf("expected status 401 in error, got %+v", ue)
	}
}

func TestRateLimitRetriesThenSucceeds(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"items":[{"id":"UC123","snippet":{"title":"Creator"}}]}`))
	}))
	defer srv.Close()

	c := newTestYouTubeClient(srv.URL)
	start := time.Now()
	channel, err := c.FetchChannel(context.Background(), "token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if channel.ID != "UC123" {
		t.Errorf("expected channel UC123, got %q", channel.ID)
	}
	if calls != 2 {
		t.Errorf("expected 2 upstream calls, got %d", calls)
	}
	if elapsed := time.Since(start); elapsed < time.Second {
		t.Errorf("expected Retry-After wait of at least 1s, waited %v", elapsed)
	}
}

func TestRateLimitExhaustsRetries(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestYouTubeClient(srv.URL)
	_, err := c.FetchChannel(context.Background(), "token")
	if !IsRateLimited(err) {
		t.Fatalf("expected rate-limited error, got %v", err)
	}
	if calls != maxRateLimitRetries+1 {
		t.Errorf("expected %d calls, got %d", maxRateLimitRetries+1, calls)
	}
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	c := newTestYouTubeClient("http://127.0.0.1:1")
	_, err := c.FetchChannel(context.Background(), "token")
	if !IsUnavailable(err) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}

func TestChannelWithNoItemsIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer srv.Close()

	c := newTestYouTubeClient(srv.URL)
	_, err := c.FetchChannel(context.Background(), "token")
	if !IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestFetchRecentVideoIDs(t *testing.T) {
	var gotPlaylist string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPlaylist = r.URL.Query().Get("playlistId")
		_, _ = w.Write([]byte(`{"items":[
			{"contentDetails":{"videoId":"v1"}},
			{"contentDetails":{"videoId":"v2"}},
			{"contentDetails":{"videoId":""}}
		]}`))
	}))
	defer srv.Close()

	c := newTestYouTubeClient(srv.URL)
	ids, err := c.FetchRecentVideoIDs(context.Background(), "token", "UU123", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPlaylist != "UU123" {
		t.Errorf("expected playlistId UU123, got %q", gotPlaylist)
	}
	if len(ids) != 2 || ids[0] != "v1" || ids[1] != "v2" {
		t.Errorf("expected [v1 v2], got %v", ids)
	}
}

func TestInstagramBusinessAccountDiscovery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("access_token") == "" {
			t.Error("graph api token must ride in the query string")
		}
		_, _ = w.Write([]byte(`{"data":[
			{"id":"p1","name":"Personal Page"},
			{"id":"p2","name":"Brand Page","instagram_business_account":{"id":"17841400000000001"}}
		]}`))
	}))
	defer srv.Close()

	c := NewInstagramClient(config.InstagramConfig{GraphBaseURL: srv.URL, Timeout: 5 * time.Second})
	biz, err := c.FetchBusinessAccount(context.Background(), "fb-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if biz.ID != "17841400000000001" {
		t.Errorf("expected business account id, got %q", biz.ID)
	}
}

func TestInstagramNoBusinessAccount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"id":"p1","name":"Personal Page"}]}`))
	}))
	defer srv.Close()

	c := NewInstagramClient(config.InstagramConfig{GraphBaseURL: srv.URL, Timeout: 5 * time.Second})
	_, err := c.FetchBusinessAccount(context.Background(), "fb-token")
	if !IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}
