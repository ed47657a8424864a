// Social Media Analytics Manager - Creator Analytics Sync Service
// Copyright 2026 Shreyash Singh (ShreyashSingh857)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000

package tokenvault

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/config"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/models"
)

type fakeAccountStore struct {
	mu       sync.Mutex
	accounts map[string]*models.ConnectedAccount
	updates  int
}

func newFakeAccountStore(accts ...*models.ConnectedAccount) *fakeAccountStore {
	s := &fakeAccountStore{accounts: make(map[string]*models.ConnectedAccount)}
	for _, a := range accts {
		s.accounts[a.ID] = a
	}
	return s
}

func (s *fakeAccountStore) GetConnectedAccount(_ context.Context, id string) (*models.ConnectedAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, errors.New("not found")
	}
	cp := *a
	return &cp, nil
}

func (s *fakeAccountStore) UpdateAccountTokens(_ context.Context, accountID, accessToken string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[accountID]
	if !ok {
		return errors.New("not found")
	}
	a.AccessToken = accessToken
	a.TokenExpiresAt = &expiresAt
	s.updates++
	return nil
}

func testAccount(expiresIn time.Duration) *models.ConnectedAccount {
	expires := time.Now().Add(expiresIn)
	return &models.ConnectedAccount{
		ID:             "acct-1",
		UserID:         "user-1",
		Platform:       models.PlatformYouTube,
		AccessToken:    "stored-access",
		RefreshToken:   "stored-refresh",
		TokenExpiresAt: &expires,
		IsActive:       true,
	}
}

func newTestVault(store AccountStore, tokenURL string) *Vault {
	v := New(store, config.GoogleConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		TokenURL:     tokenURL,
	}, 5*time.Minute)
	return v
}

func TestCallerTokenWins(t *testing.T) {
	store := newFakeAccountStore(testAccount(-time.Hour)) // stored token long expired
	v := newTestVault(store, "http://127.0.0.1:0/unreachable")

	tok, err := v.ResolveAccessToken(context.Background(), store.accounts["acct-1"], "caller-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.AccessToken != "caller-token" || tok.Source != SourceCaller {
		t.Errorf("expected caller token to win, got %+v", tok)
	}
}

func TestStoredTokenUsedWhenFresh(t *testing.T) {
	store := newFakeAccountStore(testAccount(time.Hour))
	v := newTestVault(store, "http://127.0.0.1:0/unreachable")

	tok, err := v.ResolveAccessToken(context.Background(), store.accounts["acct-1"], "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.AccessToken != "stored-access" || tok.Source != SourceStored {
		t.Errorf("expected stored token, got %+v", tok)
	}
}

func TestTokenInsideMarginIsRefreshed(t *testing.T) {
	var gotGrant, gotRefresh string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		gotGrant = r.PostForm.Get("grant_type")
		gotRefresh = r.PostForm.Get("refresh_token")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "fresh-access",
			"expires_in":   3600,
			"token_type":   "Bearer",
		})
	}))
	defer srv.Close()

	// Expires in 2 minutes, inside the 5 minute margin.
	store := newFakeAccountStore(testAccount(2 * time.Minute))
	v := newTestVault(store, srv.URL)

	tok, err := v.ResolveAccessToken(context.Background(), store.accounts["acct-1"], "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.AccessToken != "fresh-access" || tok.Source != SourceRefreshed {
		t.Errorf("expected refreshed token, got %+v", tok)
	}
	if gotGrant != "refresh_token" || gotRefresh != "stored-refresh" {
		t.Errorf("refresh grant malformed: grant_type=%q refresh_token=%q", gotGrant, gotRefresh)
	}

	// Refreshed token must be persisted before the vault returns.
	if store.updates != 1 {
		t.Errorf("expected 1 token persist, got %d", store.updates)
	}
	if store.accounts["acct-1"].AccessToken != "fresh-access" {
		t.Error("refreshed token not written to store")
	}
	remaining := time.Until(*store.accounts["acct-1"].TokenExpiresAt)
	if remaining < 55*time.Minute || remaining > 65*time.Minute {
		t.Errorf("expiry not derived from expires_in, remaining %v", remaining)
	}
}

func TestMissingExpiresInAssumesOneHour(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "fresh-access",
			"token_type":   "Bearer",
		})
	}))
	defer srv.Close()

	store := newFakeAccountStore(testAccount(0))
	v := newTestVault(store, srv.URL)

	tok, err := v.ResolveAccessToken(context.Background(), store.accounts["acct-1"], "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	remaining := time.Until(tok.ExpiresAt)
	if remaining < 55*time.Minute || remaining > 65*time.Minute {
		t.Errorf("expected assumed 1h lifetime, remaining %v", remaining)
	}
}

func TestInvalidGrantIsRefreshRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error":             "invalid_grant",
			"error_description": "Token has been expired or revoked.",
		})
	}))
	defer srv.Close()

	store := newFakeAccountStore(testAccount(0))
	v := newTestVault(store, srv.URL)

	_, err := v.ResolveAccessToken(context.Background(), store.accounts["acct-1"], "")
	if !errors.Is(err, ErrRefreshRejected) {
		t.Errorf("expected ErrRefreshRejected, got %v", err)
	}
	// Stored refresh token untouched; re-auth replaces it, not the vault.
	if store.accounts["acct-1"].RefreshToken != "stored-refresh" {
		t.Error("refresh token should not be cleared by a rejection")
	}
}

func TestNoRefreshTokenIsAuthExpired(t *testing.T) {
	acct := testAccount(0)
	acct.RefreshToken = ""
	store := newFakeAccountStore(acct)
	v := newTestVault(store, "http://127.0.0.1:0/unreachable")

	_, err := v.ResolveAccessToken(context.Background(), acct, "")
	if !errors.Is(err, ErrAuthExpired) {
		t.Errorf("expected ErrAuthExpired, got %v", err)
	}
}

func TestConcurrentResolveRefreshesOnce(t *testing.T) {
	var calls int
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "fresh-access",
			"expires_in":   3600,
		})
	}))
	defer srv.Close()

	store := newFakeAccountStore(testAccount(0))
	v := newTestVault(store, srv.URL)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := v.ResolveAccessToken(context.Background(), store.accounts["acct-1"], "")
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	// The first caller refreshes; the rest re-read the stored fresh token
	// under the per-account lock.
	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("expected exactly 1 refresh call, got %d", calls)
	}
}
