// Social Media Analytics Manager - Creator Analytics Sync Service
// Copyright 2026 Shreyash Singh (ShreyashSingh857)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000

// Package tokenvault resolves a usable OAuth access token for a connected
// account before each sync run.
//
// Resolution order: a caller-supplied token wins unconditionally; otherwise
// the stored token is used if it does not expire within the configured
// margin; otherwise the refresh grant is exercised. A refreshed token is
// persisted immediately, before any sync stage runs, so a later failure
// cannot lose it.
package tokenvault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/config"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/logging"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/metrics"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/models"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/models/youtube"
)

// Sentinel errors. Both are fatal for a sync run.
var (
	// ErrAuthExpired: no usable token exists and no refresh token is stored.
	// The user must re-authorize the account.
	ErrAuthExpired = errors.New("authorization expired, re-auth required")

	// ErrRefreshRejected: the refresh token itself was rejected
	// (invalid_grant). The user must re-authorize the account.
	ErrRefreshRejected = errors.New("refresh token rejected, re-auth required")
)

// Source records where a resolved token came from.
type Source string

// Token sources.
const (
	SourceCaller    Source = "caller"
	SourceStored    Source = "stored"
	SourceRefreshed Source = "refreshed"
)

// Token is a resolved access token.
type Token struct {
	AccessToken string
	ExpiresAt   time.Time // zero when unknown (caller-supplied)
	Source      Source
}

// assumedTokenLifetime is used when a token endpoint omits expires_in.
const assumedTokenLifetime = time.Hour

// AccountStore is the slice of the persistence layer the vault needs.
type AccountStore interface {
	GetConnectedAccount(ctx context.Context, id string) (*models.ConnectedAccount, error)
	UpdateAccountTokens(ctx context.Context, accountID, accessToken string, expiresAt time.Time) error
}

// Vault resolves and refreshes access tokens.
type Vault struct {
	store        AccountStore
	http         *http.Client
	tokenURL     string
	clientID     string
	clientSecret string
	expiryMargin time.Duration

	// mu guards per-account refresh locks so concurrent runs for the same
	// account never race two refresh grants against each other.
	mu sync.Map // account id -> *sync.Mutex
}

// New creates a Vault backed by the given store and Google OAuth client.
func New(store AccountStore, google config.GoogleConfig, expiryMargin time.Duration) *Vault {
	return &Vault{
		store:        store,
		http:         &http.Client{Timeout: 30 * time.Second},
		tokenURL:     google.TokenURL,
		clientID:     google.ClientID,
		clientSecret: google.ClientSecret,
		expiryMargin: expiryMargin,
	}
}

// SetTokenURL overrides the token endpoint, for tests.
func (v *Vault) SetTokenURL(u string) {
	v.tokenURL = u
}

func (v *Vault) lockFor(accountID string) *sync.Mutex {
	m, _ := v.mu.LoadOrStore(accountID, &sync.Mutex{})
	return m.(*sync.Mutex)
}

// ResolveAccessToken returns a usable token for the account. callerToken,
// when non-empty, is used as-is without validation; the upstream API is the
// authority on whether it works.
func (v *Vault) ResolveAccessToken(ctx context.Context, acct *models.ConnectedAccount, callerToken string) (*Token, error) {
	if callerToken != "" {
		return &Token{AccessToken: callerToken, Source: SourceCaller}, nil
	}

	lock := v.lockFor(acct.ID)
	lock.Lock()
	defer lock.Unlock()

	// Another run may have refreshed while we waited on the lock; re-read
	// the stored state before deciding.
	stored, err := v.store.GetConnectedAccount(ctx, acct.ID)
	if err == nil {
		acct = stored
	}

	if acct.AccessToken != "" && acct.TokenExpiresAt != nil &&
		time.Until(*acct.TokenExpiresAt) > v.expiryMargin {
		return &Token{
			AccessToken: acct.AccessToken,
			ExpiresAt:   *acct.TokenExpiresAt,
			Source:      SourceStored,
		}, nil
	}

	if acct.RefreshToken == "" {
		return nil, fmt.Errorf("account %s: %w", acct.ID, ErrAuthExpired)
	}

	return v.refresh(ctx, acct)
}

// refresh exercises the refresh grant and persists the result before
// returning.
func (v *Vault) refresh(ctx context.Context, acct *models.ConnectedAccount) (*Token, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", acct.RefreshToken)
	form.Set("client_id", v.clientID)
	form.Set("client_secret", v.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.tokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.http.Do(req)
	if err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("token endpoint unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var tokErr youtube.TokenError
		_ = json.Unmarshal(body, &tokErr)
		if tokErr.Error == "invalid_grant" {
			metrics.TokenRefreshesTotal.WithLabelValues("rejected").Inc()
			logging.Warn().
				Str("account_id", acct.ID).
				Str("description", tokErr.ErrorDescription).
				Msg("Refresh token rejected by token endpoint")
			return nil, fmt.Errorf("account %s: %w", acct.ID, ErrRefreshRejected)
		}
		metrics.TokenRefreshesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("token endpoint returned status %d: %s", resp.StatusCode, tokErr.Error)
	}

	var tok youtube.TokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		metrics.TokenRefreshesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("token endpoint returned empty access_token")
	}

	lifetime := assumedTokenLifetime
	if tok.ExpiresIn > 0 {
		lifetime = time.Duration(tok.ExpiresIn) * time.Second
	}
	expiresAt := time.Now().UTC().Add(lifetime)

	if err := v.store.UpdateAccountTokens(ctx, acct.ID, tok.AccessToken, expiresAt); err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to persist refreshed token: %w", err)
	}

	metrics.TokenRefreshesTotal.WithLabelValues("refreshed").Inc()
	logging.Info().
		Str("account_id", acct.ID).
		Time("expires_at", expiresAt).
		Msg("Access token refreshed")

	return &Token{
		AccessToken: tok.AccessToken,
		ExpiresAt:   expiresAt,
		Source:      SourceRefreshed,
	}, nil
}
