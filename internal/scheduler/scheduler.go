// Social Media Analytics Manager - Creator Analytics Sync Service
// Copyright 2026 Shreyash Singh (ShreyashSingh857)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000

// Package scheduler re-syncs all active accounts on a fixed interval. It
// runs as a supervised service; a panic or returned error restarts it under
// its supervisor with backoff.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/database"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/logging"
	syncpkg "github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/sync"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/tokenvault"
)

// Scheduler drives periodic sync runs.
type Scheduler struct {
	store        database.Store
	orchestrator *syncpkg.Orchestrator
	interval     time.Duration
}

// New creates a Scheduler.
func New(store database.Store, orch *syncpkg.Orchestrator, interval time.Duration) *Scheduler {
	return &Scheduler{store: store, orchestrator: orch, interval: interval}
}

// Serve implements suture.Service. It syncs all active accounts once at
// startup, then on every tick, until the context is canceled.
func (s *Scheduler) Serve(ctx context.Context) error {
	logging.Info().Dur("interval", s.interval).Msg("Sync scheduler started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.syncAll(ctx)
	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("Sync scheduler stopping")
			return ctx.Err()
		case <-ticker.C:
			s.syncAll(ctx)
		}
	}
}

// syncAll runs every active account sequentially. Accounts whose
// authorization has lapsed are deactivated in effect by their own 401s at
// re-link time; here the failure is logged and the loop moves on so one
// broken account cannot starve the rest.
func (s *Scheduler) syncAll(ctx context.Context) {
	accounts, err := s.store.ListActiveAccounts(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("Scheduler failed to list active accounts")
		return
	}
	if len(accounts) == 0 {
		return
	}

	logging.Info().Int("accounts", len(accounts)).Msg("Scheduled sync pass starting")
	for _, acct := range accounts {
		if ctx.Err() != nil {
			return
		}
		_, err := s.orchestrator.Run(ctx, syncpkg.Request{AccountID: acct.ID})
		if err != nil {
			evt := logging.Warn()
			if errors.Is(err, tokenvault.ErrAuthExpired) || errors.Is(err, tokenvault.ErrRefreshRejected) {
				evt = logging.Info()
			}
			evt.Err(err).
				Str("account_id", acct.ID).
				Str("platform", string(acct.Platform)).
				Msg("Scheduled sync failed for account")
		}
	}
}
