// Social Media Analytics Manager - Creator Analytics Sync Service
// Copyright 2026 Shreyash Singh (ShreyashSingh857)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000

// Package insights triggers downstream insight recalculation after a sync
// run. The trigger is fire-and-forget: a failure is logged and never affects
// the run outcome.
package insights

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/config"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/logging"
)

// Trigger posts recalculation requests to the insights service.
type Trigger struct {
	enabled bool
	url     string
	http    *http.Client
}

// New creates a Trigger. When cfg.Enabled is false, Notify is a no-op.
func New(cfg config.InsightsConfig) *Trigger {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Trigger{
		enabled: cfg.Enabled,
		url:     cfg.URL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Notify requests an insight recalculation for the account. Always returns;
// failures are logged at warn level only.
func (t *Trigger) Notify(ctx context.Context, accountID string) {
	if !t.enabled {
		return
	}

	payload, err := json.Marshal(map[string]string{"account_id": accountID})
	if err != nil {
		logging.Warn().Err(err).Msg("Failed to encode insights payload")
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(payload))
	if err != nil {
		logging.Warn().Err(err).Msg("Failed to build insights request")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.http.Do(req)
	if err != nil {
		logging.Warn().Err(err).Str("account_id", accountID).
			Msg("Insights trigger unreachable")
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		logging.Warn().Int("status", resp.StatusCode).Str("account_id", accountID).
			Msg("Insights trigger rejected")
		return
	}

	logging.Debug().Str("account_id", accountID).Msg("Insights recalculation triggered")
}
