// Social Media Analytics Manager - Creator Analytics Sync Service
// Copyright 2026 Shreyash Singh (ShreyashSingh857)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000

package database

import (
	"context"
	"errors"
	"time"

	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/models"
)

// ErrNotFound is returned by lookups when no row matches.
var ErrNotFound = errors.New("not found")

// Store is the persistence surface used by the sync pipeline and the read
// API. *DB implements it; tests may substitute fakes.
type Store interface {
	// Accounts.
	GetConnectedAccount(ctx context.Context, id string) (*models.ConnectedAccount, error)
	FindConnectedAccount(ctx context.Context, userID string, platform models.Platform, externalAccountID string) (*models.ConnectedAccount, error)
	ListActiveAccounts(ctx context.Context) ([]models.ConnectedAccount, error)
	UpsertConnectedAccount(ctx context.Context, acct *models.ConnectedAccount) error
	UpdateAccountTokens(ctx context.Context, accountID, accessToken string, expiresAt time.Time) error
	TouchLastSynced(ctx context.Context, accountID string, at time.Time) error

	// Sync writes.
	InsertAccountSnapshot(ctx context.Context, snap *models.AccountSnapshot) error
	UpsertDailyMetrics(ctx context.Context, metrics []models.DailyMetric) error
	UpsertContentItem(ctx context.Context, item *models.ContentItem) (string, error)
	InsertContentSnapshot(ctx context.Context, snap *models.ContentSnapshot) error
	UpsertComments(ctx context.Context, comments []models.Comment) error

	// Read side.
	LatestAccountSnapshot(ctx context.Context, accountID string) (*models.AccountSnapshot, error)
	DailyMetricsRange(ctx context.Context, accountID, from, to string) ([]models.DailyMetric, error)
	ListContentWithLatestSnapshot(ctx context.Context, accountID string, limit int) ([]models.ContentWithStats, error)
	ListComments(ctx context.Context, contentID string, limit int) ([]models.Comment, error)
}

var _ Store = (*DB)(nil)
