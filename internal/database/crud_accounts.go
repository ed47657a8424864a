// Social Media Analytics Manager - Creator Analytics Sync Service
// Copyright 2026 Shreyash Singh (ShreyashSingh857)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/models"
)

const accountColumns = `id, user_id, platform, external_account_id, account_name,
	account_handle, avatar_url, access_token, refresh_token, token_expires_at,
	is_active, last_synced_at, created_at, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (*models.ConnectedAccount, error) {
	var a models.ConnectedAccount
	var expiresAt, lastSynced sql.NullTime
	err := row.Scan(&a.ID, &a.UserID, &a.Platform, &a.ExternalAccountID,
		&a.AccountName, &a.AccountHandle, &a.AvatarURL,
		&a.AccessToken, &a.RefreshToken, &expiresAt,
		&a.IsActive, &lastSynced, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		a.TokenExpiresAt = &t
	}
	if lastSynced.Valid {
		t := lastSynced.Time
		a.LastSyncedAt = &t
	}
	return &a, nil
}

// GetConnectedAccount fetches one account by id.
func (db *DB) GetConnectedAccount(ctx context.Context, id string) (*models.ConnectedAccount, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM connected_accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return a, nil
}

// FindConnectedAccount fetches one account by its natural key.
func (db *DB) FindConnectedAccount(ctx context.Context, userID string, platform models.Platform, externalAccountID string) (*models.ConnectedAccount, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM connected_accounts
		 WHERE user_id = ? AND platform = ? AND external_account_id = ?`,
		userID, string(platform), externalAccountID)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return a, nil
}

// ListActiveAccounts returns all accounts eligible for scheduled sync.
func (db *DB) ListActiveAccounts(ctx context.Context) ([]models.ConnectedAccount, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM connected_accounts
		 WHERE is_active ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []models.ConnectedAccount
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

// UpsertConnectedAccount inserts or updates an account on its natural key
// (user_id, platform, external_account_id). A zero ID is assigned a new UUID;
// acct.ID is rewritten to the persisted id either way.
func (db *DB) UpsertConnectedAccount(ctx context.Context, acct *models.ConnectedAccount) error {
	now := time.Now().UTC()
	if acct.ID == "" {
		acct.ID = uuid.NewString()
		acct.CreatedAt = now
	}
	acct.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO connected_accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, platform, external_account_id) DO UPDATE SET
			account_name     = excluded.account_name,
			account_handle   = excluded.account_handle,
			avatar_url       = excluded.avatar_url,
			access_token     = excluded.access_token,
			refresh_token    = CASE WHEN excluded.refresh_token != ''
			                        THEN excluded.refresh_token
			                        ELSE connected_accounts.refresh_token END,
			token_expires_at = excluded.token_expires_at,
			is_active        = excluded.is_active,
			updated_at       = excluded.updated_at`,
		acct.ID, acct.UserID, string(acct.Platform), acct.ExternalAccountID,
		acct.AccountName, acct.AccountHandle, acct.AvatarURL,
		acct.AccessToken, acct.RefreshToken, acct.TokenExpiresAt,
		acct.IsActive, acct.LastSyncedAt, acct.CreatedAt, acct.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert account: %w", err)
	}

	// On conflict the pre-existing row keeps its id; read it back so the
	// caller holds the persisted one.
	existing, err := db.FindConnectedAccount(ctx, acct.UserID, acct.Platform, acct.ExternalAccountID)
	if err != nil {
		return fmt.Errorf("failed to read back account: %w", err)
	}
	acct.ID = existing.ID
	acct.CreatedAt = existing.CreatedAt
	return nil
}

// UpdateAccountTokens persists a refreshed access token and its expiry.
// Called immediately after a successful refresh so a later stage failure
// cannot lose the new token.
func (db *DB) UpdateAccountTokens(ctx context.Context, accountID, accessToken string, expiresAt time.Time) error {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE connected_accounts
		SET access_token = ?, token_expires_at = ?, updated_at = current_timestamp
		WHERE id = ?`,
		accessToken, expiresAt, accountID)
	if err != nil {
		return fmt.Errorf("failed to update tokens: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("account %s: %w", accountID, ErrNotFound)
	}
	return nil
}

// TouchLastSynced stamps a completed sync run on the account.
func (db *DB) TouchLastSynced(ctx context.Context, accountID string, at time.Time) error {
	_, err := db.conn.ExecContext(ctx, `
		UPDATE connected_accounts
		SET last_synced_at = ?, updated_at = current_timestamp
		WHERE id = ?`,
		at, accountID)
	if err != nil {
		return fmt.Errorf("failed to touch last_synced_at: %w", err)
	}
	return nil
}
