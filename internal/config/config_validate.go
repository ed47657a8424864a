// Social Media Analytics Manager - Creator Analytics Sync Service
// Copyright 2026 Shreyash Singh (ShreyashSingh857)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateGoogle(); err != nil {
		return err
	}
	if err := c.validateUpstreams(); err != nil {
		return err
	}
	if err := c.validateSync(); err != nil {
		return err
	}
	if err := c.validateInsights(); err != nil {
		return err
	}
	return c.validateLogging()
}

// validateServer validates HTTP server settings.
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Environment != "development" && c.Server.Environment != "production" {
		return fmt.Errorf("ENVIRONMENT must be development or production, got %q", c.Server.Environment)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server timeout must be positive")
	}
	return nil
}

// validateDatabase validates the analytics store settings.
func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	return nil
}

// validateGoogle validates the OAuth client settings. Client credentials may
// be empty in development; token refresh then fails at runtime with a clear
// classification instead of at startup.
func (c *Config) validateGoogle() error {
	if c.Google.TokenURL == "" {
		return fmt.Errorf("GOOGLE_TOKEN_URL must not be empty")
	}
	if err := validateHTTPURL(c.Google.TokenURL, "GOOGLE_TOKEN_URL"); err != nil {
		return err
	}
	if c.Server.Environment == "production" && (c.Google.ClientID == "" || c.Google.ClientSecret == "") {
		return fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required in production")
	}
	return nil
}

// validateUpstreams validates the upstream API base URLs.
func (c *Config) validateUpstreams() error {
	for name, u := range map[string]string{
		"YOUTUBE_DATA_BASE_URL":      c.YouTube.DataBaseURL,
		"YOUTUBE_ANALYTICS_BASE_URL": c.YouTube.AnalyticsBaseURL,
		"INSTAGRAM_GRAPH_BASE_URL":   c.Instagram.GraphBaseURL,
	} {
		if u == "" {
			return fmt.Errorf("%s must not be empty", name)
		}
		if err := validateHTTPURL(u, name); err != nil {
			return err
		}
	}
	if c.YouTube.RequestsPerSecond < 0 {
		return fmt.Errorf("YOUTUBE_REQUESTS_PER_SECOND must not be negative")
	}
	return nil
}

// validateSync validates pipeline settings.
func (c *Config) validateSync() error {
	if c.Sync.HistoryDays < 1 || c.Sync.HistoryDays > 365 {
		return fmt.Errorf("SYNC_HISTORY_DAYS must be between 1 and 365, got %d", c.Sync.HistoryDays)
	}
	if c.Sync.RecentVideos < 1 || c.Sync.RecentVideos > 50 {
		return fmt.Errorf("SYNC_RECENT_VIDEOS must be between 1 and 50, got %d", c.Sync.RecentVideos)
	}
	if c.Sync.RecentMedia < 1 || c.Sync.RecentMedia > 50 {
		return fmt.Errorf("SYNC_RECENT_MEDIA must be between 1 and 50, got %d", c.Sync.RecentMedia)
	}
	if c.Sync.CommentsPerItem < 0 || c.Sync.CommentsPerItem > 100 {
		return fmt.Errorf("SYNC_COMMENTS_PER_ITEM must be between 0 and 100, got %d", c.Sync.CommentsPerItem)
	}
	if c.Sync.TokenExpiryMargin <= 0 {
		return fmt.Errorf("SYNC_TOKEN_EXPIRY_MARGIN must be positive")
	}
	if c.Sync.ItemConcurrency < 1 || c.Sync.ItemConcurrency > 16 {
		return fmt.Errorf("SYNC_ITEM_CONCURRENCY must be between 1 and 16, got %d", c.Sync.ItemConcurrency)
	}
	if c.Sync.SchedulerEnabled && c.Sync.SchedulerInterval <= 0 {
		return fmt.Errorf("SYNC_SCHEDULER_INTERVAL must be positive when the scheduler is enabled")
	}
	return nil
}

// validateInsights validates the recalculation trigger settings.
func (c *Config) validateInsights() error {
	if !c.Insights.Enabled {
		return nil
	}
	if c.Insights.URL == "" {
		return fmt.Errorf("INSIGHTS_URL is required when INSIGHTS_ENABLED=true")
	}
	return validateHTTPURL(c.Insights.URL, "INSIGHTS_URL")
}

// validateLogging validates logger settings.
func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// validateHTTPURL checks that the value parses as an absolute http(s) URL.
func validateHTTPURL(raw, name string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https scheme, got %q", name, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s is missing a host", name)
	}
	return nil
}
