// Social Media Analytics Manager - Creator Analytics Sync Service
// Copyright 2026 Shreyash Singh (ShreyashSingh857)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000

// Package config provides layered configuration loading via Koanf v2.
//
// Precedence (highest wins): environment variables > YAML config file >
// built-in defaults. See koanf.go for the loading pipeline and the
// environment variable name mappings.
package config

import "time"

// Config is the root configuration for the sync service.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Google    GoogleConfig    `koanf:"google"`
	YouTube   YouTubeConfig   `koanf:"youtube"`
	Instagram InstagramConfig `koanf:"instagram"`
	Sync      SyncConfig      `koanf:"sync"`
	Insights  InsightsConfig  `koanf:"insights"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
	API       APIConfig       `koanf:"api"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment" validate:"oneof=development production"`
}

// DatabaseConfig configures the DuckDB analytics store.
type DatabaseConfig struct {
	Path      string `koanf:"path" validate:"required"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = runtime.NumCPU()
}

// GoogleConfig holds the OAuth client used for refresh-grant calls against
// the Google token endpoint.
type GoogleConfig struct {
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
	TokenURL     string `koanf:"token_url"`
}

// YouTubeConfig configures the YouTube Data/Analytics API clients.
type YouTubeConfig struct {
	DataBaseURL      string        `koanf:"data_base_url"`
	AnalyticsBaseURL string        `koanf:"analytics_base_url"`
	Timeout          time.Duration `koanf:"timeout"`
	// RequestsPerSecond caps proactive request rate per client; 0 disables
	// the limiter (reactive 429 backoff still applies).
	RequestsPerSecond float64 `koanf:"requests_per_second"`
}

// InstagramConfig configures the Facebook Graph API client.
type InstagramConfig struct {
	GraphBaseURL string        `koanf:"graph_base_url"`
	APIVersion   string        `koanf:"api_version"`
	Timeout      time.Duration `koanf:"timeout"`
}

// SyncConfig configures the sync pipeline.
type SyncConfig struct {
	// HistoryDays is the trailing daily-metrics window fetched per run.
	HistoryDays int `koanf:"history_days" validate:"min=1,max=365"`
	// RecentVideos is the number of recent videos synced per YouTube run.
	RecentVideos int `koanf:"recent_videos" validate:"min=1,max=50"`
	// RecentMedia is the number of recent media synced per Instagram run.
	RecentMedia int `koanf:"recent_media" validate:"min=1,max=50"`
	// CommentsPerItem is the number of relevance-ordered comments fetched
	// per content item.
	CommentsPerItem int `koanf:"comments_per_item" validate:"min=0,max=100"`
	// TokenExpiryMargin: stored tokens expiring within this margin are
	// treated as expired and refreshed.
	TokenExpiryMargin time.Duration `koanf:"token_expiry_margin"`
	// Scheduler settings for periodic re-sync of active accounts.
	SchedulerEnabled  bool          `koanf:"scheduler_enabled"`
	SchedulerInterval time.Duration `koanf:"scheduler_interval"`
	// ItemConcurrency bounds concurrent per-item processing in the content
	// and comment stages. 1 = sequential.
	ItemConcurrency int `koanf:"item_concurrency" validate:"min=1,max=16"`
}

// InsightsConfig configures the post-sync recalculation trigger.
type InsightsConfig struct {
	Enabled bool          `koanf:"enabled"`
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
}

// SecurityConfig configures CORS and request rate limiting.
type SecurityConfig struct {
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// LoggingConfig configures the zerolog logger.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// APIConfig configures read-side pagination.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size" validate:"min=1"`
	MaxPageSize     int `koanf:"max_page_size" validate:"min=1"`
}

// Load loads the configuration. It is a thin alias over LoadWithKoanf kept
// for call-site readability in main.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
