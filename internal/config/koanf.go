// Social Media Analytics Manager - Creator Analytics Sync Service
// Copyright 2026 Shreyash Singh (ShreyashSingh857)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/sma-sync/config.yaml",
	"/etc/sma-sync/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all defaults applied. Defaults are
// layered first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8090,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Database: DatabaseConfig{
			Path:      "/data/sma.duckdb",
			MaxMemory: "1GB",
			Threads:   0, // 0 = use runtime.NumCPU()
		},
		Google: GoogleConfig{
			ClientID:     "",
			ClientSecret: "",
			TokenURL:     "https://oauth2.googleapis.com/token",
		},
		YouTube: YouTubeConfig{
			DataBaseURL:       "https://www.googleapis.com/youtube/v3",
			AnalyticsBaseURL:  "https://youtubeanalytics.googleapis.com/v2",
			Timeout:           30 * time.Second,
			RequestsPerSecond: 8,
		},
		Instagram: InstagramConfig{
			GraphBaseURL: "https://graph.facebook.com",
			APIVersion:   "v19.0",
			Timeout:      30 * time.Second,
		},
		Sync: SyncConfig{
			HistoryDays:       30,
			RecentVideos:      10,
			RecentMedia:       25,
			CommentsPerItem:   10,
			TokenExpiryMargin: 5 * time.Minute,
			SchedulerEnabled:  false, // opt-in; on-demand POST /sync is the default trigger
			SchedulerInterval: 6 * time.Hour,
			ItemConcurrency:   1, // sequential matches upstream quota behavior
		},
		Insights: InsightsConfig{
			Enabled: false,
			URL:     "http://localhost:8000/api/insights/recalculate",
			Timeout: 10 * time.Second,
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		API: APIConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in sensible defaults
//  2. Config file: optional YAML config file (if it exists)
//  3. Environment variables: override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: optional config file
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config path, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths lists config paths parsed as comma-separated slices when
// supplied via env vars.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields. Env vars arrive as strings but the config expects
// slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - GOOGLE_CLIENT_ID -> google.client_id
//   - SYNC_HISTORY_DAYS -> sync.history_days
//   - DUCKDB_PATH -> database.path
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server
		"http_host":   "server.host",
		"http_port":   "server.port",
		"environment": "server.environment",

		// Database
		"duckdb_path":       "database.path",
		"duckdb_max_memory": "database.max_memory",
		"duckdb_threads":    "database.threads",

		// Google OAuth client (YOUTUBE_* kept as legacy aliases)
		"google_client_id":      "google.client_id",
		"google_client_secret":  "google.client_secret",
		"google_token_url":      "google.token_url",
		"youtube_client_id":     "google.client_id",
		"youtube_client_secret": "google.client_secret",

		// YouTube API
		"youtube_data_base_url":       "youtube.data_base_url",
		"youtube_analytics_base_url":  "youtube.analytics_base_url",
		"youtube_timeout":             "youtube.timeout",
		"youtube_requests_per_second": "youtube.requests_per_second",

		// Instagram / Graph API
		"instagram_graph_base_url": "instagram.graph_base_url",
		"instagram_api_version":    "instagram.api_version",
		"instagram_timeout":        "instagram.timeout",

		// Sync pipeline
		"sync_history_days":        "sync.history_days",
		"sync_recent_videos":       "sync.recent_videos",
		"sync_recent_media":        "sync.recent_media",
		"sync_comments_per_item":   "sync.comments_per_item",
		"sync_token_expiry_margin": "sync.token_expiry_margin",
		"sync_scheduler_enabled":   "sync.scheduler_enabled",
		"sync_scheduler_interval":  "sync.scheduler_interval",
		"sync_item_concurrency":    "sync.item_concurrency",

		// Insights trigger
		"insights_enabled": "insights.enabled",
		"insights_url":     "insights.url",
		"ai_service_url":   "insights.url", // legacy alias from the edge functions
		"insights_timeout": "insights.timeout",

		// Security
		"cors_origins":      "security.cors_origins",
		"rate_limit_reqs":   "security.rate_limit_reqs",
		"rate_limit_window": "security.rate_limit_window",

		// Logging
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",

		// API pagination
		"api_default_page_size": "api.default_page_size",
		"api_max_page_size":     "api.max_page_size",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	// Unknown env vars are dropped rather than guessed into config paths.
	return ""
}
