// Social Media Analytics Manager - Creator Analytics Sync Service
// Copyright 2026 Shreyash Singh (ShreyashSingh857)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000

package sync

import "time"

// Stage identifies one phase of a sync run.
type Stage string

// Pipeline stages. Not every platform runs every stage: Instagram has no
// daily metrics source and no comment listing.
const (
	StageProfile      Stage = "profile"
	StageDailyMetrics Stage = "daily_metrics"
	StageContent      Stage = "content"
	StageComments     Stage = "comments"
)

// StageStatus is the outcome of one stage.
type StageStatus string

// Stage outcomes. A skipped or failed stage leaves previously synced data
// intact; the next run fills the gap.
const (
	StageCompleted StageStatus = "completed"
	StageSkipped   StageStatus = "skipped" // stage did not run (upstream flaky)
	StageFailed    StageStatus = "failed"  // stage ran, some or all rows were lost
)

// Outcome is the overall result of a run.
type Outcome string

// Run outcomes.
const (
	OutcomeCompleted Outcome = "completed" // every stage completed
	OutcomePartial   Outcome = "partial"   // at least one stage skipped or failed
	OutcomeFailed    Outcome = "failed"    // fatal error, run aborted
)

// StageResult records one stage's outcome.
type StageResult struct {
	Stage  Stage       `json:"stage"`
	Status StageStatus `json:"status"`
	Reason string      `json:"reason,omitempty"` // set when skipped or failed
	Items  int         `json:"items"`            // rows written by this stage
	Failed int         `json:"failed,omitempty"` // items lost to per-item failures
}

// RunResult summarizes one sync run for the API response and logs.
type RunResult struct {
	AccountID   string        `json:"account_id"`
	Platform    string        `json:"platform"`
	Channel     string        `json:"channel,omitempty"` // account display name
	Outcome     Outcome       `json:"outcome"`
	Stages      []StageResult `json:"stages"`
	TokenSource string        `json:"token_source"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration_ms"`

	SnapshotsWritten     int `json:"snapshots_written"`
	DailyMetricsUpserted int `json:"daily_metrics_upserted"`
	ContentItemsSynced   int `json:"content_items_synced"`
	CommentsUpserted     int `json:"comments_upserted"`
}

// addStage appends a stage result and keeps the aggregate outcome in step.
func (r *RunResult) addStage(s StageResult) {
	r.Stages = append(r.Stages, s)
	if s.Status != StageCompleted {
		r.Outcome = OutcomePartial
	}
}

// stageCompleted reports whether the named stage completed in this run.
func stageCompleted(r *RunResult, stage Stage) bool {
	for _, s := range r.Stages {
		if s.Stage == stage {
			return s.Status == StageCompleted
		}
	}
	return false
}
