// Social Media Analytics Manager - Creator Analytics Sync Service
// Copyright 2026 Shreyash Singh (ShreyashSingh857)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000

package sync

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestParseCount(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"12345", 12345},
		{"0", 0},
		{"", 0},
		{"not-a-number", 0},
		{"-5", -5},
	}
	for _, tc := range cases {
		if got := parseCount(tc.in); got != tc.want {
			t.Errorf("parseCount(%q): expected %d, got %d", tc.in, tc.want, got)
		}
	}
}

func TestEngagementRate(t *testing.T) {
	cases := []struct {
		name                   string
		likes, comments, views int64
		want                   float64
	}{
		{"normal", 40, 10, 1000, 5.0},
		{"zero views", 40, 10, 0, 0},
		{"rounding", 1, 0, 3000, 0}, // 0.033% rounds to 0.0
		{"rounds to one decimal", 123, 0, 10000, 1.2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := engagementRate(tc.likes, tc.comments, tc.views); got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestAnalyticsRowsToDailies(t *testing.T) {
	rows := [][]interface{}{
		{"2026-08-01", float64(100), float64(120), float64(2)},
		{"2026-08-02", float64(50), float64(45), float64(0)},
		{nil, float64(1), float64(1), float64(1)},     // malformed day dropped
		{"2026-08-03", "bad", float64(30), float64(1)}, // malformed number -> 0
		{"2026-08-04"}, // short row dropped
	}

	dailies := analyticsRowsToDailies("acct-1", rows)
	checkIntEqual(t, "rows kept", len(dailies), 3)

	checkStringEqual(t, "first date", dailies[0].Date, "2026-08-01")
	checkFloatEqual(t, "watch hours", dailies[0].WatchTimeHours, 2.0)
	checkFloatEqual(t, "second watch hours", dailies[1].WatchTimeHours, 0.8) // 45/60 rounded
	if dailies[2].Views != 0 {
		t.Errorf("malformed view count should degrade to 0, got %d", dailies[2].Views)
	}
}

func TestMediaTitle(t *testing.T) {
	long := ""
	for i := 0; i < 20; i++ {
		long += "abcdefghij"
	}

	cases := []struct {
		in, want string
	}{
		{"Short caption", "Short caption"},
		{"First line\nsecond line", "First line"},
		{"", ""},
		{long, long[:80]},
	}
	for _, tc := range cases {
		if got := mediaTitle(tc.in); got != tc.want {
			t.Errorf("mediaTitle(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}

	// Emoji captions must truncate between runes, never inside one.
	got := mediaTitle(strings.Repeat("\U0001F525", 100))
	if !utf8.ValidString(got) {
		t.Errorf("truncated caption is not valid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 80 {
		t.Errorf("expected 80 runes after truncation, got %d", n)
	}
}

func TestMediaContentType(t *testing.T) {
	checkStringEqual(t, "video", mediaContentType("VIDEO"), "reel")
	checkStringEqual(t, "image", mediaContentType("IMAGE"), "post")
	checkStringEqual(t, "carousel", mediaContentType("CAROUSEL_ALBUM"), "post")
}
