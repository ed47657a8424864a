// Social Media Analytics Manager - Creator Analytics Sync Service
// Copyright 2026 Shreyash Singh (ShreyashSingh857)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000

// Package upstream implements rate-limited, circuit-broken HTTP clients for
// the YouTube Data/Analytics APIs and the Facebook Graph API.
//
// All failures surface as *Error with a Kind the sync pipeline dispatches
// on: Unauthorized aborts the run, RateLimited and Unavailable skip the
// current stage, NotFound means the resource genuinely does not exist.
package upstream

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an upstream failure by how the caller should react.
type Kind string

// Failure kinds.
const (
	// KindUnauthorized: the access token was rejected (401/403).
	KindUnauthorized Kind = "unauthorized"
	// KindRateLimited: quota exhausted after retries (429).
	KindRateLimited Kind = "rate_limited"
	// KindNotFound: the requested resource does not exist (404).
	KindNotFound Kind = "not_found"
	// KindUnavailable: transport failure or 5xx after retries.
	KindUnavailable Kind = "unavailable"
)

// Error is a classified upstream failure.
type Error struct {
	Kind   Kind
	Status int    // HTTP status, 0 for transport failures
	Op     string // e.g. "youtube.channels.list"
	Body   string // truncated upstream error body
	Err    error  // wrapped transport error, if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("%s: %s (status %d): %s", e.Op, e.Kind, e.Status, e.Body)
	}
	return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Kind, e.Status)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// classifyStatus maps an HTTP status code to a failure kind.
func classifyStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindUnauthorized
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status == http.StatusNotFound:
		return KindNotFound
	default:
		return KindUnavailable
	}
}

// IsKind reports whether err is an upstream error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ue *Error
	return errors.As(err, &ue) && ue.Kind == kind
}

// IsUnauthorized reports whether err is a token rejection.
func IsUnauthorized(err error) bool { return IsKind(err, KindUnauthorized) }

// IsRateLimited reports whether err is a quota exhaustion.
func IsRateLimited(err error) bool { return IsKind(err, KindRateLimited) }

// IsNotFound reports whether err is a missing resource.
func IsNotFound(err error) bool { return IsKind(err, KindNotFound) }

// IsUnavailable reports whether err is a transient upstream outage.
func IsUnavailable(err error) bool { return IsKind(err, KindUnavailable) }
