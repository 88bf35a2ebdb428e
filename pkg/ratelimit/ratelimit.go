// Package ratelimit provides per-key request limiters: a Redis-backed fixed
// window with an optional block period, and an in-memory token bucket used
// when Redis is not configured.
package ratelimit

import (
	"context"
	"time"
)

// Policy describes how many requests a key may make per window, and how
// long the key stays blocked once it exceeds that budget.
type Policy struct {
	Name   string
	Points int
	Window time.Duration
	Block  time.Duration
}

// Result is the outcome of a single Allow call.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAfter time.Duration
	// RetryAfter is set when Allowed is false.
	RetryAfter time.Duration
}

// Limiter decides whether the request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
	Policy() Policy
}
