// internal/app/system/timeouts/timeouts.go

// Package timeouts centralizes the timeout values used with
// context.WithTimeout around database operations in HTTP handlers.
//
//   - Ping: health checks
//   - Short: single-document reads and lookups
//   - Medium: list queries and simple writes
//   - Long: multi-collection writes (accept+reconcile, cascading deletes)
package timeouts

import (
	"context"
	"sync"
	"time"
)

const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
)

var (
	mu     sync.RWMutex
	ping   = DefaultPing
	short  = DefaultShort
	medium = DefaultMedium
	long   = DefaultLong
)

// Ping returns the timeout for connectivity checks.
func Ping() time.Duration { mu.RLock(); defer mu.RUnlock(); return ping }

// Short returns the timeout for single-document operations.
func Short() time.Duration { mu.RLock(); defer mu.RUnlock(); return short }

// Medium returns the timeout for list queries and simple writes.
func Medium() time.Duration { mu.RLock(); defer mu.RUnlock(); return medium }

// Long returns the timeout for operations touching multiple collections.
func Long() time.Duration { mu.RLock(); defer mu.RUnlock(); return long }

// WithShort derives a context with the Short timeout.
func WithShort(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, Short())
}

// WithMedium derives a context with the Medium timeout.
func WithMedium(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, Medium())
}

// WithLong derives a context with the Long timeout.
func WithLong(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, Long())
}

// Config holds timeout overrides; zero values keep the current setting.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

// Configure applies overrides at startup, before handlers are registered.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Short > 0 {
		short = cfg.Short
	}
	if cfg.Medium > 0 {
		medium = cfg.Medium
	}
	if cfg.Long > 0 {
		long = cfg.Long
	}
}

// Reset restores defaults. Useful for tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping, short, medium, long = DefaultPing, DefaultShort, DefaultMedium, DefaultLong
}
