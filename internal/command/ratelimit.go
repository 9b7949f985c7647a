// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package command

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Default rate limiting values.
const (
	// DefaultBurstCapacity is the number of commands a user can send in a
	// burst before rate limiting kicks in.
	DefaultBurstCapacity = 10

	// DefaultSustainedRate is the number of commands per second allowed as
	// sustained rate (token refill rate).
	DefaultSustainedRate = 2.0

	// MinSustainedRate ensures sustained rate is at least 0.1 tokens/second.
	MinSustainedRate = 0.1

	// DefaultCleanupInterval is how often idle users are forgotten.
	DefaultCleanupInterval = 5 * time.Minute

	// DefaultIdleAge is how long a user must be silent to be forgotten.
	DefaultIdleAge = time.Hour
)

// RateLimiterConfig configures the rate limiter.
type RateLimiterConfig struct {
	// BurstCapacity defaults to DefaultBurstCapacity if zero or negative.
	BurstCapacity int

	// SustainedRate defaults to DefaultSustainedRate if zero or negative.
	SustainedRate float64

	// CleanupInterval defaults to DefaultCleanupInterval if zero.
	CleanupInterval time.Duration

	// IdleAge defaults to DefaultIdleAge if zero.
	IdleAge time.Duration
}

type bucket struct {
	tokens    float64
	lastCheck time.Time
}

// RateLimiter implements per-user rate limiting with a token bucket.
// It is safe for concurrent use.
//
// A background goroutine forgets idle users. Call Close to stop it.
type RateLimiter struct {
	mu            sync.Mutex
	users         map[string]*bucket
	burstCapacity int
	sustainedRate float64
	idleAge       time.Duration
	now           func() time.Time

	stopChan chan struct{}
	wg       sync.WaitGroup

	userGauge prometheus.Gauge
}

// NewRateLimiter creates a rate limiter. reg may be nil; otherwise a gauge
// of tracked users is registered with it.
func NewRateLimiter(cfg RateLimiterConfig, reg prometheus.Registerer) *RateLimiter {
	burstCapacity := cfg.BurstCapacity
	if burstCapacity <= 0 {
		burstCapacity = DefaultBurstCapacity
	}

	sustainedRate := cfg.SustainedRate
	if sustainedRate <= 0 {
		sustainedRate = DefaultSustainedRate
	}
	if sustainedRate < MinSustainedRate {
		sustainedRate = MinSustainedRate
	}

	cleanupInterval := cfg.CleanupInterval
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}

	idleAge := cfg.IdleAge
	if idleAge <= 0 {
		idleAge = DefaultIdleAge
	}

	rl := &RateLimiter{
		users:         make(map[string]*bucket),
		burstCapacity: burstCapacity,
		sustainedRate: sustainedRate,
		idleAge:       idleAge,
		now:           time.Now,
		stopChan:      make(chan struct{}),
	}

	if reg != nil {
		rl.userGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "yuzudice_ratelimiter_users",
			Help: "Current number of users tracked by the rate limiter",
		})
		reg.MustRegister(rl.userGauge)
	}

	rl.wg.Add(1)
	go rl.cleanupLoop(cleanupInterval)

	return rl
}

// Allow consumes a token for userID. When none is left it reports false
// and the milliseconds until the next token.
func (rl *RateLimiter) Allow(userID string) (allowed bool, cooldownMs int64) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()

	b, exists := rl.users[userID]
	if !exists {
		b = &bucket{tokens: float64(rl.burstCapacity), lastCheck: now}
		rl.users[userID] = b
	}

	elapsed := now.Sub(b.lastCheck).Seconds()
	b.tokens += elapsed * rl.sustainedRate
	if b.tokens > float64(rl.burstCapacity) {
		b.tokens = float64(rl.burstCapacity)
	}
	b.lastCheck = now

	if b.tokens >= 1.0 {
		b.tokens -= 1.0
		return true, 0
	}

	deficit := 1.0 - b.tokens
	return false, int64(deficit / rl.sustainedRate * 1000)
}

// UserCount returns the number of tracked users.
func (rl *RateLimiter) UserCount() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.users)
}

// Cleanup forgets users not seen within maxAge.
func (rl *RateLimiter) Cleanup(maxAge time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	threshold := rl.now().Add(-maxAge)
	for id, b := range rl.users {
		if b.lastCheck.Before(threshold) {
			delete(rl.users, id)
		}
	}

	if rl.userGauge != nil {
		rl.userGauge.Set(float64(len(rl.users)))
	}
}

func (rl *RateLimiter) cleanupLoop(interval time.Duration) {
	defer rl.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopChan:
			return
		case <-ticker.C:
			rl.Cleanup(rl.idleAge)
		}
	}
}

// Close stops the background cleanup goroutine and waits for it to exit.
func (rl *RateLimiter) Close() {
	close(rl.stopChan)
	rl.wg.Wait()
}
