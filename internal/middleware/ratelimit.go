// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter decides whether the client identified by key may make another
// request. When it may not, retryAfter is how long until it may.
type Limiter interface {
	Allow(ctx context.Context, key string) (ok bool, retryAfter time.Duration)
}

// RateLimit rejects requests over l's budget with 429. Clients are keyed by
// scope and IP, so separate scopes sharing one Limiter keep separate budgets.
func RateLimit(l Limiter, scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, retry := l.Allow(r.Context(), scope+":"+clientIP(r))
			if !ok {
				secs := int(math.Ceil(retry.Seconds()))
				if secs < 1 {
					secs = 1
				}
				slog.Warn("rate limited", "scope", scope, "ip", clientIP(r), "retry_after", secs)
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				if isAPIRequest(r) {
					apiError(w, http.StatusTooManyRequests, "Too many requests, please try again shortly")
					return
				}
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// MemoryLimiter is a per-process sliding window limiter.
type MemoryLimiter struct {
	mu      sync.Mutex
	clients map[string][]time.Time
	limit   int
	window  time.Duration
	now     func() time.Time
	stopCh  chan struct{}
	stop    sync.Once
}

// NewMemoryLimiter allows limit requests per window per key. A background
// goroutine drops idle keys until Stop is called.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	l := &MemoryLimiter{
		clients: make(map[string][]time.Time),
		limit:   limit,
		window:  window,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.sweep()
			case <-l.stopCh:
				return
			}
		}
	}()

	return l
}

// Stop terminates the background sweep. Safe to call more than once.
func (l *MemoryLimiter) Stop() {
	l.stop.Do(func() { close(l.stopCh) })
}

// Allow records a request for key if it fits in the window.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, time.Duration) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	recent := prune(l.clients[key], now.Add(-l.window))
	if len(recent) >= l.limit {
		l.clients[key] = recent
		return false, recent[0].Add(l.window).Sub(now)
	}
	l.clients[key] = append(recent, now)
	return true, 0
}

// sweep removes keys with no request inside the window.
func (l *MemoryLimiter) sweep() {
	cutoff := l.now().Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, ts := range l.clients {
		if recent := prune(ts, cutoff); len(recent) == 0 {
			delete(l.clients, key)
		} else {
			l.clients[key] = recent
		}
	}
}

// prune drops timestamps at or before cutoff. ts is sorted.
func prune(ts []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(ts) && !ts[i].After(cutoff) {
		i++
	}
	return ts[i:]
}

// ValkeyLimiter is a fixed window limiter shared by every instance that uses
// the same Valkey. When Valkey errors, the fallback decides, or the request
// goes through if none is set.
type ValkeyLimiter struct {
	client   *redis.Client
	prefix   string
	limit    int
	window   time.Duration
	fallback Limiter
}

// NewValkeyLimiter allows limit requests per window per key.
func NewValkeyLimiter(client *redis.Client, limit int, window time.Duration) *ValkeyLimiter {
	return &ValkeyLimiter{client: client, prefix: "ratelimit:", limit: limit, window: window}
}

// WithFallback sets the limiter consulted while Valkey is unreachable.
func (l *ValkeyLimiter) WithFallback(f Limiter) *ValkeyLimiter {
	l.fallback = f
	return l
}

// Allow increments key's counter for the current window.
func (l *ValkeyLimiter) Allow(ctx context.Context, key string) (bool, time.Duration) {
	k := l.prefix + key

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := l.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, k)
		p.ExpireNX(ctx, k, l.window)
		ttl = p.PTTL(ctx, k)
		return nil
	})
	if err != nil {
		slog.Warn("rate limiter unavailable", "key", k, "error", err)
		if l.fallback != nil {
			return l.fallback.Allow(ctx, key)
		}
		return true, 0
	}

	if incr.Val() > int64(l.limit) {
		retry := ttl.Val()
		if retry <= 0 {
			retry = l.window
		}
		return false, retry
	}
	return true, 0
}

// clientIP extracts the client's IP address, checking X-Forwarded-For
// and X-Real-IP headers for proxied requests.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// The leftmost entry is the original client.
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// RemoteAddr without the port.
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
