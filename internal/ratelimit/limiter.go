// Package ratelimit throttles payment submissions per user and per client IP.
package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Clock interface for testing time-dependent behavior.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Config holds rate limit configuration.
type Config struct {
	// Minimum time between two submissions from the same user. Catches
	// double-clicked submit buttons.
	Cooldown time.Duration
	// Max submissions per user per hour
	MaxPerHour int
	// Max submissions per client IP per hour
	MaxIPPerHour int
	// Read the client IP from X-Forwarded-For / X-Real-IP
	TrustProxy bool

	// Clock for testing (nil uses real time)
	Clock Clock
}

// DefaultConfig returns production-ready defaults.
func DefaultConfig() *Config {
	return &Config{
		Cooldown:     2 * time.Second,
		MaxPerHour:   60,
		MaxIPPerHour: 300,
	}
}

// LimitResult contains the result of a rate limit check.
type LimitResult struct {
	Allowed    bool
	RetryAfter time.Duration
	Reason     string // For logging
}

// userKey scopes per-user budgets to one endpoint, so booking a court and
// then paying for it are not throttled against each other.
type userKey struct {
	userID int64
	scope  string
}

type entry struct {
	count   int
	firstAt time.Time // First request in window
	lastAt  time.Time // Most recent request (for cooldown)
}

// Limiter tracks submissions in fixed one-hour windows.
type Limiter struct {
	config *Config
	clock  Clock
	mu     sync.Mutex
	byUser map[userKey]*entry
	byIP   map[string]*entry

	cleanupCtx    context.Context
	cleanupCancel context.CancelFunc
	cleanupOnce   sync.Once
	cleanupWg     sync.WaitGroup
}

// New creates a new rate limiter with the given config. Zero limits fall
// back to DefaultConfig values.
func New(cfg *Config) *Limiter {
	defaults := DefaultConfig()
	if cfg == nil {
		cfg = defaults
	}
	if cfg.MaxPerHour <= 0 {
		cfg.MaxPerHour = defaults.MaxPerHour
	}
	if cfg.MaxIPPerHour <= 0 {
		cfg.MaxIPPerHour = defaults.MaxIPPerHour
	}
	clock := cfg.Clock
	if clock == nil {
		clock = realClock{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Limiter{
		config:        cfg,
		clock:         clock,
		byUser:        make(map[userKey]*entry),
		byIP:          make(map[string]*entry),
		cleanupCtx:    ctx,
		cleanupCancel: cancel,
	}
}

// Close stops the cleanup goroutine.
func (l *Limiter) Close() error {
	l.cleanupCancel()
	l.cleanupWg.Wait()
	return nil
}

// Allow checks the user and IP budgets and, when both allow it, records the
// submission. A rejected submission is not counted.
func (l *Limiter) Allow(userID int64, scope, ip string) LimitResult {
	l.startCleanup()
	now := l.clock.Now()
	key := userKey{userID: userID, scope: scope}

	l.mu.Lock()
	defer l.mu.Unlock()

	if e := l.byUser[key]; e != nil {
		if elapsed := now.Sub(e.lastAt); elapsed < l.config.Cooldown {
			return LimitResult{RetryAfter: l.config.Cooldown - elapsed, Reason: "cooldown"}
		}
		if now.Sub(e.firstAt) < time.Hour && e.count >= l.config.MaxPerHour {
			return LimitResult{RetryAfter: time.Hour - now.Sub(e.firstAt), Reason: "hourly_limit"}
		}
	}
	if e := l.byIP[ip]; e != nil {
		if now.Sub(e.firstAt) < time.Hour && e.count >= l.config.MaxIPPerHour {
			return LimitResult{RetryAfter: time.Hour - now.Sub(e.firstAt), Reason: "ip_hourly_limit"}
		}
	}

	l.byUser[key] = bump(l.byUser[key], now)
	l.byIP[ip] = bump(l.byIP[ip], now)
	return LimitResult{Allowed: true}
}

func bump(e *entry, now time.Time) *entry {
	if e == nil || now.Sub(e.firstAt) >= time.Hour {
		return &entry{count: 1, firstAt: now, lastAt: now}
	}
	e.count++
	e.lastAt = now
	return e
}

func (l *Limiter) startCleanup() {
	l.cleanupOnce.Do(func() {
		l.cleanupWg.Add(1)
		go func() {
			defer l.cleanupWg.Done()
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-l.cleanupCtx.Done():
					return
				case <-ticker.C:
					l.cleanup()
				}
			}
		}()
	})
}

func (l *Limiter) cleanup() {
	now := l.clock.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	for k, e := range l.byUser {
		if now.Sub(e.lastAt) > time.Hour {
			delete(l.byUser, k)
		}
	}
	for k, e := range l.byIP {
		if now.Sub(e.lastAt) > time.Hour {
			delete(l.byIP, k)
		}
	}
}

// RetryAfterHeader formats a wait as whole seconds, rounded up.
func RetryAfterHeader(d time.Duration) string {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// GetClientIP extracts the client IP from a request.
// When trustProxy is true, uses the rightmost public IP from X-Forwarded-For.
// When trustProxy is false, ignores X-Forwarded-For entirely.
func GetClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			parts := strings.Split(xff, ",")
			for i := len(parts) - 1; i >= 0; i-- {
				ip := strings.TrimSpace(parts[i])
				if ip != "" && !isPrivateIP(ip) {
					return ip
				}
			}
			return strings.TrimSpace(parts[len(parts)-1])
		}

		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

var privateNetworks []*net.IPNet

func init() {
	for _, cidr := range []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"127.0.0.0/8",
		"::1/128",
		"fc00::/7",
		"fe80::/10",
	} {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic("invalid private CIDR: " + cidr)
		}
		privateNetworks = append(privateNetworks, network)
	}
}

// isPrivateIP handles IPv4-mapped IPv6 addresses (::ffff:192.168.1.1).
func isPrivateIP(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}
	if ipv4 := ip.To4(); ipv4 != nil {
		ip = ipv4
	}
	for _, network := range privateNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
