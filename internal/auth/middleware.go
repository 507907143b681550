package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/evcraddock/realty-crm/internal/clock"
)

type contextKey int

const userKey contextKey = iota

// WithUser returns a copy of ctx carrying the authenticated user.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext returns the authenticated user set by RequireBearer.
func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(userKey).(*User)
	return u, ok && u != nil
}

// RequireBearer is middleware that authenticates every non-public request with a
// JWT bearer token and stores the active user in the request context.
// Returns 401 for missing, invalid or expired tokens and unknown or inactive users.
func RequireBearer(tokens *TokenIssuer, users *UserStore, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			unauthorized(w, "Not authenticated")
			return
		}

		subject, err := tokens.Verify(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			msg := "Could not validate credentials"
			if errors.Is(err, ErrExpired) {
				msg = "Token expired"
			}
			slog.Debug("bearer rejected", "path", r.URL.Path, "error", err)
			unauthorized(w, msg)
			return
		}

		u, err := users.GetByUsername(subject)
		if err != nil {
			unauthorized(w, "Could not validate credentials")
			return
		}
		if !u.IsActive {
			unauthorized(w, "Inactive user")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
	})
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": msg}); err != nil {
		slog.Error("encoding 401 body", "error", err)
	}
}

func isPublicPath(path string) bool {
	switch path {
	case "/ping", "/users/register", "/users/login":
		return true
	}
	return false
}

// LoginLimiter tracks failed login attempts per client IP.
type LoginLimiter struct {
	mu       sync.Mutex
	attempts  map[string][]time.Time
	window    time.Duration
	maxFail   int
	clock     clock.Clock
	lastSweep time.Time
}

const (
	defaultLimitWindow  = 1 * time.Minute
	defaultLimitMaxFail = 10
)

// NewLoginLimiter creates a limiter that blocks an IP after maxFail failures
// within window. Zero values select 10 failures per minute.
func NewLoginLimiter(window time.Duration, maxFail int, clk clock.Clock) *LoginLimiter {
	if window <= 0 {
		window = defaultLimitWindow
	}
	if maxFail <= 0 {
		maxFail = defaultLimitMaxFail
	}
	if clk == nil {
		clk = clock.System{}
	}
	return &LoginLimiter{
		attempts: make(map[string][]time.Time),
		window:   window,
		maxFail:  maxFail,
		clock:    clk,
	}
}

// Blocked reports whether ip has reached the failure limit.
func (l *LoginLimiter) Blocked(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.prune(ip)) >= l.maxFail
}

// RecordFailure records a failed attempt from ip. At most once per window it
// also drops IPs whose failures have all expired.
func (l *LoginLimiter) RecordFailure(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if now.Sub(l.lastSweep) >= l.window {
		for other := range l.attempts {
			l.prune(other)
		}
		l.lastSweep = now
	}
	l.attempts[ip] = append(l.prune(ip), now)
}

// Reset forgets failures from ip after a successful login.
func (l *LoginLimiter) Reset(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, ip)
}

// prune drops entries older than the window. Caller holds mu.
func (l *LoginLimiter) prune(ip string) []time.Time {
	cutoff := l.clock.Now().Add(-l.window)
	valid := l.attempts[ip][:0]
	for _, t := range l.attempts[ip] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	if len(valid) == 0 {
		delete(l.attempts, ip)
		return nil
	}
	l.attempts[ip] = valid
	return valid
}

// ClientIP returns the request's remote IP without the port.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
