package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jonny/stayhub/pkg/apierror"
)

const (
	maxVisitors   = 10000
	visitorMaxAge = 10 * time.Minute
	sweepInterval = 5 * time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter keeps one token bucket per remote IP. Stale buckets are
// dropped lazily while serving requests.
type rateLimiter struct {
	mu         sync.Mutex
	visitors   map[string]*visitor
	limit      rate.Limit
	burst      int
	trustProxy bool
	lastSweep  time.Time
}

func newRateLimiter(requestsPerMinute int, trustProxy bool) *rateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	return &rateLimiter{
		visitors:   make(map[string]*visitor),
		limit:      rate.Every(time.Minute / time.Duration(requestsPerMinute)),
		burst:      requestsPerMinute,
		trustProxy: trustProxy,
		lastSweep:  time.Now(),
	}
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	now := time.Now()
	if now.Sub(rl.lastSweep) > sweepInterval {
		rl.evictStale(now.Add(-visitorMaxAge))
		rl.lastSweep = now
	}
	v, ok := rl.visitors[ip]
	if !ok {
		// New IPs are refused once the table is full.
		if len(rl.visitors) >= maxVisitors {
			rl.mu.Unlock()
			return false
		}
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	rl.mu.Unlock()
	return v.limiter.Allow()
}

// evictStale must be called with rl.mu held.
func (rl *rateLimiter) evictStale(cutoff time.Time) {
	for ip, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, ip)
		}
	}
}

// RateLimit returns middleware limiting each remote IP to requestsPerMinute
// with bursts of the same size.
func RateLimit(requestsPerMinute int, trustProxy bool) func(http.Handler) http.Handler {
	rl := newRateLimiter(requestsPerMinute, trustProxy)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.allow(remoteIP(r, rl.trustProxy)) {
				apierror.Write(w, apierror.TooManyRequests("rate limit exceeded"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// remoteIP extracts the client IP. X-Forwarded-For is only trusted behind a
// known reverse proxy.
func remoteIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			return strings.TrimSpace(first)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
