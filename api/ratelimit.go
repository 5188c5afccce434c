package api

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tooldesk/tooldesk/backend/errs"
	"golang.org/x/time/rate"
)

// ipRateLimiter hands out one token bucket per client address. Buckets idle
// for longer than limiterIdleTTL are dropped on the next sweep.
type ipRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	limit     rate.Limit
	burst     int
	interval  time.Duration
	lastSweep time.Time
	responder Responder
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const limiterIdleTTL = 10 * time.Minute

func newIPRateLimiter(perMinute int) *ipRateLimiter {
	limit := rate.Inf
	burst := 0
	var interval time.Duration
	if perMinute > 0 {
		interval = time.Minute / time.Duration(perMinute)
		limit = rate.Every(interval)
		burst = perMinute
	}
	return &ipRateLimiter{
		limiters:  make(map[string]*limiterEntry),
		limit:     limit,
		burst:     burst,
		interval:  interval,
		lastSweep: time.Now(),
		responder: NewResponder(log.With().Str("handlerName", "rateLimiter").Logger()),
	}
}

func (l *ipRateLimiter) get(ip string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > limiterIdleTTL {
		for key, entry := range l.limiters {
			if now.Sub(entry.lastSeen) > limiterIdleTTL {
				delete(l.limiters, key)
			}
		}
		l.lastSweep = now
	}

	entry, ok := l.limiters[ip]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

func (l *ipRateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.limit == rate.Inf {
			next.ServeHTTP(w, r)
			return
		}

		ip := ctxGetClientIP(r.Context())
		if ip == "" {
			ip = remoteHost(r.RemoteAddr)
		}

		if !l.get(ip, time.Now()).Allow() {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(l.interval.Seconds()))))
			l.responder.WriteError(w, errs.NewRateLimitError(l.interval))
			return
		}
		next.ServeHTTP(w, r)
	})
}
