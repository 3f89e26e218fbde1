package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/server/handlers"
)

// Limit allows Requests per Window for each client IP on paths starting
// with Prefix. An empty Prefix matches every path.
type Limit struct {
	Prefix   string
	Requests int
	Window   time.Duration
}

// Limiter counts requests per key in fixed windows
type Limiter struct {
	windows   map[string]*window
	now       func() time.Time
	lastSweep time.Time
	limit     Limit
	mu        sync.Mutex
}

type window struct {
	start time.Time
	count int
}

// NewLimiter creates a limiter for l
func NewLimiter(l Limit) *Limiter {
	return &Limiter{
		windows: make(map[string]*window),
		now:     time.Now,
		limit:   l,
	}
}

// Allow records a request for key. When the limit is exhausted it returns
// false and the time left until the window resets.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.limit.Window {
		w = &window{start: now}
		l.windows[key] = w
	}
	if w.count >= l.limit.Requests {
		return false, w.start.Add(l.limit.Window).Sub(now)
	}
	w.count++
	return true, 0
}

// sweep drops expired windows at most once per window length
func (l *Limiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.limit.Window {
		return
	}
	l.lastSweep = now
	for key, w := range l.windows {
		if now.Sub(w.start) >= l.limit.Window {
			delete(l.windows, key)
		}
	}
}

// RateLimit rejects clients over their limit with 429 and Retry-After.
// The override with the longest matching prefix wins; other paths use
// fallback. Limits with no requests are not enforced.
func RateLimit(logger *slog.Logger, fallback Limit, overrides ...Limit) func(http.Handler) http.Handler {
	type rule struct {
		prefix  string
		limiter *Limiter
	}
	var rules []rule
	for _, o := range overrides {
		if o.Requests > 0 {
			rules = append(rules, rule{prefix: o.Prefix, limiter: NewLimiter(o)})
		}
	}
	var def *Limiter
	if fallback.Requests > 0 {
		def = NewLimiter(fallback)
	}

	pick := func(path string) *Limiter {
		best, bestLen := def, -1
		for _, r := range rules {
			if strings.HasPrefix(path, r.prefix) && len(r.prefix) > bestLen {
				best, bestLen = r.limiter, len(r.prefix)
			}
		}
		return best
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiter := pick(r.URL.Path)
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			ip := clientIP(r)
			if ok, wait := limiter.Allow(ip); !ok {
				logger.WarnContext(r.Context(), "Rate limit exceeded",
					"ip", ip,
					"route", routeTemplate(r),
					"request_id", RequestID(r.Context()),
				)
				w.Header().Set("Retry-After", retryAfter(wait))
				handlers.SendError(w, "rate limit exceeded, please try again later", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// retryAfter rounds wait up to whole seconds, at least one
func retryAfter(wait time.Duration) string {
	secs := int64(math.Ceil(wait.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10)
}
