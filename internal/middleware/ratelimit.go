// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/carterperez-dev/templates/resource-directory/internal/core"
	"github.com/carterperez-dev/templates/resource-directory/internal/entitlement"
)

// Limiter counts requests in redis and switches to an in-process token bucket
// per key while redis is unreachable. One Limiter is shared by every rate
// limit middleware of the process.
type Limiter struct {
	redis *redis_rate.Limiter
	local *localLimiter
}

func NewLimiter(rdb *redis.Client) *Limiter {
	return &Limiter{
		redis: redis_rate.NewLimiter(rdb),
		local: newLocalLimiter(),
	}
}

func (l *Limiter) Allow(
	ctx context.Context,
	key string,
	limit redis_rate.Limit,
) *redis_rate.Result {
	res, err := l.redis.Allow(ctx, key, limit)
	if err == nil {
		return res
	}

	slog.Warn("rate limiter falling back to local buckets",
		"error", err,
		"key", key,
	)
	return l.local.allow(key, limit, time.Now())
}

type RateLimitConfig struct {
	Limit   redis_rate.Limit
	KeyFunc func(*http.Request) string
	// Skip exempts a request from this limit entirely.
	Skip func(*http.Request) bool
}

func RateLimit(l *Limiter, cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = KeyByIP
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Skip != nil && cfg.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			if enforce(w, r, l, cfg.KeyFunc(r), cfg.Limit) {
				next.ServeHTTP(w, r)
			}
		})
	}
}

type PlanLimit struct {
	RequestsPerMinute int
	BurstSize         int
}

var DefaultPlanLimits = map[entitlement.Plan]PlanLimit{
	entitlement.PlanBasic:      {RequestsPerMinute: 60, BurstSize: 10},
	entitlement.PlanPro:        {RequestsPerMinute: 300, BurstSize: 50},
	entitlement.PlanBusiness:   {RequestsPerMinute: 1200, BurstSize: 200},
	entitlement.PlanEnterprise: {RequestsPerMinute: 6000, BurstSize: 1000},
}

// PlanRateLimit limits authenticated callers by the plan carried in their
// token. Unknown plans get the basic allowance.
func PlanRateLimit(
	l *Limiter,
	limits map[entitlement.Plan]PlanLimit,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			plan := entitlement.ViewerPlan(GetUserPlan(r.Context()))

			pl, ok := limits[plan]
			if !ok {
				pl = limits[entitlement.PlanBasic]
			}

			w.Header().Set("X-RateLimit-Plan", plan.String())

			limit := PerMinute(pl.RequestsPerMinute, pl.BurstSize)
			if enforce(w, r, l, KeyByUser(r)+":plan", limit) {
				next.ServeHTTP(w, r)
			}
		})
	}
}

// enforce counts one request against key and reports whether it may proceed.
// A rejected request has already been answered with 429.
func enforce(
	w http.ResponseWriter,
	r *http.Request,
	l *Limiter,
	key string,
	limit redis_rate.Limit,
) bool {
	res := l.Allow(r.Context(), key, limit)
	setRateLimitHeaders(w, res, limit)

	if res.Allowed > 0 {
		return true
	}

	retryAfter := max(int(res.RetryAfter.Seconds()), 1)
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	core.JSONError(w, core.RateLimitedError(retryAfter))
	return false
}

func KeyByIP(r *http.Request) string {
	return "ratelimit:ip:" + clientIP(r)
}

// clientIP prefers the last X-Forwarded-For hop, which is the one appended
// by our own proxy.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		return strings.TrimSpace(hops[len(hops)-1])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func KeyByUser(r *http.Request) string {
	if userID := GetUserID(r.Context()); userID != "" {
		return "ratelimit:user:" + userID
	}
	return KeyByIP(r)
}

// KeyByUserAndEndpoint buckets a user's requests per method and route, so
// every palette session, review view and review shares one bucket per action.
func KeyByUserAndEndpoint(r *http.Request) string {
	return KeyByUser(r) + ":" + r.Method + ":" + routeShape(r.URL.Path)
}

// routeShape replaces session ids (uuids) and review ids (integers) with
// {id}.
func routeShape(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range segments {
		if isIDSegment(seg) {
			segments[i] = "{id}"
		}
	}
	return "/" + strings.Join(segments, "/")
}

func isIDSegment(seg string) bool {
	if _, err := strconv.ParseInt(seg, 10, 64); err == nil {
		return true
	}
	if len(seg) != 36 {
		return false
	}
	_, err := uuid.Parse(seg)
	return err == nil
}

func setRateLimitHeaders(
	w http.ResponseWriter,
	res *redis_rate.Result,
	limit redis_rate.Limit,
) {
	h := w.Header()

	h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(
		time.Now().Add(res.ResetAfter).Unix(), 10))
	h.Set("RateLimit-Policy",
		fmt.Sprintf("%d;w=%d", limit.Rate, int(limit.Period.Seconds())))
}

const (
	localSweepInterval = 5 * time.Minute
	localBucketTTL     = 10 * time.Minute
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// localLimiter keeps one token bucket per key. Idle buckets are swept on the
// first call after localSweepInterval.
type localLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

func newLocalLimiter() *localLimiter {
	return &localLimiter{buckets: make(map[string]*bucket)}
}

func (l *localLimiter) allow(
	key string,
	limit redis_rate.Limit,
	now time.Time,
) *redis_rate.Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= localSweepInterval {
		l.sweep(now)
	}

	interval := limit.Period / time.Duration(max(limit.Rate, 1))

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Every(interval), limit.Burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	res := &redis_rate.Result{
		Limit:      limit,
		RetryAfter: -1,
		ResetAfter: interval,
	}
	if b.limiter.AllowN(now, 1) {
		res.Allowed = 1
	} else {
		res.RetryAfter = interval
	}
	res.Remaining = max(int(b.limiter.TokensAt(now)), 0)

	return res
}

func (l *localLimiter) sweep(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > localBucketTTL {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}

func PerMinute(rate, burst int) redis_rate.Limit {
	return redis_rate.Limit{
		Rate:   rate,
		Burst:  burst,
		Period: time.Minute,
	}
}

func PerHour(rate, burst int) redis_rate.Limit {
	return redis_rate.Limit{
		Rate:   rate,
		Burst:  burst,
		Period: time.Hour,
	}
}
