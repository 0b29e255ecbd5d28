// AngelaMos | 2026
// ratelimit_test.go

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/resource-directory/internal/entitlement"
)

// unreachableLimiter forces every call onto the local buckets.
func unreachableLimiter(t *testing.T) *Limiter {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 50 * time.Millisecond,
	})
	t.Cleanup(func() { _ = client.Close() })

	return NewLimiter(client)
}

func withUser(r *http.Request, userID, plan string) *http.Request {
	return r.WithContext(WithClaims(r.Context(), &AccessTokenClaims{
		UserID: userID,
		Plan:   plan,
	}))
}

func TestKeyByIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.9:5123"
	assert.Equal(t, "ratelimit:ip:10.0.0.9", KeyByIP(req))

	req.Header.Set("X-Real-IP", "10.0.0.2")
	assert.Equal(t, "ratelimit:ip:10.0.0.2", KeyByIP(req))

	req.Header.Set("X-Forwarded-For", "1.1.1.1, 10.0.0.1")
	assert.Equal(t, "ratelimit:ip:10.0.0.1", KeyByIP(req))
}

func TestKeyByUserAndEndpoint(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		want   string
	}{
		{
			name:   "helpful vote",
			method: http.MethodPost,
			path:   "/v1/reviews/views/9b2c41e0-5d8f-4c1a-9f0e-3a7d2b6c8e11/reviews/42/helpful",
			want:   "ratelimit:user:u-1:POST:/v1/reviews/views/{id}/reviews/{id}/helpful",
		},
		{
			name:   "filter change",
			method: http.MethodPut,
			path:   "/v1/reviews/views/0f6d1c3e-8a47-4b59-9d2e-7c1b5a4f9e20/filter",
			want:   "ratelimit:user:u-1:PUT:/v1/reviews/views/{id}/filter",
		},
		{
			name:   "palette key",
			method: http.MethodPost,
			path:   "/v1/palette/sessions/0f6d1c3e-8a47-4b59-9d2e-7c1b5a4f9e20/keys",
			want:   "ratelimit:user:u-1:POST:/v1/palette/sessions/{id}/keys",
		},
		{
			name:   "words are kept",
			method: http.MethodPost,
			path:   "/v1/reviews/views/",
			want:   "ratelimit:user:u-1:POST:/v1/reviews/views",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withUser(httptest.NewRequest(tt.method, tt.path, nil), "u-1", "basic")
			assert.Equal(t, tt.want, KeyByUserAndEndpoint(req))
		})
	}
}

func TestKeyByUserAndEndpoint_SharedAcrossViews(t *testing.T) {
	a := withUser(httptest.NewRequest(http.MethodPost,
		"/v1/reviews/views/9b2c41e0-5d8f-4c1a-9f0e-3a7d2b6c8e11/reviews/1/helpful", nil), "u-1", "")
	b := withUser(httptest.NewRequest(http.MethodPost,
		"/v1/reviews/views/0f6d1c3e-8a47-4b59-9d2e-7c1b5a4f9e20/reviews/7/helpful", nil), "u-1", "")

	assert.Equal(t, KeyByUserAndEndpoint(a), KeyByUserAndEndpoint(b))
}

func TestLocalLimiter_Allow(t *testing.T) {
	l := newLocalLimiter()
	limit := PerHour(1, 1)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	res := l.allow("k", limit, now)
	assert.Equal(t, 1, res.Allowed)

	res = l.allow("k", limit, now)
	assert.Equal(t, 0, res.Allowed)
	assert.Equal(t, time.Hour, res.RetryAfter)

	res = l.allow("other", limit, now)
	assert.Equal(t, 1, res.Allowed)

	res = l.allow("k", limit, now.Add(time.Hour))
	assert.Equal(t, 1, res.Allowed)
}

func TestLocalLimiter_SweepsIdleBuckets(t *testing.T) {
	l := newLocalLimiter()
	limit := PerMinute(10, 10)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	l.allow("idle", limit, now)
	l.allow("busy", limit, now.Add(localBucketTTL))
	l.allow("busy", limit, now.Add(localBucketTTL+localSweepInterval))

	assert.NotContains(t, l.buckets, "idle")
	assert.Contains(t, l.buckets, "busy")
}

func TestRateLimit_RejectsOverLimit(t *testing.T) {
	h := RateLimit(unreachableLimiter(t), RateLimitConfig{
		Limit: PerHour(1, 1),
	})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/reviews/views", nil)
		req.RemoteAddr = "10.0.0.5:4000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	first := call()
	assert.Equal(t, http.StatusNoContent, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := call()
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "3600", second.Header().Get("Retry-After"))

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(second.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Equal(t, "RATE_LIMITED", body.Error.Code)
}

func TestRateLimit_Skip(t *testing.T) {
	h := RateLimit(unreachableLimiter(t), RateLimitConfig{
		Limit: PerHour(1, 1),
		Skip: func(r *http.Request) bool {
			return r.Method == http.MethodGet
		},
	})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for range 3 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/reviews/views/x", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
}

func TestPlanRateLimit(t *testing.T) {
	limits := map[entitlement.Plan]PlanLimit{
		entitlement.PlanBasic: {RequestsPerMinute: 1, BurstSize: 1},
		entitlement.PlanPro:   {RequestsPerMinute: 60, BurstSize: 5},
	}
	h := PlanRateLimit(unreachableLimiter(t), limits)(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}),
	)

	call := func(userID, plan string) *httptest.ResponseRecorder {
		req := withUser(httptest.NewRequest(http.MethodGet, "/v1/users/me", nil), userID, plan)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := call("basic-user", "gold")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "basic", rec.Header().Get("X-RateLimit-Plan"))
	assert.Equal(t, http.StatusTooManyRequests, call("basic-user", "gold").Code)

	for range 3 {
		rec = call("pro-user", "pro")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "pro", rec.Header().Get("X-RateLimit-Plan"))
	}
}
