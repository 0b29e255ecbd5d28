// AngelaMos | 2026
// handler_test.go

package review

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/resource-directory/internal/middleware"
)

func testAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := middleware.WithClaims(r.Context(), &middleware.AccessTokenClaims{
			UserID: r.Header.Get("X-Test-User"),
			Role:   r.Header.Get("X-Test-Role"),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func call[T any](
	t *testing.T,
	h http.Handler,
	method, path, body string,
	headers ...string,
) (int, envelope[T]) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("X-Test-User", "u1")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope[T]
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec.Code, env
}

func newTestRouter(t *testing.T) (http.Handler, *fakeRepo) {
	t.Helper()

	svc, repo := newTestService(t)
	h := NewHandler(svc)

	r := chi.NewRouter()
	h.RegisterRoutes(r, testAuth)
	h.RegisterAdminRoutes(r, testAuth, middleware.RequireAdmin)
	return r, repo
}

func TestHandler_ViewFlow(t *testing.T) {
	h, _ := newTestRouter(t)

	code, opened := call[ViewResponse](t, h, http.MethodPost, "/reviews/views",
		`{"target_id":"sku-1","sort":"helpful"}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "helpful", opened.Data.Sort)
	require.Len(t, opened.Data.Reviews, 2)
	assert.Equal(t, int64(2), opened.Data.Reviews[0].ID)
	base := "/reviews/views/" + opened.Data.ID

	code, sorted := call[ViewResponse](t, h, http.MethodPut, base+"/sort", `{"sort":"rating_high"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(1), sorted.Data.Reviews[0].ID)

	code, voted := call[VoteResponse](t, h, http.MethodPost, base+"/reviews/1/helpful", "")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, voted.Data.Applied)
	assert.True(t, voted.Data.View.Reviews[0].Voted)
	assert.Equal(t, 3, voted.Data.View.Reviews[0].HelpfulCount)

	code, again := call[VoteResponse](t, h, http.MethodPost, base+"/reviews/1/helpful", "")
	require.Equal(t, http.StatusOK, code)
	assert.False(t, again.Data.Applied)

	code, filtered := call[ViewResponse](t, h, http.MethodPut, base+"/filter", `{"rating":3}`)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, filtered.Data.Reviews, 1)
	assert.Equal(t, int64(2), filtered.Data.Reviews[0].ID)
}

func TestHandler_Submit(t *testing.T) {
	h, _ := newTestRouter(t)

	_, opened := call[ViewResponse](t, h, http.MethodPost, "/reviews/views", `{"target_id":"sku-1"}`)
	base := "/reviews/views/" + opened.Data.ID

	code, env := call[SubmitResponse](t, h, http.MethodPost, base+"/reviews",
		`{"user_name":"Me","rating":6,"body":"too good"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	require.NotNil(t, env.Error)

	code, _ = call[SubmitResponse](t, h, http.MethodPost, base+"/reviews",
		`{"user_name":"Me","rating":4,"body":"ok","images":["not a url"]}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = call[SubmitResponse](t, h, http.MethodPost, base+"/reviews",
		`{"user_name":"Me","rating":4,"body":"ok","images":["https://cdn.example.com/a.png"]}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "pending", env.Data.Review.Status)
	assert.Equal(t, env.Data.Review.ID, env.Data.View.Reviews[0].ID)
}

func TestHandler_Errors(t *testing.T) {
	h, repo := newTestRouter(t)

	code, _ := call[ViewResponse](t, h, http.MethodPost, "/reviews/views", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := call[ViewResponse](t, h, http.MethodGet, "/reviews/views/nope", "")
	assert.Equal(t, http.StatusNotFound, code)
	require.NotNil(t, env.Error)

	_, opened := call[ViewResponse](t, h, http.MethodPost, "/reviews/views", `{"target_id":"sku-1"}`)
	base := "/reviews/views/" + opened.Data.ID

	code, _ = call[VoteResponse](t, h, http.MethodPost, base+"/reviews/abc/helpful", "")
	assert.Equal(t, http.StatusBadRequest, code)

	repo.mu.Lock()
	repo.fetchErr = assert.AnError
	repo.mu.Unlock()

	code, env = call[ViewResponse](t, h, http.MethodPost, "/reviews/views", `{"target_id":"sku-1"}`)
	assert.Equal(t, http.StatusBadGateway, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "COLLABORATOR_UNAVAILABLE", env.Error.Code)
}

func TestHandler_AdminStatus(t *testing.T) {
	h, repo := newTestRouter(t)

	code, _ := call[any](t, h, http.MethodPut, "/admin/reviews/2/status", `{"status":"rejected"}`,
		"X-Test-Role", "viewer")
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = call[any](t, h, http.MethodPut, "/admin/reviews/2/status", `{"status":"rejected"}`,
		"X-Test-Role", "admin")
	assert.Equal(t, http.StatusNoContent, code)
	assert.Equal(t, StatusRejected, repo.statuses[2])

	code, _ = call[any](t, h, http.MethodPut, "/admin/reviews/2/status", `{"status":"deleted"}`,
		"X-Test-Role", "admin")
	assert.Equal(t, http.StatusBadRequest, code)

	code, list := call[[]ReviewResponse](t, h, http.MethodGet, "/admin/reviews?status=approved", "",
		"X-Test-Role", "super_admin")
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, list.Data, 3)
}
