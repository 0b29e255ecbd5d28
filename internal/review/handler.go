// AngelaMos | 2026
// handler.go

package review

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/resource-directory/internal/core"
	"github.com/carterperez-dev/templates/resource-directory/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/reviews/views", func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/", h.OpenView)
		r.Get("/{viewID}", h.GetView)
		r.Delete("/{viewID}", h.DiscardView)
		r.Put("/{viewID}/filter", h.SetFilter)
		r.Put("/{viewID}/sort", h.SetSort)
		r.Post("/{viewID}/reload", h.Reload)
		r.Post("/{viewID}/reviews", h.Submit)
		r.Post("/{viewID}/reviews/{reviewID}/helpful", h.MarkHelpful)
	})
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/reviews", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.ListByStatus)
		r.Put("/{reviewID}/status", h.UpdateStatus)
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		core.BadRequest(w, "invalid request body")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return false
	}

	return true
}

func (h *Handler) OpenView(w http.ResponseWriter, r *http.Request) {
	var req OpenViewRequest
	if !h.decode(w, r, &req) {
		return
	}

	userID := middleware.GetUserID(r.Context())

	id, snap, err := h.service.Open(r.Context(), userID, OpenParams{
		TargetID:     req.TargetID,
		Rating:       req.Rating,
		VerifiedOnly: req.VerifiedOnly,
		Sort:         ParseSortKey(req.Sort),
		Limit:        req.Limit,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, ToViewResponse(id, snap))
}

func (h *Handler) GetView(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "viewID")

	snap, err := h.service.Get(middleware.GetUserID(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToViewResponse(id, snap))
}

func (h *Handler) DiscardView(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := h.service.Discard(userID, chi.URLParam(r, "viewID")); err != nil {
		writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) SetFilter(w http.ResponseWriter, r *http.Request) {
	var req FilterRequest
	if !h.decode(w, r, &req) {
		return
	}

	id := chi.URLParam(r, "viewID")
	snap, err := h.service.SetFilter(
		middleware.GetUserID(r.Context()),
		id,
		Filter{Rating: req.Rating, VerifiedOnly: req.VerifiedOnly},
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToViewResponse(id, snap))
}

func (h *Handler) SetSort(w http.ResponseWriter, r *http.Request) {
	var req SortRequest
	if !h.decode(w, r, &req) {
		return
	}

	id := chi.URLParam(r, "viewID")
	snap, err := h.service.SetSort(
		middleware.GetUserID(r.Context()),
		id,
		ParseSortKey(req.Sort),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToViewResponse(id, snap))
}

func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "viewID")

	snap, err := h.service.Reload(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToViewResponse(id, snap))
}

func (h *Handler) MarkHelpful(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "viewID")

	reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil {
		core.BadRequest(w, "invalid review id")
		return
	}

	vote, snap, err := h.service.MarkHelpful(
		r.Context(),
		middleware.GetUserID(r.Context()),
		id,
		reviewID,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, VoteResponse{
		Applied: vote.Applied,
		View:    ToViewResponse(id, snap),
	})
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitReviewRequest
	if !h.decode(w, r, &req) {
		return
	}

	id := chi.URLParam(r, "viewID")
	created, snap, err := h.service.Submit(
		r.Context(),
		middleware.GetUserID(r.Context()),
		id,
		req.toSubmission(),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, SubmitResponse{
		Review: ToReviewResponse(created, false),
		View:   ToViewResponse(id, snap),
	})
}

func (h *Handler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	status := StatusPending
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, ok := ParseStatus(raw)
		if !ok {
			core.BadRequest(w, "invalid status")
			return
		}
		status = parsed
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	reviews, err := h.service.ListByStatus(r.Context(), status, limit)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToReviewResponseList(reviews))
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil {
		core.BadRequest(w, "invalid review id")
		return
	}

	var req UpdateStatusRequest
	if !h.decode(w, r, &req) {
		return
	}

	status, _ := ParseStatus(req.Status)
	if err := h.service.UpdateStatus(r.Context(), reviewID, status); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "review")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case core.IsAppError(err):
		core.JSONError(w, err)
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "review view")
	default:
		core.InternalServerError(w, err)
	}
}
