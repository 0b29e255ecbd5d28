// AngelaMos | 2026
// handler.go

package palette

import (
	"encoding/json"
	"errors"
	"net/http"

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
	r.Route("/palette/sessions", func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/", h.Open)
		r.Get("/{sessionID}", h.Get)
		r.Delete("/{sessionID}", h.Discard)
		r.Put("/{sessionID}/query", h.SetQuery)
		r.Post("/{sessionID}/keys", h.HandleKey)
		r.Post("/{sessionID}/viewer", h.RefreshViewer)
		r.Post("/{sessionID}/catalog", h.ReloadCatalog)
	})
}

func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	id, snap, err := h.service.Open(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, ToSessionResponse(id, snap))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "sessionID")

	snap, err := h.service.Get(userID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToSessionResponse(id, snap))
}

func (h *Handler) Discard(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := h.service.Discard(userID, chi.URLParam(r, "sessionID")); err != nil {
		writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) SetQuery(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "sessionID")

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	snap, err := h.service.SetQuery(r.Context(), userID, id, req.Query)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToSessionResponse(id, snap))
}

func (h *Handler) HandleKey(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "sessionID")

	var req KeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	key, ok := ParseKey(req.Key)
	if !ok {
		core.BadRequest(w, "unsupported key")
		return
	}

	snap, nav, err := h.service.HandleKey(userID, id, key)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, KeyResponse{
		Session:    ToSessionResponse(id, snap),
		Navigation: toNavigationResponse(nav),
	})
}

func (h *Handler) RefreshViewer(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "sessionID")

	snap, err := h.service.RefreshViewer(r.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToSessionResponse(id, snap))
}

func (h *Handler) ReloadCatalog(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "sessionID")

	snap, applied, err := h.service.ReloadCatalog(r.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ReloadResponse{
		Session: ToSessionResponse(id, snap),
		Applied: applied,
	})
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case core.IsAppError(err):
		core.JSONError(w, err)
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "palette session")
	default:
		core.InternalServerError(w, err)
	}
}
