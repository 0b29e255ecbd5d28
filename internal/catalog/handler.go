// AngelaMos | 2026
// handler.go

package catalog

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/resource-directory/internal/core"
)

// Handler exposes catalog maintenance to administrators. Searching the
// catalog goes through the palette package.
type Handler struct {
	repo      Repository
	validator *validator.Validate
}

func NewHandler(repo Repository) *Handler {
	return &Handler{
		repo:      repo,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/resources", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.ListResources)
		r.Post("/", h.CreateResource)
		r.Delete("/{resourceID}", h.DeleteResource)
	})
}

func (h *Handler) ListResources(w http.ResponseWriter, r *http.Request) {
	resources, err := h.repo.FetchCatalog(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToResourceResponseList(resources))
}

func (h *Handler) CreateResource(w http.ResponseWriter, r *http.Request) {
	var req CreateResourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	rec := req.toRecord()
	if err := h.repo.Create(r.Context(), &rec); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			core.JSONError(w, core.DuplicateError("resource id"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	res, err := FromRecord(rec)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToResourceResponse(res))
}

func (h *Handler) DeleteResource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "resourceID")

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "resource")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}
