package categories

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/user/blog-api-go/apperror"
	"github.com/user/blog-api-go/auth"
	"github.com/user/blog-api-go/pagination"
)

// Handlers exposes the category endpoints.
type Handlers struct {
	service  *Service
	validate *validator.Validate
}

func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service, validate: validator.New()}
}

// HandleList godoc
// @Summary List categories
// @Description Returns a paginated list of categories
// @Tags categories
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} pagination.Page[Category]
// @Router /categories [get]
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	q := pagination.FromValues(r.URL.Query())
	page, err := h.service.List(r.Context(), q)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusOK, page)
}

// HandleGet godoc
// @Summary Get a category
// @Tags categories
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} Category
// @Failure 404 {object} apperror.ErrorResponse
// @Router /categories/{id} [get]
func (h *Handlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	category, err := h.service.Get(r.Context(), id)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusOK, category)
}

// HandleCreate godoc
// @Summary Create a category
// @Description Creates a new category. Requires the admin role.
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateCategoryRequest true "New category"
// @Success 201 {object} Category
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 409 {object} apperror.ErrorResponse
// @Router /categories [post]
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		auth.WriteError(w, r, apperror.NewValidationError(err.Error(), err))
		return
	}
	category, err := h.service.Create(r.Context(), req)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusCreated, category)
}

// HandleUpdate godoc
// @Summary Update a category
// @Description Updates a category. Requires the admin role.
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Param request body UpdateCategoryRequest true "Fields to update"
// @Success 200 {object} Category
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /categories/{id} [patch]
func (h *Handlers) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	var req UpdateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		auth.WriteError(w, r, apperror.NewValidationError(err.Error(), err))
		return
	}
	category, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusOK, category)
}

// HandleDelete godoc
// @Summary Delete a category
// @Description Soft-deletes a category. Requires the admin role.
// @Tags categories
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Success 204 "No Content"
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /categories/{id} [delete]
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		auth.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Routes mounts the category endpoints. Reads are public; mutations require
// an access token carrying the admin role.
func (h *Handlers) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HandleList)
	r.Get("/{id}", h.HandleGet)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(auth.RequireRoles(auth.RoleAdmin))
		r.Post("/", h.HandleCreate)
		r.Patch("/{id}", h.HandleUpdate)
		r.Delete("/{id}", h.HandleDelete)
	})
	return r
}

func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, apperror.NewBadRequestError("invalid id parameter", err)
	}
	return id, nil
}
