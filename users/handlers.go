package users

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

// Handlers exposes the user endpoints.
type Handlers struct {
	service  *Service
	validate *validator.Validate
}

func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service, validate: validator.New()}
}

// HandleList godoc
// @Summary List users
// @Description Returns a paginated list of users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} pagination.Page[auth.User]
// @Failure 401 {object} apperror.ErrorResponse
// @Router /users [get]
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
// @Summary Get a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} auth.User
// @Failure 404 {object} apperror.ErrorResponse
// @Router /users/{id} [get]
func (h *Handlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusOK, user)
}

// HandleCreate godoc
// @Summary Register a new user
// @Tags users
// @Accept json
// @Produce json
// @Param request body CreateUserRequest true "New user"
// @Success 201 {object} auth.User
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 409 {object} apperror.ErrorResponse
// @Router /users [post]
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		auth.WriteError(w, r, apperror.NewValidationError(err.Error(), err))
		return
	}
	user, err := h.service.Create(r.Context(), req)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusCreated, user)
}

// HandleUpdate godoc
// @Summary Update a user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body UpdateUserRequest true "Fields to update"
// @Success 200 {object} auth.User
// @Failure 404 {object} apperror.ErrorResponse
// @Failure 409 {object} apperror.ErrorResponse
// @Router /users/{id} [patch]
func (h *Handlers) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		auth.WriteError(w, r, apperror.NewValidationError(err.Error(), err))
		return
	}
	user, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusOK, user)
}

// HandleDelete godoc
// @Summary Delete a user
// @Tags users
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204 "No Content"
// @Failure 404 {object} apperror.ErrorResponse
// @Router /users/{id} [delete]
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

// Routes mounts the user endpoints. Creation is public; everything else
// requires a valid access token.
func (h *Handlers) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleCreate)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.HandleList)
		r.Get("/{id}", h.HandleGet)
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
