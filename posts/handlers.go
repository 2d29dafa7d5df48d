package posts

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

// Handlers exposes the post endpoints.
type Handlers struct {
	service  *Service
	validate *validator.Validate
}

func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service, validate: validator.New()}
}

// HandleListPublished godoc
// @Summary List published posts
// @Description Returns a paginated list of published posts, newest first
// @Tags posts
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} pagination.Page[Post]
// @Router /posts [get]
func (h *Handlers) HandleListPublished(w http.ResponseWriter, r *http.Request) {
	q := pagination.FromValues(r.URL.Query())
	page, err := h.service.ListPublished(r.Context(), q)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusOK, page)
}

// HandleListAll godoc
// @Summary List all posts including drafts
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} pagination.Page[Post]
// @Failure 401 {object} apperror.ErrorResponse
// @Router /posts/all [get]
func (h *Handlers) HandleListAll(w http.ResponseWriter, r *http.Request) {
	q := pagination.FromValues(r.URL.Query())
	page, err := h.service.ListAll(r.Context(), q)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusOK, page)
}

// HandleGet godoc
// @Summary Get a post by ID
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} Post
// @Failure 404 {object} apperror.ErrorResponse
// @Router /posts/{id} [get]
func (h *Handlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	post, err := h.service.Get(r.Context(), id)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusOK, post)
}

// HandleGetBySlug godoc
// @Summary Get a post by slug
// @Tags posts
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} Post
// @Failure 404 {object} apperror.ErrorResponse
// @Router /posts/slug/{slug} [get]
func (h *Handlers) HandleGetBySlug(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusOK, post)
}

// HandleCreate godoc
// @Summary Create a post
// @Description Creates a post authored by the authenticated user
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreatePostRequest true "New post"
// @Success 201 {object} Post
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 409 {object} apperror.ErrorResponse
// @Router /posts [post]
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		auth.WriteError(w, r, apperror.NewUnauthorizedError("token not provided", nil))
		return
	}
	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		auth.WriteError(w, r, apperror.NewValidationError(err.Error(), err))
		return
	}
	post, err := h.service.Create(r.Context(), req, claims.UserID)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusCreated, post)
}

// HandleUpdate godoc
// @Summary Update a post
// @Description Updates a post. Only the author or an admin may update.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body UpdatePostRequest true "Fields to update"
// @Success 200 {object} Post
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Failure 409 {object} apperror.ErrorResponse
// @Router /posts/{id} [patch]
func (h *Handlers) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	if err := h.assertOwnerOrAdmin(r, id); err != nil {
		auth.WriteError(w, r, err)
		return
	}
	var req UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		auth.WriteError(w, r, apperror.NewValidationError(err.Error(), err))
		return
	}
	post, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusOK, post)
}

// HandleDelete godoc
// @Summary Delete a post
// @Description Soft-deletes a post. Only the author or an admin may delete.
// @Tags posts
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 204 "No Content"
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /posts/{id} [delete]
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	if err := h.assertOwnerOrAdmin(r, id); err != nil {
		auth.WriteError(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		auth.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// assertOwnerOrAdmin allows the request through when the caller is an admin,
// otherwise loads the post and requires the caller to be its author. A
// missing post surfaces as not found before any ownership decision.
func (h *Handlers) assertOwnerOrAdmin(r *http.Request, postID int) error {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return apperror.NewUnauthorizedError("token not provided", nil)
	}
	if claims.IsAdmin() {
		return nil
	}
	post, err := h.service.Get(r.Context(), postID)
	if err != nil {
		return err
	}
	if post.AuthorID != claims.UserID {
		return apperror.NewForbiddenError("you can only modify your own posts", nil)
	}
	return nil
}

// Routes mounts the post endpoints. Reads are public except the drafts
// listing; mutations require an access token.
func (h *Handlers) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HandleListPublished)
	r.Get("/slug/{slug}", h.HandleGetBySlug)
	r.Get("/{id}", h.HandleGet)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/all", h.HandleListAll)
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
