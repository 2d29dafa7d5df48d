package auth

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/user/blog-api-go/apperror"
)

// Handlers exposes the auth service over HTTP.
type Handlers struct {
	service  *Service
	validate *validator.Validate
}

// NewHandlers creates the auth HTTP handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service, validate: validator.New()}
}

// HandleRegister godoc
// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param registerBody body auth.RegisterRequest true "Registration details"
// @Success 201 {object} auth.User "User created"
// @Failure 400 {object} apperror.ErrorResponse "Invalid payload"
// @Failure 409 {object} apperror.ErrorResponse "Username or email already in use"
// @Router /auth/register [post]
func (h *Handlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		if err := h.validate.Struct(req); err != nil {
			WriteError(w, r, apperror.NewValidationError("invalid registration payload", err))
			return
		}

		user, err := h.service.Register(r.Context(), req)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		WriteJSON(w, http.StatusCreated, user)
	}
}

// HandleLogin godoc
// @Summary Login with username and password
// @Tags auth
// @Accept json
// @Produce json
// @Param loginBody body auth.LoginRequest true "Credentials"
// @Success 200 {object} auth.TokenPair "Access and refresh tokens"
// @Failure 400 {object} apperror.ErrorResponse "Invalid payload"
// @Failure 401 {object} apperror.ErrorResponse "Invalid credentials"
// @Failure 429 {object} apperror.ErrorResponse "Rate limit exceeded"
// @Router /auth/login [post]
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		if err := h.validate.Struct(req); err != nil {
			WriteError(w, r, apperror.NewValidationError("username and password are required", err))
			return
		}

		tokens, err := h.service.SignIn(r.Context(), req.Username, req.Password)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		WriteJSON(w, http.StatusOK, tokens)
	}
}

// HandleRefreshToken godoc
// @Summary Exchange a refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param refreshBody body auth.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} auth.TokenPair "New access and refresh tokens"
// @Failure 400 {object} apperror.ErrorResponse "Missing refresh_token"
// @Failure 401 {object} apperror.ErrorResponse "Invalid or expired refresh token"
// @Router /auth/refresh [post]
func (h *Handlers) HandleRefreshToken() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RefreshTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		if req.RefreshToken == "" {
			WriteError(w, r, apperror.NewBadRequestError("refresh_token is required", nil))
			return
		}

		tokens, err := h.service.Refresh(r.Context(), req.RefreshToken)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		WriteJSON(w, http.StatusOK, tokens)
	}
}

// HandleProfile godoc
// @Summary Get the authenticated user's profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} auth.User "Current user"
// @Failure 401 {object} apperror.ErrorResponse "Missing or invalid token"
// @Router /auth/profile [get]
func (h *Handlers) HandleProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			WriteError(w, r, apperror.NewUnauthorizedError("token not provided", nil))
			return
		}

		user, err := h.service.Profile(r.Context(), claims.UserID)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		WriteJSON(w, http.StatusOK, user)
	}
}

// WriteJSON serializes data with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		}
	}
}

// WriteError converts any error into the standard error envelope. Unexpected
// errors become opaque 500s; client errors log at warning severity, server
// errors at error severity with method and path.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError("an unexpected error occurred", err)
	}

	if appErr.StatusCode() >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", appErr.StatusCode()),
			zap.Error(appErr),
		)
	} else {
		zap.L().Warn("request rejected",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", appErr.StatusCode()),
			zap.String("reason", appErr.Message),
		)
	}

	WriteJSON(w, appErr.StatusCode(), appErr.ToResponse())
}
