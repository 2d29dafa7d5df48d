// Blog API server entry point: loads configuration, connects to PostgreSQL,
// runs migrations, wires services and handlers, and serves the REST API with
// graceful shutdown.
//
// @title Blog API
// @version 1.0
// @description REST API for a blog platform: users, authentication, categories and posts.
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/user/blog-api-go/apperror"
	"github.com/user/blog-api-go/auth"
	"github.com/user/blog-api-go/categories"
	"github.com/user/blog-api-go/config"
	"github.com/user/blog-api-go/db"
	"github.com/user/blog-api-go/posts"
	"github.com/user/blog-api-go/users"
)

func main() {
	seed := flag.Bool("seed", false, "create the default admin account and exit")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := godotenv.Load(); err != nil {
		logger.Info(".env file not loaded", zap.Error(err))
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	pool, err := db.NewPool(cfg.DB)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.RunMigrations(cfg.DB, "./migrations"); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	userStore := users.NewStore(pool)
	userService := users.NewService(userStore, logger)

	if *seed {
		if err := seedAdmin(context.Background(), userService, cfg.Seed, logger); err != nil {
			logger.Fatal("failed to seed admin user", zap.Error(err))
		}
		return
	}

	tokenService := auth.NewTokenService(*cfg.Auth)
	authService := auth.NewService(userStore, tokenService, logger)
	authHandlers := auth.NewHandlers(authService)
	authMiddleware := auth.Middleware(tokenService)

	userHandlers := users.NewHandlers(userService)
	categoryHandlers := categories.NewHandlers(categories.NewService(pool, logger))
	postHandlers := posts.NewHandlers(posts.NewService(pool, logger))

	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(recoverToJSON)

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandlers.HandleRegister())
			r.With(httprate.LimitByIP(5, time.Minute)).Post("/login", authHandlers.HandleLogin())
			r.Post("/refresh", authHandlers.HandleRefreshToken())
			r.With(authMiddleware).Get("/profile", authHandlers.HandleProfile())
		})
		r.Mount("/users", userHandlers.Routes(authMiddleware))
		r.Mount("/categories", categoryHandlers.Routes(authMiddleware))
		r.Mount("/posts", postHandlers.Routes(authMiddleware))
	})

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}

// seedAdmin creates the default administrator account. An existing account
// with the same username is left untouched.
func seedAdmin(ctx context.Context, service *users.Service, cfg *config.SeedConfig, logger *zap.Logger) error {
	_, err := service.Create(ctx, users.CreateUserRequest{
		Name:     "Administrator",
		Email:    cfg.AdminEmail,
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
		Role:     auth.RoleAdmin,
	})
	if err != nil {
		if apperror.IsConflict(err) {
			logger.Info("admin user already exists", zap.String("username", cfg.AdminUsername))
			return nil
		}
		return err
	}
	logger.Info("admin user created", zap.String("username", cfg.AdminUsername))
	return nil
}

// requestID assigns a UUID to each request, honoring an incoming
// X-Request-Id header, and echoes it on the response.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLogger logs each request with its status and duration.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

// recoverToJSON converts panics into JSON 500 responses so clients never see
// a bare text error page.
func recoverToJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				zap.L().Error("panic recovered", zap.Any("panic", rvr))
				auth.WriteError(w, r, apperror.NewInternalError("internal server error", nil))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
