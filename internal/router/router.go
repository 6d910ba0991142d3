package router

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MedSupply-Manager/user-service/internal/config"
	"github.com/MedSupply-Manager/user-service/internal/handler"
	"github.com/MedSupply-Manager/user-service/internal/middleware"
	"github.com/MedSupply-Manager/user-service/internal/model"
)

func New(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(model.MessageResponse{Success: true, Message: "User service is running"})
	})

	r.Route("/api/users", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(model.HealthResponse{
				Status:    "ok",
				Service:   "user-service",
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			})
		})

		api.Post("/register", authHandler.Register)
		api.Post("/login", authHandler.Login)
		api.Post("/refresh-token", authHandler.Refresh)
		api.Get("/verify-token", authHandler.VerifyToken)
		api.Post("/logout", authHandler.Logout)
		api.Get("/verify-email/{token}", authHandler.VerifyEmail)
		api.Post("/forgot-password", authHandler.ForgotPassword)
		api.Post("/reset-password", authHandler.ResetPassword)

		api.With(authMiddleware.RequireAuth).Get("/profile", authHandler.Profile)
		api.With(authMiddleware.RequireAuth, authMiddleware.RequireAdmin).Get("/admin/dashboard", userHandler.Dashboard)

		api.Group(func(admin chi.Router) {
			admin.Use(authMiddleware.RequireAuth, authMiddleware.RequireAdmin)
			admin.Get("/", userHandler.List)
			admin.Get("/{id}", userHandler.Get)
			admin.Put("/{id}", userHandler.Update)
			admin.Delete("/{id}", userHandler.Delete)
		})
	})

	return r
}
