package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MedSupply-Manager/user-service/internal/config"
	"github.com/MedSupply-Manager/user-service/internal/database"
	"github.com/MedSupply-Manager/user-service/internal/handler"
	"github.com/MedSupply-Manager/user-service/internal/mail"
	"github.com/MedSupply-Manager/user-service/internal/middleware"
	"github.com/MedSupply-Manager/user-service/internal/repository"
	"github.com/MedSupply-Manager/user-service/internal/router"
	"github.com/MedSupply-Manager/user-service/internal/service"
	"github.com/MedSupply-Manager/user-service/internal/token"
)

type App struct {
	server       *http.Server
	db           *database.DB
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	pool := db.Pool
	userRepo := repository.NewUserRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	slog.Info("database ready")

	issuer := token.NewIssuer(cfg.TokenSecrets())
	mailer := mail.NewSMTPMailer(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})

	authService := service.NewAuthService(userRepo, sessionRepo, issuer, mailer, cfg.FrontendURL,
		service.WithBcryptCost(cfg.BcryptCost),
		service.WithLockoutPolicy(service.LockoutPolicy{
			MaxAttempts: cfg.LockoutMaxAttempts,
			Duration:    cfg.LockoutDuration,
		}),
	)
	userService := service.NewUserService(userRepo, sessionRepo)

	authMiddleware := middleware.NewAuthMiddleware(authService)
	authHandler := handler.NewAuthHandler(authService, cfg.CookieSecure())
	userHandler := handler.NewUserHandler(userService)

	appRouter := router.New(cfg, authMiddleware, authHandler, userHandler)

	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	go sweepStaleSessions(sweepCtx, sessionRepo, cfg.SessionSweepInterval)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      appRouter,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		db:     db,
		cleanupFuncs: []func(){
			sweepCancel,
			db.Close,
		},
	}, nil
}

// sweepStaleSessions periodically removes sessions whose refresh token has
// aged out. Expired tokens already fail verification; the sweep only keeps
// the table from growing without bound.
func sweepStaleSessions(ctx context.Context, sessions *repository.SessionRepository, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := sessions.DeleteStale(ctx, token.KindRefresh.Lifetime())
			if err != nil {
				slog.Error("stale session sweep failed", "error", err.Error())
				continue
			}
			if removed > 0 {
				slog.Info("stale sessions removed", "count", removed)
			}
		}
	}
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	slog.Info("server stopped")
	return nil
}
