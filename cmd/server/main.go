package main

import (
	"log/slog"
	"os"

	"github.com/MedSupply-Manager/user-service/internal/app"
	"github.com/MedSupply-Manager/user-service/internal/logger"
)

func main() {
	logger.Setup(os.Getenv("ENVIRONMENT"))

	application, err := app.New()
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("application run failed", "error", err)
		os.Exit(1)
	}
}
