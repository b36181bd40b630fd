package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/xinghui/parlor/internal/config"
	"github.com/xinghui/parlor/internal/connect"
	"github.com/xinghui/parlor/internal/container"
	"github.com/xinghui/parlor/internal/models"
	"github.com/xinghui/parlor/internal/routes"
	"github.com/xinghui/parlor/internal/wechat"
)

func main() {
	migrate := flag.Bool("migrate", false, "apply pending schema migrations and exit")
	flag.Parse()

	// Load environment variables
	_ = godotenv.Load(".env.local")

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg)
	logger.Info("Starting Parlor API server", "environment", cfg.Environment)

	db, err := connect.Postgres(cfg)
	if err != nil {
		logger.Error("Failed to connect to Postgres", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := connect.Close(db); err != nil {
			logger.Error("Error closing database connection", "error", err)
		}
	}()
	logger.Info("Connected to Postgres successfully")

	if *migrate {
		if err := models.Migrate(db); err != nil {
			logger.Error("Migration failed", "error", err)
			os.Exit(1)
		}
		logger.Info("Migrations applied", "version", models.CurrentSchemaVersion)
		return
	}

	if err := models.Provision(db); err != nil {
		logger.Error("Schema provisioning failed", "error", err)
		os.Exit(1)
	}

	repo := models.NewGormRepo(db)
	if err := models.Seed(context.Background(), repo); err != nil {
		logger.Error("Catalog seeding failed", "error", err)
		os.Exit(1)
	}

	cld, err := connect.Cloudinary(cfg)
	if err != nil {
		// Image uploads degrade gracefully; the API still serves.
		logger.Warn("Cloudinary unavailable, image uploads disabled", "error", err)
		cld = nil
	}

	gateway := wechat.NewClient(cfg)

	appContainer := container.NewContainer(cfg, logger, db, cld, gateway)
	router := routes.SetupRoutes(appContainer)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}

func setupLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}

	return slog.New(handler)
}
