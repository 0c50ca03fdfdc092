package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"ecobazaarx/internal/app"
	"ecobazaarx/internal/cache"
	"ecobazaarx/internal/config"
	"ecobazaarx/internal/handlers"
	"ecobazaarx/internal/routes"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	state, closeState, err := app.NewState(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize state", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer closeState()

	responseCache := cache.New(cfg.CacheTTL, 5*time.Minute)
	defer responseCache.Close()

	if cfg.LogLevel > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	routes.RegisterRoutes(router, handlers.New(state, responseCache, logger))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server running", "port", cfg.Port, "driver", cfg.StoreDriver, "policy", cfg.CheckoutPolicy)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	logger.Info("Server exited")
}
