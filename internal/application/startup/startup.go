// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mockdrill/mockdrill-go/internal/application/container"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/email"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/observability/logging"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/observability/performance"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/persistence"
	"github.com/mockdrill/mockdrill-go/internal/presentation/http/server"
	"github.com/mockdrill/mockdrill-go/pkg/config"
)

// Initialize performs the complete startup sequence and blocks until
// shutdown.
func Initialize() error {
	setupGinMode()

	start := time.Now().UTC()

	log.Println("\033[32m" + `
  __  __         _   ___       _ _ _
 |  \/  |___  __| |_|   \ _ _ (_) | |
 | |\/| / _ \/ _| / / |) | '_|| | | |
 |_|  |_\___/\__|_\_\___/|_|  |_|_|_|
` + "\033[0m")

	// Step 1: Structured logging
	loggerConfig := logging.DefaultLoggerConfig()
	loggerConfig.LogDirectory = config.LogDirectory
	loggerConfig.JSONFormat = config.LogJSONFormat
	logger, err := logging.NewChanneledLogger(loggerConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logger.Close()

	// Step 2: Performance tracking
	trackerConfig := performance.DefaultTrackerConfig()
	trackerConfig.SlowOpThreshold = config.SlowOpThreshold
	perfTracker := performance.NewTracker(trackerConfig)

	// Step 3: Open the key-value store (Turso first, local SQLite fallback)
	storeStart := time.Now()
	kv, err := persistence.OpenKV(persistence.Config{
		SQLitePath:    config.SQLitePath,
		TursoDatabase: config.TursoDatabase,
		TursoToken:    config.TursoToken,
	})
	if err != nil {
		return fmt.Errorf("failed to open key-value store: %w", err)
	}
	store := persistence.NewStore(kv)
	logger.LogStartupPhase("storage", time.Since(storeStart), true)
	logger.Startup().Info("key-value store ready", "backend", kv.ConnectionInfo())

	// Step 4: Operator mailer (optional)
	var mailer email.Service = email.NoopService{}
	if config.ResendAPIKey != "" {
		mailer, err = email.NewService(config.ResendAPIKey, config.MailFromEmail, config.MailFromName)
		if err != nil {
			return fmt.Errorf("failed to initialize mailer: %w", err)
		}
		logger.Startup().Info("operator mailer ready", "from", config.MailFromEmail)
	} else {
		logger.Startup().Info("no RESEND_API_KEY set, welcome emails disabled")
	}

	// Step 5: Dependency injection container
	appContainer := container.NewContainer(logger, perfTracker, store, mailer)
	logger.Startup().Info("dependency injection container created")

	// Step 6: Seed the default account into an empty user directory
	if err := appContainer.AuthService.SeedDefaultUser(config.SeedAdminEmail, config.SeedAdminPassword, config.SeedAdminName); err != nil {
		return fmt.Errorf("failed to seed default user: %w", err)
	}

	// Step 7: Live analytics feed
	go appContainer.Broadcaster.Run()

	// Step 8: HTTP server
	httpServer := server.New(config.Port, appContainer)

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.System().Info("Starting HTTP server", "address", ":"+config.Port)
		if err := httpServer.Start(); err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
		}
	}()

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"port", config.Port,
		"baseUrl", config.BaseURL)

	// Wait for shutdown signal
	<-gracefulShutdown
	logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")

	shutdownStart := time.Now()

	appContainer.WizardService.Stop()
	appContainer.Broadcaster.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Shutdown().Info("Stopping HTTP server...")
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	logger.Shutdown().Info("Closing key-value store...")
	if err := store.Close(); err != nil {
		logger.Shutdown().Error("Error closing store", "error", err.Error())
	} else {
		logger.Shutdown().Info("Store closed successfully")
	}

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))

	return nil
}

// setupGinMode configures the gin runtime mode from the environment
func setupGinMode() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
}
