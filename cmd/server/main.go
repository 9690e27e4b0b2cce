package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"architecture-risk-engine/pkg/advisor"
	"architecture-risk-engine/pkg/api"
	"architecture-risk-engine/pkg/config"
	"architecture-risk-engine/pkg/logger"
	"architecture-risk-engine/pkg/simulation"
	"architecture-risk-engine/pkg/storage"
)

// @title Architecture Risk Engine API
// @version 1.0
// @description Structural risk analysis and traffic simulation for service dependency diagrams.

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

func main() {

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration Error: %v", err)
	}

	if err := logger.Init(cfg.App.Env, cfg.App.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Architecture Risk Engine starting", map[string]interface{}{
		"port":      cfg.Server.Port,
		"env":       cfg.App.Env,
		"diagramDb": cfg.SQLite.DBPath,
		"aiModel":   cfg.Advisor.Model,
		"aiEnabled": cfg.Advisor.Enabled && cfg.Advisor.APIKey != "",
		"rateLimit": cfg.RateLimit.RequestsPerSecond,
		"maxVisits": cfg.Traffic.MaxVisitsPerNode,
		"metricsOn": cfg.Metrics.Enabled,
	})

	var store *storage.DiagramStore
	if cfg.SQLite.DBPath != "" {
		store, err = storage.NewDiagramStore(cfg.SQLite.DBPath)
		if err != nil {
			log.Fatalf("Failed to initialize DiagramStore: %v", err)
		}
		defer store.Close()
	}

	advisorClient := advisor.NewClient(cfg.Advisor)
	simService := simulation.NewService(cfg, advisorClient, store)

	router := api.NewRouter(cfg, simService, "docs/swagger.json")

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down server...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	logger.Info("Server exited", nil)
}
