package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"campus-companion/internal/api"
	"campus-companion/internal/api/handlers"
	"campus-companion/internal/repository"
	"campus-companion/internal/service"
	"campus-companion/pkg/config"
	"campus-companion/pkg/logger"
	"campus-companion/pkg/postgres"

	"go.uber.org/zap"
)

// @title Campus Companion API
// @version 1.0
// @description Q&A service for university students backed by a curated knowledge base with LLM fallback

// @contact.name Student Experience
// @contact.email student.experience@harbour.space

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting Campus Companion service",
		zap.String("mode", cfg.Retrieval.Mode),
	)

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	feedbackRepo := repository.NewFeedbackRepository(db, appLogger)
	historyRepo := repository.NewHistoryRepository(db, appLogger)

	llmService, err := service.NewLLMService(ctx, &cfg.GigaChat, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize LLM service", zap.Error(err))
	}
	defer llmService.Close()

	var backend service.ScoringBackend
	if cfg.Retrieval.Mode == config.ModeEmbedding {
		// The embedding scorer cannot run without the external model.
		if !llmService.Enabled() {
			appLogger.Fatal("Embedding retrieval mode requires GIGACHAT_API_KEY; set RETRIEVAL_MODE=lexical to run without it")
		}
		backend = service.NewEmbeddingBackend(llmService, appLogger)
	} else {
		backend = service.NewLexicalBackend(appLogger)
	}

	knowledgeService := service.NewKnowledgeService(cfg.Retrieval.CatalogPath, backend, appLogger)
	if _, err := knowledgeService.Reload(ctx); err != nil {
		appLogger.Fatal("Failed to load knowledge catalog", zap.Error(err))
	}

	feedbackService := service.NewFeedbackService(feedbackRepo, appLogger)
	relevanceService := service.NewRelevanceService(llmService, appLogger)
	qaService := service.NewQAService(
		knowledgeService,
		feedbackService,
		relevanceService,
		llmService,
		historyRepo,
		cfg.Retrieval.MinScore,
		appLogger,
	)

	qaHandler := handlers.NewQAHandler(qaService, knowledgeService, appLogger)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService, feedbackRepo, historyRepo, appLogger)

	app := api.SetupRouter(qaHandler, feedbackHandler, appLogger)

	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
