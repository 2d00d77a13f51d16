package main

import (
	"context"
	"log"

	"campus-companion/pkg/config"
	"campus-companion/pkg/logger"
	"campus-companion/pkg/postgres"

	"go.uber.org/zap"
)

// Bootstraps the append-only feedback and history tables. Safe to run
// repeatedly: every statement is idempotent.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS feedback (
			id UUID PRIMARY KEY,
			ts TIMESTAMPTZ NOT NULL,
			question TEXT NOT NULL,
			topic TEXT NOT NULL DEFAULT '',
			rating INTEGER NOT NULL CHECK (rating IN (1, -1)),
			user_query TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_feedback_question ON feedback (question)`,
		`CREATE TABLE IF NOT EXISTS history (
			id UUID PRIMARY KEY,
			ts TIMESTAMPTZ NOT NULL,
			query TEXT NOT NULL,
			answer TEXT NOT NULL,
			matched_question TEXT,
			topic TEXT,
			similarity DOUBLE PRECISION,
			source TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_ts ON history (ts DESC)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			appLogger.Fatal("Failed to apply schema statement", zap.Error(err))
		}
	}

	appLogger.Info("Schema bootstrap completed")
}
