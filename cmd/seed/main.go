// Command seed ingests the bilingual defect catalog JSON documents
// described in spec §6 into the catalog tables.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/reviewloop/engine/internal/infrastructure/storage"
)

var (
	enPath      string
	zhPath      string
	databaseURL string
)

func init() {
	flag.StringVar(&enPath, "en", "", "path to the English catalog seed JSON document")
	flag.StringVar(&zhPath, "zh", "", "path to the Chinese catalog seed JSON document")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL database URL (overrides DATABASE_URL env var)")
}

func main() {
	flag.Parse()

	_ = godotenv.Load()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if enPath == "" || zhPath == "" {
		slog.Error("both -en and -zh seed document paths are required")
		os.Exit(1)
	}

	dbURL := databaseURL
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	en, err := storage.LoadSeedFile(enPath)
	if err != nil {
		slog.Error("failed to load English seed document", slog.String("error", err.Error()))
		os.Exit(1)
	}
	zh, err := storage.LoadSeedFile(zhPath)
	if err != nil {
		slog.Error("failed to load Chinese seed document", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := storage.NewDB(&storage.Config{DSN: dbURL})
	if err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer storage.Close(db)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := storage.IngestSeed(ctx, db, en, zh); err != nil {
		slog.Error("seed ingestion failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog seed ingested successfully")
}
