package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/xhad/shopsearch/internal/types"
	"github.com/xhad/shopsearch/pkg/config"
	"github.com/xhad/shopsearch/pkg/ingest"
	"github.com/xhad/shopsearch/pkg/llm"
	"github.com/xhad/shopsearch/pkg/reader"
	"github.com/xhad/shopsearch/pkg/search"
	"github.com/xhad/shopsearch/pkg/store"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "shopsearch",
	Short: "Product and order search over a vector index",
	Long: `shopsearch imports product catalogs and order exports into a vector
index and answers shopper questions grounded in the matching records.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A missing .env is fine.
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// app holds the wired components for one command run.
type app struct {
	config   *config.Config
	logger   *slog.Logger
	store    types.CollectionStore
	service  *search.Service
	ingestor *ingest.Ingestor
}

func newApp(ctx context.Context, onProgress func(done, total int)) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, fmt.Errorf("invalid configuration:\n  %s", strings.Join(msgs, "\n  "))
	}

	logger := newLogger(os.Stderr, cfg.Log)
	slog.SetDefault(logger)

	embedder, err := llm.NewEmbedder(llm.EmbedderConfig{
		Provider: cfg.Embedding.Provider,
		Model:    cfg.Embedding.Model,
		BaseURL:  cfg.Embedding.BaseURL,
		APIKey:   cfg.Embedding.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	chatEngine, err := llm.NewWithConfig(llm.ChatConfig{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chat engine: %w", err)
	}

	collections, err := store.New(ctx, cfg.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vector store: %w", err)
	}

	service := search.NewWithConfig(search.ServiceConfig{
		ConfidenceThreshold: cfg.Search.ConfidenceThreshold,
		MaxResults:          cfg.Search.MaxResults,
		Categories:          cfg.Search.Categories,
		ClassifierMaxTokens: cfg.LLM.ClassifierMaxTokens,
		ResponseMaxTokens:   cfg.LLM.MaxTokens,
		Logger:              logger,
	}, embedder, chatEngine, collections)

	ingestor := ingest.NewWithConfig(ingest.IngestorConfig{
		BatchSize:  cfg.Ingest.BatchSize,
		Pacing:     cfg.Ingest.Pacing,
		RateLimit:  cfg.Embedding.RateLimit,
		OnProgress: onProgress,
		Logger:     logger,
	}, collections, embedder, reader.New())

	return &app{
		config:   cfg,
		logger:   logger,
		store:    collections,
		service:  service,
		ingestor: ingestor,
	}, nil
}

func (a *app) Close() {
	a.store.Close()
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
