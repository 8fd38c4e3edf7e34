// Package main provides the entry point for the memtier MCP server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/norbu09/memtier/internal/agent"
	"github.com/norbu09/memtier/internal/config"
	"github.com/norbu09/memtier/internal/db"
	"github.com/norbu09/memtier/internal/embedding"
	"github.com/norbu09/memtier/internal/engine"
	"github.com/norbu09/memtier/internal/jobs"
	"github.com/norbu09/memtier/internal/llm"
	"github.com/norbu09/memtier/internal/retrieval"
	"github.com/norbu09/memtier/internal/server"
	"github.com/norbu09/memtier/internal/tools"
)

const version = "0.1.0"

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logger (dual output: stderr text + file JSON)
	logger, cleanup := config.SetupLogger(cfg)
	defer func() { _ = cleanup() }()

	logger.Info("memtier starting",
		"version", version,
		"surrealdb_url", cfg.SurrealDBURL,
		"embedding_provider", cfg.EmbeddingProvider,
		"llm_provider", cfg.LLMProvider,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect to database
	dbCfg := db.Config{
		URL:       cfg.SurrealDBURL,
		Namespace: cfg.SurrealDBNamespace,
		Database:  cfg.SurrealDBDatabase,
		Username:  cfg.SurrealDBUser,
		Password:  cfg.SurrealDBPass,
		AuthLevel: cfg.SurrealDBAuthLevel,
	}

	dbClient, err := db.NewClient(ctx, dbCfg, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		logger.Info("closing database connection")
		_ = dbClient.Close(context.Background())
	}()

	if err := dbClient.InitSchema(ctx); err != nil {
		logger.Error("failed to initialize database schema", "error", err)
		os.Exit(1)
	}

	// Create embedder (network providers degrade to the offline embedder)
	embedder, err := embedding.New(embedding.Config{
		Provider:     embedding.ProviderType(cfg.EmbeddingProvider),
		Model:        cfg.EmbeddingModel,
		VoyageAPIKey: cfg.VoyageAPIKey,
		Logger:       logger,
	})
	if err != nil {
		logger.Error("failed to create embedder", "error", err)
		os.Exit(1)
	}
	logger.Info("embedder initialized", "model", embedder.Model())

	generator, err := llm.NewFromConfig(cfg)
	if err != nil {
		logger.Error("failed to create response generator", "error", err)
		os.Exit(1)
	}
	logger.Info("generator initialized", "model", generator.Model())

	resolver, err := config.NewResolver(cfg.TierConfigFile)
	if err != nil {
		logger.Error("failed to load tier configuration", "error", err)
		os.Exit(1)
	}

	// Wire the memory engine, background workers, and the facade
	eng := engine.New(dbClient, embedder, logger)
	manager := jobs.NewManager(&jobs.EngineExecutor{Engine: eng, Resolver: resolver}, dbClient, cfg.Workers, logger)
	manager.Start(ctx)
	defer manager.Stop()

	if cfg.MaintenanceCron != "" {
		cronRunner, err := manager.StartCron(cfg.MaintenanceCron, dbClient)
		if err != nil {
			logger.Error("failed to start maintenance cron", "error", err)
			os.Exit(1)
		}
		defer cronRunner.Stop()
	}

	orchestrator := retrieval.New(dbClient, embedder, logger)
	facade := agent.New(dbClient, orchestrator, generator, manager, resolver, nil, logger)

	// Create and setup server
	srv := server.New(version, logger)
	srv.Setup()

	deps := &tools.Dependencies{
		Agent:  facade,
		Logger: logger,
	}
	tools.RegisterAll(srv.MCPServer(), deps)
	logger.Info("tools registered", "count", 5)

	logger.Info("server ready, awaiting connections")

	// Run server (blocks until disconnect or context cancelled)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
