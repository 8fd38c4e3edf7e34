// Package cli provides the command-line interface for memtier.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/norbu09/memtier/internal/agent"
	"github.com/norbu09/memtier/internal/config"
	"github.com/norbu09/memtier/internal/db"
	"github.com/norbu09/memtier/internal/embedding"
	"github.com/norbu09/memtier/internal/engine"
	"github.com/norbu09/memtier/internal/jobs"
	"github.com/norbu09/memtier/internal/llm"
	"github.com/norbu09/memtier/internal/retrieval"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool
	agentID string

	// Global config and db client
	cfg        config.Config
	dbClient   *db.Client
	logger     *slog.Logger
	logCleanup func() error
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "memtier",
	Short: "Hierarchical memory engine for conversational agents",
	Long: `Memtier gives a conversational agent memory beyond its context window:
recent turns, topical segments with heat-based lifecycle, long-term
persona knowledge, and a cross-agent shared pool.

Interactions flow in through 'interact'; memory moves between tiers via
background maintenance; 'search' reads all four tiers concurrently.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip DB connection for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}
		logger, logCleanup = config.SetupLogger(cfg)

		ctx := context.Background()
		dbCfg := db.Config{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
		}

		var err error
		dbClient, err = db.NewClient(ctx, dbCfg, logger)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}

		if err := dbClient.InitSchema(ctx); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if dbClient != nil {
			if err := dbClient.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
			}
		}
		if logCleanup != nil {
			_ = logCleanup()
		}
	},
}

// buildAgent wires the full engine behind the facade. The returned
// manager is started; callers stop it before exit so scheduled work
// drains.
func buildAgent(ctx context.Context) (*agent.Agent, *jobs.Manager, error) {
	emb, err := embedding.New(embedding.Config{
		Provider:     embedding.ProviderType(cfg.EmbeddingProvider),
		Model:        cfg.EmbeddingModel,
		VoyageAPIKey: cfg.VoyageAPIKey,
		Logger:       logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init embedder: %w", err)
	}

	gen, err := llm.NewFromConfig(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init generator: %w", err)
	}

	resolver, err := config.NewResolver(cfg.TierConfigFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load tier config: %w", err)
	}

	eng := engine.New(dbClient, emb, logger)
	manager := jobs.NewManager(&jobs.EngineExecutor{Engine: eng, Resolver: resolver}, dbClient, cfg.Workers, logger)
	manager.Start(ctx)

	orchestrator := retrieval.New(dbClient, emb, logger)
	facade := agent.New(dbClient, orchestrator, gen, manager, resolver, nil, logger)
	return facade, manager, nil
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&agentID, "agent", "a", "default", "agent identifier")

	rootCmd.AddCommand(interactCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(maintainCmd)
	rootCmd.AddCommand(jobsCmd)
}
