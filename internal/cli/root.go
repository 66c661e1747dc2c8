// Package cli implements the zmem CLI commands.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zmem-project/zmem/internal/config"
	"github.com/zmem-project/zmem/internal/core"
	"github.com/zmem-project/zmem/internal/embedding"
	"github.com/zmem-project/zmem/internal/logging"
	"github.com/zmem-project/zmem/internal/store"
	"github.com/zmem-project/zmem/internal/vectorstore"
)

var (
	configPath    string
	workspaceFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "zmem",
	Short: "Structured, queryable memory for AI agents",
	Long:  "zmem stores, retrieves, and supersedes structured memory items across workspaces, with lexical, vector, and hybrid recall.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (default: $ZMEM_CONFIG or zmem.json in the working directory)")
	RootCmd.PersistentFlags().StringVarP(&workspaceFlag, "workspace", "w", "", "Workspace name (default per config precedence)")
}

func getConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if env := os.Getenv("ZMEM_CONFIG"); env != "" {
		return env
	}
	return "zmem.json"
}

// openEngine wires a core.Engine and its resolved config from the
// config document. The caller owns the returned Engine and must Close
// it.
func openEngine() (*core.Engine, *config.Config, error) {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	log := logging.New(logging.Config{Level: cfg.Logging.Level, Pretty: cfg.Logging.Pretty, Console: cfg.Logging.Console})

	provider, err := embedding.New(embedding.Options{
		Provider: cfg.AI.Embedding.Provider, Model: cfg.AI.Embedding.Model,
		BaseURL: cfg.AI.Embedding.BaseURL, APIKey: cfg.AI.Embedding.APIKey,
		Dimensions: cfg.AI.Embedding.Dimensions, BatchSize: cfg.AI.Embedding.BatchSize,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("construct embedding provider: %w", err)
	}
	if err := provider.Initialize(context.Background()); err != nil {
		return nil, nil, fmt.Errorf("initialize embedding provider: %w", err)
	}

	st, err := store.Open(cfg.Storage.DBPath, log)
	if err != nil {
		return nil, nil, fmt.Errorf("open metadata store: %w", err)
	}

	vecs := vectorstore.NewManager(cfg.Storage.ZvecPath, cfg.AI.Embedding.Dimensions)

	var metrics *core.LatencyWindow
	if config.RecallMetricsEnabled() {
		metrics = core.NewLatencyWindow()
	}

	engine := &core.Engine{
		Store: st, Vectors: vecs, Embedder: provider,
		ModelName: cfg.AI.Embedding.Model, Log: log, RecallMetrics: metrics,
	}
	return engine, cfg, nil
}

// resolveWorkspace applies cfg's workspace precedence to the --workspace flag.
func resolveWorkspace(cfg *config.Config) string {
	return cfg.ResolveWorkspace(workspaceFlag)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
