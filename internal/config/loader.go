package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads the JSON config at path, applying a sibling .env file (if
// present) and the environment overrides of spec.md §6. A missing
// config file yields Default() rather than an error.
func Load(path string) (*Config, error) {
	if path != "" {
		envPath := filepath.Join(filepath.Dir(path), ".env")
		if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: load .env: %w", err)
		}
	}

	if path == "" {
		return applyEnvOverrides(Default()), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return applyEnvOverrides(Default()), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}

	return applyEnvOverrides(cfg), nil
}

// applyEnvOverrides mutates cfg per spec.md §6's environment-variable
// table: ZMD_EMBED_MODEL always applies; ZMD_EMBED_PROVIDER applies only
// when it names a recognised provider.
func applyEnvOverrides(cfg *Config) *Config {
	if model := os.Getenv("ZMD_EMBED_MODEL"); model != "" {
		cfg.AI.Embedding.Model = model
	}
	if provider := os.Getenv("ZMD_EMBED_PROVIDER"); provider != "" && validEmbeddingProviders[provider] {
		cfg.AI.Embedding.Provider = provider
	}
	return cfg
}

// ResolveWorkspace implements spec.md §6's tool-server workspace
// precedence: explicit argument, then ZMEM_WORKSPACE, then the sole
// configured workspace, then "default".
func (c *Config) ResolveWorkspace(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if fromEnv := os.Getenv("ZMEM_WORKSPACE"); fromEnv != "" {
		return fromEnv
	}
	if len(c.Workspaces) == 1 {
		return c.Workspaces[0].Name
	}
	return "default"
}

// Workspace returns the configured Workspace entry named name, or nil if
// none matches.
func (c *Config) Workspace(name string) *Workspace {
	for i := range c.Workspaces {
		if c.Workspaces[i].Name == name {
			return &c.Workspaces[i]
		}
	}
	return nil
}

// MCPVerbose reports whether verbose stderr diagnostics are enabled for
// the tool server.
func MCPVerbose() bool { return os.Getenv("ZMEM_MCP_VERBOSE") == "true" }

// ReindexToolEnabled reports whether the admin memory_reindex tool
// should be registered.
func ReindexToolEnabled() bool { return os.Getenv("ZMEM_ENABLE_REINDEX_TOOL") == "true" }

// RecallMetricsEnabled reports whether the recall latency window should
// be kept and logged.
func RecallMetricsEnabled() bool { return os.Getenv("ZMEM_RECALL_METRICS") == "true" }
