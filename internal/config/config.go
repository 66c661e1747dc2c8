// Package config loads zmem's JSON configuration document (spec.md §6)
// and applies environment-variable overrides.
package config

// Config is the top-level configuration document.
type Config struct {
	Defaults   Defaults    `json:"defaults" mapstructure:"defaults"`
	AI         AI          `json:"ai" mapstructure:"ai"`
	Workspaces []Workspace `json:"workspaces" mapstructure:"workspaces"`
	Storage    Storage     `json:"storage" mapstructure:"storage"`
	Logging    Logging     `json:"logging" mapstructure:"logging"`
}

// Logging configures the ambient process-wide logger. Not part of
// spec.md §6's own schema, but carried in the config document per the
// ambient-stack expansion so logging behaviour is file-configurable
// like everything else.
type Logging struct {
	Level   string `json:"level" mapstructure:"level"`
	Pretty  bool   `json:"pretty" mapstructure:"pretty"`
	Console bool   `json:"console" mapstructure:"console"`
}

// Defaults holds the retrieval defaults applied when a caller omits them.
type Defaults struct {
	RetrievalMode string    `json:"retrievalMode" mapstructure:"retrievalMode"`
	ScopesDefault []string  `json:"scopesDefault" mapstructure:"scopesDefault"`
	Retrieval     Retrieval `json:"retrieval" mapstructure:"retrieval"`
}

// Retrieval holds the recall() tunables of spec.md §6.
type Retrieval struct {
	TopKLex           int     `json:"topKLex" mapstructure:"topKLex"`
	TopKVec           int     `json:"topKVec" mapstructure:"topKVec"`
	RerankTopK        int     `json:"rerankTopK" mapstructure:"rerankTopK"`
	MinScore          float64 `json:"minScore" mapstructure:"minScore"`
	IncludeSuperseded bool    `json:"includeSuperseded" mapstructure:"includeSuperseded"`
}

// AI groups the embedding and reranking provider configuration.
type AI struct {
	Embedding AIEmbedding `json:"embedding" mapstructure:"embedding"`
	Rerank    AIRerank    `json:"rerank" mapstructure:"rerank"`
}

// AIEmbedding configures the embedding provider (spec.md §4.3, §6).
type AIEmbedding struct {
	Provider     string `json:"provider" mapstructure:"provider"`
	Model        string `json:"model" mapstructure:"model"`
	Dimensions   int    `json:"dimensions" mapstructure:"dimensions"`
	Quantization string `json:"quantization" mapstructure:"quantization"`
	BatchSize    int    `json:"batchSize" mapstructure:"batchSize"`
	MaxTokens    int    `json:"maxTokens" mapstructure:"maxTokens"`
	BaseURL      string `json:"baseUrl,omitempty" mapstructure:"baseUrl"`
	APIKey       string `json:"apiKey,omitempty" mapstructure:"apiKey"`
}

// AIRerank configures the optional reranking stage. Non-goals exclude
// implementing reranking itself; the schema is carried so a config file
// written against the full spec still parses and round-trips cleanly.
type AIRerank struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Provider string `json:"provider,omitempty" mapstructure:"provider"`
	Model    string `json:"model,omitempty" mapstructure:"model"`
	TopK     int    `json:"topK" mapstructure:"topK"`
}

// Workspace describes one ingestable root (spec.md §6).
type Workspace struct {
	Name             string   `json:"name" mapstructure:"name"`
	Root             string   `json:"root" mapstructure:"root"`
	IncludeByDefault bool     `json:"includeByDefault" mapstructure:"includeByDefault"`
	Patterns         []string `json:"patterns" mapstructure:"patterns"`
	Context          string   `json:"context,omitempty" mapstructure:"context"`
}

// Storage locates the metadata store and vector collection tree.
type Storage struct {
	DBPath   string `json:"dbPath" mapstructure:"dbPath"`
	ZvecPath string `json:"zvecPath" mapstructure:"zvecPath"`
}

// Default returns the configuration used when no config file is
// present, per spec.md §6's stated defaults.
func Default() *Config {
	return &Config{
		Defaults: Defaults{
			RetrievalMode: "hybrid",
			ScopesDefault: []string{"workspace", "global"},
			Retrieval: Retrieval{
				TopKLex: 30, TopKVec: 30, RerankTopK: 20,
				MinScore: 0.25, IncludeSuperseded: false,
			},
		},
		AI: AI{
			Embedding: AIEmbedding{
				Provider: "ollama", Model: "nomic-embed-text",
				Dimensions: 1024, BatchSize: 8, MaxTokens: 8192,
			},
			Rerank: AIRerank{Enabled: false, TopK: 20},
		},
		Workspaces: nil,
		Storage: Storage{
			DBPath:   "zmem.db",
			ZvecPath: "zvec",
		},
		Logging: Logging{Level: "info", Pretty: true, Console: true},
	}
}

var validEmbeddingProviders = map[string]bool{
	"llamacpp": true, "openai": true, "ollama": true,
}
