package embedding

import "fmt"

// Options mirrors config.AIEmbedding: the subset of ai.embedding needed
// to construct a provider.
type Options struct {
	Provider   string
	Model      string
	BaseURL    string
	APIKey     string
	Dimensions int
	BatchSize  int
}

// New constructs the concrete provider named by opts.Provider.
func New(opts Options) (Provider, error) {
	switch opts.Provider {
	case "ollama":
		return NewOllamaProvider(opts.BaseURL, opts.Model, opts.Dimensions, opts.BatchSize), nil
	case "openai":
		return NewOpenAIProvider(opts.BaseURL, opts.APIKey, opts.Model, opts.Dimensions, opts.BatchSize), nil
	case "llamacpp":
		return NewLlamaCppProvider(opts.BaseURL, opts.Model, opts.Dimensions, opts.BatchSize), nil
	default:
		return nil, fmt.Errorf("embedding: unknown provider %q", opts.Provider)
	}
}
