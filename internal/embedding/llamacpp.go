package embedding

// LlamaCppProvider embeds text via a local llama-server's
// OpenAI-compatible /v1/embeddings endpoint. It shares wire format with
// OpenAIProvider but defaults to a local base URL and requires no API
// key.
type LlamaCppProvider struct {
	*openAICompatible
}

// NewLlamaCppProvider constructs a llama.cpp-backed provider. baseURL
// defaults to http://localhost:8080/v1.
func NewLlamaCppProvider(baseURL, model string, dimensions, batchSize int) *LlamaCppProvider {
	if baseURL == "" {
		baseURL = "http://localhost:8080/v1"
	}
	if dimensions == 0 {
		dimensions = 1024
	}
	return &LlamaCppProvider{openAICompatible: newOpenAICompatible(baseURL, "", model, dimensions, batchSize)}
}
