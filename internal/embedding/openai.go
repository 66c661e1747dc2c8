package embedding

// OpenAIProvider embeds text via any OpenAI-compatible /v1/embeddings
// API (OpenAI itself, or a self-hosted drop-in).
type OpenAIProvider struct {
	*openAICompatible
}

// NewOpenAIProvider constructs an OpenAI-backed provider. baseURL
// defaults to https://api.openai.com/v1.
func NewOpenAIProvider(baseURL, apiKey, model string, dimensions, batchSize int) *OpenAIProvider {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "text-embedding-3-small"
	}
	if dimensions == 0 {
		dimensions = 1536
	}
	return &OpenAIProvider{openAICompatible: newOpenAICompatible(baseURL, apiKey, model, dimensions, batchSize)}
}
