package embedding

import (
	"context"
	"fmt"
	"os"
)

// OllamaProvider embeds text via a local Ollama instance's
// /api/embeddings endpoint.
type OllamaProvider struct {
	*httpBase
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// NewOllamaProvider constructs an Ollama-backed provider. baseURL
// defaults to $OLLAMA_HOST or http://localhost:11434.
func NewOllamaProvider(baseURL, model string, dimensions, batchSize int) *OllamaProvider {
	if baseURL == "" {
		baseURL = os.Getenv("OLLAMA_HOST")
	}
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "nomic-embed-text"
	}
	if dimensions == 0 {
		dimensions = 768
	}
	return &OllamaProvider{httpBase: newHTTPBase(baseURL, model, dimensions, batchSize)}
}

func (p *OllamaProvider) Embed(ctx context.Context, text string) (Vector, error) {
	if err := p.requireLive(); err != nil {
		return nil, err
	}
	var resp ollamaEmbedResponse
	err := postJSON(ctx, p.client, p.baseURL+"/api/embeddings", nil,
		ollamaEmbedRequest{Model: p.model, Prompt: text}, &resp)
	if err != nil {
		return nil, err
	}
	return normalize(resp.Embedding), nil
}

// EmbedBatch issues one request per item: Ollama's embeddings endpoint
// takes a single prompt at a time.
func (p *OllamaProvider) EmbedBatch(ctx context.Context, items []Item) ([]Result, error) {
	if err := p.requireLive(); err != nil {
		return nil, err
	}
	results := make([]Result, 0, len(items))
	for _, it := range items {
		v, err := p.Embed(ctx, it.Text)
		if err != nil {
			return nil, fmt.Errorf("embedding: ollama batch item %s: %w", it.ID, err)
		}
		results = append(results, Result{ID: it.ID, Vector: v, Dimensions: len(v)})
	}
	return results, nil
}

func (p *OllamaProvider) HealthCheck(ctx context.Context) bool {
	return healthCheckGET(ctx, p.client, p.baseURL+"/api/tags")
}
