package embedding

import (
	"context"
	"fmt"
)

// openAICompatible embeds text against any server speaking OpenAI's
// /v1/embeddings wire format. openai.go and llamacpp.go both configure
// one of these with different defaults; the request/response shape and
// batching behaviour are identical.
type openAICompatible struct {
	*httpBase
	apiKey string
}

type openaiEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type openaiEmbedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func newOpenAICompatible(baseURL, apiKey, model string, dimensions, batchSize int) *openAICompatible {
	return &openAICompatible{
		httpBase: newHTTPBase(baseURL, model, dimensions, batchSize),
		apiKey:   apiKey,
	}
}

func (p *openAICompatible) headers() map[string]string {
	if p.apiKey == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + p.apiKey}
}

func (p *openAICompatible) Embed(ctx context.Context, text string) (Vector, error) {
	results, err := p.EmbedBatch(ctx, []Item{{ID: "0", Text: text}})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("embedding: no vector returned")
	}
	return results[0].Vector, nil
}

// EmbedBatch sends items in chunks of batchSize, preserving the caller's
// ids by index within each chunk.
func (p *openAICompatible) EmbedBatch(ctx context.Context, items []Item) ([]Result, error) {
	if err := p.requireLive(); err != nil {
		return nil, err
	}
	results := make([]Result, 0, len(items))
	for start := 0; start < len(items); start += p.batchSize {
		end := start + p.batchSize
		if end > len(items) {
			end = len(items)
		}
		batch := items[start:end]
		texts := make([]string, len(batch))
		for i, it := range batch {
			texts[i] = it.Text
		}

		var resp openaiEmbedResponse
		err := postJSON(ctx, p.client, p.baseURL+"/embeddings", p.headers(),
			openaiEmbedRequest{Model: p.model, Input: texts}, &resp)
		if err != nil {
			return nil, err
		}
		if len(resp.Data) != len(batch) {
			return nil, fmt.Errorf("embedding: expected %d vectors, got %d", len(batch), len(resp.Data))
		}
		for _, d := range resp.Data {
			if d.Index < 0 || d.Index >= len(batch) {
				continue
			}
			v := normalize(d.Embedding)
			results = append(results, Result{ID: batch[d.Index].ID, Vector: v, Dimensions: len(v)})
		}
	}
	if len(results) != len(items) {
		return nil, fmt.Errorf("embedding: provider did not return a vector for every requested id")
	}
	return results, nil
}

func (p *openAICompatible) HealthCheck(ctx context.Context) bool {
	return healthCheckGET(ctx, p.client, p.baseURL+"/models")
}
