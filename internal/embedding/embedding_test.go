package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Vector
	}{
		{"simple", Vector{3, 4}},
		{"already unit", Vector{1, 0, 0}},
		{"zero vector", Vector{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := normalize(tt.in)
			var sumSq float64
			for _, x := range out {
				sumSq += float64(x) * float64(x)
			}
			if sumSq == 0 {
				return
			}
			if math.Abs(math.Sqrt(sumSq)-1) > 0.001 {
				t.Errorf("normalize(%v) = %v, norm %f, want 1", tt.in, out, math.Sqrt(sumSq))
			}
		})
	}
}

func TestOllamaProviderEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var req ollamaEmbedRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: []float32{3, 4}})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "nomic-embed-text", 2, 0)
	ctx := context.Background()

	if _, err := p.Embed(ctx, "hello"); err != ErrNotInitialized {
		t.Fatalf("expected ErrNotInitialized before Initialize, got %v", err)
	}

	if err := p.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	v, err := p.Embed(ctx, "hello")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(v) != 2 {
		t.Fatalf("expected 2 dims, got %d", len(v))
	}
	if math.Abs(float64(v[0])-0.6) > 0.01 || math.Abs(float64(v[1])-0.8) > 0.01 {
		t.Errorf("expected unit vector (0.6, 0.8), got %v", v)
	}

	if err := p.Dispose(ctx); err != nil {
		t.Fatalf("Dispose: %v", err)
	}
	if _, err := p.Embed(ctx, "hello"); err != ErrNotInitialized {
		t.Fatalf("expected ErrNotInitialized after Dispose, got %v", err)
	}
}

func TestOpenAICompatibleEmbedBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openaiEmbedRequest
		json.NewDecoder(r.Body).Decode(&req)
		resp := openaiEmbedResponse{}
		for i := range req.Input {
			resp.Data = append(resp.Data, struct {
				Index     int       `json:"index"`
				Embedding []float32 `json:"embedding"`
			}{Index: i, Embedding: []float32{1, 1}})
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	p := NewOpenAIProvider(srv.URL, "", "text-embedding-3-small", 2, 2)
	ctx := context.Background()
	if err := p.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	items := []Item{{ID: "a_0", Text: "one"}, {ID: "a_1", Text: "two"}, {ID: "a_2", Text: "three"}}
	results, err := p.EmbedBatch(ctx, items)
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	seen := map[string]bool{}
	for _, r := range results {
		seen[r.ID] = true
		if r.Dimensions != 2 {
			t.Errorf("expected dims=2, got %d", r.Dimensions)
		}
	}
	for _, it := range items {
		if !seen[it.ID] {
			t.Errorf("missing result for id %s", it.ID)
		}
	}
}

func TestOpenAICompatibleMismatchedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(openaiEmbedResponse{})
	}))
	defer srv.Close()

	p := NewLlamaCppProvider(srv.URL, "local-embed", 4, 8)
	ctx := context.Background()
	if err := p.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if _, err := p.EmbedBatch(ctx, []Item{{ID: "x", Text: "hi"}}); err == nil {
		t.Fatal("expected error when provider returns fewer vectors than requested")
	}
}

func TestNewUnknownProvider(t *testing.T) {
	if _, err := New(Options{Provider: "carrier-pigeon"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
