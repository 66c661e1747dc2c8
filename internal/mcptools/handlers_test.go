package mcptools

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/zmem-project/zmem/internal/config"
	"github.com/zmem-project/zmem/internal/core"
	"github.com/zmem-project/zmem/internal/embedding"
	"github.com/zmem-project/zmem/internal/store"
	"github.com/zmem-project/zmem/internal/vectorstore"
)

const testDimensions = 4

type fakeEmbedder struct{}

func (f *fakeEmbedder) Initialize(ctx context.Context) error { return nil }
func (f *fakeEmbedder) Dispose(ctx context.Context) error    { return nil }
func (f *fakeEmbedder) HealthCheck(ctx context.Context) bool { return true }
func (f *fakeEmbedder) Dimensions() int                      { return testDimensions }

func (f *fakeEmbedder) Embed(ctx context.Context, text string) (embedding.Vector, error) {
	return make(embedding.Vector, testDimensions), nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, items []embedding.Item) ([]embedding.Result, error) {
	out := make([]embedding.Result, len(items))
	for i, it := range items {
		out[i] = embedding.Result{ID: it.ID, Vector: make(embedding.Vector, testDimensions), Dimensions: testDimensions}
	}
	return out, nil
}

func newTestHandlers(t *testing.T) *Handlers {
	t.Helper()
	dir := t.TempDir()

	st, err := store.Open(filepath.Join(dir, "meta.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	vecs := vectorstore.NewManager(filepath.Join(dir, "vectors"), testDimensions)
	t.Cleanup(func() { vecs.Close() })

	engine := &core.Engine{
		Store: st, Vectors: vecs, Embedder: &fakeEmbedder{},
		ModelName: "test-model", Log: zerolog.Nop(),
	}
	cfg := config.Default()
	cfg.Workspaces = []config.Workspace{{Name: "ws"}}

	return &Handlers{engine: engine, cfg: cfg, log: zerolog.Nop()}
}

func callToolRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: args},
	}
}

// S9: memory_query with limit=101 must be rejected.
func TestMemoryQueryRejectsLimitOver100(t *testing.T) {
	h := newTestHandlers(t)
	req := callToolRequest(map[string]any{"query": "quokka", "limit": float64(101)})

	result, err := h.memoryQuery(context.Background(), req)
	if err != nil {
		t.Fatalf("memoryQuery: %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected an error result for limit=101, got %+v", result)
	}
}

// S9: memory_get with id="" must be rejected.
func TestMemoryGetRejectsEmptyID(t *testing.T) {
	h := newTestHandlers(t)
	req := callToolRequest(map[string]any{"id": ""})

	result, err := h.memoryGet(context.Background(), req)
	if err != nil {
		t.Fatalf("memoryGet: %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected an error result for id=\"\", got %+v", result)
	}
}

// S9: memory_save without title must be rejected.
func TestMemorySaveRejectsMissingTitle(t *testing.T) {
	h := newTestHandlers(t)
	req := callToolRequest(map[string]any{"type": "fact", "content": "some content"})

	result, err := h.memorySave(context.Background(), req)
	if err != nil {
		t.Fatalf("memorySave: %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected an error result for missing title, got %+v", result)
	}
}

// S9: verbose stderr diagnostics must contain queryLen= and must not
// contain the raw query text.
func TestLogVerboseOmitsRawQuery(t *testing.T) {
	var buf strings.Builder
	h := newTestHandlers(t)
	h.log = zerolog.New(&buf)
	h.verbose = true

	const secretQuery = "the quick brown fox jumps over the lazy dog"
	req := callToolRequest(map[string]any{"query": secretQuery, "limit": float64(5)})

	if _, err := h.memoryQuery(context.Background(), req); err != nil {
		t.Fatalf("memoryQuery: %v", err)
	}

	logged := buf.String()
	if !strings.Contains(logged, "queryLen") {
		t.Fatalf("expected log to contain queryLen, got %q", logged)
	}
	if strings.Contains(logged, secretQuery) {
		t.Fatalf("expected log to omit the raw query, got %q", logged)
	}
}
