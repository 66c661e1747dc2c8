package ingest

import (
	"context"
	"hash/fnv"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/zmem-project/zmem/internal/embedding"
	"github.com/zmem-project/zmem/internal/model"
	"github.com/zmem-project/zmem/internal/store"
	"github.com/zmem-project/zmem/internal/vectorstore"
)

func removeFile(path string) error { return os.Remove(path) }

const testDimensions = 8

// fakeEmbedder deterministically maps text to a vector by hashing, so
// tests can assert on nearest-neighbour behavior without a network
// call.
type fakeEmbedder struct{}

func (f *fakeEmbedder) Initialize(ctx context.Context) error { return nil }
func (f *fakeEmbedder) Dispose(ctx context.Context) error    { return nil }
func (f *fakeEmbedder) HealthCheck(ctx context.Context) bool { return true }
func (f *fakeEmbedder) Dimensions() int                      { return testDimensions }

func (f *fakeEmbedder) Embed(ctx context.Context, text string) (embedding.Vector, error) {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()
	v := make(embedding.Vector, testDimensions)
	for i := range v {
		v[i] = float32((seed>>(uint(i)%32))&0xff) / 255
	}
	return v, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, items []embedding.Item) ([]embedding.Result, error) {
	out := make([]embedding.Result, len(items))
	for i, it := range items {
		v, err := f.Embed(ctx, it.Text)
		if err != nil {
			return nil, err
		}
		out[i] = embedding.Result{ID: it.ID, Vector: v, Dimensions: testDimensions}
	}
	return out, nil
}

func newTestPipeline(t *testing.T) (*Pipeline, store.Store, *vectorstore.Manager) {
	t.Helper()
	dir := t.TempDir()

	st, err := store.Open(filepath.Join(dir, "meta.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	vecs := vectorstore.NewManager(filepath.Join(dir, "vectors"), testDimensions)
	t.Cleanup(func() { vecs.Close() })

	p := &Pipeline{Store: st, Vectors: vecs, Embedder: &fakeEmbedder{}, ModelName: "test-model"}
	return p, st, vecs
}

func TestPipelineRunInsertsNewDocuments(t *testing.T) {
	ctx := context.Background()
	p, st, _ := newTestPipeline(t)

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.md"), "# Alpha\nquokka notes about habitat\n")
	writeFile(t, filepath.Join(root, "b.md"), "# Beta\nsome other content entirely\n")

	result, err := p.Run(ctx, Options{Workspace: "ws", RootPath: root})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Inserted != 2 {
		t.Fatalf("expected 2 inserted, got %+v", result)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("expected no errors, got %+v", result.Errors)
	}

	items, total, err := st.ListItems(ctx, store.ListParams{Workspace: "ws"})
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("expected 2 active items, got total=%d len=%d", total, len(items))
	}
}

func TestPipelineRunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	p, _, _ := newTestPipeline(t)

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.md"), "# Alpha\nquokka notes about habitat\n")

	if _, err := p.Run(ctx, Options{Workspace: "ws", RootPath: root}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	result, err := p.Run(ctx, Options{Workspace: "ws", RootPath: root})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if result.Inserted != 0 || result.Updated != 0 || result.Unchanged != 1 {
		t.Fatalf("expected a no-op second run, got %+v", result)
	}
}

func TestPipelineRunArchivesAndReplacesOnChange(t *testing.T) {
	ctx := context.Background()
	p, st, _ := newTestPipeline(t)

	root := t.TempDir()
	path := filepath.Join(root, "a.md")
	writeFile(t, path, "# Alpha\noriginal content\n")

	if _, err := p.Run(ctx, Options{Workspace: "ws", RootPath: root}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	original, err := st.FindActiveBySource(ctx, "ws", "a.md")
	if err != nil || original == nil {
		t.Fatalf("expected original item, err=%v item=%v", err, original)
	}

	writeFile(t, path, "# Alpha\nchanged content\n")
	result, err := p.Run(ctx, Options{Workspace: "ws", RootPath: root})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if result.Updated != 1 {
		t.Fatalf("expected 1 updated, got %+v", result)
	}

	oldItem, err := st.GetItem(ctx, "ws", original.ID)
	if err != nil {
		t.Fatalf("get old item: %v", err)
	}
	if oldItem.Status != model.StatusArchived {
		t.Fatalf("expected old item archived, got %s", oldItem.Status)
	}

	replacement, err := st.FindActiveBySource(ctx, "ws", "a.md")
	if err != nil || replacement == nil {
		t.Fatalf("expected replacement item, err=%v item=%v", err, replacement)
	}
	if replacement.SupersedesID != original.ID {
		t.Fatalf("expected replacement to supersede original, got %q", replacement.SupersedesID)
	}
}

func TestPipelineRunSoftDeletesMissingSources(t *testing.T) {
	ctx := context.Background()
	p, st, _ := newTestPipeline(t)

	root := t.TempDir()
	pathA := filepath.Join(root, "a.md")
	pathB := filepath.Join(root, "b.md")
	writeFile(t, pathA, "# Alpha\nkept around\n")
	writeFile(t, pathB, "# Beta\nwill disappear\n")

	if _, err := p.Run(ctx, Options{Workspace: "ws", RootPath: root}); err != nil {
		t.Fatalf("first run: %v", err)
	}

	if err := removeFile(pathB); err != nil {
		t.Fatalf("remove: %v", err)
	}

	result, err := p.Run(ctx, Options{Workspace: "ws", RootPath: root})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if result.Removed != 1 {
		t.Fatalf("expected 1 removed, got %+v", result)
	}

	bItem, err := st.FindActiveBySource(ctx, "ws", "b.md")
	if err != nil {
		t.Fatalf("find b: %v", err)
	}
	if bItem != nil {
		t.Fatalf("expected b.md's item to no longer be active, got %+v", bItem)
	}
}

func TestReindexRebuildsChunksAndVectors(t *testing.T) {
	ctx := context.Background()
	p, st, vecs := newTestPipeline(t)

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.md"), "# Alpha\nquokka habitat details go here\n")
	if _, err := p.Run(ctx, Options{Workspace: "ws", RootPath: root}); err != nil {
		t.Fatalf("initial run: %v", err)
	}

	item, err := st.FindActiveBySource(ctx, "ws", "a.md")
	if err != nil || item == nil {
		t.Fatalf("expected item, err=%v", err)
	}
	beforeChunks, err := st.ChunksForItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("chunks for item: %v", err)
	}

	result, err := p.Reindex(ctx, "ws")
	if err != nil {
		t.Fatalf("reindex: %v", err)
	}
	if result.Processed != 1 || result.Errors != 0 {
		t.Fatalf("expected 1 processed, 0 errors, got %+v", result)
	}

	afterChunks, err := st.ChunksForItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("chunks for item after reindex: %v", err)
	}
	if len(afterChunks) != len(beforeChunks) {
		t.Fatalf("expected same chunk count after reindex, before=%d after=%d", len(beforeChunks), len(afterChunks))
	}

	hits, err := vecs.Query(ctx, "ws", mustEmbed(t, "quokka habitat details go here"), 5, "")
	if err != nil {
		t.Fatalf("query vectors: %v", err)
	}
	if len(hits) == 0 {
		t.Fatalf("expected reindexed vectors to be queryable")
	}
}

func mustEmbed(t *testing.T, text string) embedding.Vector {
	t.Helper()
	v, err := (&fakeEmbedder{}).Embed(context.Background(), text)
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	return v
}
