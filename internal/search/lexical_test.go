package search

import (
	"context"
	"testing"
	"time"

	"github.com/zmem-project/zmem/internal/model"
	"github.com/zmem-project/zmem/internal/store"
)

// fakeStore implements store.Store with just enough behavior to drive
// the lexical pass; every other method is unused by these tests.
type fakeStore struct {
	strictHits   []store.LexicalHit
	relaxedHits  []store.LexicalHit
	archivedHits []store.LexicalHit
}

func (f *fakeStore) NewID() string { return "fake-id" }
func (f *fakeStore) InsertPendingItem(ctx context.Context, p store.InsertItemParams) error {
	return nil
}
func (f *fakeStore) InsertChunks(ctx context.Context, memoryID string, chunks []store.ChunkInput, createdAt time.Time) ([]model.ContentChunk, error) {
	return nil, nil
}
func (f *fakeStore) InsertChunkEmbeddings(ctx context.Context, chunkIDs []string, modelName string, embeddedAt time.Time) error {
	return nil
}
func (f *fakeStore) ActivateItem(ctx context.Context, id string, supersedesID string, updatedAt time.Time) error {
	return nil
}
func (f *fakeStore) ArchiveItem(ctx context.Context, id string, updatedAt time.Time) error { return nil }
func (f *fakeStore) DeleteItemRow(ctx context.Context, id string) error                    { return nil }
func (f *fakeStore) SetStatus(ctx context.Context, id string, status model.Status, updatedAt time.Time) (model.Status, time.Time, error) {
	return "", time.Time{}, nil
}
func (f *fakeStore) GetItem(ctx context.Context, workspace, id string) (*model.MemoryItem, error) {
	return nil, nil
}
func (f *fakeStore) FindActiveBySource(ctx context.Context, workspace, source string) (*model.MemoryItem, error) {
	return nil, nil
}
func (f *fakeStore) ListItems(ctx context.Context, p store.ListParams) ([]model.MemoryItem, int, error) {
	return nil, 0, nil
}
func (f *fakeStore) ListActiveItems(ctx context.Context, workspace string) ([]model.MemoryItem, error) {
	return nil, nil
}
func (f *fakeStore) HydrateItems(ctx context.Context, workspace string, ids []string, statuses []model.Status) (map[string]model.MemoryItem, error) {
	return nil, nil
}
func (f *fakeStore) ArchiveAndTombstone(ctx context.Context, oldID string, archivedAt time.Time) error {
	return nil
}
func (f *fakeStore) SoftDeleteMissingSources(ctx context.Context, workspace string, keepSources []string, deletedAt time.Time) (int64, error) {
	return 0, nil
}
func (f *fakeStore) ChunksForItem(ctx context.Context, memoryID string) ([]model.ContentChunk, error) {
	return nil, nil
}
func (f *fakeStore) DeleteChunksAndEmbeddings(ctx context.Context, memoryID string) error { return nil }

func (f *fakeStore) BM25Search(ctx context.Context, p store.LexicalQueryParams) ([]store.LexicalHit, error) {
	if p.Mode == "and" {
		return f.strictHits, nil
	}
	return f.relaxedHits, nil
}
func (f *fakeStore) ArchivedKeywordSearch(ctx context.Context, p store.ArchivedQueryParams) ([]store.LexicalHit, error) {
	return f.archivedHits, nil
}
func (f *fakeStore) StatusCounts(ctx context.Context, workspace string) (store.StatusCounts, error) {
	return store.StatusCounts{}, nil
}
func (f *fakeStore) Close() error { return nil }

func TestLexicalUsesStrictHitsWhenPresent(t *testing.T) {
	fs := &fakeStore{
		strictHits: []store.LexicalHit{{ID: "a", Title: "A", Content: "quokka habitat", Score: 0.9, Status: model.StatusActive}},
	}
	results, err := Lexical(context.Background(), fs, Params{Query: "quokka habitat", Workspace: "ws", Statuses: []model.Status{model.StatusActive}})
	if err != nil {
		t.Fatalf("lexical: %v", err)
	}
	if len(results) != 1 || results[0].ID != "a" {
		t.Fatalf("expected strict hit a, got %+v", results)
	}
}

func TestLexicalFallsBackToRelaxedWhenStrictEmpty(t *testing.T) {
	fs := &fakeStore{
		relaxedHits: []store.LexicalHit{{ID: "a", Title: "A", Content: "quokka", Score: 0.5, Status: model.StatusActive}},
	}
	results, err := Lexical(context.Background(), fs, Params{Query: "quokka zebra", Workspace: "ws", Statuses: []model.Status{model.StatusActive}})
	if err != nil {
		t.Fatalf("lexical: %v", err)
	}
	if len(results) != 1 || results[0].ID != "a" {
		t.Fatalf("expected relaxed hit a, got %+v", results)
	}
}

func TestLexicalSingleTokenDoesNotRetryRelaxed(t *testing.T) {
	fs := &fakeStore{
		relaxedHits: []store.LexicalHit{{ID: "should-not-appear", Score: 1}},
	}
	results, err := Lexical(context.Background(), fs, Params{Query: "quokka", Workspace: "ws", Statuses: []model.Status{model.StatusActive}})
	if err != nil {
		t.Fatalf("lexical: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results since relaxed should not run for single token, got %+v", results)
	}
}

func TestLexicalMergesArchivedWhenRequested(t *testing.T) {
	fs := &fakeStore{
		strictHits:   []store.LexicalHit{{ID: "a", Title: "A", Content: "quokka", Score: 0.9, Status: model.StatusActive}},
		archivedHits: []store.LexicalHit{{ID: "b", Title: "B", Content: "quokka archived", Score: 0.35, Status: model.StatusArchived}},
	}
	results, err := Lexical(context.Background(), fs, Params{
		Query: "quokka", Workspace: "ws", Statuses: []model.Status{model.StatusActive, model.StatusArchived},
	})
	if err != nil {
		t.Fatalf("lexical: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 merged results, got %+v", results)
	}
}
