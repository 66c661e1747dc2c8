package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/zmem-project/zmem/internal/chunker"
	"github.com/zmem-project/zmem/internal/embedding"
	"github.com/zmem-project/zmem/internal/model"
	"github.com/zmem-project/zmem/internal/store"
	"github.com/zmem-project/zmem/internal/vectorstore"
)

// ReindexResult summarises a Reindex run.
type ReindexResult struct {
	Processed  int
	Errors     int
	DurationMs int64
}

// Reindex rebuilds chunks, embeddings, and vectors for every active
// item in workspace from its stored content (spec.md §4.4's reindex
// variant). The item row itself is not recreated; only updated_at
// advances. An empty workspace is a no-op.
func (p *Pipeline) Reindex(ctx context.Context, workspace string) (ReindexResult, error) {
	started := time.Now()
	var result ReindexResult

	items, err := p.Store.ListActiveItems(ctx, workspace)
	if err != nil {
		return result, fmt.Errorf("ingest: reindex: list active items: %w", err)
	}

	now := time.Now().UTC()
	for _, item := range items {
		if err := p.reindexItem(ctx, workspace, item, now); err != nil {
			result.Errors++
			continue
		}
		result.Processed++
	}

	result.DurationMs = time.Since(started).Milliseconds()
	return result, nil
}

func (p *Pipeline) reindexItem(ctx context.Context, workspace string, item model.MemoryItem, now time.Time) error {
	oldChunks, err := p.Store.ChunksForItem(ctx, item.ID)
	if err != nil {
		return fmt.Errorf("chunks for item: %w", err)
	}
	for _, c := range oldChunks {
		if err := p.Vectors.Delete(ctx, workspace, c.ID); err != nil {
			return fmt.Errorf("delete vector %s: %w", c.ID, err)
		}
	}
	if err := p.Store.DeleteChunksAndEmbeddings(ctx, item.ID); err != nil {
		return fmt.Errorf("delete chunks and embeddings: %w", err)
	}

	chunks := chunker.Document(item.Content, p.chunkOptions())
	chunkInputs := make([]store.ChunkInput, len(chunks))
	for i, c := range chunks {
		chunkInputs[i] = store.ChunkInput{Seq: c.Seq, Pos: c.Pos, TokenCount: c.TokenCount, Text: c.Text}
	}

	persisted, err := p.Store.InsertChunks(ctx, item.ID, chunkInputs, now)
	if err != nil {
		return fmt.Errorf("insert chunks: %w", err)
	}

	items := make([]embedding.Item, len(persisted))
	for i, c := range persisted {
		items[i] = embedding.Item{ID: c.ID, Text: c.ChunkText}
	}
	embedded, err := p.Embedder.EmbedBatch(ctx, items)
	if err != nil {
		return fmt.Errorf("embed batch: %w", err)
	}
	byID := make(map[string]embedding.Result, len(embedded))
	for _, r := range embedded {
		byID[r.ID] = r
	}

	chunkIDs := make([]string, len(persisted))
	for i, c := range persisted {
		r, ok := byID[c.ID]
		if !ok {
			return fmt.Errorf("embedding: missing embedding for chunk %s", c.ID)
		}
		chunkIDs[i] = c.ID
		md := vectorstore.Metadata{MemoryID: item.ID, Workspace: workspace, Scope: string(item.Scope), Type: string(item.Type), Status: string(model.StatusActive)}
		if err := p.Vectors.Insert(ctx, workspace, c.ID, r.Vector, md); err != nil {
			return fmt.Errorf("insert vector: %w", err)
		}
	}

	if err := p.Store.InsertChunkEmbeddings(ctx, chunkIDs, p.ModelName, now); err != nil {
		return fmt.Errorf("insert chunk embeddings: %w", err)
	}

	if _, _, err := p.Store.SetStatus(ctx, item.ID, item.Status, now); err != nil {
		return fmt.Errorf("touch updated_at: %w", err)
	}
	return nil
}
