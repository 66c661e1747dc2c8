package core

import (
	"context"
	"strings"
	"time"

	"github.com/zmem-project/zmem/internal/chunker"
	"github.com/zmem-project/zmem/internal/embedding"
	"github.com/zmem-project/zmem/internal/model"
	"github.com/zmem-project/zmem/internal/store"
	"github.com/zmem-project/zmem/internal/vectorstore"
)

// DefaultImportance is applied by CLI/tool-server input parsing when a
// caller omits importance (spec.md §4.9).
const DefaultImportance = 0.5

// Save runs the two-phase save protocol of spec.md §4.9: prepare
// (chunk + embed) outside any transaction, then a metadata-store
// transaction, then vector writes, then finalise, then post-finalise
// cleanup — with compensation at every step after prepare.
func (e *Engine) Save(ctx context.Context, workspace string, in SaveInput) (SaveOutput, error) {
	if err := validateSaveInput(in); err != nil {
		return SaveOutput{}, err
	}

	var supersededItem *model.MemoryItem
	if in.SupersedesID != "" {
		target, err := e.Store.GetItem(ctx, workspace, in.SupersedesID)
		if err != nil {
			return SaveOutput{}, Database("lookup supersede target", err)
		}
		if target == nil {
			return SaveOutput{}, NotFound("supersede target does not exist in this workspace")
		}
		if target.Status != model.StatusActive {
			return SaveOutput{}, Conflict("supersede target is not active")
		}
		supersededItem = target
	}

	// Phase 0: prepare outside any transaction.
	chunks := chunker.Document(in.Content, chunker.DefaultOptions())
	newID := e.Store.NewID()
	chunkItems := make([]embedding.Item, len(chunks))
	for i, c := range chunks {
		chunkItems[i] = embedding.Item{ID: model.ChunkID(newID, c.Seq), Text: c.Text}
	}
	embedded, err := e.Embedder.EmbedBatch(ctx, chunkItems)
	if err != nil {
		return SaveOutput{}, Embedding("embed batch failed during save", err)
	}
	byID := make(map[string]embedding.Result, len(embedded))
	for _, r := range embedded {
		byID[r.ID] = r
	}
	for _, it := range chunkItems {
		if _, ok := byID[it.ID]; !ok {
			return SaveOutput{}, Embedding("embedding provider did not return every requested chunk", nil)
		}
	}

	now := time.Now().UTC()
	scope := in.Scope
	if scope == "" {
		scope = model.ScopeWorkspace
	}

	// Phase 1: metadata-store transaction.
	if err := e.Store.InsertPendingItem(ctx, store.InsertItemParams{
		ID: newID, Type: in.Type, Title: in.Title, Content: in.Content,
		Scope: scope, Workspace: workspace, Tags: in.Tags, Importance: in.Importance,
		SupersedesID: in.SupersedesID, Status: model.StatusPending,
		ContentHash: contentHash(in.Content), CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		return SaveOutput{}, Database("insert pending item", err)
	}

	chunkInputs := make([]store.ChunkInput, len(chunks))
	for i, c := range chunks {
		chunkInputs[i] = store.ChunkInput{Seq: c.Seq, Pos: c.Pos, TokenCount: c.TokenCount, Text: c.Text}
	}
	persisted, err := e.Store.InsertChunks(ctx, newID, chunkInputs, now)
	if err != nil {
		e.Store.DeleteItemRow(ctx, newID)
		return SaveOutput{}, Database("insert chunks", err)
	}
	chunkIDs := make([]string, len(persisted))
	for i, c := range persisted {
		chunkIDs[i] = c.ID
	}
	if err := e.Store.InsertChunkEmbeddings(ctx, chunkIDs, e.ModelName, now); err != nil {
		e.Store.DeleteChunksAndEmbeddings(ctx, newID)
		e.Store.DeleteItemRow(ctx, newID)
		return SaveOutput{}, Database("insert chunk embeddings", err)
	}

	// Phase 2: vector writes. Metadata carries status="active" even
	// though the row is still pending; visibility is governed by the
	// row-status filter at read time, which avoids a costly metadata
	// rewrite on finalise.
	for _, c := range persisted {
		r := byID[c.ID]
		md := vectorstore.Metadata{MemoryID: newID, Workspace: workspace, Scope: string(scope), Type: string(in.Type), Status: string(model.StatusActive)}
		if err := e.Vectors.Insert(ctx, workspace, c.ID, r.Vector, md); err != nil {
			e.rollbackPendingVectors(ctx, workspace, persisted)
			e.Store.DeleteChunksAndEmbeddings(ctx, newID)
			e.Store.DeleteItemRow(ctx, newID)
			return SaveOutput{}, Database("insert vector", err)
		}
	}

	// Phase 3: finalise.
	if err := e.Store.ActivateItem(ctx, newID, in.SupersedesID, now); err != nil {
		e.rollbackPendingVectors(ctx, workspace, persisted)
		e.Store.DeleteChunksAndEmbeddings(ctx, newID)
		e.Store.DeleteItemRow(ctx, newID)
		return SaveOutput{}, Database("activate item", err)
	}

	out := SaveOutput{ID: newID, IsNew: true}

	// Phase 4: post-finalise cleanup. The DB side is already
	// consistent; a failure here only surfaces as a reported error.
	if supersededItem != nil {
		out.SupersededID = supersededItem.ID
		oldChunks, err := e.Store.ChunksForItem(ctx, supersededItem.ID)
		if err != nil {
			e.Log.Error().Err(err).Str("supersededId", supersededItem.ID).Msg("core: list superseded item's chunks for vector cleanup")
			return out, Database("list superseded item's chunks", err)
		}
		for _, c := range oldChunks {
			if err := e.Vectors.Delete(ctx, workspace, c.ID); err != nil {
				e.Log.Error().Err(err).Str("chunkId", c.ID).Msg("core: delete superseded chunk vector")
				return out, Database("delete superseded chunk vector", err)
			}
		}
	}

	return out, nil
}

func (e *Engine) rollbackPendingVectors(ctx context.Context, workspace string, chunks []model.ContentChunk) {
	for _, c := range chunks {
		if err := e.Vectors.Delete(ctx, workspace, c.ID); err != nil {
			e.Log.Error().Err(err).Str("chunkId", c.ID).Msg("core: rollback pending vector")
		}
	}
}

func validateSaveInput(in SaveInput) error {
	if !model.ValidTypes[in.Type] {
		return Validation("type must be one of the recognised memory types")
	}
	if strings.TrimSpace(in.Title) == "" {
		return Validation("title must not be empty")
	}
	if strings.TrimSpace(in.Content) == "" {
		return Validation("content must not be empty")
	}
	if in.Scope != "" && !model.ValidScopes[in.Scope] {
		return Validation("scope must be one of the recognised scopes")
	}
	if in.Importance < 0 || in.Importance > 1 {
		return Validation("importance must be within [0,1]")
	}
	return nil
}
