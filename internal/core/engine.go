package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/zmem-project/zmem/internal/embedding"
	"github.com/zmem-project/zmem/internal/ingest"
	"github.com/zmem-project/zmem/internal/model"
	"github.com/zmem-project/zmem/internal/store"
	"github.com/zmem-project/zmem/internal/vectorstore"
)

// Engine owns the metadata store, vector collection manager, and
// embedding provider for one process and exposes the save/get/list/
// recall/delete/reindex/status operations of spec.md §4.9. Per §5, the
// metadata-store handle and vector collection are owned here and
// closed exactly once on shutdown.
type Engine struct {
	Store     store.Store
	Vectors   *vectorstore.Manager
	Embedder  embedding.Provider
	ModelName string
	Log       zerolog.Logger

	RecallMetrics *LatencyWindow
}

// Pipeline returns an ingestion pipeline wired to this engine's stores,
// used by the ingest/watch/reindex CLI commands and the optional
// memory_reindex tool.
func (e *Engine) Pipeline() *ingest.Pipeline {
	return &ingest.Pipeline{
		Store:     e.Store,
		Vectors:   e.Vectors,
		Embedder:  e.Embedder,
		ModelName: e.ModelName,
	}
}

// Close disposes the embedding provider, then releases the vector
// collection and store handles, in that order. Close is safe to call
// exactly once at shutdown.
func (e *Engine) Close(ctx context.Context) error {
	var firstErr error
	if err := e.Embedder.Dispose(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := e.Vectors.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := e.Store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// SaveInput is the validated shape save() accepts (spec.md §4.9).
type SaveInput struct {
	Type         model.Type
	Title        string
	Content      string
	Scope        model.Scope
	Tags         []string
	Importance   float64
	SupersedesID string
}

// SaveOutput is save()'s return shape.
type SaveOutput struct {
	ID           string
	IsNew        bool
	SupersededID string
}

// ListFilters parameterises list() (spec.md §4.9).
type ListFilters struct {
	Workspace string
	Type      model.Type
	Scope     model.Scope
	Status    model.Status
	Limit     int
	Offset    int
}

// RecallFilters parameterises recall() (spec.md §4.5-§4.9).
type RecallFilters struct {
	Workspace         string
	Mode              string // "lexical" | "vector" | "hybrid"
	Scopes            []model.Scope
	Types             []model.Type
	TopK              int
	IncludeSuperseded bool
}

// StatusOutput is status()'s return shape.
type StatusOutput struct {
	TotalItems        int
	TotalVectors      int
	PendingEmbeddings int
	LastIndexedAt     *time.Time
}
