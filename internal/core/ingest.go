package core

import (
	"context"

	"github.com/zmem-project/zmem/internal/ingest"
)

// Ingest runs the ingestion pipeline against this engine's stores
// (spec.md §4.4), used by the ingest/watch CLI commands.
func (e *Engine) Ingest(ctx context.Context, opts ingest.Options) (ingest.Result, error) {
	return e.Pipeline().Run(ctx, opts)
}

// Reindex rebuilds chunks and vectors for every active item in
// workspace without recreating any item row (spec.md §4.4).
func (e *Engine) Reindex(ctx context.Context, workspace string) (ingest.ReindexResult, error) {
	return e.Pipeline().Reindex(ctx, workspace)
}
