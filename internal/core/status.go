package core

import "context"

// Status runs status() (spec.md §4.9): item and embedding counts for a
// workspace. TotalVectors is read from the embedding-tracking rows
// rather than the vector collection itself, since the collection has
// no cheap row-count primitive and the tracking rows are kept in sync
// with every vector write in both save() and the ingestion pipeline.
func (e *Engine) Status(ctx context.Context, workspace string) (StatusOutput, error) {
	counts, err := e.Store.StatusCounts(ctx, workspace)
	if err != nil {
		return StatusOutput{}, Database("status counts", err)
	}
	return StatusOutput{
		TotalItems:        counts.TotalItems,
		TotalVectors:      counts.TotalEmbeddings,
		PendingEmbeddings: counts.PendingEmbeddings,
		LastIndexedAt:     counts.LastIndexedAt,
	}, nil
}
