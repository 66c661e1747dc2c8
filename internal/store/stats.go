package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/zmem-project/zmem/internal/model"
)

// StatusCounts computes the fields behind the core status() operation:
// total active items, total chunk_embeddings rows, chunks lacking an
// embedding row, and the most recent update across active items, all
// scoped to workspace.
func (s *SQLiteStore) StatusCounts(ctx context.Context, workspace string) (StatusCounts, error) {
	var out StatusCounts

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memory_items WHERE workspace = ? AND status = ?`,
		workspace, string(model.StatusActive)).Scan(&out.TotalItems)
	if err != nil {
		return out, fmt.Errorf("store: count items: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM chunk_embeddings ce
		JOIN content_chunks c ON c.id = ce.chunk_id
		JOIN memory_items m ON m.id = c.memory_id
		WHERE m.workspace = ? AND m.status = ? AND c.deleted_at IS NULL`,
		workspace, string(model.StatusActive)).Scan(&out.TotalEmbeddings)
	if err != nil {
		return out, fmt.Errorf("store: count embeddings: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM content_chunks c
		JOIN memory_items m ON m.id = c.memory_id
		LEFT JOIN chunk_embeddings ce ON ce.chunk_id = c.id
		WHERE m.workspace = ? AND m.status = ? AND c.deleted_at IS NULL AND ce.chunk_id IS NULL`,
		workspace, string(model.StatusActive)).Scan(&out.PendingEmbeddings)
	if err != nil {
		return out, fmt.Errorf("store: count pending embeddings: %w", err)
	}

	var lastIndexed sql.NullString
	err = s.db.QueryRowContext(ctx,
		`SELECT MAX(updated_at) FROM memory_items WHERE workspace = ? AND status = ?`,
		workspace, string(model.StatusActive)).Scan(&lastIndexed)
	if err != nil {
		return out, fmt.Errorf("store: last indexed at: %w", err)
	}
	if lastIndexed.Valid && lastIndexed.String != "" {
		t := parseTime(lastIndexed.String)
		out.LastIndexedAt = &t
	}

	return out, nil
}
