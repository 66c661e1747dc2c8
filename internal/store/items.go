package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/zmem-project/zmem/internal/model"
)

const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}

func (s *SQLiteStore) InsertPendingItem(ctx context.Context, p InsertItemParams) error {
	tagsJSON, err := json.Marshal(p.Tags)
	if err != nil {
		return fmt.Errorf("store: marshal tags: %w", err)
	}
	var supersedes any
	if p.SupersedesID != "" {
		supersedes = p.SupersedesID
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO memory_items (
			id, type, title, content, summary, source, scope, workspace,
			tags, importance, status, supersedes_id, content_hash, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, string(p.Type), p.Title, p.Content, p.Summary, p.Source, string(p.Scope), p.Workspace,
		string(tagsJSON), p.Importance, string(p.Status), supersedes, p.ContentHash,
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("store: insert item: %w", err)
	}
	return nil
}

func (s *SQLiteStore) InsertChunks(ctx context.Context, memoryID string, chunks []ChunkInput, createdAt time.Time) ([]model.ContentChunk, error) {
	out := make([]model.ContentChunk, 0, len(chunks))
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, c := range chunks {
			id := model.ChunkID(memoryID, c.Seq)
			_, err := tx.ExecContext(ctx, `
				INSERT INTO content_chunks (id, memory_id, seq, pos, token_count, chunk_text, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				id, memoryID, c.Seq, c.Pos, c.TokenCount, c.Text, formatTime(createdAt))
			if err != nil {
				return fmt.Errorf("insert chunk %s: %w", id, err)
			}
			out = append(out, model.ContentChunk{
				ID: id, MemoryID: memoryID, Seq: c.Seq, Pos: c.Pos,
				TokenCount: c.TokenCount, ChunkText: c.Text, CreatedAt: createdAt,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store: insert chunks: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) InsertChunkEmbeddings(ctx context.Context, chunkIDs []string, modelName string, embeddedAt time.Time) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, id := range chunkIDs {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO chunk_embeddings (chunk_id, embedded_at, model) VALUES (?, ?, ?)`,
				id, formatTime(embeddedAt), modelName)
			if err != nil {
				return fmt.Errorf("insert chunk_embedding %s: %w", id, err)
			}
		}
		return nil
	})
}

func (s *SQLiteStore) ActivateItem(ctx context.Context, id string, supersedesID string, updatedAt time.Time) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE memory_items SET status = ?, updated_at = ? WHERE id = ?`,
			string(model.StatusActive), formatTime(updatedAt), id); err != nil {
			return err
		}
		if supersedesID != "" {
			if _, err := tx.ExecContext(ctx,
				`UPDATE memory_items SET status = ?, updated_at = ? WHERE id = ?`,
				string(model.StatusArchived), formatTime(updatedAt), supersedesID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLiteStore) ArchiveItem(ctx context.Context, id string, updatedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `UPDATE memory_items SET status = ?, updated_at = ? WHERE id = ?`,
		string(model.StatusArchived), formatTime(updatedAt), id)
	return err
}

func (s *SQLiteStore) DeleteItemRow(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM memory_items WHERE id = ?`, id)
	return err
}

func (s *SQLiteStore) SetStatus(ctx context.Context, id string, status model.Status, updatedAt time.Time) (model.Status, time.Time, error) {
	var prevStatus, prevUpdatedAt string
	err := s.db.QueryRowContext(ctx, `SELECT status, updated_at FROM memory_items WHERE id = ?`, id).
		Scan(&prevStatus, &prevUpdatedAt)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("store: set status lookup: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `UPDATE memory_items SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), formatTime(updatedAt), id)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("store: set status: %w", err)
	}
	return model.Status(prevStatus), parseTime(prevUpdatedAt), nil
}

const itemColumns = `id, type, title, content, summary, source, scope, workspace,
	tags, importance, status, supersedes_id, content_hash, created_at, updated_at`

func scanItem(row interface{ Scan(dest ...any) error }) (model.MemoryItem, error) {
	var m model.MemoryItem
	var typ, scope, status, tagsJSON, createdAt, updatedAt string
	var summary, source, supersedes sql.NullString

	err := row.Scan(&m.ID, &typ, &m.Title, &m.Content, &summary, &source, &scope, &m.Workspace,
		&tagsJSON, &m.Importance, &status, &supersedes, &m.ContentHash, &createdAt, &updatedAt)
	if err != nil {
		return m, err
	}
	m.Type = model.Type(typ)
	m.Scope = model.Scope(scope)
	m.Status = model.Status(status)
	m.Summary = summary.String
	m.Source = source.String
	m.SupersedesID = supersedes.String
	m.CreatedAt = parseTime(createdAt)
	m.UpdatedAt = parseTime(updatedAt)
	json.Unmarshal([]byte(tagsJSON), &m.Tags)
	return m, nil
}

func (s *SQLiteStore) GetItem(ctx context.Context, workspace, id string) (*model.MemoryItem, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM memory_items WHERE id = ? AND workspace = ?`, id, workspace)
	m, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get item: %w", err)
	}
	return &m, nil
}

func (s *SQLiteStore) FindActiveBySource(ctx context.Context, workspace, source string) (*model.MemoryItem, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM memory_items WHERE workspace = ? AND source = ? AND status = ?`,
		workspace, source, string(model.StatusActive))
	m, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: find active by source: %w", err)
	}
	return &m, nil
}

func (s *SQLiteStore) ListItems(ctx context.Context, p ListParams) ([]model.MemoryItem, int, error) {
	where := []string{"workspace = ?"}
	args := []any{p.Workspace}

	status := p.Status
	if status == "" {
		status = model.StatusActive
	}
	where = append(where, "status = ?")
	args = append(args, string(status))

	if p.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(p.Type))
	}
	if p.Scope != "" {
		where = append(where, "scope = ?")
		args = append(args, string(p.Scope))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memory_items WHERE `+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("store: count items: %w", err)
	}

	limit := p.Limit
	if limit <= 0 {
		limit = 30
	}
	queryArgs := append(append([]any{}, args...), limit, p.Offset)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM memory_items WHERE `+whereClause+
			` ORDER BY created_at DESC LIMIT ? OFFSET ?`, queryArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("store: list items: %w", err)
	}
	defer rows.Close()

	var items []model.MemoryItem
	for rows.Next() {
		m, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}

func (s *SQLiteStore) ListActiveItems(ctx context.Context, workspace string) ([]model.MemoryItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM memory_items WHERE workspace = ? AND status = ?`,
		workspace, string(model.StatusActive))
	if err != nil {
		return nil, fmt.Errorf("store: list active items: %w", err)
	}
	defer rows.Close()

	var items []model.MemoryItem
	for rows.Next() {
		m, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (s *SQLiteStore) HydrateItems(ctx context.Context, workspace string, ids []string, statuses []model.Status) (map[string]model.MemoryItem, error) {
	out := map[string]model.MemoryItem{}
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, 0, len(ids)+len(statuses)+1)
	for i, id := range ids {
		placeholders[i] = "?"
		args = append(args, id)
	}
	where := fmt.Sprintf("id IN (%s)", strings.Join(placeholders, ","))

	if workspace != "" {
		where += " AND workspace = ?"
		args = append(args, workspace)
	}
	if len(statuses) > 0 {
		sp := make([]string, len(statuses))
		for i, st := range statuses {
			sp[i] = "?"
			args = append(args, string(st))
		}
		where += fmt.Sprintf(" AND status IN (%s)", strings.Join(sp, ","))
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM memory_items WHERE `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("store: hydrate items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		m, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out[m.ID] = m
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ArchiveAndTombstone(ctx context.Context, oldID string, archivedAt time.Time) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE memory_items SET status = ?, updated_at = ? WHERE id = ?`,
			string(model.StatusArchived), formatTime(archivedAt), oldID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `UPDATE content_chunks SET deleted_at = ? WHERE memory_id = ? AND deleted_at IS NULL`,
			formatTime(archivedAt), oldID)
		return err
	})
}

func (s *SQLiteStore) SoftDeleteMissingSources(ctx context.Context, workspace string, keepSources []string, deletedAt time.Time) (int64, error) {
	args := []any{string(model.StatusDeleted), formatTime(deletedAt), workspace, string(model.StatusActive)}
	notIn := ""
	if len(keepSources) > 0 {
		placeholders := make([]string, len(keepSources))
		for i, src := range keepSources {
			placeholders[i] = "?"
			args = append(args, src)
		}
		notIn = fmt.Sprintf(" AND source NOT IN (%s)", strings.Join(placeholders, ","))
	}
	result, err := s.db.ExecContext(ctx,
		`UPDATE memory_items SET status = ?, updated_at = ? WHERE workspace = ? AND status = ? AND source != ''`+notIn,
		args...)
	if err != nil {
		return 0, fmt.Errorf("store: soft delete missing sources: %w", err)
	}
	return result.RowsAffected()
}

func (s *SQLiteStore) ChunksForItem(ctx context.Context, memoryID string) ([]model.ContentChunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, memory_id, seq, pos, token_count, chunk_text, created_at, deleted_at
		FROM content_chunks WHERE memory_id = ? AND deleted_at IS NULL ORDER BY seq`, memoryID)
	if err != nil {
		return nil, fmt.Errorf("store: chunks for item: %w", err)
	}
	defer rows.Close()

	var chunks []model.ContentChunk
	for rows.Next() {
		var c model.ContentChunk
		var createdAt string
		var deletedAt sql.NullString
		if err := rows.Scan(&c.ID, &c.MemoryID, &c.Seq, &c.Pos, &c.TokenCount, &c.ChunkText, &createdAt, &deletedAt); err != nil {
			return nil, err
		}
		c.CreatedAt = parseTime(createdAt)
		if deletedAt.Valid {
			t := parseTime(deletedAt.String)
			c.DeletedAt = &t
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

func (s *SQLiteStore) DeleteChunksAndEmbeddings(ctx context.Context, memoryID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM content_chunks WHERE memory_id = ?`, memoryID)
	if err != nil {
		return fmt.Errorf("store: delete chunks: %w", err)
	}
	return nil
}
