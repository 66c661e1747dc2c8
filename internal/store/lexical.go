package store

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/zmem-project/zmem/internal/model"
)

func inClause(col string, n int) string {
	placeholders := make([]string, n)
	for i := range placeholders {
		placeholders[i] = "?"
	}
	return fmt.Sprintf("%s IN (%s)", col, strings.Join(placeholders, ","))
}

func appendScopeTypeStatus(where []string, args []any, scopes []model.Scope, types []model.Type, statuses []model.Status) ([]string, []any) {
	if len(scopes) > 0 {
		where = append(where, inClause("m.scope", len(scopes)))
		for _, sc := range scopes {
			args = append(args, string(sc))
		}
	}
	if len(types) > 0 {
		where = append(where, inClause("m.type", len(types)))
		for _, t := range types {
			args = append(args, string(t))
		}
	}
	if len(statuses) > 0 {
		where = append(where, inClause("m.status", len(statuses)))
		for _, st := range statuses {
			args = append(args, string(st))
		}
	}
	return where, args
}

func matchExpr(tokens []string, mode string) string {
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = `"` + strings.ReplaceAll(t, `"`, "") + `"`
	}
	sep := " AND "
	if mode == "or" {
		sep = " OR "
	}
	return strings.Join(quoted, sep)
}

// BM25Search runs a single lexical pass (AND or OR, selected by
// p.Mode) against the synchronised FTS projection of active items.
func (s *SQLiteStore) BM25Search(ctx context.Context, p LexicalQueryParams) ([]LexicalHit, error) {
	if len(p.Tokens) == 0 {
		return nil, nil
	}
	where := []string{"m.workspace = ?"}
	args := []any{p.Workspace}
	where, args = appendScopeTypeStatus(where, args, p.Scopes, p.Types, p.Statuses)

	query := fmt.Sprintf(`
		SELECT m.id, m.title, m.content,
			snippet(memory_items_fts, 1, '<mark>', '</mark>', '...', 64) AS snippet,
			bm25(memory_items_fts) AS rank, m.scope, m.type, m.status
		FROM memory_items_fts
		JOIN memory_items m ON m.rowid = memory_items_fts.rowid
		WHERE memory_items_fts MATCH ? AND %s
		ORDER BY rank
		LIMIT ?`, strings.Join(where, " AND "))

	queryArgs := append([]any{matchExpr(p.Tokens, p.Mode)}, args...)
	topK := p.TopK
	if topK <= 0 {
		topK = 30
	}
	queryArgs = append(queryArgs, topK)

	rows, err := s.db.QueryContext(ctx, query, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("store: bm25 search: %w", err)
	}
	defer rows.Close()

	var hits []LexicalHit
	for rows.Next() {
		var h LexicalHit
		var bm25 float64
		var scope, typ, status string
		if err := rows.Scan(&h.ID, &h.Title, &h.Content, &h.Snippet, &bm25, &scope, &typ, &status); err != nil {
			return nil, err
		}
		h.Scope = model.Scope(scope)
		h.Type = model.Type(typ)
		h.Status = model.Status(status)
		h.Score = 1 / (1 + math.Abs(bm25))
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// ArchivedKeywordSearch bypasses FTS (which excludes archived rows by
// construction of the triggers) and runs a LIKE conjunction over
// title/content, restricted to status='archived'.
func (s *SQLiteStore) ArchivedKeywordSearch(ctx context.Context, p ArchivedQueryParams) ([]LexicalHit, error) {
	if len(p.Tokens) == 0 {
		return nil, nil
	}
	where := []string{"m.workspace = ?", "m.status = ?"}
	args := []any{p.Workspace, string(model.StatusArchived)}

	for _, tok := range p.Tokens {
		where = append(where, "(LOWER(m.title) LIKE ? OR LOWER(m.content) LIKE ?)")
		needle := "%" + strings.ToLower(tok) + "%"
		args = append(args, needle, needle)
	}
	where, args = appendScopeTypeStatus(where, args, p.Scopes, p.Types, nil)

	topK := p.TopK
	if topK <= 0 {
		topK = 30
	}
	args = append(args, topK)

	query := fmt.Sprintf(`
		SELECT m.id, m.title, m.content, m.scope, m.type, m.status
		FROM memory_items m
		WHERE %s
		ORDER BY m.updated_at DESC
		LIMIT ?`, strings.Join(where, " AND "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: archived keyword search: %w", err)
	}
	defer rows.Close()

	var hits []LexicalHit
	for rows.Next() {
		var h LexicalHit
		var scope, typ, status string
		if err := rows.Scan(&h.ID, &h.Title, &h.Content, &scope, &typ, &status); err != nil {
			return nil, err
		}
		h.Scope = model.Scope(scope)
		h.Type = model.Type(typ)
		h.Status = model.Status(status)
		h.Score = 0.35
		hits = append(hits, h)
	}
	return hits, rows.Err()
}
