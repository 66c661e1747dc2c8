// Package store provides the durable metadata/full-text persistence
// boundary: memory items, content chunks, embedding-tracking rows, and
// the BM25 full-text index kept in sync with them.
package store

import (
	"context"
	"time"

	"github.com/zmem-project/zmem/internal/model"
)

// InsertItemParams describes a new memory_items row.
type InsertItemParams struct {
	ID           string
	Type         model.Type
	Title        string
	Content      string
	Summary      string
	Source       string
	Scope        model.Scope
	Workspace    string
	Tags         []string
	Importance   float64
	ContentHash  string
	SupersedesID string
	Status       model.Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ChunkInput is a chunk awaiting persistence, produced by the chunker.
type ChunkInput struct {
	Seq        int
	Pos        int
	TokenCount int
	Text       string
}

// ListParams filters the list() operation (spec.md §4.9).
type ListParams struct {
	Workspace string
	Type      model.Type
	Scope     model.Scope
	Status    model.Status
	Limit     int
	Offset    int
}

// LexicalQueryParams drives a single BM25 pass.
type LexicalQueryParams struct {
	Workspace string
	Tokens    []string
	Mode      string // "and" | "or"
	Scopes    []model.Scope
	Types     []model.Type
	Statuses  []model.Status
	TopK      int
}

// ArchivedQueryParams drives the archived-keyword LIKE fallback.
type ArchivedQueryParams struct {
	Workspace string
	Tokens    []string
	Scopes    []model.Scope
	Types     []model.Type
	TopK      int
}

// LexicalHit is a single result row from BM25Search or
// ArchivedKeywordSearch, carrying enough of the item to build a snippet
// without a second round-trip.
type LexicalHit struct {
	ID      string
	Title   string
	Content string
	// Snippet is the FTS5-generated <mark>-highlighted context window
	// around the matching terms (spec.md §4.5); empty for hits that
	// didn't come from an FTS5 match (e.g. the archived LIKE fallback).
	Snippet string
	Score   float64
	Scope   model.Scope
	Type    model.Type
	Status  model.Status
}

// StatusCounts backs the core status() operation.
type StatusCounts struct {
	TotalItems        int
	TotalEmbeddings   int
	PendingEmbeddings int
	LastIndexedAt     *time.Time
}

// Store is the metadata/FTS persistence boundary the core engine drives.
// SQLiteStore is its only implementation; the interface exists so the
// core package depends on behavior, not a concrete driver.
type Store interface {
	NewID() string

	InsertPendingItem(ctx context.Context, p InsertItemParams) error
	InsertChunks(ctx context.Context, memoryID string, chunks []ChunkInput, createdAt time.Time) ([]model.ContentChunk, error)
	InsertChunkEmbeddings(ctx context.Context, chunkIDs []string, modelName string, embeddedAt time.Time) error

	ActivateItem(ctx context.Context, id string, supersedesID string, updatedAt time.Time) error
	ArchiveItem(ctx context.Context, id string, updatedAt time.Time) error
	DeleteItemRow(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id string, status model.Status, updatedAt time.Time) (prevStatus model.Status, prevUpdatedAt time.Time, err error)

	GetItem(ctx context.Context, workspace, id string) (*model.MemoryItem, error)
	FindActiveBySource(ctx context.Context, workspace, source string) (*model.MemoryItem, error)
	ListItems(ctx context.Context, p ListParams) ([]model.MemoryItem, int, error)
	ListActiveItems(ctx context.Context, workspace string) ([]model.MemoryItem, error)
	HydrateItems(ctx context.Context, workspace string, ids []string, statuses []model.Status) (map[string]model.MemoryItem, error)

	ArchiveAndTombstone(ctx context.Context, oldID string, archivedAt time.Time) error
	SoftDeleteMissingSources(ctx context.Context, workspace string, keepSources []string, deletedAt time.Time) (int64, error)

	ChunksForItem(ctx context.Context, memoryID string) ([]model.ContentChunk, error)
	DeleteChunksAndEmbeddings(ctx context.Context, memoryID string) error

	BM25Search(ctx context.Context, p LexicalQueryParams) ([]LexicalHit, error)
	ArchivedKeywordSearch(ctx context.Context, p ArchivedQueryParams) ([]LexicalHit, error)

	StatusCounts(ctx context.Context, workspace string) (StatusCounts, error)

	Close() error
}
