// Package vectorstore implements the vector collection capability
// (spec.md §4.2) on top of sqlite-vec's vec0 virtual table: one
// on-disk collection per workspace, exact brute-force cosine KNN, and
// a small metadata filter grammar over auxiliary columns.
package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
)

func init() {
	sqlite_vec.Auto()
}

// HNSW parameter constants retained for interface parity with an ANN
// index even though vec0 performs exact brute-force search. A future
// swap to a true HNSW-backed vec0 build (or another ANN library) can
// pick these values back up without touching callers.
const (
	HNSWM              = 16
	HNSWEfConstruction = 128
	HNSWEf             = 128
)

// Metadata is the set of auxiliary columns carried alongside each
// vector so that recall() can filter without a join back to the
// metadata store.
type Metadata struct {
	MemoryID  string
	Workspace string
	Scope     string
	Type      string
	Status    string
}

// Hit is one result of a Query call.
type Hit struct {
	ID       string
	Score    float64
	Metadata Metadata
}

// Collection wraps one workspace's vec0-backed vector table.
type Collection struct {
	db         *sql.DB
	dimensions int
}

// Open opens (creating if necessary) the vector collection for a
// workspace under baseDir/<workspace>/vectors.db. If the directory
// exists but the database file cannot be opened or queried, it is
// removed and recreated from scratch rather than left corrupt.
func Open(baseDir, workspace string, dimensions int) (*Collection, error) {
	dir := filepath.Join(baseDir, workspace)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("vectorstore: create workspace dir: %w", err)
	}

	dbPath := filepath.Join(dir, "vectors.db")
	c, err := openAt(dbPath, dimensions)
	if err != nil {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			return nil, fmt.Errorf("vectorstore: open failed (%v) and recovery cleanup failed: %w", err, rmErr)
		}
		if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
			return nil, fmt.Errorf("vectorstore: recreate workspace dir: %w", mkErr)
		}
		c, err = openAt(dbPath, dimensions)
		if err != nil {
			return nil, fmt.Errorf("vectorstore: open after recovery: %w", err)
		}
	}
	return c, nil
}

func openAt(dbPath string, dimensions int) (*Collection, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	schema := fmt.Sprintf(`
		CREATE VIRTUAL TABLE IF NOT EXISTS chunk_vectors USING vec0(
			chunk_id TEXT PRIMARY KEY,
			embedding float[%d] distance_metric=cosine,
			+memory_id TEXT,
			+workspace TEXT,
			+scope TEXT,
			+type TEXT,
			+status TEXT
		)`, dimensions)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("vectorstore: create vec0 table: %w", err)
	}

	return &Collection{db: db, dimensions: dimensions}, nil
}

// Close releases the underlying database handle.
func (c *Collection) Close() error {
	return c.db.Close()
}

func encodeVector(v []float32) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("vectorstore: marshal vector: %w", err)
	}
	return string(b), nil
}

// Insert upserts a chunk's embedding and metadata. id is the chunk
// id, not the memory id.
func (c *Collection) Insert(ctx context.Context, id string, vector []float32, md Metadata) error {
	if len(vector) != c.dimensions {
		return fmt.Errorf("vectorstore: vector has %d dimensions, collection expects %d", len(vector), c.dimensions)
	}
	enc, err := encodeVector(vector)
	if err != nil {
		return err
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO chunk_vectors (chunk_id, embedding, memory_id, workspace, scope, type, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, enc, md.MemoryID, md.Workspace, md.Scope, md.Type, md.Status)
	if err != nil {
		return fmt.Errorf("vectorstore: insert: %w", err)
	}
	return nil
}

// Delete removes a chunk's vector. Deleting a missing id is not an
// error.
func (c *Collection) Delete(ctx context.Context, id string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM chunk_vectors WHERE chunk_id = ?`, id)
	if err != nil {
		return fmt.Errorf("vectorstore: delete: %w", err)
	}
	return nil
}

// Query runs an exact cosine-distance KNN search over the collection,
// restricted by filter (a boolean expression over the metadata
// columns; see filter.go). An empty filter matches everything.
func (c *Collection) Query(ctx context.Context, vector []float32, topK int, filter string) ([]Hit, error) {
	if len(vector) != c.dimensions {
		return nil, fmt.Errorf("vectorstore: query vector has %d dimensions, collection expects %d", len(vector), c.dimensions)
	}
	whereSQL, whereArgs, err := Compile(filter)
	if err != nil {
		return nil, err
	}
	enc, err := encodeVector(vector)
	if err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = 10
	}

	query := fmt.Sprintf(`
		SELECT chunk_id, vec_distance_cosine(embedding, ?) AS distance, memory_id, workspace, scope, type, status
		FROM chunk_vectors
		WHERE %s
		ORDER BY distance ASC
		LIMIT ?`, whereSQL)

	args := append([]any{enc}, whereArgs...)
	args = append(args, topK)

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: query: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		var distance float64
		if err := rows.Scan(&h.ID, &distance, &h.Metadata.MemoryID, &h.Metadata.Workspace, &h.Metadata.Scope, &h.Metadata.Type, &h.Metadata.Status); err != nil {
			return nil, fmt.Errorf("vectorstore: scan hit: %w", err)
		}
		h.Score = 1 - distance
		hits = append(hits, h)
	}
	return hits, rows.Err()
}
