package store

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on modernc.org/sqlite, the pure-Go driver
// used throughout for anything that does not need sqlite-vec's cgo
// extension.
type SQLiteStore struct {
	db      *sql.DB
	entropy *rand.Rand
	log     zerolog.Logger
}

// Open creates or migrates the metadata database at dbPath.
func Open(dbPath string, log zerolog.Logger) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
		log:     log,
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) NewID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type migration struct {
	version int
	stmts   []string
}

var migrations = []migration{
	{
		version: 1,
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS memory_items (
				id            TEXT PRIMARY KEY,
				type          TEXT NOT NULL,
				title         TEXT NOT NULL,
				content       TEXT NOT NULL,
				summary       TEXT NOT NULL DEFAULT '',
				source        TEXT NOT NULL DEFAULT '',
				scope         TEXT NOT NULL,
				workspace     TEXT NOT NULL,
				tags          TEXT NOT NULL DEFAULT '[]',
				importance    REAL NOT NULL DEFAULT 0.5,
				status        TEXT NOT NULL,
				supersedes_id TEXT REFERENCES memory_items(id) ON DELETE SET NULL,
				content_hash  TEXT NOT NULL,
				created_at    TEXT NOT NULL,
				updated_at    TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_items_workspace ON memory_items(workspace)`,
			`CREATE INDEX IF NOT EXISTS idx_items_scope ON memory_items(scope)`,
			`CREATE INDEX IF NOT EXISTS idx_items_type ON memory_items(type)`,
			`CREATE INDEX IF NOT EXISTS idx_items_status ON memory_items(status)`,
			`CREATE INDEX IF NOT EXISTS idx_items_content_hash ON memory_items(content_hash)`,
			`CREATE INDEX IF NOT EXISTS idx_items_supersedes ON memory_items(supersedes_id)`,
			`CREATE INDEX IF NOT EXISTS idx_items_source_ws_status ON memory_items(source, workspace, status)`,
			`CREATE INDEX IF NOT EXISTS idx_items_ws_status ON memory_items(workspace, status)`,

			`CREATE TABLE IF NOT EXISTS content_chunks (
				id          TEXT PRIMARY KEY,
				memory_id   TEXT NOT NULL REFERENCES memory_items(id) ON DELETE CASCADE,
				seq         INTEGER NOT NULL,
				pos         INTEGER NOT NULL,
				token_count INTEGER NOT NULL,
				chunk_text  TEXT NOT NULL,
				created_at  TEXT NOT NULL,
				deleted_at  TEXT,
				UNIQUE(memory_id, seq)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_chunks_memory ON content_chunks(memory_id)`,
			`CREATE INDEX IF NOT EXISTS idx_chunks_live ON content_chunks(memory_id) WHERE deleted_at IS NULL`,

			`CREATE TABLE IF NOT EXISTS chunk_embeddings (
				chunk_id    TEXT PRIMARY KEY REFERENCES content_chunks(id) ON DELETE CASCADE,
				embedded_at TEXT NOT NULL,
				model       TEXT NOT NULL
			)`,

			`CREATE VIRTUAL TABLE IF NOT EXISTS memory_items_fts USING fts5(
				title, content, tags,
				tokenize = 'porter unicode61',
				content = 'memory_items',
				content_rowid = 'rowid'
			)`,

			`CREATE TRIGGER IF NOT EXISTS items_ai AFTER INSERT ON memory_items
			 WHEN new.status = 'active' BEGIN
				INSERT INTO memory_items_fts(rowid, title, content, tags)
				VALUES (new.rowid, new.title, new.content, new.tags);
			 END`,

			`CREATE TRIGGER IF NOT EXISTS items_ad AFTER DELETE ON memory_items
			 WHEN old.status = 'active' BEGIN
				INSERT INTO memory_items_fts(memory_items_fts, rowid, title, content, tags)
				VALUES ('delete', old.rowid, old.title, old.content, old.tags);
			 END`,

			`CREATE TRIGGER IF NOT EXISTS items_au_delete AFTER UPDATE ON memory_items
			 WHEN old.status = 'active' BEGIN
				INSERT INTO memory_items_fts(memory_items_fts, rowid, title, content, tags)
				VALUES ('delete', old.rowid, old.title, old.content, old.tags);
			 END`,

			`CREATE TRIGGER IF NOT EXISTS items_au_insert AFTER UPDATE ON memory_items
			 WHEN new.status = 'active' BEGIN
				INSERT INTO memory_items_fts(rowid, title, content, tags)
				VALUES (new.rowid, new.title, new.content, new.tags);
			 END`,
		},
	},
}

func (s *SQLiteStore) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return err
	}

	applied := map[int]bool{}
	rows, err := s.db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return err
	}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return err
		}
		applied[v] = true
	}
	rows.Close()

	for _, m := range migrations {
		if applied[m.version] {
			continue
		}
		s.log.Info().Int("version", m.version).Msg("store: applying migration")

		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		for _, stmt := range m.stmts {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return fmt.Errorf("migration %d: %w", m.version, err)
			}
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations(version, applied_at) VALUES (?, ?)`,
			m.version, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}

// withTx runs fn inside a transaction, rolling back on error or panic.
func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.log.Error().Err(rbErr).Msg("store: rollback failed")
		}
		return err
	}
	return tx.Commit()
}
