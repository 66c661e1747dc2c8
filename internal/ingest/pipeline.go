package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zmem-project/zmem/internal/chunker"
	"github.com/zmem-project/zmem/internal/embedding"
	"github.com/zmem-project/zmem/internal/model"
	"github.com/zmem-project/zmem/internal/store"
	"github.com/zmem-project/zmem/internal/vectorstore"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const (
	defaultParseConcurrency = 10
	defaultEmbedConcurrency = 8
)

// Options parameterises a single ingestion run (spec.md §4.4).
type Options struct {
	Workspace string
	RootPath  string
	Patterns  []string
}

// FileError records a per-file failure without aborting the run.
type FileError struct {
	Source string
	Err    string
}

// Result is the summary spec.md §4.4 requires ingest() to return.
type Result struct {
	Scanned       int
	Inserted      int
	Updated       int
	Unchanged     int
	Removed       int
	ChunksCreated int
	Errors        []FileError
	DurationMs    int64
}

// Pipeline wires the three collaborating stores behind the ingestion
// and reindex operations.
type Pipeline struct {
	Store     store.Store
	Vectors   *vectorstore.Manager
	Embedder  embedding.Provider
	ModelName string

	ParseConcurrency int
	EmbedConcurrency int
	ChunkOptions     chunker.Options
}

func (p *Pipeline) parseConcurrency() int64 {
	if p.ParseConcurrency > 0 {
		return int64(p.ParseConcurrency)
	}
	return defaultParseConcurrency
}

func (p *Pipeline) embedConcurrency() int64 {
	if p.EmbedConcurrency > 0 {
		return int64(p.EmbedConcurrency)
	}
	return defaultEmbedConcurrency
}

func (p *Pipeline) chunkOptions() chunker.Options {
	if p.ChunkOptions.MaxTokens > 0 {
		return p.ChunkOptions
	}
	return chunker.DefaultOptions()
}

type parseOutcome struct {
	file DiscoveredFile
	doc  ParsedDocument
	err  error
}

// Run executes the full ingestion pipeline once: discover, parse
// (bounded concurrency), detect changes, chunk+embed+upsert changed
// documents (bounded concurrency), then clean up vanished sources.
func (p *Pipeline) Run(ctx context.Context, opts Options) (Result, error) {
	started := time.Now()
	var result Result

	files, err := Discover(opts.RootPath, opts.Patterns)
	if err != nil {
		return result, fmt.Errorf("ingest: discover: %w", err)
	}
	result.Scanned = len(files)

	outcomes := p.parseAll(ctx, files)

	keepSources := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		if o.err != nil {
			result.Errors = append(result.Errors, FileError{Source: o.file.RelPath, Err: o.err.Error()})
			continue
		}
		keepSources = append(keepSources, o.doc.Source)
	}

	now := time.Now().UTC()
	sem := semaphore.NewWeighted(p.embedConcurrency())
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, o := range outcomes {
		if o.err != nil {
			continue
		}
		o := o

		existing, err := p.Store.FindActiveBySource(ctx, opts.Workspace, o.doc.Source)
		if err != nil {
			mu.Lock()
			result.Errors = append(result.Errors, FileError{Source: o.doc.Source, Err: err.Error()})
			mu.Unlock()
			continue
		}
		if existing != nil && existing.ContentHash == o.doc.ContentHash {
			mu.Lock()
			result.Unchanged++
			mu.Unlock()
			continue
		}

		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			result.Errors = append(result.Errors, FileError{Source: o.doc.Source, Err: err.Error()})
			mu.Unlock()
			continue
		}
		wg.Add(1)
		go func() {
			defer sem.Release(1)
			defer wg.Done()

			chunks, err := p.upsertDocument(ctx, opts.Workspace, o.doc, existing, now)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors = append(result.Errors, FileError{Source: o.doc.Source, Err: err.Error()})
				return
			}
			result.ChunksCreated += chunks
			if existing != nil {
				result.Updated++
			} else {
				result.Inserted++
			}
		}()
	}
	wg.Wait()

	removed, err := p.Store.SoftDeleteMissingSources(ctx, opts.Workspace, keepSources, now)
	if err != nil {
		return result, fmt.Errorf("ingest: cleanup: %w", err)
	}
	result.Removed = int(removed)

	result.DurationMs = time.Since(started).Milliseconds()
	return result, nil
}

func (p *Pipeline) parseAll(ctx context.Context, files []DiscoveredFile) []parseOutcome {
	outcomes := make([]parseOutcome, len(files))
	sem := semaphore.NewWeighted(p.parseConcurrency())
	g, gctx := errgroup.WithContext(ctx)

	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				outcomes[i] = parseOutcome{file: f, err: err}
				return nil
			}
			defer sem.Release(1)
			doc, err := ParseFile(f.AbsPath, f.RelPath)
			outcomes[i] = parseOutcome{file: f, doc: doc, err: err}
			return nil
		})
	}
	g.Wait()
	return outcomes
}

// upsertDocument runs the chunk/embed/write stages for a single
// changed or new document and returns the number of chunks written.
func (p *Pipeline) upsertDocument(ctx context.Context, workspace string, doc ParsedDocument, existing *model.MemoryItem, now time.Time) (int, error) {
	newID := p.Store.NewID()
	priorID := ""
	if existing != nil {
		priorID = existing.ID
	}

	chunks := chunker.Document(doc.Content, p.chunkOptions())
	chunkInputs := make([]store.ChunkInput, len(chunks))
	for i, c := range chunks {
		chunkInputs[i] = store.ChunkInput{Seq: c.Seq, Pos: c.Pos, TokenCount: c.TokenCount, Text: c.Text}
	}

	if err := p.Store.InsertPendingItem(ctx, store.InsertItemParams{
		ID: newID, Type: doc.Type, Title: doc.Title, Content: doc.Content, Source: doc.Source,
		Scope: model.ScopeWorkspace, Workspace: workspace, Tags: doc.Tags, Importance: doc.Importance,
		ContentHash: doc.ContentHash, SupersedesID: priorID, Status: model.StatusPending,
		CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		return 0, fmt.Errorf("insert pending item: %w", err)
	}

	persisted, err := p.Store.InsertChunks(ctx, newID, chunkInputs, now)
	if err != nil {
		p.Store.DeleteItemRow(ctx, newID)
		return 0, fmt.Errorf("insert chunks: %w", err)
	}

	items := make([]embedding.Item, len(persisted))
	for i, c := range persisted {
		items[i] = embedding.Item{ID: c.ID, Text: c.ChunkText}
	}

	embedded, err := p.Embedder.EmbedBatch(ctx, items)
	if err != nil {
		p.Store.DeleteChunksAndEmbeddings(ctx, newID)
		p.Store.DeleteItemRow(ctx, newID)
		return 0, fmt.Errorf("embed batch: %w", err)
	}
	byID := make(map[string]embedding.Result, len(embedded))
	for _, r := range embedded {
		byID[r.ID] = r
	}
	chunkIDs := make([]string, len(persisted))
	for i, c := range persisted {
		r, ok := byID[c.ID]
		if !ok {
			p.Store.DeleteChunksAndEmbeddings(ctx, newID)
			p.Store.DeleteItemRow(ctx, newID)
			return 0, fmt.Errorf("embedding: missing embedding for chunk %s", c.ID)
		}
		chunkIDs[i] = c.ID
		md := vectorstore.Metadata{MemoryID: newID, Workspace: workspace, Scope: string(model.ScopeWorkspace), Type: string(doc.Type), Status: string(model.StatusActive)}
		if err := p.Vectors.Insert(ctx, workspace, c.ID, r.Vector, md); err != nil {
			p.Store.DeleteChunksAndEmbeddings(ctx, newID)
			p.Store.DeleteItemRow(ctx, newID)
			return 0, fmt.Errorf("insert vector: %w", err)
		}
	}

	if err := p.Store.InsertChunkEmbeddings(ctx, chunkIDs, p.ModelName, now); err != nil {
		p.Store.DeleteChunksAndEmbeddings(ctx, newID)
		p.Store.DeleteItemRow(ctx, newID)
		return 0, fmt.Errorf("insert chunk embeddings: %w", err)
	}

	if priorID != "" {
		if err := p.Store.ArchiveAndTombstone(ctx, priorID, now); err != nil {
			return 0, fmt.Errorf("archive prior: %w", err)
		}
	}
	if err := p.Store.ActivateItem(ctx, newID, "", now); err != nil {
		return 0, fmt.Errorf("activate: %w", err)
	}

	return len(persisted), nil
}
