package core

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/zmem-project/zmem/internal/model"
	"github.com/zmem-project/zmem/internal/search"
	"github.com/zmem-project/zmem/internal/store"
)

// recallMetricsLogEvery is how many recorded recalls pass between
// count/p50/p95 log lines when RecallMetrics is set.
const recallMetricsLogEvery = 50

// Recall runs recall() (spec.md §4.5-§4.9): resolve the status set from
// includeSuperseded, dispatch to lexical/vector/hybrid, merge in an
// archived-keyword pass when superseded rows are in scope, hide items
// superseded by another still-active item, and truncate to topK.
func (e *Engine) Recall(ctx context.Context, workspace, query string, filters RecallFilters) ([]search.Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, Validation("query must not be empty")
	}

	started := time.Now()

	statuses := []model.Status{model.StatusActive}
	if filters.IncludeSuperseded {
		statuses = append(statuses, model.StatusArchived)
	}

	params := search.Params{
		Query:     query,
		Workspace: workspace,
		TopK:      filters.TopK,
		Scopes:    filters.Scopes,
		Types:     filters.Types,
		Statuses:  statuses,
	}

	results, err := e.dispatchSearch(ctx, filters.Mode, params)
	if err != nil {
		return nil, Database("search", err)
	}

	if filters.IncludeSuperseded {
		archived, err := e.Store.ArchivedKeywordSearch(ctx, store.ArchivedQueryParams{
			Workspace: workspace, Tokens: search.Tokenize(query),
			Scopes: filters.Scopes, Types: filters.Types, TopK: defaultTopKOrZero(filters.TopK),
		})
		if err != nil {
			return nil, Database("archived keyword search", err)
		}
		results = search.MergeKeepHigher(results, archivedHitsToResults(archived))
	}

	hidden, err := e.hiddenSupersededIDs(ctx, workspace)
	if err != nil {
		return nil, Database("compute hidden superseded ids", err)
	}
	if !filters.IncludeSuperseded && len(hidden) > 0 {
		results = excludeHidden(results, hidden)
	}

	sortByScoreDesc(results)
	topK := filters.TopK
	if topK <= 0 {
		topK = 30
	}
	if len(results) > topK {
		results = results[:topK]
	}

	if e.RecallMetrics != nil {
		e.RecallMetrics.Record(time.Since(started))
		if snap := e.RecallMetrics.Snapshot(); snap.Count%recallMetricsLogEvery == 0 {
			e.Log.Info().Int("count", snap.Count).Dur("p50", snap.P50).Dur("p95", snap.P95).Msg("recall latency")
		}
	}

	return results, nil
}

func (e *Engine) dispatchSearch(ctx context.Context, mode string, params search.Params) ([]search.Result, error) {
	switch mode {
	case "lexical":
		return search.Lexical(ctx, e.Store, params)
	case "vector":
		return search.Vector(ctx, e.Embedder, e.Vectors, e.Store, params)
	default:
		lex, err := search.Lexical(ctx, e.Store, params)
		if err != nil {
			return nil, err
		}
		vec, err := search.Vector(ctx, e.Embedder, e.Vectors, e.Store, params)
		if err != nil {
			return nil, err
		}
		return search.Fuse(lex, vec, search.DefaultFusionOptions()), nil
	}
}

// hiddenSupersededIDs finds active items whose supersedes_id points at
// another item that is also still active: a degenerate state that
// should not occur after a normal supersede (the old row gets
// archived), but recall() guards against it explicitly per spec.
func (e *Engine) hiddenSupersededIDs(ctx context.Context, workspace string) (map[string]bool, error) {
	active, err := e.Store.ListActiveItems(ctx, workspace)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.MemoryItem, len(active))
	for _, it := range active {
		byID[it.ID] = it
	}
	hidden := make(map[string]bool)
	for _, it := range active {
		if it.SupersedesID == "" {
			continue
		}
		if target, ok := byID[it.SupersedesID]; ok && target.Status == model.StatusActive {
			hidden[it.ID] = true
		}
	}
	return hidden, nil
}

func excludeHidden(results []search.Result, hidden map[string]bool) []search.Result {
	out := make([]search.Result, 0, len(results))
	for _, r := range results {
		if hidden[r.ID] {
			continue
		}
		out = append(out, r)
	}
	return out
}

func archivedHitsToResults(hits []store.LexicalHit) []search.Result {
	out := make([]search.Result, len(hits))
	for i, h := range hits {
		out[i] = search.Result{
			ID: h.ID, Title: h.Title, Score: h.Score,
			Source: "archived", Scope: h.Scope, Type: h.Type, Status: h.Status,
		}
	}
	return out
}

func sortByScoreDesc(results []search.Result) {
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
}

func defaultTopKOrZero(topK int) int {
	if topK <= 0 {
		return 30
	}
	return topK
}
