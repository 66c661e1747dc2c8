package search

import (
	"context"
	"regexp"
	"strings"

	"github.com/zmem-project/zmem/internal/embedding"
	"github.com/zmem-project/zmem/internal/model"
	"github.com/zmem-project/zmem/internal/store"
	"github.com/zmem-project/zmem/internal/vectorstore"
)

var chunkSuffixRe = regexp.MustCompile(`_\d+$`)

// memoryIDFromChunkID strips the chunker's "_<seq>" suffix (§4.6 step 4).
func memoryIDFromChunkID(chunkID string) string {
	return chunkSuffixRe.ReplaceAllString(chunkID, "")
}

func buildMetadataFilter(workspace string, scopes []model.Scope, types []model.Type, statuses []model.Status) string {
	clauses := []string{vectorstore.EqualsAny("workspace", []string{workspace})}
	if len(scopes) > 0 {
		vals := make([]string, len(scopes))
		for i, s := range scopes {
			vals[i] = string(s)
		}
		clauses = append(clauses, vectorstore.EqualsAny("scope", vals))
	}
	if len(types) > 0 {
		vals := make([]string, len(types))
		for i, t := range types {
			vals[i] = string(t)
		}
		clauses = append(clauses, vectorstore.EqualsAny("type", vals))
	}
	if len(statuses) > 0 {
		vals := make([]string, len(statuses))
		for i, s := range statuses {
			vals[i] = string(s)
		}
		clauses = append(clauses, vectorstore.EqualsAny("status", vals))
	}
	return vectorstore.And(clauses...)
}

// Vector runs the §4.6 algorithm: embed the query, run an exact
// nearest-neighbour query restricted by a metadata filter, hydrate matched items from the
// metadata store, and build a snippet around the first matching word.
func Vector(ctx context.Context, provider embedding.Provider, vs *vectorstore.Manager, st store.Store, p Params) ([]Result, error) {
	if strings.TrimSpace(p.Query) == "" {
		return nil, nil
	}
	topK := defaultTopK(p.TopK)

	queryVector, err := provider.Embed(ctx, p.Query)
	if err != nil {
		return nil, err
	}

	filter := buildMetadataFilter(p.Workspace, p.Scopes, p.Types, p.Statuses)
	hits, err := vs.Query(ctx, p.Workspace, queryVector, topK, filter)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}

	memoryIDs := make([]string, 0, len(hits))
	seen := make(map[string]bool)
	for _, h := range hits {
		id := memoryIDFromChunkID(h.ID)
		if !seen[id] {
			seen[id] = true
			memoryIDs = append(memoryIDs, id)
		}
	}

	items, err := st.HydrateItems(ctx, p.Workspace, memoryIDs, p.Statuses)
	if err != nil {
		return nil, err
	}

	tokens := Tokenize(p.Query)
	var out []Result
	seenResult := make(map[string]bool)
	for _, h := range hits {
		memoryID := memoryIDFromChunkID(h.ID)
		item, ok := items[memoryID]
		if !ok || seenResult[memoryID] {
			continue
		}
		seenResult[memoryID] = true
		out = append(out, Result{
			ID:      memoryID,
			Title:   item.Title,
			Snippet: VectorSnippet(item.Content, tokens),
			Score:   h.Score,
			Source:  "vec",
			Scope:   item.Scope,
			Type:    item.Type,
			Status:  item.Status,
		})
	}
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}
