package search

import (
	"context"
	"sort"

	"github.com/zmem-project/zmem/internal/store"
)

func toLexicalResults(hits []store.LexicalHit, source string) []Result {
	out := make([]Result, len(hits))
	for i, h := range hits {
		snippet := h.Snippet
		if snippet == "" {
			snippet = fallbackSnippet(h.Content)
		}
		out[i] = Result{
			ID:      h.ID,
			Title:   h.Title,
			Snippet: snippet,
			Score:   h.Score,
			Source:  source,
			Scope:   h.Scope,
			Type:    h.Type,
			Status:  h.Status,
		}
	}
	return out
}

// Lexical runs the §4.5 algorithm: strict AND, relaxed OR fallback
// when strict is empty and multi-token, and an archived-keyword merge
// when archived statuses were requested.
func Lexical(ctx context.Context, st store.Store, p Params) ([]Result, error) {
	tokens := Tokenize(p.Query)
	if len(tokens) == 0 {
		return nil, nil
	}
	topK := defaultTopK(p.TopK)

	strictHits, err := st.BM25Search(ctx, store.LexicalQueryParams{
		Workspace: p.Workspace, Tokens: tokens, Mode: "and",
		Scopes: p.Scopes, Types: p.Types, Statuses: p.Statuses, TopK: topK,
	})
	if err != nil {
		return nil, err
	}

	var lexHits []Result
	switch {
	case len(strictHits) > 0:
		lexHits = toLexicalResults(strictHits, "lex")
	case len(tokens) > 1:
		relaxedHits, err := st.BM25Search(ctx, store.LexicalQueryParams{
			Workspace: p.Workspace, Tokens: tokens, Mode: "or",
			Scopes: p.Scopes, Types: p.Types, Statuses: p.Statuses, TopK: topK,
		})
		if err != nil {
			return nil, err
		}
		lexHits = toLexicalResults(relaxedHits, "lex")
	}

	if p.includesArchived() {
		archivedHits, err := st.ArchivedKeywordSearch(ctx, store.ArchivedQueryParams{
			Workspace: p.Workspace, Tokens: tokens, Scopes: p.Scopes, Types: p.Types, TopK: topK,
		})
		if err != nil {
			return nil, err
		}
		lexHits = MergeKeepHigher(lexHits, toLexicalResults(archivedHits, "archived"))
	}

	sort.SliceStable(lexHits, func(i, j int) bool { return lexHits[i].Score > lexHits[j].Score })
	if len(lexHits) > topK {
		lexHits = lexHits[:topK]
	}
	return lexHits, nil
}
