package search

import "github.com/zmem-project/zmem/internal/model"

// Result is one hit returned by a lexical, vector, or fused search
// pass (spec.md §4.5-§4.7).
type Result struct {
	ID      string
	Title   string
	Snippet string
	Score   float64
	Source  string // "lex" | "vec" | "hybrid" | "archived"
	Scope   model.Scope
	Type    model.Type
	Status  model.Status
}

// MergeKeepHigher merges result lists, keeping the higher-scored
// entry when the same id appears more than once.
func MergeKeepHigher(lists ...[]Result) []Result {
	best := make(map[string]Result)
	var order []string
	for _, list := range lists {
		for _, r := range list {
			existing, ok := best[r.ID]
			if !ok {
				order = append(order, r.ID)
				best[r.ID] = r
				continue
			}
			if r.Score > existing.Score {
				best[r.ID] = r
			}
		}
	}
	out := make([]Result, 0, len(order))
	for _, id := range order {
		out = append(out, best[id])
	}
	return out
}
