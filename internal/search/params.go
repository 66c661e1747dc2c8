package search

import "github.com/zmem-project/zmem/internal/model"

// Params is the shared input shape for the lexical and vector passes
// (spec.md §4.5, §4.6): a raw query plus the scoping filters recall()
// has already resolved.
type Params struct {
	Query     string
	Workspace string
	TopK      int
	Scopes    []model.Scope
	Types     []model.Type
	Statuses  []model.Status
}

func (p Params) includesArchived() bool {
	for _, s := range p.Statuses {
		if s == model.StatusArchived {
			return true
		}
	}
	return false
}

func defaultTopK(topK int) int {
	if topK <= 0 {
		return 30
	}
	return topK
}
