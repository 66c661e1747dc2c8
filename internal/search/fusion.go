package search

import "sort"

// FusionOptions configures the §4.7 weighted-RRF fusion algorithm.
type FusionOptions struct {
	CandidateLimit  int
	FirstListWeight float64
	TopRankBonus    float64
	MinScore        float64
	RRFK            float64
}

// DefaultFusionOptions matches spec.md §4.7's defaults.
func DefaultFusionOptions() FusionOptions {
	return FusionOptions{
		CandidateLimit:  30,
		FirstListWeight: 2.0,
		TopRankBonus:    0.05,
		MinScore:        0.25,
		RRFK:            60,
	}
}

type fusedEntry struct {
	result Result
	score  float64
}

// Fuse combines a lexical list and a vector list into one ranked
// result set via weighted reciprocal-rank fusion. lexical is always
// treated as the first (higher-weighted) list per §4.7.
func Fuse(lexical, vector []Result, opts FusionOptions) []Result {
	acc := make(map[string]*fusedEntry)
	var order []string

	contribute := func(list []Result, weight float64) {
		limit := opts.CandidateLimit
		if limit <= 0 || limit > len(list) {
			limit = len(list)
		}
		for rank := 0; rank < limit; rank++ {
			r := list[rank]
			contribution := weight * (1 / (float64(rank) + opts.RRFK))
			if rank == 0 {
				contribution += opts.TopRankBonus
			}
			entry, ok := acc[r.ID]
			if !ok {
				entry = &fusedEntry{result: r, score: 0}
				acc[r.ID] = entry
				order = append(order, r.ID)
			} else {
				// Second list's hit on an id already seen: mark hybrid
				// and keep the first list's fields as they are (lexical
				// results carry a snippet already).
				entry.result.Source = "hybrid"
			}
			entry.score += contribution
		}
	}

	contribute(lexical, opts.FirstListWeight)
	contribute(vector, 1.0)

	var maxScore float64
	for _, e := range acc {
		if e.score > maxScore {
			maxScore = e.score
		}
	}

	out := make([]Result, 0, len(order))
	for _, id := range order {
		e := acc[id]
		normalized := 0.0
		if maxScore > 0 {
			normalized = e.score / maxScore
		}
		if normalized < opts.MinScore {
			continue
		}
		r := e.result
		r.Score = normalized
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
