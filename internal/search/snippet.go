package search

import "strings"

const snippetFallbackLen = 200

// fallbackSnippet builds a 200-character plain window, used when a hit
// has no FTS5-generated snippet: vector hits (via VectorSnippet's own
// fallback) and archived-keyword hits, which come from a LIKE query
// with no FTS5 match to snippet against. Lexical "lex"/"or" hits get
// their <mark>-highlighted 64-token window from BM25Search's own
// snippet() column instead (internal/store/lexical.go).
func fallbackSnippet(content string) string {
	if len(content) <= snippetFallbackLen {
		return content
	}
	return content[:snippetFallbackLen]
}

// VectorSnippet builds the §4.6 step 5 snippet: a 200-character window
// running from 50 characters before to 150 characters after the first
// query word (length > 2) found in content, falling back to the first
// 200 characters.
func VectorSnippet(content string, queryTokens []string) string {
	lower := strings.ToLower(content)
	bestIdx := -1
	for _, tok := range queryTokens {
		if len(tok) <= 2 {
			continue
		}
		if idx := strings.Index(lower, tok); idx >= 0 {
			bestIdx = idx
			break
		}
	}
	if bestIdx < 0 {
		return fallbackSnippet(content)
	}

	start := bestIdx - 50
	if start < 0 {
		start = 0
	}
	end := bestIdx + 150
	if end > len(content) {
		end = len(content)
	}

	snippet := content[start:end]
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(content) {
		snippet = snippet + "..."
	}
	return snippet
}
