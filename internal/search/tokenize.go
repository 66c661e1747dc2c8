// Package search composes the lexical (§4.5), vector (§4.6) and
// fusion (§4.7) passes that back the recall() operation.
package search

import (
	"strings"
	"unicode"
)

const maxQueryTokens = 12

// Tokenize normalises and tokenises a query string per §4.5 step 1:
// lowercase, strip quote characters, split on non-word boundaries,
// drop tokens shorter than 2 characters, cap to 12 tokens.
func Tokenize(query string) []string {
	lowered := strings.ToLower(query)
	lowered = strings.NewReplacer(`"`, " ", "'", " ", "`", " ").Replace(lowered)

	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			if t := cur.String(); len(t) >= 2 {
				tokens = append(tokens, t)
			}
			cur.Reset()
		}
	}
	for _, r := range lowered {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			cur.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()

	if len(tokens) > maxQueryTokens {
		tokens = tokens[:maxQueryTokens]
	}
	return tokens
}
