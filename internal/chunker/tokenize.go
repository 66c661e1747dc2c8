package chunker

import "unicode"

// CountTokens is the deterministic tokenizer used to size chunks and
// report token_count on ContentChunk. A token is a maximal run of
// letters/digits/underscore; everything else is a separator. This gives
// a stable, language-agnostic approximation of subword tokenizers
// without pulling in a BPE dependency (see DESIGN.md).
func CountTokens(text string) int {
	count := 0
	inToken := false
	for _, r := range text {
		if isTokenRune(r) {
			if !inToken {
				count++
				inToken = true
			}
		} else {
			inToken = false
		}
	}
	return count
}

func isTokenRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
