// Package chunker splits document content into token-aware,
// heading-preferred chunks for embedding and lexical indexing.
package chunker

import (
	"regexp"
	"strings"
)

const (
	// DefaultMaxTokens is the target upper bound on a chunk's token count.
	DefaultMaxTokens = 900
	// DefaultOverlapTokens is the target overlap between adjacent chunks (~15%).
	DefaultOverlapTokens = 135
)

// Options configures chunking behavior.
type Options struct {
	MaxTokens     int
	OverlapTokens int
}

// DefaultOptions returns the spec's default chunking parameters.
func DefaultOptions() Options {
	return Options{MaxTokens: DefaultMaxTokens, OverlapTokens: DefaultOverlapTokens}
}

// Chunk is one emitted span of a document's content.
type Chunk struct {
	Seq        int
	Pos        int
	TokenCount int
	Text       string
}

// Document splits content into chunks per spec.md §4.8. Empty content
// yields zero chunks. Break points never fall inside a fenced code block.
func Document(content string, opts Options) []Chunk {
	if opts.MaxTokens <= 0 {
		opts = DefaultOptions()
	}

	runes := []rune(content)
	n := len(runes)
	if n == 0 {
		return nil
	}

	spans := codeFenceSpans(runes)
	breaks := candidateBreaks(runes, spans)

	maxChars := 4 * opts.MaxTokens
	overlapChars := 4 * opts.OverlapTokens

	var chunks []Chunk
	pos := 0
	seq := 0

	for pos < n {
		targetEnd := pos + maxChars
		if targetEnd >= n {
			targetEnd = n
		}

		chunkEnd := targetEnd
		if targetEnd < n {
			if bp, ok := bestBreak(breaks, pos, targetEnd, maxChars); ok {
				chunkEnd = bp
			}
		}

		// Progress guarantee: a pathological break choice must not stall the cursor.
		if chunkEnd <= pos {
			chunkEnd = n
		}

		text := strings.TrimSpace(string(runes[pos:chunkEnd]))
		if text != "" {
			chunks = append(chunks, Chunk{
				Seq:        seq,
				Pos:        pos,
				TokenCount: CountTokens(text),
				Text:       text,
			})
			seq++
		}

		if chunkEnd >= n {
			break
		}

		nextPos := chunkEnd - overlapChars
		if half := pos + (chunkEnd-pos)/2; half > nextPos {
			nextPos = half
		}
		if pos+1 > nextPos {
			nextPos = pos + 1
		}
		if nextPos >= n {
			break
		}
		pos = nextPos
	}

	return chunks
}

type breakPoint struct {
	pos      int
	priority float64
}

type span struct{ start, end int }

// bestBreak picks the candidate in (pos, targetEnd] maximizing
// priority * (1 - (|bp - targetEnd| / maxChars)^2).
func bestBreak(breaks []breakPoint, pos, targetEnd, maxChars int) (int, bool) {
	bestScore := -1.0
	bestPos := 0
	found := false
	for _, b := range breaks {
		if b.pos <= pos || b.pos > targetEnd {
			continue
		}
		d := float64(targetEnd-b.pos) / float64(maxChars)
		score := b.priority * (1 - d*d)
		if score > bestScore {
			bestScore = score
			bestPos = b.pos
			found = true
		}
	}
	return bestPos, found
}

var listItemRe = regexp.MustCompile(`^(\d+[.)]\s|[-*+]\s)`)

func isFenceLine(trimmed string) bool {
	return strings.HasPrefix(trimmed, "```")
}

func isHorizontalRule(trimmed string) bool {
	if len(trimmed) < 3 {
		return false
	}
	compact := strings.ReplaceAll(trimmed, " ", "")
	if len(compact) < 3 {
		return false
	}
	c := compact[0]
	if c != '-' && c != '*' && c != '_' {
		return false
	}
	for i := 0; i < len(compact); i++ {
		if compact[i] != c {
			return false
		}
	}
	return true
}

func isListItem(trimmed string) bool {
	return listItemRe.MatchString(trimmed)
}

// codeFenceSpans records the [start,end) rune ranges of fenced code
// blocks, including their fence lines. Break points strictly inside a
// span (excluding its boundaries) are forbidden.
func codeFenceSpans(runes []rune) []span {
	var spans []span
	n := len(runes)
	lineStart := 0
	open := -1
	for i := 0; i <= n; i++ {
		if i == n || runes[i] == '\n' {
			line := strings.TrimSpace(string(runes[lineStart:i]))
			if isFenceLine(line) {
				if open < 0 {
					open = lineStart
				} else {
					spans = append(spans, span{open, i + 1})
					open = -1
				}
			}
			lineStart = i + 1
		}
	}
	if open >= 0 {
		spans = append(spans, span{open, n})
	}
	return spans
}

func inSpanInterior(spans []span, pos int) bool {
	for _, s := range spans {
		if pos > s.start && pos < s.end {
			return true
		}
	}
	return false
}

// candidateBreaks enumerates break points by pattern, skipping any that
// fall inside a fenced code block.
func candidateBreaks(runes []rune, spans []span) []breakPoint {
	var breaks []breakPoint
	n := len(runes)
	lineStart := 0
	for i := 0; i <= n; i++ {
		if i == n || runes[i] == '\n' {
			line := string(runes[lineStart:i])
			trimmed := strings.TrimSpace(line)
			pos := lineStart
			if !inSpanInterior(spans, pos) {
				switch {
				case strings.HasPrefix(trimmed, "### "):
					breaks = append(breaks, breakPoint{pos, 80})
				case strings.HasPrefix(trimmed, "## "):
					breaks = append(breaks, breakPoint{pos, 90})
				case strings.HasPrefix(trimmed, "# "):
					breaks = append(breaks, breakPoint{pos, 100})
				case isFenceLine(trimmed):
					breaks = append(breaks, breakPoint{pos, 80})
				case isHorizontalRule(trimmed):
					breaks = append(breaks, breakPoint{pos, 60})
				case trimmed == "":
					breaks = append(breaks, breakPoint{pos, 20})
				case isListItem(trimmed):
					breaks = append(breaks, breakPoint{pos, 5})
				}
			}
			if i < n {
				next := i + 1
				if !inSpanInterior(spans, next) {
					breaks = append(breaks, breakPoint{next, 1})
				}
			}
			lineStart = i + 1
		}
	}
	return breaks
}
