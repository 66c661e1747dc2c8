package chunker

import (
	"strings"
	"testing"
)

func TestDocumentEmpty(t *testing.T) {
	chunks := Document("", DefaultOptions())
	if len(chunks) != 0 {
		t.Fatalf("expected no chunks for empty content, got %d", len(chunks))
	}
}

func TestDocumentShortContent(t *testing.T) {
	content := "Just a short note, nothing fancy."
	chunks := Document(content, DefaultOptions())
	if len(chunks) != 1 {
		t.Fatalf("expected a single chunk, got %d", len(chunks))
	}
	if chunks[0].Text != content {
		t.Fatalf("expected chunk text to equal content, got %q", chunks[0].Text)
	}
	if chunks[0].Seq != 0 || chunks[0].Pos != 0 {
		t.Fatalf("expected seq=0 pos=0, got seq=%d pos=%d", chunks[0].Seq, chunks[0].Pos)
	}
}

func TestDocumentPrefersHeadingBreak(t *testing.T) {
	var b strings.Builder
	b.WriteString("# Section One\n\n")
	b.WriteString(strings.Repeat("alpha beta gamma delta epsilon zeta eta theta. ", 40))
	b.WriteString("\n\n# Section Two\n\n")
	b.WriteString(strings.Repeat("iota kappa lambda mu nu xi omicron pi. ", 40))

	opts := Options{MaxTokens: 60, OverlapTokens: 5}
	chunks := Document(b.String(), opts)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	found := false
	for _, c := range chunks[1:] {
		if strings.HasPrefix(c.Text, "# Section Two") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a chunk to begin at the second heading, chunks=%+v", chunks)
	}
}

func TestDocumentDoesNotBreakInsideCodeFence(t *testing.T) {
	var b strings.Builder
	b.WriteString(strings.Repeat("prose word ", 30))
	b.WriteString("\n\n```go\n")
	for i := 0; i < 30; i++ {
		b.WriteString("line of code that should stay intact\n")
	}
	b.WriteString("```\n\n")
	b.WriteString(strings.Repeat("trailing word ", 30))

	opts := Options{MaxTokens: 20, OverlapTokens: 2}
	chunks := Document(b.String(), opts)

	for _, c := range chunks {
		openFences := strings.Count(c.Text, "```")
		if openFences%2 != 0 {
			t.Fatalf("chunk split inside a fenced code block: %q", c.Text)
		}
	}
}

func TestDocumentOverlapsAdjacentChunks(t *testing.T) {
	content := strings.Repeat("word ", 2000)
	opts := Options{MaxTokens: 100, OverlapTokens: 20}
	chunks := Document(content, opts)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		if chunks[i].Pos >= chunks[i-1].Pos+len(chunks[i-1].Text) {
			t.Fatalf("expected chunk %d to overlap chunk %d: prev ends at %d, next starts at %d",
				i, i-1, chunks[i-1].Pos+len(chunks[i-1].Text), chunks[i].Pos)
		}
	}
}

func TestDocumentMakesProgressOnPathologicalInput(t *testing.T) {
	content := strings.Repeat("a", 50000)
	opts := Options{MaxTokens: 10, OverlapTokens: 9}
	chunks := Document(content, opts)

	if len(chunks) == 0 {
		t.Fatalf("expected at least one chunk")
	}
	seen := -1
	for _, c := range chunks {
		if c.Pos <= seen {
			t.Fatalf("chunker failed to make progress: pos=%d after seen=%d", c.Pos, seen)
		}
		seen = c.Pos
	}
}

func TestCountTokens(t *testing.T) {
	cases := map[string]int{
		"":               0,
		"hello":          1,
		"hello world":    2,
		"foo_bar baz123": 2,
		"...  ,,,":       0,
	}
	for text, want := range cases {
		if got := CountTokens(text); got != want {
			t.Errorf("CountTokens(%q) = %d, want %d", text, got, want)
		}
	}
}
