package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/zmem-project/zmem/internal/model"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseFileUsesFrontmatterTitle(t *testing.T) {
	content := "---\ntitle: From Frontmatter\ntype: decision\ntags: [a, b]\nimportance: 0.8\n---\n# Heading\nbody text\n"
	path := writeTempFile(t, content)

	doc, err := ParseFile(path, "doc.md")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.Title != "From Frontmatter" {
		t.Errorf("expected frontmatter title, got %q", doc.Title)
	}
	if doc.Type != model.TypeDecision {
		t.Errorf("expected type decision, got %s", doc.Type)
	}
	if doc.Importance != 0.8 {
		t.Errorf("expected importance 0.8, got %v", doc.Importance)
	}
	if len(doc.Tags) != 2 {
		t.Errorf("expected 2 tags, got %v", doc.Tags)
	}
}

func TestParseFileFallsBackToFirstH1SkippingNotes(t *testing.T) {
	content := "# Notes\n\n# Real Title\nbody\n"
	path := writeTempFile(t, content)

	doc, err := ParseFile(path, "doc.md")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.Title != "Real Title" {
		t.Errorf("expected 'Real Title', got %q", doc.Title)
	}
}

func TestParseFileFallsBackToFilename(t *testing.T) {
	content := "just a body with no headings\n"
	path := writeTempFile(t, content)

	doc, err := ParseFile(path, "my-doc.md")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.Title != "my-doc" {
		t.Errorf("expected filename-derived title, got %q", doc.Title)
	}
	if doc.Type != model.TypeFact {
		t.Errorf("expected default type fact, got %s", doc.Type)
	}
	if doc.Importance != defaultImportance {
		t.Errorf("expected default importance, got %v", doc.Importance)
	}
}

func TestParseFileNormalisesLineEndingsAndBOM(t *testing.T) {
	content := "\ufeff# Title\r\nline one\r\nline two\r\n"
	path := writeTempFile(t, content)

	doc, err := ParseFile(path, "doc.md")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.Title != "Title" {
		t.Errorf("expected 'Title', got %q", doc.Title)
	}
	if doc.Content != "# Title\nline one\nline two\n" {
		t.Errorf("unexpected content: %q", doc.Content)
	}
}

func TestParseFileUnknownFrontmatterTypeDefaultsToFact(t *testing.T) {
	content := "---\ntype: not-a-real-type\n---\nbody\n"
	path := writeTempFile(t, content)

	doc, err := ParseFile(path, "doc.md")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.Type != model.TypeFact {
		t.Errorf("expected default type fact for unknown enum, got %s", doc.Type)
	}
}
