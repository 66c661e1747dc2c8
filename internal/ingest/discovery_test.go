package ingest

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverSkipsDenyListAndDotfiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "notes.md"), "hello")
	writeFile(t, filepath.Join(dir, "node_modules", "pkg", "readme.md"), "ignored")
	writeFile(t, filepath.Join(dir, ".git", "config"), "ignored")
	writeFile(t, filepath.Join(dir, ".hidden.md"), "ignored")
	writeFile(t, filepath.Join(dir, "sub", "more.md"), "hello again")

	files, err := Discover(dir, nil)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}

	var rels []string
	for _, f := range files {
		rels = append(rels, f.RelPath)
	}
	want := []string{"notes.md", "sub/more.md"}
	if len(rels) != len(want) {
		t.Fatalf("expected %v, got %v", want, rels)
	}
	for i := range want {
		if rels[i] != want[i] {
			t.Errorf("expected %v, got %v", want, rels)
			break
		}
	}
}

func TestDiscoverRespectsPatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "notes.md"), "hello")
	writeFile(t, filepath.Join(dir, "data.json"), "{}")

	files, err := Discover(dir, []string{"*.md"})
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(files) != 1 || files[0].RelPath != "notes.md" {
		t.Fatalf("expected only notes.md, got %+v", files)
	}
}
