package vectorstore

import (
	"context"
	"testing"
)

func unit(dims int, hot int) []float32 {
	v := make([]float32, dims)
	v[hot] = 1
	return v
}

func TestInsertAndQuery(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := Open(dir, "ws", 4)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer c.Close()

	if err := c.Insert(ctx, "chunk-1", unit(4, 0), Metadata{MemoryID: "m1", Workspace: "ws", Scope: "workspace", Type: "fact", Status: "active"}); err != nil {
		t.Fatalf("insert chunk-1: %v", err)
	}
	if err := c.Insert(ctx, "chunk-2", unit(4, 1), Metadata{MemoryID: "m2", Workspace: "ws", Scope: "workspace", Type: "fact", Status: "active"}); err != nil {
		t.Fatalf("insert chunk-2: %v", err)
	}

	hits, err := c.Query(ctx, unit(4, 0), 5, "")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].ID != "chunk-1" {
		t.Errorf("expected chunk-1 to rank first, got %s", hits[0].ID)
	}
	if hits[0].Score <= hits[1].Score {
		t.Errorf("expected closer vector to score higher: %v vs %v", hits[0].Score, hits[1].Score)
	}
}

func TestQueryWithFilter(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := Open(dir, "ws", 4)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer c.Close()

	if err := c.Insert(ctx, "chunk-1", unit(4, 0), Metadata{MemoryID: "m1", Workspace: "ws", Scope: "workspace", Type: "fact", Status: "active"}); err != nil {
		t.Fatalf("insert chunk-1: %v", err)
	}
	if err := c.Insert(ctx, "chunk-2", unit(4, 0), Metadata{MemoryID: "m2", Workspace: "ws", Scope: "workspace", Type: "fact", Status: "archived"}); err != nil {
		t.Fatalf("insert chunk-2: %v", err)
	}

	hits, err := c.Query(ctx, unit(4, 0), 5, `status = "active"`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "chunk-1" {
		t.Fatalf("expected only chunk-1 to match active filter, got %+v", hits)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := Open(dir, "ws", 4)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer c.Close()

	if err := c.Insert(ctx, "chunk-1", unit(4, 0), Metadata{MemoryID: "m1", Workspace: "ws", Status: "active"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := c.Delete(ctx, "chunk-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := c.Delete(ctx, "does-not-exist"); err != nil {
		t.Fatalf("delete missing id should not error: %v", err)
	}

	hits, err := c.Query(ctx, unit(4, 0), 5, "")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected no hits after delete, got %d", len(hits))
	}
}

// TestManagerDeleteOpensUncachedWorkspace guards against a process that
// never called Insert/Query for this workspace before Delete, which is
// the normal shape of a fresh CLI invocation.
func TestManagerDeleteOpensUncachedWorkspace(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	seed := NewManager(dir, 4)
	if err := seed.Insert(ctx, "ws", "chunk-1", unit(4, 0), Metadata{MemoryID: "m1", Workspace: "ws", Status: "active"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := seed.Close(); err != nil {
		t.Fatalf("close seed manager: %v", err)
	}

	fresh := NewManager(dir, 4)
	defer fresh.Close()
	if err := fresh.Delete(ctx, "ws", "chunk-1"); err != nil {
		t.Fatalf("delete on uncached manager: %v", err)
	}

	hits, err := fresh.Query(ctx, "ws", unit(4, 0), 5, "")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected delete to remove the vector even though this process never touched the workspace before, got %d hits", len(hits))
	}
}

func TestManagerCachesCollectionsPerWorkspace(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	m := NewManager(dir, 4)
	defer m.Close()

	if err := m.Insert(ctx, "ws-a", "chunk-1", unit(4, 0), Metadata{MemoryID: "m1", Workspace: "ws-a", Status: "active"}); err != nil {
		t.Fatalf("insert ws-a: %v", err)
	}
	if err := m.Insert(ctx, "ws-b", "chunk-1", unit(4, 1), Metadata{MemoryID: "m2", Workspace: "ws-b", Status: "active"}); err != nil {
		t.Fatalf("insert ws-b: %v", err)
	}

	hitsA, err := m.Query(ctx, "ws-a", unit(4, 0), 5, "")
	if err != nil {
		t.Fatalf("query ws-a: %v", err)
	}
	if len(hitsA) != 1 {
		t.Fatalf("expected ws-a to be isolated from ws-b, got %d hits", len(hitsA))
	}
}

func TestCompileFilter(t *testing.T) {
	cases := []struct {
		expr    string
		wantErr bool
	}{
		{`workspace = "ws"`, false},
		{`workspace = "ws" AND status = "active"`, false},
		{`status = "active" OR status = "archived"`, false},
		{`(status = "active" OR status = "archived") AND workspace = "ws"`, false},
		{``, false},
		{`not_a_field = "x"`, true},
		{`workspace = ws`, true},
		{`workspace = "unterminated`, true},
	}
	for _, tc := range cases {
		_, _, err := Compile(tc.expr)
		if tc.wantErr && err == nil {
			t.Errorf("Compile(%q): expected error, got none", tc.expr)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("Compile(%q): unexpected error: %v", tc.expr, err)
		}
	}
}
