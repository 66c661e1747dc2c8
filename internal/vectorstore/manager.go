package vectorstore

import (
	"context"
	"fmt"
	"sync"
)

// Manager lazily opens and caches one Collection per workspace under
// a shared base directory, so callers never have to track collection
// lifetimes themselves.
type Manager struct {
	baseDir    string
	dimensions int

	mu          sync.Mutex
	collections map[string]*Collection
}

// NewManager returns a Manager rooted at baseDir. dimensions must
// match the embedding provider's output width; a workspace's
// collection schema is fixed at first open.
func NewManager(baseDir string, dimensions int) *Manager {
	return &Manager{
		baseDir:     baseDir,
		dimensions:  dimensions,
		collections: make(map[string]*Collection),
	}
}

// Collection returns the (cached, opening on first use) collection
// for a workspace.
func (m *Manager) Collection(workspace string) (*Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.collections[workspace]; ok {
		return c, nil
	}
	c, err := Open(m.baseDir, workspace, m.dimensions)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: open collection for workspace %q: %w", workspace, err)
	}
	m.collections[workspace] = c
	return c, nil
}

// Insert is a convenience wrapper resolving the workspace collection
// then inserting into it.
func (m *Manager) Insert(ctx context.Context, workspace, id string, vector []float32, md Metadata) error {
	c, err := m.Collection(workspace)
	if err != nil {
		return err
	}
	return c.Insert(ctx, id, vector, md)
}

// Delete is a convenience wrapper resolving the workspace collection
// then deleting from it, opening the collection first if this process
// hasn't touched it yet (a fresh CLI invocation never has).
func (m *Manager) Delete(ctx context.Context, workspace, id string) error {
	c, err := m.Collection(workspace)
	if err != nil {
		return err
	}
	return c.Delete(ctx, id)
}

// Query is a convenience wrapper resolving the workspace collection
// then querying it.
func (m *Manager) Query(ctx context.Context, workspace string, vector []float32, topK int, filter string) ([]Hit, error) {
	c, err := m.Collection(workspace)
	if err != nil {
		return nil, err
	}
	return c.Query(ctx, vector, topK, filter)
}

// Close closes every opened collection.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for ws, c := range m.collections {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("vectorstore: close collection %q: %w", ws, err)
		}
	}
	m.collections = make(map[string]*Collection)
	return firstErr
}
