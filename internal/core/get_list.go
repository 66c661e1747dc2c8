package core

import (
	"context"
	"strings"

	"github.com/zmem-project/zmem/internal/model"
	"github.com/zmem-project/zmem/internal/store"
)

func listParamsFrom(f ListFilters, status model.Status) store.ListParams {
	return store.ListParams{
		Workspace: f.Workspace,
		Type:      f.Type,
		Scope:     f.Scope,
		Status:    status,
		Limit:     f.Limit,
		Offset:    f.Offset,
	}
}

// Get returns the item with id in workspace, or nil if it does not
// exist there.
func (e *Engine) Get(ctx context.Context, workspace, id string) (*model.MemoryItem, error) {
	if strings.TrimSpace(id) == "" {
		return nil, Validation("id must not be empty")
	}
	item, err := e.Store.GetItem(ctx, workspace, id)
	if err != nil {
		return nil, Database("get item", err)
	}
	return item, nil
}

// List returns a page of items matching filters plus the total count
// across the full (unpaginated) match.
func (e *Engine) List(ctx context.Context, filters ListFilters) ([]model.MemoryItem, int, error) {
	status := filters.Status
	if status == "" {
		status = model.StatusActive
	}
	items, total, err := e.Store.ListItems(ctx, listParamsFrom(filters, status))
	if err != nil {
		return nil, 0, Database("list items", err)
	}
	return items, total, nil
}
