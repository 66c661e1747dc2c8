package core

import (
	"context"
	"strings"
	"time"

	"github.com/zmem-project/zmem/internal/model"
)

// Delete soft-deletes id, returning false if it is missing or already
// deleted. Vector cleanup is best-effort: if it fails, the prior
// status and updated_at are restored and DATABASE is surfaced, since
// the item's row must not silently disagree with its vectors.
func (e *Engine) Delete(ctx context.Context, workspace, id string) (bool, error) {
	if strings.TrimSpace(id) == "" {
		return false, Validation("id must not be empty")
	}

	item, err := e.Store.GetItem(ctx, workspace, id)
	if err != nil {
		return false, Database("get item", err)
	}
	if item == nil || item.Status == model.StatusDeleted {
		return false, nil
	}

	now := time.Now().UTC()
	prevStatus, prevUpdatedAt, err := e.Store.SetStatus(ctx, id, model.StatusDeleted, now)
	if err != nil {
		return false, Database("set status deleted", err)
	}

	chunks, err := e.Store.ChunksForItem(ctx, id)
	if err != nil {
		e.restoreStatus(ctx, id, prevStatus, prevUpdatedAt)
		return false, Database("list chunks for delete", err)
	}
	for _, c := range chunks {
		if err := e.Vectors.Delete(ctx, workspace, c.ID); err != nil {
			e.restoreStatus(ctx, id, prevStatus, prevUpdatedAt)
			return false, Database("delete vectors", err)
		}
	}

	return true, nil
}

func (e *Engine) restoreStatus(ctx context.Context, id string, status model.Status, updatedAt time.Time) {
	if _, _, err := e.Store.SetStatus(ctx, id, status, updatedAt); err != nil {
		e.Log.Error().Err(err).Str("id", id).Msg("core: restore status after failed delete compensation")
	}
}
