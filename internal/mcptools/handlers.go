package mcptools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/zmem-project/zmem/internal/core"
	"github.com/zmem-project/zmem/internal/model"
)

func stringSliceArg(request mcp.CallToolRequest, key string) []string {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return nil
	}
	raw, ok := args[key]
	if !ok {
		return nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func toResultJSON(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (h *Handlers) memoryQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query is required and must be a string"), nil
	}
	h.logVerbose("memory_query", len(query))

	limit := request.GetInt("limit", 30)
	if limit > maxQueryLimit {
		return mcp.NewToolResultError(fmt.Sprintf("limit must not exceed %d", maxQueryLimit)), nil
	}

	filters := core.RecallFilters{
		Workspace:         h.workspaceArg(request),
		Mode:              request.GetString("mode", "hybrid"),
		TopK:              limit,
		IncludeSuperseded: request.GetBool("includeSuperseded", false),
	}
	for _, s := range stringSliceArg(request, "scopes") {
		filters.Scopes = append(filters.Scopes, model.Scope(s))
	}
	for _, t := range stringSliceArg(request, "types") {
		filters.Types = append(filters.Types, model.Type(t))
	}

	results, err := h.engine.Recall(ctx, filters.Workspace, query, filters)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", errorCode(err), err)), nil
	}
	return toResultJSON(map[string]any{"results": results})
}

func (h *Handlers) memoryGet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id is required and must be a string"), nil
	}
	h.logVerbose("memory_get", 0)

	item, err := h.engine.Get(ctx, h.workspaceArg(request), id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", errorCode(err), err)), nil
	}
	if item == nil {
		return mcp.NewToolResultError("not found"), nil
	}
	return toResultJSON(item)
}

func (h *Handlers) memoryList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.logVerbose("memory_list", 0)
	filters := core.ListFilters{
		Workspace: h.workspaceArg(request),
		Type:      model.Type(request.GetString("type", "")),
		Scope:     model.Scope(request.GetString("scope", "")),
		Status:    model.Status(request.GetString("status", "")),
		Limit:     request.GetInt("limit", 50),
		Offset:    request.GetInt("offset", 0),
	}
	items, total, err := h.engine.List(ctx, filters)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", errorCode(err), err)), nil
	}
	return toResultJSON(map[string]any{"items": items, "total": total})
}

func (h *Handlers) memorySave(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("title is required and must be a string"), nil
	}
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("content is required and must be a string"), nil
	}
	typ, err := request.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError("type is required and must be a string"), nil
	}
	h.logVerbose("memory_save", len(content))

	in := core.SaveInput{
		Type:         model.Type(typ),
		Title:        title,
		Content:      content,
		Scope:        model.Scope(request.GetString("scope", "")),
		Tags:         stringSliceArg(request, "tags"),
		Importance:   request.GetFloat("importance", core.DefaultImportance),
		SupersedesID: request.GetString("supersedesId", ""),
	}

	out, err := h.engine.Save(ctx, h.workspaceArg(request), in)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", errorCode(err), err)), nil
	}
	return toResultJSON(out)
}

func (h *Handlers) memoryDelete(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id is required and must be a string"), nil
	}
	h.logVerbose("memory_delete", 0)

	deleted, err := h.engine.Delete(ctx, h.workspaceArg(request), id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", errorCode(err), err)), nil
	}
	return toResultJSON(map[string]any{"deleted": deleted})
}

func (h *Handlers) memoryStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.logVerbose("memory_status", 0)
	status, err := h.engine.Status(ctx, h.workspaceArg(request))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", errorCode(err), err)), nil
	}
	return toResultJSON(status)
}

func (h *Handlers) memoryReindex(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workspace, err := request.RequireString("workspace")
	if err != nil {
		return mcp.NewToolResultError("workspace is required and must be a string"), nil
	}
	h.logVerbose("memory_reindex", 0)

	result, err := h.engine.Reindex(ctx, workspace)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", errorCode(err), err)), nil
	}
	return toResultJSON(result)
}
