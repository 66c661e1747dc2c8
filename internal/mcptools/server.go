// Package mcptools exposes core.Engine's operations as MCP tools
// (spec.md §6) using mark3labs/mcp-go, grounded on harperreed-memory's
// internal/mcp package (tool registration shape, handler signatures).
package mcptools

import (
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/zmem-project/zmem/internal/config"
	"github.com/zmem-project/zmem/internal/core"
)

// maxQueryLimit is memory_query.limit's upper bound (spec.md §6).
const maxQueryLimit = 100

// Handlers holds everything a tool handler needs to resolve a
// workspace and talk to the engine.
type Handlers struct {
	engine  *core.Engine
	cfg     *config.Config
	log     zerolog.Logger
	verbose bool
}

// NewServer builds an MCP server with the always-on tools registered,
// plus the admin memory_reindex tool when enableReindex is set.
func NewServer(name, version string, engine *core.Engine, cfg *config.Config, log zerolog.Logger, enableReindex bool) *mcpserver.MCPServer {
	server := mcpserver.NewMCPServer(name, version)
	h := &Handlers{engine: engine, cfg: cfg, log: log, verbose: config.MCPVerbose()}

	server.AddTool(mcp.Tool{
		Name:        "memory_query",
		Description: "Recall memories relevant to a query via lexical, vector, or hybrid retrieval.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"query":             map[string]any{"type": "string", "description": "Search query"},
				"workspace":         map[string]any{"type": "string", "description": "Workspace name; defaults per configured precedence"},
				"mode":              map[string]any{"type": "string", "enum": []string{"lexical", "vector", "hybrid"}},
				"scopes":            map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"types":             map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"limit":             map[string]any{"type": "number", "description": "Max results, capped at 100"},
				"includeSuperseded": map[string]any{"type": "boolean"},
			},
			Required: []string{"query"},
		},
	}, h.memoryQuery)

	server.AddTool(mcp.Tool{
		Name:        "memory_get",
		Description: "Fetch a single memory item by id.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"workspace": map[string]any{"type": "string"},
				"id":        map[string]any{"type": "string"},
			},
			Required: []string{"id"},
		},
	}, h.memoryGet)

	server.AddTool(mcp.Tool{
		Name:        "memory_list",
		Description: "List memory items in a workspace, optionally filtered by type/scope/status.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"workspace": map[string]any{"type": "string"},
				"type":      map[string]any{"type": "string"},
				"scope":     map[string]any{"type": "string"},
				"status":    map[string]any{"type": "string"},
				"limit":     map[string]any{"type": "number"},
				"offset":    map[string]any{"type": "number"},
			},
		},
	}, h.memoryList)

	server.AddTool(mcp.Tool{
		Name:        "memory_save",
		Description: "Save a new memory item, optionally superseding an existing one.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"workspace":    map[string]any{"type": "string"},
				"type":         map[string]any{"type": "string"},
				"title":        map[string]any{"type": "string"},
				"content":      map[string]any{"type": "string"},
				"scope":        map[string]any{"type": "string"},
				"tags":         map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"importance":   map[string]any{"type": "number"},
				"supersedesId": map[string]any{"type": "string"},
			},
			Required: []string{"type", "title", "content"},
		},
	}, h.memorySave)

	server.AddTool(mcp.Tool{
		Name:        "memory_delete",
		Description: "Soft-delete a memory item by id.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"workspace": map[string]any{"type": "string"},
				"id":        map[string]any{"type": "string"},
			},
			Required: []string{"id"},
		},
	}, h.memoryDelete)

	server.AddTool(mcp.Tool{
		Name:        "memory_status",
		Description: "Report item, vector, and pending-embedding counts for a workspace.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"workspace": map[string]any{"type": "string"}},
		},
	}, h.memoryStatus)

	if enableReindex {
		server.AddTool(mcp.Tool{
			Name:        "memory_reindex",
			Description: "Admin: rebuild chunks and vectors for every item in a workspace without recreating rows.",
			InputSchema: mcp.ToolInputSchema{
				Type:       "object",
				Properties: map[string]any{"workspace": map[string]any{"type": "string"}},
				Required:   []string{"workspace"},
			},
		}, h.memoryReindex)
	}

	return server
}

func (h *Handlers) workspaceArg(request mcp.CallToolRequest) string {
	return h.cfg.ResolveWorkspace(request.GetString("workspace", ""))
}

func (h *Handlers) logVerbose(tool string, queryLen int) {
	if h.verbose {
		h.log.Info().Str("tool", tool).Int("queryLen", queryLen).Msg("mcptools: handled request")
	}
}

func errorCode(err error) string {
	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		return string(coreErr.Code)
	}
	return string(core.CodeDatabase)
}
