// ABOUTME: MCP tool registration for the todo assistant memory
// ABOUTME: Exposes the tool dispatch surface to external LLM agents over MCP
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/todo-agent/internal/memory"
	"github.com/harper/todo-agent/internal/tools"
)

// NewServer creates an MCP server exposing every memory operation.
func NewServer(mgr *memory.Manager) *mcpserver.MCPServer {
	server := mcpserver.NewMCPServer(
		"Todo Assistant Memory",
		"0.1.0",
	)
	RegisterTools(server, mgr)
	return server
}

// RegisterTools registers the whole dispatch surface with the server. The
// tool table in internal/tools is the single source of truth; this layer
// only translates schemas and wraps handlers.
func RegisterTools(server *mcpserver.MCPServer, mgr *memory.Manager) {
	dispatcher := tools.NewDispatcher(mgr)

	for _, def := range dispatcher.Definitions() {
		def := def
		server.AddTool(mcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: toInputSchema(def.Parameters),
		}, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			res := def.Call(ctx, request.GetArguments())
			return resultToMCP(res), nil
		})
	}
}

// resultToMCP renders a dispatch result for MCP consumers as JSON carrying
// both the friendly message and the machine-checkable outcome tag, so
// agents can branch without parsing prose.
func resultToMCP(res tools.Result) *mcp.CallToolResult {
	payload, err := json.Marshal(map[string]any{
		"outcome": string(res.Outcome),
		"message": res.Message,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err))
	}
	return mcp.NewToolResultText(string(payload))
}

// toInputSchema converts a JSON-schema parameter map into mcp-go's schema
// struct.
func toInputSchema(params map[string]any) mcp.ToolInputSchema {
	schema := mcp.ToolInputSchema{
		Type:       "object",
		Properties: map[string]any{},
	}
	if props, ok := params["properties"].(map[string]any); ok {
		schema.Properties = props
	}
	if req, ok := params["required"].([]string); ok {
		schema.Required = req
	}
	return schema
}
