// Package search implements the MCP search tools: quick per-drive name
// search and the tenant-wide Microsoft Search query.
package search

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/amartinez/sharepoint-mcp-go/internal/graph"
	"github.com/amartinez/sharepoint-mcp-go/internal/pkg/ptr"
	"github.com/amartinez/sharepoint-mcp-go/internal/session"
)

// Register registers the search tools with the MCP server.
func Register(server *mcp.Server, include func(string, *mcp.ToolAnnotations) bool, client *graph.Client, sess *session.Session) {
	add := func(tool *mcp.Tool, register func()) {
		if include == nil || include(tool.Name, tool.Annotations) {
			register()
		}
	}

	driveTool := &mcp.Tool{
		Name:        "search_drive_items",
		Description: "Search a single drive by file and folder names. Fast, name-focused matching.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Search Drive Items",
			ReadOnlyHint:  true,
			OpenWorldHint: ptr.Bool(true),
		},
	}
	add(driveTool, func() { mcp.AddTool(server, driveTool, createDriveSearchHandler(client, sess)) })

	deepTool := &mcp.Tool{
		Name:        "deep_search_microsoft365",
		Description: "Full-text search across all of Microsoft 365: file contents, SharePoint lists, and sites the account can reach.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Deep Search Microsoft 365",
			ReadOnlyHint:  true,
			OpenWorldHint: ptr.Bool(true),
		},
	}
	add(deepTool, func() { mcp.AddTool(server, deepTool, createDeepSearchHandler(client)) })
}
