// Package drives implements the MCP tools for discovering drives and
// SharePoint sites and selecting the active drive.
package drives

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/amartinez/sharepoint-mcp-go/internal/auth"
	"github.com/amartinez/sharepoint-mcp-go/internal/graph"
	"github.com/amartinez/sharepoint-mcp-go/internal/pkg/ptr"
	"github.com/amartinez/sharepoint-mcp-go/internal/session"
)

// Register registers the drive and site discovery tools with the MCP server.
func Register(server *mcp.Server, include func(string, *mcp.ToolAnnotations) bool, client *graph.Client, sess *session.Session, mgr *auth.Manager) {
	add := func(tool *mcp.Tool, register func()) {
		if include == nil || include(tool.Name, tool.Annotations) {
			register()
		}
	}

	listTool := &mcp.Tool{
		Name:        "list_my_drives",
		Description: "List all drives (personal OneDrive and document libraries) available to the active account.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "List My Drives",
			ReadOnlyHint:  true,
			OpenWorldHint: ptr.Bool(true),
		},
	}
	add(listTool, func() { mcp.AddTool(server, listTool, createListMyDrivesHandler(client)) })

	searchSitesTool := &mcp.Tool{
		Name:        "search_sharepoint_sites",
		Description: "Search SharePoint sites accessible to the active account.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Search SharePoint Sites",
			ReadOnlyHint:  true,
			OpenWorldHint: ptr.Bool(true),
		},
	}
	add(searchSitesTool, func() { mcp.AddTool(server, searchSitesTool, createSearchSitesHandler(client)) })

	siteDrivesTool := &mcp.Tool{
		Name:        "list_site_drives",
		Description: "List the document libraries (drives) of a specific SharePoint site, by site ID or site URL.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "List Site Drives",
			ReadOnlyHint:  true,
			OpenWorldHint: ptr.Bool(true),
		},
	}
	add(siteDrivesTool, func() { mcp.AddTool(server, siteDrivesTool, createListSiteDrivesHandler(client)) })

	setActiveTool := &mcp.Tool{
		Name:        "set_active_drive",
		Description: "Select the drive that file operations run against when no drive_id is passed explicitly.",
		Annotations: &mcp.ToolAnnotations{
			Title:          "Set Active Drive",
			IdempotentHint: true,
			OpenWorldHint:  ptr.Bool(true),
		},
	}
	add(setActiveTool, func() { mcp.AddTool(server, setActiveTool, createSetActiveDriveHandler(client, sess)) })

	contextTool := &mcp.Tool{
		Name:        "get_graph_context",
		Description: "Show the active Graph context: the selected account and drive.",
		Annotations: &mcp.ToolAnnotations{
			Title:        "Get Graph Context",
			ReadOnlyHint: true,
		},
	}
	add(contextTool, func() { mcp.AddTool(server, contextTool, createGetGraphContextHandler(sess, mgr)) })
}
