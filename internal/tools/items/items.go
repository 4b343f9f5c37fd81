// Package items implements the MCP tools for browsing and editing drive
// items: listing, metadata, content download, folder creation, upload,
// update, and delete.
package items

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/amartinez/sharepoint-mcp-go/internal/graph"
	"github.com/amartinez/sharepoint-mcp-go/internal/pkg/ptr"
	"github.com/amartinez/sharepoint-mcp-go/internal/session"
)

// Register registers the drive item tools with the MCP server.
func Register(server *mcp.Server, include func(string, *mcp.ToolAnnotations) bool, client *graph.Client, sess *session.Session) {
	add := func(tool *mcp.Tool, register func()) {
		if include == nil || include(tool.Name, tool.Annotations) {
			register()
		}
	}

	listTool := &mcp.Tool{
		Name:        "list_drive_items",
		Description: "List files and folders in a drive folder. Defaults to the drive root of the active drive.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "List Drive Items",
			ReadOnlyHint:  true,
			OpenWorldHint: ptr.Bool(true),
		},
	}
	add(listTool, func() { mcp.AddTool(server, listTool, createListItemsHandler(client, sess)) })

	metadataTool := &mcp.Tool{
		Name:        "get_drive_item_metadata",
		Description: "Get metadata (size, timestamps, type, URL) for a file or folder by path.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Get Drive Item Metadata",
			ReadOnlyHint:  true,
			OpenWorldHint: ptr.Bool(true),
		},
	}
	add(metadataTool, func() { mcp.AddTool(server, metadataTool, createMetadataHandler(client, sess)) })

	contentTool := &mcp.Tool{
		Name:        "get_drive_item_content",
		Description: "Download a file's content. Text files return plain text; binary files return base64.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Get Drive Item Content",
			ReadOnlyHint:  true,
			OpenWorldHint: ptr.Bool(true),
		},
	}
	add(contentTool, func() { mcp.AddTool(server, contentTool, createContentHandler(client, sess)) })

	folderTool := &mcp.Tool{
		Name:        "create_drive_folder",
		Description: "Create a folder. conflict_behavior controls what happens when the name is taken: fail (default), rename, or replace.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Create Drive Folder",
			OpenWorldHint: ptr.Bool(true),
		},
	}
	add(folderTool, func() { mcp.AddTool(server, folderTool, createFolderHandler(client, sess)) })

	uploadTool := &mcp.Tool{
		Name:        "upload_drive_file",
		Description: "Upload a new file. Content may be plain text or base64 (set is_base64). conflict_behavior: fail (default), rename, or replace. Use update_drive_file to overwrite an existing file.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Upload Drive File",
			OpenWorldHint: ptr.Bool(true),
		},
	}
	add(uploadTool, func() { mcp.AddTool(server, uploadTool, createUploadHandler(client, sess)) })

	updateTool := &mcp.Tool{
		Name:        "update_drive_file",
		Description: "Overwrite an existing file's content. Content may be plain text or base64 (set is_base64).",
		Annotations: &mcp.ToolAnnotations{
			Title:           "Update Drive File",
			DestructiveHint: ptr.Bool(true),
			IdempotentHint:  true,
			OpenWorldHint:   ptr.Bool(true),
		},
	}
	add(updateTool, func() { mcp.AddTool(server, updateTool, createUpdateHandler(client, sess)) })

	deleteTool := &mcp.Tool{
		Name:        "delete_drive_item",
		Description: "Delete a file or folder. Deleted items go to the drive's recycle bin.",
		Annotations: &mcp.ToolAnnotations{
			Title:           "Delete Drive Item",
			DestructiveHint: ptr.Bool(true),
			IdempotentHint:  true,
			OpenWorldHint:   ptr.Bool(true),
		},
	}
	add(deleteTool, func() { mcp.AddTool(server, deleteTool, createDeleteHandler(client, sess)) })
}
