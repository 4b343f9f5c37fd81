package items

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/amartinez/sharepoint-mcp-go/internal/graph"
	"github.com/amartinez/sharepoint-mcp-go/internal/middleware"
	"github.com/amartinez/sharepoint-mcp-go/internal/pkg/format"
	"github.com/amartinez/sharepoint-mcp-go/internal/pkg/response"
	"github.com/amartinez/sharepoint-mcp-go/internal/session"
)

func itemKind(item graph.Item) string {
	if item.IsFolder() {
		return "folder"
	}
	return "file"
}

func describeItem(rb *response.Builder, item graph.Item) {
	rb.KeyValue("Name", item.Name)
	rb.KeyValue("Type", itemKind(item))
	rb.KeyValue("ID", item.ID)
	if !item.IsFolder() {
		rb.KeyValue("Size", format.ByteSize(item.Size))
	}
	if item.ModifiedAt != "" {
		rb.KeyValue("Modified", item.ModifiedAt)
	}
	if item.WebURL != "" {
		rb.KeyValue("URL", item.WebURL)
	}
}

// decodeContent turns tool input content into raw bytes, decoding base64
// when the caller flagged it.
func decodeContent(content string, isBase64 bool) ([]byte, error) {
	if !isBase64 {
		return []byte(content), nil
	}
	data, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return nil, fmt.Errorf("content is not valid base64: %w (omit is_base64 for plain text)", err)
	}
	return data, nil
}

// --- list_drive_items ---

type ListItemsInput struct {
	DriveID    string `json:"drive_id,omitempty" jsonschema_description:"Drive to list. Defaults to the active drive."`
	FolderPath string `json:"folder_path,omitempty" jsonschema_description:"Folder path relative to the drive root, e.g. Documents/Reports. Empty lists the root."`
}

type ListItemsOutput struct {
	Items []graph.Item `json:"items"`
	Count int          `json:"count"`
}

func createListItemsHandler(client *graph.Client, sess *session.Session) mcp.ToolHandlerFor[ListItemsInput, ListItemsOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListItemsInput) (*mcp.CallToolResult, ListItemsOutput, error) {
		driveID, err := sess.Resolve(input.DriveID)
		if err != nil {
			return nil, ListItemsOutput{}, middleware.HandleGraphError(err)
		}
		items, err := client.ListChildren(ctx, driveID, input.FolderPath)
		if err != nil {
			return nil, ListItemsOutput{}, middleware.HandleGraphError(err)
		}

		folder := input.FolderPath
		if folder == "" {
			folder = "/"
		}
		rb := response.New()
		rb.Header("Drive Items")
		rb.KeyValue("Folder", folder)
		rb.KeyValue("Count", len(items))
		for _, it := range items {
			if it.IsFolder() {
				rb.Item("[folder] %s (%d children)", it.Name, it.Folder.ChildCount)
			} else {
				rb.Item("%s (%s)", it.Name, format.ByteSize(it.Size))
			}
		}

		return rb.TextResult(), ListItemsOutput{Items: items, Count: len(items)}, nil
	}
}

// --- get_drive_item_metadata ---

type MetadataInput struct {
	DriveID  string `json:"drive_id,omitempty" jsonschema_description:"Drive containing the item. Defaults to the active drive."`
	ItemPath string `json:"item_path" jsonschema:"required" jsonschema_description:"Path of the file or folder relative to the drive root"`
}

type MetadataOutput struct {
	Item graph.Item `json:"item"`
}

func createMetadataHandler(client *graph.Client, sess *session.Session) mcp.ToolHandlerFor[MetadataInput, MetadataOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input MetadataInput) (*mcp.CallToolResult, MetadataOutput, error) {
		driveID, err := sess.Resolve(input.DriveID)
		if err != nil {
			return nil, MetadataOutput{}, middleware.HandleGraphError(err)
		}
		item, err := client.ItemByPath(ctx, driveID, input.ItemPath)
		if err != nil {
			return nil, MetadataOutput{}, middleware.HandleGraphError(err)
		}

		rb := response.New()
		rb.Header("Item Metadata")
		describeItem(rb, *item)

		return rb.TextResult(), MetadataOutput{Item: *item}, nil
	}
}

// --- get_drive_item_content ---

type ContentInput struct {
	DriveID  string `json:"drive_id,omitempty" jsonschema_description:"Drive containing the file. Defaults to the active drive."`
	ItemPath string `json:"item_path" jsonschema:"required" jsonschema_description:"Path of the file relative to the drive root"`
}

func createContentHandler(client *graph.Client, sess *session.Session) mcp.ToolHandlerFor[ContentInput, *graph.FileContent] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ContentInput) (*mcp.CallToolResult, *graph.FileContent, error) {
		driveID, err := sess.Resolve(input.DriveID)
		if err != nil {
			return nil, nil, middleware.HandleGraphError(err)
		}
		content, err := client.ItemContent(ctx, driveID, input.ItemPath)
		if err != nil {
			return nil, nil, middleware.HandleGraphError(err)
		}

		rb := response.New()
		rb.Header("File Content")
		rb.KeyValue("Name", content.Name)
		rb.KeyValue("Size", format.ByteSize(content.Size))
		if content.ContentType == "text" {
			rb.Blank()
			rb.Raw(content.Text)
		} else {
			rb.KeyValue("Encoding", "base64 (binary file — see structured content)")
		}

		return rb.TextResult(), content, nil
	}
}

// --- create_drive_folder ---

type CreateFolderInput struct {
	DriveID          string `json:"drive_id,omitempty" jsonschema_description:"Drive to create the folder in. Defaults to the active drive."`
	FolderName       string `json:"folder_name" jsonschema:"required" jsonschema_description:"Name of the new folder"`
	ParentPath       string `json:"parent_path,omitempty" jsonschema_description:"Parent folder path relative to the drive root. Empty creates at the root."`
	ConflictBehavior string `json:"conflict_behavior,omitempty" jsonschema_description:"fail (default), rename, or replace"`
}

type CreateFolderOutput struct {
	Item graph.Item `json:"item"`
}

func createFolderHandler(client *graph.Client, sess *session.Session) mcp.ToolHandlerFor[CreateFolderInput, CreateFolderOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input CreateFolderInput) (*mcp.CallToolResult, CreateFolderOutput, error) {
		driveID, err := sess.Resolve(input.DriveID)
		if err != nil {
			return nil, CreateFolderOutput{}, middleware.HandleGraphError(err)
		}
		item, err := client.CreateFolder(ctx, driveID, input.FolderName, input.ParentPath, input.ConflictBehavior)
		if err != nil {
			return nil, CreateFolderOutput{}, middleware.HandleGraphError(err)
		}

		rb := response.New()
		rb.Header("Folder Created")
		describeItem(rb, *item)

		return rb.TextResult(), CreateFolderOutput{Item: *item}, nil
	}
}

// --- upload_drive_file ---

type UploadInput struct {
	DriveID          string `json:"drive_id,omitempty" jsonschema_description:"Drive to upload into. Defaults to the active drive."`
	ItemPath         string `json:"item_path" jsonschema:"required" jsonschema_description:"Destination path relative to the drive root, including the file name"`
	Content          string `json:"content" jsonschema:"required" jsonschema_description:"File content, plain text or base64"`
	IsBase64         bool   `json:"is_base64,omitempty" jsonschema_description:"Set true when content is base64-encoded binary"`
	ConflictBehavior string `json:"conflict_behavior,omitempty" jsonschema_description:"fail (default), rename, or replace"`
}

type UploadOutput struct {
	Item graph.Item `json:"item"`
}

func createUploadHandler(client *graph.Client, sess *session.Session) mcp.ToolHandlerFor[UploadInput, UploadOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input UploadInput) (*mcp.CallToolResult, UploadOutput, error) {
		driveID, err := sess.Resolve(input.DriveID)
		if err != nil {
			return nil, UploadOutput{}, middleware.HandleGraphError(err)
		}
		data, err := decodeContent(input.Content, input.IsBase64)
		if err != nil {
			return nil, UploadOutput{}, err
		}
		// New uploads must not clobber existing files unless asked to;
		// overwriting an existing path is update_drive_file's job.
		behavior := input.ConflictBehavior
		if behavior == "" {
			behavior = graph.ConflictFail
		}
		item, err := client.Upload(ctx, driveID, input.ItemPath, data, behavior)
		if err != nil {
			return nil, UploadOutput{}, middleware.HandleGraphError(err)
		}

		rb := response.New()
		rb.Header("File Uploaded")
		describeItem(rb, *item)

		return rb.TextResult(), UploadOutput{Item: *item}, nil
	}
}

// --- update_drive_file ---

type UpdateInput struct {
	DriveID  string `json:"drive_id,omitempty" jsonschema_description:"Drive containing the file. Defaults to the active drive."`
	ItemPath string `json:"item_path" jsonschema:"required" jsonschema_description:"Path of the existing file relative to the drive root"`
	Content  string `json:"content" jsonschema:"required" jsonschema_description:"Replacement content, plain text or base64"`
	IsBase64 bool   `json:"is_base64,omitempty" jsonschema_description:"Set true when content is base64-encoded binary"`
}

type UpdateOutput struct {
	Item graph.Item `json:"item"`
}

func createUpdateHandler(client *graph.Client, sess *session.Session) mcp.ToolHandlerFor[UpdateInput, UpdateOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input UpdateInput) (*mcp.CallToolResult, UpdateOutput, error) {
		driveID, err := sess.Resolve(input.DriveID)
		if err != nil {
			return nil, UpdateOutput{}, middleware.HandleGraphError(err)
		}
		// Require the file to exist so a typo in the path cannot silently
		// create a new file.
		if _, err := client.ItemByPath(ctx, driveID, input.ItemPath); err != nil {
			return nil, UpdateOutput{}, middleware.HandleGraphError(err)
		}
		data, err := decodeContent(input.Content, input.IsBase64)
		if err != nil {
			return nil, UpdateOutput{}, err
		}
		item, err := client.Upload(ctx, driveID, input.ItemPath, data, graph.ConflictReplace)
		if err != nil {
			return nil, UpdateOutput{}, middleware.HandleGraphError(err)
		}

		rb := response.New()
		rb.Header("File Updated")
		describeItem(rb, *item)

		return rb.TextResult(), UpdateOutput{Item: *item}, nil
	}
}

// --- delete_drive_item ---

type DeleteInput struct {
	DriveID  string `json:"drive_id,omitempty" jsonschema_description:"Drive containing the item. Defaults to the active drive."`
	ItemPath string `json:"item_path" jsonschema:"required" jsonschema_description:"Path of the file or folder to delete"`
}

type DeleteOutput struct {
	Deleted graph.Item `json:"deleted"`
}

func createDeleteHandler(client *graph.Client, sess *session.Session) mcp.ToolHandlerFor[DeleteInput, DeleteOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input DeleteInput) (*mcp.CallToolResult, DeleteOutput, error) {
		driveID, err := sess.Resolve(input.DriveID)
		if err != nil {
			return nil, DeleteOutput{}, middleware.HandleGraphError(err)
		}
		item, err := client.Delete(ctx, driveID, input.ItemPath)
		if err != nil {
			return nil, DeleteOutput{}, middleware.HandleGraphError(err)
		}

		rb := response.New()
		rb.Header("Item Deleted")
		rb.KeyValue("Name", item.Name)
		rb.KeyValue("Type", itemKind(*item))
		rb.Line("The item was moved to the drive's recycle bin.")

		return rb.TextResult(), DeleteOutput{Deleted: *item}, nil
	}
}
