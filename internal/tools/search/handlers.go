package search

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/amartinez/sharepoint-mcp-go/internal/graph"
	"github.com/amartinez/sharepoint-mcp-go/internal/middleware"
	"github.com/amartinez/sharepoint-mcp-go/internal/pkg/format"
	"github.com/amartinez/sharepoint-mcp-go/internal/pkg/response"
	"github.com/amartinez/sharepoint-mcp-go/internal/session"
)

// --- search_drive_items ---

type DriveSearchInput struct {
	DriveID string `json:"drive_id,omitempty" jsonschema_description:"Drive to search. Defaults to the active drive."`
	Query   string `json:"query" jsonschema:"required" jsonschema_description:"Text to match against file and folder names"`
}

type DriveSearchOutput struct {
	Items []graph.Item `json:"items"`
	Count int          `json:"count"`
}

func createDriveSearchHandler(client *graph.Client, sess *session.Session) mcp.ToolHandlerFor[DriveSearchInput, DriveSearchOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input DriveSearchInput) (*mcp.CallToolResult, DriveSearchOutput, error) {
		driveID, err := sess.Resolve(input.DriveID)
		if err != nil {
			return nil, DriveSearchOutput{}, middleware.HandleGraphError(err)
		}
		items, err := client.SearchDriveItems(ctx, driveID, input.Query)
		if err != nil {
			return nil, DriveSearchOutput{}, middleware.HandleGraphError(err)
		}

		rb := response.New()
		rb.Header("Drive Search")
		rb.KeyValue("Query", input.Query)
		rb.KeyValue("Results", len(items))
		for _, it := range items {
			if it.IsFolder() {
				rb.Item("[folder] %s", it.Name)
			} else {
				rb.Item("%s (%s)", it.Name, format.ByteSize(it.Size))
			}
			if it.ParentPath != "" {
				rb.Line("    In: %s", it.ParentPath)
			}
		}

		return rb.TextResult(), DriveSearchOutput{Items: items, Count: len(items)}, nil
	}
}

// --- deep_search_microsoft365 ---

type DeepSearchInput struct {
	Query       string   `json:"query" jsonschema:"required" jsonschema_description:"Full-text query. Supports KQL, e.g. filetype:xlsx budget"`
	EntityTypes []string `json:"entity_types,omitempty" jsonschema_description:"Entity types to search: driveItem, list, listItem, site. Defaults to all four."`
	Size        int      `json:"size,omitempty" jsonschema_description:"Maximum results to return (default 25)"`
}

type DeepSearchOutput struct {
	Hits  []graph.SearchHit `json:"hits"`
	Count int               `json:"count"`
}

func createDeepSearchHandler(client *graph.Client) mcp.ToolHandlerFor[DeepSearchInput, DeepSearchOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input DeepSearchInput) (*mcp.CallToolResult, DeepSearchOutput, error) {
		hits, err := client.SearchEverywhere(ctx, input.Query, input.EntityTypes, input.Size)
		if err != nil {
			return nil, DeepSearchOutput{}, middleware.HandleGraphError(err)
		}

		rb := response.New()
		rb.Header("Microsoft 365 Search")
		rb.KeyValue("Query", input.Query)
		rb.KeyValue("Results", len(hits))
		for _, h := range hits {
			rb.Item("%s [%s]", h.Name, h.ResourceType)
			if h.Summary != "" {
				rb.Line("    %s", h.Summary)
			}
			if h.WebURL != "" {
				rb.Line("    URL: %s", h.WebURL)
			}
		}

		return rb.TextResult(), DeepSearchOutput{Hits: hits, Count: len(hits)}, nil
	}
}
