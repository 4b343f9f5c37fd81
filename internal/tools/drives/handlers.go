package drives

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/amartinez/sharepoint-mcp-go/internal/auth"
	"github.com/amartinez/sharepoint-mcp-go/internal/graph"
	"github.com/amartinez/sharepoint-mcp-go/internal/middleware"
	"github.com/amartinez/sharepoint-mcp-go/internal/pkg/format"
	"github.com/amartinez/sharepoint-mcp-go/internal/pkg/response"
	"github.com/amartinez/sharepoint-mcp-go/internal/session"
)

// --- list_my_drives ---

type ListMyDrivesInput struct{}

type ListMyDrivesOutput struct {
	Drives []graph.Drive `json:"drives"`
	Count  int           `json:"count"`
}

func createListMyDrivesHandler(client *graph.Client) mcp.ToolHandlerFor[ListMyDrivesInput, ListMyDrivesOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListMyDrivesInput) (*mcp.CallToolResult, ListMyDrivesOutput, error) {
		drives, err := client.ListMyDrives(ctx)
		if err != nil {
			return nil, ListMyDrivesOutput{}, middleware.HandleGraphError(err)
		}

		rb := response.New()
		rb.Header("My Drives")
		rb.KeyValue("Count", len(drives))
		for _, d := range drives {
			rb.Item("%s (%s)", d.Name, d.DriveType)
			rb.Line("    ID: %s", d.ID)
			if quota := format.ByteSize(d.QuotaUsed); quota != "" {
				rb.Line("    Used: %s of %s", quota, format.ByteSize(d.QuotaTotal))
			}
		}

		return rb.TextResult(), ListMyDrivesOutput{Drives: drives, Count: len(drives)}, nil
	}
}

// --- search_sharepoint_sites ---

type SearchSitesInput struct {
	Query string `json:"query" jsonschema:"required" jsonschema_description:"Text to search site names and descriptions for"`
}

type SearchSitesOutput struct {
	Sites []graph.Site `json:"sites"`
	Count int          `json:"count"`
}

func createSearchSitesHandler(client *graph.Client) mcp.ToolHandlerFor[SearchSitesInput, SearchSitesOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchSitesInput) (*mcp.CallToolResult, SearchSitesOutput, error) {
		sites, err := client.SearchSites(ctx, input.Query)
		if err != nil {
			return nil, SearchSitesOutput{}, middleware.HandleGraphError(err)
		}

		rb := response.New()
		rb.Header("SharePoint Site Search")
		rb.KeyValue("Query", input.Query)
		rb.KeyValue("Results", len(sites))
		for _, s := range sites {
			name := s.DisplayName
			if name == "" {
				name = s.Name
			}
			rb.Item("%s", name)
			rb.Line("    ID: %s", s.ID)
			if s.WebURL != "" {
				rb.Line("    URL: %s", s.WebURL)
			}
		}

		return rb.TextResult(), SearchSitesOutput{Sites: sites, Count: len(sites)}, nil
	}
}

// --- list_site_drives ---

type ListSiteDrivesInput struct {
	SiteID  string `json:"site_id,omitempty" jsonschema_description:"The SharePoint site ID"`
	SiteURL string `json:"site_url,omitempty" jsonschema_description:"The absolute site URL, e.g. https://tenant.sharepoint.com/sites/Example"`
}

type ListSiteDrivesOutput struct {
	Drives []graph.Drive `json:"drives"`
	Count  int           `json:"count"`
}

func createListSiteDrivesHandler(client *graph.Client) mcp.ToolHandlerFor[ListSiteDrivesInput, ListSiteDrivesOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListSiteDrivesInput) (*mcp.CallToolResult, ListSiteDrivesOutput, error) {
		drives, err := client.ListSiteDrives(ctx, input.SiteID, input.SiteURL)
		if err != nil {
			return nil, ListSiteDrivesOutput{}, middleware.HandleGraphError(err)
		}

		rb := response.New()
		rb.Header("Site Document Libraries")
		rb.KeyValue("Count", len(drives))
		for _, d := range drives {
			rb.Item("%s (%s)", d.Name, d.DriveType)
			rb.Line("    ID: %s", d.ID)
		}

		return rb.TextResult(), ListSiteDrivesOutput{Drives: drives, Count: len(drives)}, nil
	}
}

// --- set_active_drive ---

type SetActiveDriveInput struct {
	DriveID string `json:"drive_id" jsonschema:"required" jsonschema_description:"The ID of the drive to select for subsequent file operations"`
}

type SetActiveDriveOutput struct {
	Drive graph.Drive `json:"drive"`
}

func createSetActiveDriveHandler(client *graph.Client, sess *session.Session) mcp.ToolHandlerFor[SetActiveDriveInput, SetActiveDriveOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SetActiveDriveInput) (*mcp.CallToolResult, SetActiveDriveOutput, error) {
		// Fetch metadata first so a bad ID never becomes the active drive.
		drive, err := client.GetDrive(ctx, input.DriveID)
		if err != nil {
			return nil, SetActiveDriveOutput{}, middleware.HandleGraphError(err)
		}
		sess.SetActiveDrive(input.DriveID)

		rb := response.New()
		rb.Header("Active Drive Changed")
		rb.KeyValue("Drive", drive.Name)
		rb.KeyValue("ID", drive.ID)
		rb.KeyValue("Type", drive.DriveType)

		return rb.TextResult(), SetActiveDriveOutput{Drive: *drive}, nil
	}
}

// --- get_graph_context ---

type GetGraphContextInput struct{}

type GetGraphContextOutput struct {
	ActiveAccount *auth.AccountStatus `json:"active_account"`
	ActiveDriveID string              `json:"active_drive_id,omitempty"`
}

func createGetGraphContextHandler(sess *session.Session, mgr *auth.Manager) mcp.ToolHandlerFor[GetGraphContextInput, GetGraphContextOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input GetGraphContextInput) (*mcp.CallToolResult, GetGraphContextOutput, error) {
		output := GetGraphContextOutput{
			ActiveAccount: mgr.ActiveAccount(),
			ActiveDriveID: sess.ActiveDrive(),
		}

		rb := response.New()
		rb.Header("Graph Context")
		if output.ActiveAccount != nil {
			rb.KeyValue("Active account", output.ActiveAccount.Username)
		} else {
			rb.KeyValue("Active account", "none — sign in with start_device_login")
		}
		if output.ActiveDriveID != "" {
			rb.KeyValue("Active drive", output.ActiveDriveID)
		} else {
			rb.KeyValue("Active drive", "none — select one with set_active_drive")
		}

		return rb.TextResult(), output, nil
	}
}
