package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// listPageSize is the $top value for children listings. 200 is the Graph
// API maximum for drive item collections.
const listPageSize = 200

// ConflictBehavior values accepted by create and upload operations.
const (
	ConflictFail    = "fail"
	ConflictRename  = "rename"
	ConflictReplace = "replace"
)

// driveItemResponse mirrors the Graph API driveItem JSON.
// Unexported — callers get the normalized Item.
type driveItemResponse struct {
	ID                   string       `json:"id"`
	Name                 string       `json:"name"`
	Size                 int64        `json:"size"`
	WebURL               string       `json:"webUrl"`
	CreatedDateTime      string       `json:"createdDateTime"`
	LastModifiedDateTime string       `json:"lastModifiedDateTime"`
	ParentReference      *parentRef   `json:"parentReference"`
	File                 *FileFacet   `json:"file"`
	Folder               *FolderFacet `json:"folder"`
	DownloadURL          string       `json:"@microsoft.graph.downloadUrl"`
}

type parentRef struct {
	ID      string `json:"id"`
	DriveID string `json:"driveId"`
	Path    string `json:"path"`
}

type listItemsResponse struct {
	Value    []driveItemResponse `json:"value"`
	NextLink string              `json:"@odata.nextLink"`
}

type createFolderRequest struct {
	Name             string      `json:"name"`
	Folder           FolderFacet `json:"folder"`
	ConflictBehavior string      `json:"@microsoft.graph.conflictBehavior"`
}

func (d *driveItemResponse) toItem() Item {
	item := Item{
		ID:          d.ID,
		Name:        d.Name,
		WebURL:      d.WebURL,
		CreatedAt:   d.CreatedDateTime,
		ModifiedAt:  d.LastModifiedDateTime,
		Size:        d.Size,
		Folder:      d.Folder,
		File:        d.File,
		downloadURL: d.DownloadURL,
	}
	if d.ParentReference != nil {
		item.DriveID = d.ParentReference.DriveID
		item.ParentPath = d.ParentReference.Path
	}
	return item
}

// normalizePath trims surrounding slashes; an empty result addresses the
// drive root.
func normalizePath(path string) string {
	return strings.Trim(path, "/")
}

// encodePathSegments URL-encodes each slash-separated segment so characters
// like #, ?, % and spaces are safe inside Graph item URLs.
func encodePathSegments(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

// itemEndpoint returns the API path addressing an item by drive-relative
// path, or the drive root when the path is empty.
func itemEndpoint(driveID, path string) string {
	normalized := normalizePath(path)
	if normalized == "" {
		return fmt.Sprintf("/drives/%s/root", driveID)
	}
	return fmt.Sprintf("/drives/%s/root:/%s:", driveID, encodePathSegments(normalized))
}

// ItemByPath retrieves a drive item by path relative to the drive root.
// An empty path resolves the root folder itself.
func (c *Client) ItemByPath(ctx context.Context, driveID, path string) (*Item, error) {
	resp, err := c.do(ctx, http.MethodGet, itemEndpoint(driveID, path), requestOpts{})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var dir driveItemResponse
	if err := json.NewDecoder(resp.Body).Decode(&dir); err != nil {
		return nil, fmt.Errorf("graph: decoding item response: %w", err)
	}

	item := dir.toItem()
	return &item, nil
}

// ListChildren returns the children of a folder identified by path,
// following pagination. An empty path lists the drive root.
func (c *Client) ListChildren(ctx context.Context, driveID, path string) ([]Item, error) {
	normalized := normalizePath(path)

	var apiPath string
	if normalized == "" {
		apiPath = fmt.Sprintf("/drives/%s/root/children?$top=%d", driveID, listPageSize)
	} else {
		apiPath = fmt.Sprintf("/drives/%s/root:/%s:/children?$top=%d",
			driveID, encodePathSegments(normalized), listPageSize)
	}

	var items []Item
	for apiPath != "" {
		resp, err := c.do(ctx, http.MethodGet, apiPath, requestOpts{})
		if err != nil {
			return nil, err
		}

		var page listItemsResponse
		err = json.NewDecoder(resp.Body).Decode(&page)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("graph: decoding children response: %w", err)
		}

		for i := range page.Value {
			items = append(items, page.Value[i].toItem())
		}

		apiPath, err = c.stripBaseURL(page.NextLink)
		if err != nil {
			return nil, err
		}
	}

	c.logger.Debug("listed children", "drive_id", driveID, "path", normalized, "count", len(items))
	return items, nil
}

// stripBaseURL converts an @odata.nextLink back into a client-relative
// path. Empty input means no more pages.
func (c *Client) stripBaseURL(link string) (string, error) {
	if link == "" {
		return "", nil
	}
	if !strings.HasPrefix(link, c.baseURL) {
		return "", fmt.Errorf("graph: nextLink %q does not match base URL", link)
	}
	return strings.TrimPrefix(link, c.baseURL), nil
}

// CreateFolder creates a folder under parentPath (drive root when empty).
// conflictBehavior defaults to "fail".
func (c *Client) CreateFolder(ctx context.Context, driveID, folderName, parentPath, conflictBehavior string) (*Item, error) {
	if folderName == "" {
		return nil, fmt.Errorf("graph: folder name must not be empty")
	}
	if conflictBehavior == "" {
		conflictBehavior = ConflictFail
	}

	parent, err := c.ItemByPath(ctx, driveID, parentPath)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(createFolderRequest{
		Name:             folderName,
		Folder:           FolderFacet{},
		ConflictBehavior: conflictBehavior,
	})
	if err != nil {
		return nil, fmt.Errorf("graph: encoding folder request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost,
		fmt.Sprintf("/drives/%s/items/%s/children", driveID, parent.ID),
		requestOpts{body: body})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var dir driveItemResponse
	if err := json.NewDecoder(resp.Body).Decode(&dir); err != nil {
		return nil, fmt.Errorf("graph: decoding folder response: %w", err)
	}

	c.logger.Info("created folder", "drive_id", driveID, "name", folderName, "parent", normalizePath(parentPath))
	item := dir.toItem()
	return &item, nil
}

// Upload writes content to itemPath, creating or updating the file per
// conflictBehavior. The simple upload endpoint caps out at 4 MB; larger
// files would need an upload session, which this server does not expose.
func (c *Client) Upload(ctx context.Context, driveID, itemPath string, content []byte, conflictBehavior string) (*Item, error) {
	normalized := normalizePath(itemPath)
	if normalized == "" {
		return nil, fmt.Errorf("graph: item path must include the file name")
	}
	if conflictBehavior == "" {
		conflictBehavior = ConflictReplace
	}

	apiPath := fmt.Sprintf("/drives/%s/root:/%s:/content?@microsoft.graph.conflictBehavior=%s",
		driveID, encodePathSegments(normalized), url.QueryEscape(conflictBehavior))

	resp, err := c.do(ctx, http.MethodPut, apiPath, requestOpts{
		body:        content,
		contentType: "application/octet-stream",
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var dir driveItemResponse
	if err := json.NewDecoder(resp.Body).Decode(&dir); err != nil {
		return nil, fmt.Errorf("graph: decoding upload response: %w", err)
	}

	c.logger.Info("uploaded file", "drive_id", driveID, "path", normalized, "bytes", len(content))
	item := dir.toItem()
	return &item, nil
}

// Delete removes the item at path. The deleted item's metadata is returned
// so callers can report what was removed.
func (c *Client) Delete(ctx context.Context, driveID, path string) (*Item, error) {
	item, err := c.ItemByPath(ctx, driveID, path)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, http.MethodDelete,
		fmt.Sprintf("/drives/%s/items/%s", driveID, item.ID), requestOpts{})
	if err != nil {
		return nil, err
	}
	resp.Body.Close()

	c.logger.Info("deleted item", "drive_id", driveID, "item_id", item.ID, "name", item.Name)
	return item, nil
}

// SearchDriveItems searches file and folder names within a single drive.
func (c *Client) SearchDriveItems(ctx context.Context, driveID, query string) ([]Item, error) {
	apiPath := fmt.Sprintf("/drives/%s/root/search(q='%s')", driveID, url.PathEscape(query))

	resp, err := c.do(ctx, http.MethodGet, apiPath, requestOpts{})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var page listItemsResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("graph: decoding search response: %w", err)
	}

	items := make([]Item, 0, len(page.Value))
	for i := range page.Value {
		items = append(items, page.Value[i].toItem())
	}
	return items, nil
}
