package graph

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"unicode/utf8"

	"github.com/amartinez/sharepoint-mcp-go/internal/pkg/mimetext"
)

// maxDownloadBytes caps file downloads. Tool results travel inside a JSON
// message, so anything bigger than this is not useful to an MCP client.
const maxDownloadBytes = 50 << 20 // 50 MB

// ItemContent downloads the content of the file at path. Text files come
// back decoded; everything else is base64.
func (c *Client) ItemContent(ctx context.Context, driveID, path string) (*FileContent, error) {
	item, err := c.ItemByPath(ctx, driveID, path)
	if err != nil {
		return nil, err
	}

	downloadURL := item.downloadURL
	if downloadURL == "" {
		// Some item responses omit the download URL; re-fetch with an
		// explicit $select to force it.
		refetched, err := c.itemWithDownloadURL(ctx, driveID, item.ID)
		if err != nil {
			return nil, err
		}
		downloadURL = refetched.downloadURL
		if refetched.Name != "" {
			item = refetched
		}
	}
	if downloadURL == "" {
		return nil, fmt.Errorf("graph: item %q has no downloadable content", item.Name)
	}

	data, contentType, err := c.download(ctx, downloadURL)
	if err != nil {
		return nil, err
	}

	mimeType := contentType
	if item.File != nil && item.File.MimeType != "" {
		mimeType = item.File.MimeType
	}

	content := &FileContent{
		Name:       item.Name,
		WebURL:     item.WebURL,
		Size:       item.Size,
		ModifiedAt: item.ModifiedAt,
	}

	if mimetext.IsText(mimeType) && utf8.Valid(data) {
		content.ContentType = "text"
		content.Text = string(data)
	} else {
		content.ContentType = "binary"
		content.Base64 = base64.StdEncoding.EncodeToString(data)
	}

	return content, nil
}

// itemWithDownloadURL fetches an item by ID selecting the download URL
// annotation explicitly.
func (c *Client) itemWithDownloadURL(ctx context.Context, driveID, itemID string) (*Item, error) {
	apiPath := fmt.Sprintf("/drives/%s/items/%s?$select=%s",
		driveID, url.PathEscape(itemID),
		url.QueryEscape("id,name,webUrl,size,file,folder,lastModifiedDateTime,@microsoft.graph.downloadUrl"))

	resp, err := c.do(ctx, http.MethodGet, apiPath, requestOpts{})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var dir driveItemResponse
	if err := decodeJSON(resp.Body, &dir); err != nil {
		return nil, err
	}

	item := dir.toItem()
	return &item, nil
}

// download fetches a pre-authenticated download URL. The URL embeds its own
// short-lived credentials, so no Authorization header is sent.
func (c *Client) download(ctx context.Context, downloadURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("graph: creating download request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("graph: downloading content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, "", &Error{
			StatusCode: resp.StatusCode,
			Message:    "content download failed",
			Err:        classifyStatus(resp.StatusCode),
		}
	}

	// Read one byte past the cap so truncation is detectable: a partial
	// payload labeled as complete content is worse than an error.
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("graph: reading content: %w", err)
	}
	if len(data) > maxDownloadBytes {
		return nil, "", fmt.Errorf("graph: file exceeds the %d MB download limit", maxDownloadBytes>>20)
	}

	return data, resp.Header.Get("Content-Type"), nil
}
