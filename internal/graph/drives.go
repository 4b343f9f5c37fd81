package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// driveResponse mirrors the Graph API drive JSON.
type driveResponse struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	DriveType   string      `json:"driveType"`
	WebURL      string      `json:"webUrl"`
	Owner       *ownerFacet `json:"owner"`
	Quota       *quotaFacet `json:"quota"`
}

type ownerFacet struct {
	User struct {
		DisplayName string `json:"displayName"`
	} `json:"user"`
}

type quotaFacet struct {
	Used  int64 `json:"used"`
	Total int64 `json:"total"`
}

type driveListResponse struct {
	Value []driveResponse `json:"value"`
}

func (d *driveResponse) toDrive() Drive {
	drive := Drive{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		DriveType:   d.DriveType,
		WebURL:      d.WebURL,
	}
	if d.Owner != nil {
		drive.OwnerName = d.Owner.User.DisplayName
	}
	if d.Quota != nil {
		drive.QuotaUsed = d.Quota.Used
		drive.QuotaTotal = d.Quota.Total
	}
	return drive
}

type siteResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	WebURL      string `json:"webUrl"`
	Description string `json:"description"`
}

type siteListResponse struct {
	Value []siteResponse `json:"value"`
}

func (s *siteResponse) toSite() Site {
	return Site{
		ID:          s.ID,
		Name:        s.Name,
		DisplayName: s.DisplayName,
		WebURL:      s.WebURL,
		Description: s.Description,
	}
}

// ListMyDrives returns the drives available to the signed-in account
// (personal OneDrive plus document libraries).
func (c *Client) ListMyDrives(ctx context.Context) ([]Drive, error) {
	resp, err := c.do(ctx, http.MethodGet, "/me/drives", requestOpts{})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var list driveListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("graph: decoding drives response: %w", err)
	}

	drives := make([]Drive, 0, len(list.Value))
	for i := range list.Value {
		drives = append(drives, list.Value[i].toDrive())
	}
	return drives, nil
}

// GetDrive fetches metadata for a single drive by ID.
func (c *Client) GetDrive(ctx context.Context, driveID string) (*Drive, error) {
	resp, err := c.do(ctx, http.MethodGet, "/drives/"+url.PathEscape(driveID), requestOpts{})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var dr driveResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return nil, fmt.Errorf("graph: decoding drive response: %w", err)
	}

	drive := dr.toDrive()
	return &drive, nil
}

// SearchSites searches SharePoint sites accessible to the account.
func (c *Client) SearchSites(ctx context.Context, query string) ([]Site, error) {
	resp, err := c.do(ctx, http.MethodGet, "/sites?search="+url.QueryEscape(query), requestOpts{})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var list siteListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("graph: decoding sites response: %w", err)
	}

	sites := make([]Site, 0, len(list.Value))
	for i := range list.Value {
		sites = append(sites, list.Value[i].toSite())
	}
	return sites, nil
}

// SiteByURL resolves a site from its absolute web URL, e.g.
// https://tenant.sharepoint.com/sites/Example, using Graph's
// hostname:/server-relative-path: addressing.
func (c *Client) SiteByURL(ctx context.Context, siteURL string) (*Site, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(siteURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("graph: site URL must not be empty")
	}

	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("graph: site URL %q must be an absolute URL", siteURL)
	}

	endpoint := "/sites/" + parsed.Host + ":"
	if relative := strings.Trim(parsed.Path, "/"); relative != "" {
		endpoint = "/sites/" + parsed.Host + ":/" + relative + ":"
	}

	resp, err := c.do(ctx, http.MethodGet, endpoint, requestOpts{})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var sr siteResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("graph: decoding site response: %w", err)
	}

	site := sr.toSite()
	return &site, nil
}

// ListSiteDrives returns the document libraries of a SharePoint site. One
// of siteID and siteURL must be set; the URL is resolved to an ID first.
func (c *Client) ListSiteDrives(ctx context.Context, siteID, siteURL string) ([]Drive, error) {
	if siteID == "" && siteURL == "" {
		return nil, fmt.Errorf("graph: either site_id or site_url must be provided")
	}

	if siteID == "" {
		site, err := c.SiteByURL(ctx, siteURL)
		if err != nil {
			return nil, err
		}
		if site.ID == "" {
			return nil, fmt.Errorf("graph: unable to resolve site ID from %q", siteURL)
		}
		siteID = site.ID
	}

	resp, err := c.do(ctx, http.MethodGet, "/sites/"+url.PathEscape(siteID)+"/drives", requestOpts{})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var list driveListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("graph: decoding site drives response: %w", err)
	}

	drives := make([]Drive, 0, len(list.Value))
	for i := range list.Value {
		drives = append(drives, list.Value[i].toDrive())
	}
	return drives, nil
}
