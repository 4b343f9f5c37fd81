package graph

// Item is a drive item (file or folder) normalized from the Graph API
// response. Facet pointers are nil when the facet is absent, so callers can
// distinguish files from folders the way the API does.
type Item struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	DriveID      string       `json:"driveId,omitempty"`
	ParentPath   string       `json:"path,omitempty"`
	WebURL       string       `json:"webUrl,omitempty"`
	CreatedAt    string       `json:"createdDateTime,omitempty"`
	ModifiedAt   string       `json:"lastModifiedDateTime,omitempty"`
	Size         int64        `json:"size"`
	Folder      *FolderFacet `json:"folder,omitempty"`
	File        *FileFacet   `json:"file,omitempty"`
	downloadURL string
}

// IsFolder reports whether the item carries a folder facet.
func (i Item) IsFolder() bool { return i.Folder != nil }

// FolderFacet is the folder block of a drive item.
type FolderFacet struct {
	ChildCount int `json:"childCount"`
}

// FileFacet is the file block of a drive item.
type FileFacet struct {
	MimeType string `json:"mimeType,omitempty"`
}

// Drive is a OneDrive or SharePoint document library.
type Drive struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	DriveType   string `json:"driveType,omitempty"`
	WebURL      string `json:"webUrl,omitempty"`
	OwnerName   string `json:"owner,omitempty"`
	QuotaUsed   int64  `json:"quotaUsed,omitempty"`
	QuotaTotal  int64  `json:"quotaTotal,omitempty"`
}

// Site is a SharePoint site.
type Site struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	WebURL      string `json:"webUrl,omitempty"`
	Description string `json:"description,omitempty"`
}

// SearchHit is one flattened result from the tenant-wide search endpoint.
// Extra carries resource fields beyond the common set, keyed as returned
// by the API.
type SearchHit struct {
	Name         string         `json:"name,omitempty"`
	Summary      string         `json:"summary,omitempty"`
	WebURL       string         `json:"webUrl,omitempty"`
	ModifiedAt   string         `json:"lastModifiedDateTime,omitempty"`
	Size         int64          `json:"size,omitempty"`
	ResourceType string         `json:"resourceType,omitempty"`
	Extra        map[string]any `json:"extra,omitempty"`
}

// FileContent is the downloaded content of a drive item. Exactly one of
// Text or Base64 is set, per ContentType.
type FileContent struct {
	Name        string `json:"name"`
	WebURL      string `json:"webUrl,omitempty"`
	Size        int64  `json:"size"`
	ModifiedAt  string `json:"lastModifiedDateTime,omitempty"`
	ContentType string `json:"content_type"` // "text" or "binary"
	Text        string `json:"content,omitempty"`
	Base64      string `json:"content_base64,omitempty"`
}
