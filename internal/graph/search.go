package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// defaultSearchEntityTypes are queried when the caller does not narrow the
// search down.
var defaultSearchEntityTypes = []string{"driveItem", "list", "listItem", "site"}

// defaultSearchSize is the result page size for tenant-wide search.
const defaultSearchSize = 25

type searchRequest struct {
	Requests []searchRequestEntry `json:"requests"`
}

type searchRequestEntry struct {
	EntityTypes []string    `json:"entityTypes"`
	Query       searchQuery `json:"query"`
	From        int         `json:"from"`
	Size        int         `json:"size"`
}

type searchQuery struct {
	QueryString string `json:"queryString"`
}

type searchResponse struct {
	Value []struct {
		HitsContainers []struct {
			Hits []struct {
				Summary  string         `json:"summary"`
				Resource map[string]any `json:"resource"`
			} `json:"hits"`
		} `json:"hitsContainers"`
	} `json:"value"`
}

// commonHitFields are lifted out of the search resource into the typed part
// of SearchHit; everything else lands in Extra.
var commonHitFields = map[string]bool{
	"name":                 true,
	"title":                true,
	"webUrl":               true,
	"lastModifiedDateTime": true,
	"size":                 true,
	"@odata.type":          true,
}

// SearchEverywhere runs a tenant-wide search across SharePoint and OneDrive
// via the Graph search endpoint and flattens the hit containers.
func (c *Client) SearchEverywhere(ctx context.Context, query string, entityTypes []string, size int) ([]SearchHit, error) {
	if len(entityTypes) == 0 {
		entityTypes = defaultSearchEntityTypes
	}
	if size <= 0 {
		size = defaultSearchSize
	}

	body, err := json.Marshal(searchRequest{
		Requests: []searchRequestEntry{{
			EntityTypes: entityTypes,
			Query:       searchQuery{QueryString: query},
			From:        0,
			Size:        size,
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("graph: encoding search request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/search/query", requestOpts{body: body})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var sr searchResponse
	if err := decodeJSON(resp.Body, &sr); err != nil {
		return nil, err
	}

	var hits []SearchHit
	for _, response := range sr.Value {
		for _, container := range response.HitsContainers {
			for _, hit := range container.Hits {
				hits = append(hits, flattenHit(hit.Summary, hit.Resource))
			}
		}
	}
	return hits, nil
}

// flattenHit maps a raw search resource into a SearchHit, preserving
// uncommon fields in Extra.
func flattenHit(summary string, resource map[string]any) SearchHit {
	hit := SearchHit{Summary: summary}

	if name, ok := resource["name"].(string); ok && name != "" {
		hit.Name = name
	} else if title, ok := resource["title"].(string); ok {
		hit.Name = title
	}
	if webURL, ok := resource["webUrl"].(string); ok {
		hit.WebURL = webURL
	}
	if modified, ok := resource["lastModifiedDateTime"].(string); ok {
		hit.ModifiedAt = modified
	}
	if size, ok := resource["size"].(float64); ok {
		hit.Size = int64(size)
	}
	if odataType, ok := resource["@odata.type"].(string); ok {
		hit.ResourceType = odataType
	}

	for key, value := range resource {
		if commonHitFields[key] {
			continue
		}
		if hit.Extra == nil {
			hit.Extra = make(map[string]any)
		}
		hit.Extra[key] = value
	}

	return hit
}

// decodeJSON decodes a response body, wrapping decode failures uniformly.
func decodeJSON(r io.Reader, v any) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("graph: decoding response: %w", err)
	}
	return nil
}
