// Package mimetext classifies MIME types as text or binary so tool results
// can return readable content instead of base64 whenever possible.
package mimetext

import "strings"

// textApplicationTypes are application/* types that carry UTF-8 text.
var textApplicationTypes = map[string]bool{
	"application/json":         true,
	"application/xml":          true,
	"application/x-javascript": true,
	"application/javascript":   true,
	"application/x-httpd-php":  true,
	"application/x-sh":         true,
	"application/x-python":     true,
	"application/sql":          true,
}

// IsText reports whether content of the given MIME type should be treated
// as text. Parameters like "; charset=utf-8" are ignored.
func IsText(mimeType string) bool {
	if mimeType == "" {
		return false
	}
	if base, _, found := strings.Cut(mimeType, ";"); found {
		mimeType = strings.TrimSpace(base)
	}
	if strings.HasPrefix(mimeType, "text/") {
		return true
	}
	return textApplicationTypes[mimeType]
}
