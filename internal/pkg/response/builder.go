// Package response builds the human-readable text half of MCP tool results.
package response

import (
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Builder assembles formatted text for tool results so every tool speaks
// with the same voice.
type Builder struct {
	sb strings.Builder
}

// New creates an empty Builder.
func New() *Builder {
	return &Builder{}
}

// Header writes a prominent header line.
func (b *Builder) Header(format string, args ...any) *Builder {
	b.sb.WriteString("═══ ")
	b.sb.WriteString(fmt.Sprintf(format, args...))
	b.sb.WriteString(" ═══\n")
	return b
}

// KeyValue writes a bulleted key-value pair.
func (b *Builder) KeyValue(key string, value any) *Builder {
	fmt.Fprintf(&b.sb, "• %s: %v\n", key, value)
	return b
}

// Item writes an arrowed list entry.
func (b *Builder) Item(format string, args ...any) *Builder {
	b.sb.WriteString("  → ")
	b.sb.WriteString(fmt.Sprintf(format, args...))
	b.sb.WriteByte('\n')
	return b
}

// Line writes a plain line.
func (b *Builder) Line(format string, args ...any) *Builder {
	b.sb.WriteString(fmt.Sprintf(format, args...))
	b.sb.WriteByte('\n')
	return b
}

// Blank writes an empty line.
func (b *Builder) Blank() *Builder {
	b.sb.WriteByte('\n')
	return b
}

// Raw appends text verbatim.
func (b *Builder) Raw(text string) *Builder {
	b.sb.WriteString(text)
	return b
}

// Build returns the assembled string.
func (b *Builder) Build() string {
	return b.sb.String()
}

// TextResult wraps the builder's content in an MCP CallToolResult. This is
// the standard return for tool handlers.
func (b *Builder) TextResult() *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: b.sb.String()}},
	}
}
