// Package registry wires the tool packages into the MCP server and applies
// the tier and read-only filters to each tool before it is registered.
package registry

import (
	"fmt"
	"log/slog"
	"regexp"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/amartinez/sharepoint-mcp-go/internal/auth"
	"github.com/amartinez/sharepoint-mcp-go/internal/config"
	"github.com/amartinez/sharepoint-mcp-go/internal/graph"
	"github.com/amartinez/sharepoint-mcp-go/internal/session"
	"github.com/amartinez/sharepoint-mcp-go/internal/tools/authtools"
	"github.com/amartinez/sharepoint-mcp-go/internal/tools/drives"
	"github.com/amartinez/sharepoint-mcp-go/internal/tools/items"
	"github.com/amartinez/sharepoint-mcp-go/internal/tools/search"
)

// toolNameRE enforces SEP-986: tool names must match ^[a-zA-Z0-9_-]{1,64}$
var toolNameRE = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// ValidateToolName checks that a tool name complies with SEP-986.
func ValidateToolName(name string) error {
	if !toolNameRE.MatchString(name) {
		return fmt.Errorf("tool name %q does not match SEP-986 pattern ^[a-zA-Z0-9_-]{1,64}$", name)
	}
	return nil
}

// ShouldIncludeTool checks whether a tool should be registered under the
// current config. An empty tierMap disables tier filtering entirely.
func ShouldIncludeTool(toolName string, cfg *config.Config, tierMap map[string]config.ToolInfo, annotations *mcp.ToolAnnotations) bool {
	if len(tierMap) > 0 {
		info, ok := tierMap[toolName]
		if !ok {
			slog.Warn("tool not found in tier config, skipping", "tool", toolName)
			return false
		}
		if config.TierLevel(info.Tier) > config.TierLevel(cfg.ToolTier) {
			return false
		}
	}

	// Read-only mode drops every tool that can change server-side state.
	if cfg.ReadOnly && annotations != nil && !annotations.ReadOnlyHint {
		return false
	}

	return true
}

// RegisterAll registers all tool packages with the server. Each package
// exposes Register(server, include, deps...) and consults include per tool.
func RegisterAll(server *mcp.Server, cfg *config.Config, tierMap map[string]config.ToolInfo, mgr *auth.Manager, client *graph.Client, sess *session.Session) {
	slog.Info("registering tools",
		"tier", cfg.ToolTier,
		"readOnly", cfg.ReadOnly,
	)

	include := func(name string, annotations *mcp.ToolAnnotations) bool {
		if err := ValidateToolName(name); err != nil {
			slog.Error("invalid tool name, skipping", "tool", name, "error", err)
			return false
		}
		return ShouldIncludeTool(name, cfg, tierMap, annotations)
	}

	authtools.Register(server, include, mgr)
	slog.Info("registered tool group", "group", "auth")

	drives.Register(server, include, client, sess, mgr)
	slog.Info("registered tool group", "group", "drives")

	items.Register(server, include, client, sess)
	slog.Info("registered tool group", "group", "items")

	search.Register(server, include, client, sess)
	slog.Info("registered tool group", "group", "search")
}
