package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultScopes are the Graph permissions requested when MCP_GRAPH_SCOPES
// is unset.
var DefaultScopes = []string{
	"Files.ReadWrite.All",
	"Sites.ReadWrite.All",
	"User.Read",
	"offline_access",
}

// DefaultInstructions describe the server to MCP clients.
const DefaultInstructions = "Interact with Microsoft 365 content (SharePoint Online and OneDrive) " +
	"using the Microsoft account signed into this device. Use the authentication " +
	"tools to choose which account to operate with, then browse, search, create " +
	"or update files across drives."

// Config holds all server configuration loaded from environment variables
// and CLI flags.
type Config struct {
	Graph struct {
		ClientID       string
		TenantID       string
		Scopes         []string
		BaseURL        string
		DefaultDriveID string
	}
	Server struct {
		Name         string
		Instructions string
		Transport    string
		Host         string
		Port         int
	}
	ToolTier  string
	ReadOnly  bool
	LogLevel  string
	CachePath string
}

// Load reads configuration from environment variables and CLI flags.
// CLI flags take precedence over environment variables. The SHP_* names are
// legacy aliases kept for existing deployments.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Graph.ClientID = envFirst("MCP_GRAPH_CLIENT_ID", "SHP_ID_APP")
	cfg.Graph.TenantID = envFirst("MCP_GRAPH_TENANT_ID", "SHP_TENANT_ID")
	if cfg.Graph.TenantID == "" {
		cfg.Graph.TenantID = "common"
	}
	cfg.Graph.BaseURL = os.Getenv("MCP_GRAPH_BASE_URL")
	cfg.Graph.DefaultDriveID = os.Getenv("MCP_GRAPH_DEFAULT_DRIVE_ID")
	cfg.Graph.Scopes = parseScopes(os.Getenv("MCP_GRAPH_SCOPES"))

	cfg.Server.Name = envOrDefault("MCP_SERVER_NAME", "sharepoint-mcp")
	cfg.Server.Instructions = envOrDefault("MCP_SERVER_INSTRUCTIONS", DefaultInstructions)
	cfg.Server.Transport = envOrDefault("MCP_TRANSPORT", "stdio")
	cfg.Server.Host = envOrDefault("MCP_GRAPH_HOST", "0.0.0.0")

	cfg.LogLevel = strings.ToLower(envOrDefault("MCP_GRAPH_LOG_LEVEL", "info"))
	cfg.ToolTier = envOrDefault("TOOL_TIER", "complete")
	cfg.ReadOnly = envBool("MCP_GRAPH_READ_ONLY")

	cfg.CachePath = os.Getenv("MCP_GRAPH_CACHE_PATH")
	if cfg.CachePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfg.CachePath = filepath.Join(home, ".cache", "sharepoint-mcp", "token_cache.json")
	}

	portStr := os.Getenv("MCP_PORT")
	if portStr == "" {
		portStr = os.Getenv("PORT")
	}
	if portStr == "" {
		portStr = "8000"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid port %q: %w", portStr, err)
	}
	cfg.Server.Port = port

	// CLI flags override env vars
	flag.StringVar(&cfg.Server.Transport, "transport", cfg.Server.Transport, "Transport mode: stdio or streamable-http")
	flag.StringVar(&cfg.ToolTier, "tool-tier", cfg.ToolTier, "Load tools by tier: core, extended, or complete")
	flag.BoolVar(&cfg.ReadOnly, "read-only", cfg.ReadOnly, "Disable tools that create, modify, or delete content")
	flag.Parse()

	if cfg.Graph.ClientID == "" {
		return nil, fmt.Errorf("MCP_GRAPH_CLIENT_ID (or legacy SHP_ID_APP) must be set to an Azure AD public client ID")
	}

	return cfg, nil
}

// parseScopes splits a comma-separated scope list, falling back to
// DefaultScopes when empty.
func parseScopes(raw string) []string {
	if raw == "" {
		return DefaultScopes
	}
	var scopes []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}
	if len(scopes) == 0 {
		return DefaultScopes
	}
	return scopes
}

func envFirst(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "true" || v == "1" || v == "yes"
}
