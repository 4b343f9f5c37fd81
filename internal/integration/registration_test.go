//go:build integration

// Package integration contains integration tests that verify full system
// wiring without requiring real Microsoft Graph credentials.
package integration

import (
	"log/slog"
	"os"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/amartinez/sharepoint-mcp-go/internal/auth"
	"github.com/amartinez/sharepoint-mcp-go/internal/config"
	"github.com/amartinez/sharepoint-mcp-go/internal/graph"
	"github.com/amartinez/sharepoint-mcp-go/internal/registry"
	"github.com/amartinez/sharepoint-mcp-go/internal/session"
)

// Shared state loaded once in TestMain.
var (
	sharedCfg     *config.Config
	sharedTierMap map[string]config.ToolInfo
)

func TestMain(m *testing.M) {
	os.Setenv("MCP_GRAPH_CLIENT_ID", "test-client-id")
	os.Setenv("MCP_TRANSPORT", "stdio")
	os.Setenv("TOOL_TIER", "complete")

	tmpDir, err := os.MkdirTemp("", "mcp-integration-*")
	if err != nil {
		panic("creating temp dir: " + err.Error())
	}
	os.Setenv("MCP_GRAPH_CACHE_PATH", tmpDir+"/token_cache.json")
	defer os.RemoveAll(tmpDir)

	// Load config once (calls flag.Parse)
	cfg, err := config.Load()
	if err != nil {
		panic("loading config: " + err.Error())
	}
	sharedCfg = cfg

	tierMap, err := config.LoadTiers("../../configs/tool_tiers.yaml")
	if err != nil {
		panic("loading tier config: " + err.Error())
	}
	sharedTierMap = tierMap

	os.Exit(m.Run())
}

// createTestServer creates a fully wired MCP server for testing.
func createTestServer(t *testing.T) *mcp.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	store, err := auth.NewFileStore(sharedCfg.CachePath)
	if err != nil {
		t.Fatalf("creating token cache: %v", err)
	}

	mgr, err := auth.NewManager(sharedCfg.Graph.ClientID, sharedCfg.Graph.TenantID, sharedCfg.Graph.Scopes, store, logger)
	if err != nil {
		t.Fatalf("creating auth manager: %v", err)
	}

	client := graph.NewClient(sharedCfg.Graph.BaseURL, nil, mgr, logger)
	sess := session.New()

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "sharepoint-mcp",
		Version: "1.0.0-test",
	}, nil)

	registry.RegisterAll(server, sharedCfg, sharedTierMap, mgr, client, sess)
	return server
}

func TestFullToolRegistration(t *testing.T) {
	server := createTestServer(t)

	if server == nil {
		t.Fatal("server is nil after registration")
	}

	toolCount := 0
	for range sharedTierMap {
		toolCount++
	}

	expectedTotal := 19
	if toolCount != expectedTotal {
		t.Errorf("tier config has %d tools, expected %d", toolCount, expectedTotal)
	}
}

func TestConfigValues(t *testing.T) {
	if sharedCfg.Graph.ClientID != "test-client-id" {
		t.Errorf("client ID = %q, want %q", sharedCfg.Graph.ClientID, "test-client-id")
	}
	if sharedCfg.Graph.TenantID != "common" {
		t.Errorf("tenant = %q, want %q", sharedCfg.Graph.TenantID, "common")
	}
	if sharedCfg.Server.Transport != "stdio" {
		t.Errorf("transport = %q, want %q", sharedCfg.Server.Transport, "stdio")
	}
	if sharedCfg.ToolTier != "complete" {
		t.Errorf("tool tier = %q, want %q", sharedCfg.ToolTier, "complete")
	}
}

func TestTierFiltering(t *testing.T) {
	tests := []struct {
		name     string
		tier     string
		minTools int
	}{
		{"core tier", "core", 11},
		{"extended tier", "extended", 16},
		{"complete tier", "complete", 19},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count := 0
			for _, info := range sharedTierMap {
				if config.TierLevel(info.Tier) <= config.TierLevel(tt.tier) {
					count++
				}
			}
			if count < tt.minTools {
				t.Errorf("tier %q has %d tools, expected at least %d", tt.tier, count, tt.minTools)
			}
		})
	}
}

func TestToolNameValidation(t *testing.T) {
	for name := range sharedTierMap {
		if err := registry.ValidateToolName(name); err != nil {
			t.Errorf("tool name %q failed SEP-986 validation: %v", name, err)
		}
	}
}

func TestReadOnlyModeFiltering(t *testing.T) {
	cfg := &config.Config{
		ToolTier: "complete",
		ReadOnly: true,
	}

	readOnlyTools := []string{
		"list_my_drives",
		"list_drive_items",
		"get_drive_item_content",
		"search_drive_items",
		"deep_search_microsoft365",
	}

	writeTools := []string{
		"create_drive_folder",
		"upload_drive_file",
		"update_drive_file",
		"delete_drive_item",
	}

	for _, name := range readOnlyTools {
		annotations := &mcp.ToolAnnotations{ReadOnlyHint: true}
		if !registry.ShouldIncludeTool(name, cfg, sharedTierMap, annotations) {
			t.Errorf("read-only tool %q should be included in read-only mode", name)
		}
	}

	for _, name := range writeTools {
		annotations := &mcp.ToolAnnotations{ReadOnlyHint: false}
		if registry.ShouldIncludeTool(name, cfg, sharedTierMap, annotations) {
			t.Errorf("write tool %q should be excluded in read-only mode", name)
		}
	}
}
