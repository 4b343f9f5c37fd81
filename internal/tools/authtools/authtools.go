// Package authtools implements the MCP tools for signing into Microsoft 365
// and choosing the account the connector operates as.
package authtools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/amartinez/sharepoint-mcp-go/internal/auth"
	"github.com/amartinez/sharepoint-mcp-go/internal/pkg/ptr"
)

// Register registers the authentication tools with the MCP server.
func Register(server *mcp.Server, include func(string, *mcp.ToolAnnotations) bool, mgr *auth.Manager) {
	add := func(tool *mcp.Tool, register func()) {
		if include == nil || include(tool.Name, tool.Annotations) {
			register()
		}
	}

	startTool := &mcp.Tool{
		Name: "start_device_login",
		Description: "Start a device code login flow for choosing the Microsoft 365 account used in this " +
			"session. Returns a verification URI and user code to show the user, plus a flow_id for " +
			"complete_device_login.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Start Device Login",
			OpenWorldHint: ptr.Bool(true),
		},
	}
	add(startTool, func() { mcp.AddTool(server, startTool, createStartDeviceLoginHandler(mgr)) })

	completeTool := &mcp.Tool{
		Name: "complete_device_login",
		Description: "Complete a device login flow previously started with start_device_login. Blocks until " +
			"the user finishes authenticating in the browser, the optional timeout elapses, or the code expires.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Complete Device Login",
			OpenWorldHint: ptr.Bool(true),
		},
	}
	add(completeTool, func() { mcp.AddTool(server, completeTool, createCompleteDeviceLoginHandler(mgr)) })

	listTool := &mcp.Tool{
		Name:        "list_accounts",
		Description: "List the Microsoft accounts cached on this device and which one is active.",
		Annotations: &mcp.ToolAnnotations{
			Title:        "List Cached Accounts",
			ReadOnlyHint: true,
		},
	}
	add(listTool, func() { mcp.AddTool(server, listTool, createListAccountsHandler(mgr)) })

	setActiveTool := &mcp.Tool{
		Name:        "set_active_account",
		Description: "Select the cached Microsoft 365 account that subsequent Graph operations run as, by home_account_id or username.",
		Annotations: &mcp.ToolAnnotations{
			Title:          "Set Active Account",
			IdempotentHint: true,
		},
	}
	add(setActiveTool, func() { mcp.AddTool(server, setActiveTool, createSetActiveAccountHandler(mgr)) })

	contextTool := &mcp.Tool{
		Name:        "get_auth_context",
		Description: "Return diagnostic information about the current authentication state: active account, cached accounts, scopes, and cache location.",
		Annotations: &mcp.ToolAnnotations{
			Title:        "Get Auth Context",
			ReadOnlyHint: true,
		},
	}
	add(contextTool, func() { mcp.AddTool(server, contextTool, createGetAuthContextHandler(mgr)) })
}
