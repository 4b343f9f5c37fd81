package middleware

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// authErrorMarkers are substrings that identify auth-related tool errors.
var authErrorMarkers = []string{
	"start_device_login",
	"no active microsoft account",
	"authentication expired",
	"complete the device login flow",
}

// deviceLoginHint is appended to auth-related tool errors so the agent can
// recover without an extra diagnostic round-trip.
const deviceLoginHint = "\n\nTo authenticate: call start_device_login, show the user the " +
	"verification URI and code, then call complete_device_login with the returned flow_id."

// AuthEnhancerMiddleware returns MCP SDK middleware that detects
// auth-related tool errors and appends device-login instructions.
func AuthEnhancerMiddleware() mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			result, err := next(ctx, method, req)

			// Only enhance tools/call responses.
			if method != "tools/call" {
				return result, err
			}

			toolResult, ok := result.(*mcp.CallToolResult)
			if !ok || toolResult == nil || !toolResult.IsError || len(toolResult.Content) == 0 {
				return result, err
			}

			textContent, ok := toolResult.Content[0].(*mcp.TextContent)
			if !ok {
				return result, err
			}

			if !isAuthRelatedError(textContent.Text) {
				return result, err
			}

			// Don't stack the hint if the error text already carries it.
			if !strings.Contains(textContent.Text, "then call complete_device_login") {
				textContent.Text += deviceLoginHint
			}

			return result, err
		}
	}
}

// isAuthRelatedError returns true if the text contains any auth-error marker.
func isAuthRelatedError(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range authErrorMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
