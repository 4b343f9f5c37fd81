package middleware

import (
	"errors"
	"fmt"

	"github.com/amartinez/sharepoint-mcp-go/internal/auth"
	"github.com/amartinez/sharepoint-mcp-go/internal/graph"
)

// HandleGraphError translates Microsoft Graph errors into agent-actionable
// messages. These tell the AI what to do next, not the end user.
func HandleGraphError(err error) error {
	if err == nil {
		return nil
	}

	// Auth sentinels already carry next-step guidance.
	if errors.Is(err, auth.ErrNoActiveAccount) ||
		errors.Is(err, auth.ErrFlowNotFound) ||
		errors.Is(err, auth.ErrAccountNotFound) ||
		errors.Is(err, graph.ErrNoDrive) {
		return err
	}

	var graphErr *graph.Error
	if errors.As(err, &graphErr) {
		switch {
		case errors.Is(err, graph.ErrBadRequest):
			return fmt.Errorf(
				"bad request — check that all required parameters are provided and valid. Detail: %s",
				graphErr.Message)
		case errors.Is(err, graph.ErrUnauthorized):
			return fmt.Errorf(
				"authentication expired or invalid — run start_device_login to sign in again")
		case errors.Is(err, graph.ErrForbidden):
			return fmt.Errorf(
				"permission denied — the account may lack access to this resource or a required "+
					"Graph scope was not granted. Detail: %s", graphErr.Message)
		case errors.Is(err, graph.ErrNotFound):
			return fmt.Errorf(
				"resource not found — verify the drive ID and path are correct and the active account has access")
		case errors.Is(err, graph.ErrConflict):
			return fmt.Errorf(
				"conflict — an item with this name already exists. Retry with conflict_behavior "+
					"\"rename\" or \"replace\". Detail: %s", graphErr.Message)
		case errors.Is(err, graph.ErrThrottled):
			return fmt.Errorf(
				"Microsoft Graph is throttling this tenant — wait 30-60 seconds before retrying")
		case errors.Is(err, graph.ErrServerError):
			return fmt.Errorf(
				"Microsoft Graph server error (%d) — transient, retry after a few seconds. Detail: %s",
				graphErr.StatusCode, graphErr.Message)
		default:
			return fmt.Errorf("Microsoft Graph error (%d): %s", graphErr.StatusCode, graphErr.Message)
		}
	}

	return err
}
