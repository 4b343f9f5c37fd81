package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/amartinez/sharepoint-mcp-go/internal/auth"
	"github.com/amartinez/sharepoint-mcp-go/internal/graph"
)

func graphError(status int, sentinel error, message string) error {
	return &graph.Error{
		StatusCode: status,
		Message:    message,
		Err:        sentinel,
	}
}

func TestHandleGraphError_Nil(t *testing.T) {
	if got := HandleGraphError(nil); got != nil {
		t.Errorf("HandleGraphError(nil) = %v, want nil", got)
	}
}

func TestHandleGraphError_AuthSentinelsPassThrough(t *testing.T) {
	sentinels := []error{
		auth.ErrNoActiveAccount,
		auth.ErrFlowNotFound,
		auth.ErrAccountNotFound,
		graph.ErrNoDrive,
	}
	for _, sentinel := range sentinels {
		wrapped := fmt.Errorf("tool context: %w", sentinel)
		if got := HandleGraphError(wrapped); got != wrapped {
			t.Errorf("sentinel %v should pass through unchanged, got %v", sentinel, got)
		}
	}
}

func TestHandleGraphError_Translations(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantSubstr string
	}{
		{
			"bad request includes detail",
			graphError(http.StatusBadRequest, graph.ErrBadRequest, "invalidRequest: missing name"),
			"missing name",
		},
		{
			"unauthorized points at device login",
			graphError(http.StatusUnauthorized, graph.ErrUnauthorized, "token expired"),
			"start_device_login",
		},
		{
			"forbidden mentions scopes",
			graphError(http.StatusForbidden, graph.ErrForbidden, "accessDenied"),
			"scope",
		},
		{
			"not found suggests checking the path",
			graphError(http.StatusNotFound, graph.ErrNotFound, "itemNotFound"),
			"drive ID and path",
		},
		{
			"conflict suggests conflict_behavior",
			graphError(http.StatusConflict, graph.ErrConflict, "nameAlreadyExists"),
			"conflict_behavior",
		},
		{
			"throttled tells the agent to wait",
			graphError(http.StatusTooManyRequests, graph.ErrThrottled, "tooManyRequests"),
			"wait",
		},
		{
			"server error is marked transient",
			graphError(http.StatusBadGateway, graph.ErrServerError, "badGateway"),
			"transient",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HandleGraphError(tt.err)
			if got == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(got.Error(), tt.wantSubstr) {
				t.Errorf("HandleGraphError() = %q, want substring %q", got, tt.wantSubstr)
			}
		})
	}
}

func TestHandleGraphError_UnknownErrorsPassThrough(t *testing.T) {
	plain := errors.New("something else entirely")
	if got := HandleGraphError(plain); got != plain {
		t.Errorf("unknown error should pass through, got %v", got)
	}
}
