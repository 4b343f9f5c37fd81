package authtools

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/amartinez/sharepoint-mcp-go/internal/auth"
	"github.com/amartinez/sharepoint-mcp-go/internal/pkg/response"
)

// --- start_device_login ---

type StartDeviceLoginInput struct{}

func createStartDeviceLoginHandler(mgr *auth.Manager) mcp.ToolHandlerFor[StartDeviceLoginInput, *auth.DeviceLogin] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input StartDeviceLoginInput) (*mcp.CallToolResult, *auth.DeviceLogin, error) {
		login, err := mgr.StartDeviceLogin(ctx)
		if err != nil {
			return nil, nil, err
		}

		rb := response.New()
		rb.Header("Device Login Started")
		rb.Line("%s", login.Message)
		rb.Blank()
		rb.KeyValue("Verification URI", login.VerificationURI)
		rb.KeyValue("User code", login.UserCode)
		rb.KeyValue("Expires in", login.ExpiresIn)
		rb.Blank()
		rb.Line("After the user authenticates, call complete_device_login with flow_id %q.", login.FlowID)

		return rb.TextResult(), login, nil
	}
}

// --- complete_device_login ---

type CompleteDeviceLoginInput struct {
	FlowID         string `json:"flow_id" jsonschema:"required" jsonschema_description:"The flow_id returned by start_device_login"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" jsonschema_description:"Maximum seconds to wait for the user to finish authenticating (default: until the device code expires)"`
}

func createCompleteDeviceLoginHandler(mgr *auth.Manager) mcp.ToolHandlerFor[CompleteDeviceLoginInput, *auth.LoginResult] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input CompleteDeviceLoginInput) (*mcp.CallToolResult, *auth.LoginResult, error) {
		result, err := mgr.CompleteDeviceLogin(ctx, input.FlowID, time.Duration(input.TimeoutSeconds)*time.Second)
		if err != nil {
			return nil, nil, err
		}

		rb := response.New()
		rb.Header("Login Successful")
		rb.KeyValue("Account", result.Account.Username)
		if result.Account.Name != "" {
			rb.KeyValue("Name", result.Account.Name)
		}
		rb.KeyValue("Home account ID", result.Account.HomeAccountID)
		rb.Line("This account is now active for Graph operations.")

		return rb.TextResult(), result, nil
	}
}

// --- list_accounts ---

type ListAccountsInput struct{}

type ListAccountsOutput struct {
	Accounts []auth.AccountStatus `json:"accounts"`
	Count    int                  `json:"count"`
}

func createListAccountsHandler(mgr *auth.Manager) mcp.ToolHandlerFor[ListAccountsInput, ListAccountsOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListAccountsInput) (*mcp.CallToolResult, ListAccountsOutput, error) {
		accounts := mgr.Accounts()

		rb := response.New()
		rb.Header("Cached Microsoft Accounts")
		rb.KeyValue("Count", len(accounts))
		for _, acct := range accounts {
			marker := ""
			if acct.IsActive {
				marker = " (active)"
			}
			rb.Item("%s%s", acct.Username, marker)
			rb.Line("    ID: %s", acct.HomeAccountID)
		}
		if len(accounts) == 0 {
			rb.Line("No accounts cached — sign in with start_device_login.")
		}

		return rb.TextResult(), ListAccountsOutput{Accounts: accounts, Count: len(accounts)}, nil
	}
}

// --- set_active_account ---

type SetActiveAccountInput struct {
	HomeAccountID string `json:"home_account_id,omitempty" jsonschema_description:"The home account ID of the cached account to activate"`
	Username      string `json:"username,omitempty" jsonschema_description:"The username (email) of the cached account to activate, matched case-insensitively"`
}

type SetActiveAccountOutput struct {
	Account auth.AccountStatus `json:"account"`
}

func createSetActiveAccountHandler(mgr *auth.Manager) mcp.ToolHandlerFor[SetActiveAccountInput, SetActiveAccountOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SetActiveAccountInput) (*mcp.CallToolResult, SetActiveAccountOutput, error) {
		account, err := mgr.SetActiveAccount(input.HomeAccountID, input.Username)
		if err != nil {
			return nil, SetActiveAccountOutput{}, err
		}

		rb := response.New()
		rb.Header("Active Account Changed")
		rb.KeyValue("Account", account.Username)
		rb.KeyValue("Home account ID", account.HomeAccountID)

		return rb.TextResult(), SetActiveAccountOutput{Account: *account}, nil
	}
}

// --- get_auth_context ---

type GetAuthContextInput struct{}

func createGetAuthContextHandler(mgr *auth.Manager) mcp.ToolHandlerFor[GetAuthContextInput, auth.Snapshot] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input GetAuthContextInput) (*mcp.CallToolResult, auth.Snapshot, error) {
		snapshot := mgr.Context()

		rb := response.New()
		rb.Header("Authentication Context")
		if snapshot.ActiveAccount != nil {
			rb.KeyValue("Active account", snapshot.ActiveAccount.Username)
		} else {
			rb.KeyValue("Active account", "none")
		}
		rb.KeyValue("Cached accounts", len(snapshot.AvailableAccounts))
		rb.KeyValue("Scopes", snapshot.Scopes)
		rb.KeyValue("Cache path", snapshot.CachePath)

		return rb.TextResult(), snapshot, nil
	}
}
