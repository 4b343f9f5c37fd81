package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTestManager(t *testing.T, records ...Record) *Manager {
	t.Helper()

	store, err := NewFileStore(filepath.Join(t.TempDir(), "token_cache.json"))
	require.NoError(t, err)
	if len(records) > 0 {
		require.NoError(t, store.Save(records))
	}

	mgr, err := NewManager("test-client-id", "common", []string{"Files.ReadWrite.All"}, store, slog.Default())
	require.NoError(t, err)
	return mgr
}

// pointEndpointAt aims the manager's OAuth endpoint at a test server.
func pointEndpointAt(mgr *Manager, baseURL string) {
	mgr.cfg.Endpoint = oauth2.Endpoint{
		AuthURL:       baseURL + "/authorize",
		TokenURL:      baseURL + "/token",
		DeviceAuthURL: baseURL + "/devicecode",
	}
}

func TestNewManagerRequiresClientID(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "token_cache.json"))
	require.NoError(t, err)

	_, err = NewManager("", "common", nil, store, nil)
	require.Error(t, err)
}

func TestNewManagerRequestsIdentityScopes(t *testing.T) {
	mgr := newTestManager(t)

	assert.Contains(t, mgr.cfg.Scopes, "Files.ReadWrite.All")
	assert.Contains(t, mgr.cfg.Scopes, "openid")
	assert.Contains(t, mgr.cfg.Scopes, "profile")
	assert.Contains(t, mgr.cfg.Scopes, "email")
	// The identity scopes stay out of the user-visible scope list.
	assert.NotContains(t, mgr.scopes, "openid")
}

func TestStartAndCompleteDeviceLogin(t *testing.T) {
	idToken := makeIDToken(t, map[string]any{
		"preferred_username": "ada@contoso.com",
		"name":               "Ada Lovelace",
		"oid":                "obj-1",
		"tid":                "tenant-1",
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/devicecode":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{
				"device_code": "dc-1",
				"user_code": "ABCD-1234",
				"verification_uri": "https://microsoft.com/devicelogin",
				"expires_in": 900,
				"interval": 1
			}`)
		case "/token":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{
				"access_token": "at-1",
				"token_type": "Bearer",
				"expires_in": 3600,
				"refresh_token": "rt-1",
				"scope": "Files.ReadWrite.All",
				"id_token": %q
			}`, idToken)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	mgr := newTestManager(t)
	pointEndpointAt(mgr, srv.URL)

	login, err := mgr.StartDeviceLogin(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, login.FlowID)
	assert.Equal(t, "ABCD-1234", login.UserCode)
	assert.Contains(t, login.Message, "ABCD-1234")
	assert.Contains(t, login.Message, "https://microsoft.com/devicelogin")

	result, err := mgr.CompleteDeviceLogin(context.Background(), login.FlowID, 30*time.Second)
	require.NoError(t, err)

	assert.Equal(t, "ada@contoso.com", result.Account.Username)
	assert.Equal(t, "obj-1.tenant-1", result.Account.HomeAccountID)
	assert.True(t, result.Account.IsActive)
	assert.Equal(t, "Files.ReadWrite.All", result.Scope)

	active := mgr.ActiveAccount()
	require.NotNil(t, active)
	assert.Equal(t, "ada@contoso.com", active.Username)

	// The account survived to disk.
	persisted, err := mgr.store.Load()
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Equal(t, "at-1", persisted[0].Token.AccessToken)

	// Flow handles are single use.
	_, err = mgr.CompleteDeviceLogin(context.Background(), login.FlowID, time.Second)
	assert.ErrorIs(t, err, ErrFlowNotFound)
}

func TestCompleteDeviceLoginUnknownFlow(t *testing.T) {
	mgr := newTestManager(t)

	_, err := mgr.CompleteDeviceLogin(context.Background(), "no-such-flow", 0)
	assert.ErrorIs(t, err, ErrFlowNotFound)
}

func TestCompleteDeviceLoginTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": "authorization_pending"}`)
	}))
	defer srv.Close()

	mgr := newTestManager(t)
	pointEndpointAt(mgr, srv.URL)

	mgr.mu.Lock()
	mgr.flows["flow-1"] = &oauth2.DeviceAuthResponse{
		DeviceCode: "dc-1",
		Interval:   1,
		Expiry:     time.Now().Add(time.Minute),
	}
	mgr.mu.Unlock()

	_, err := mgr.CompleteDeviceLogin(context.Background(), "flow-1", 100*time.Millisecond)
	require.Error(t, err)
}

func TestAccountsAutoSelectsSoleAccount(t *testing.T) {
	mgr := newTestManager(t, testRecord("ada@contoso.com", "oid1.tid1"))

	accounts := mgr.Accounts()
	require.Len(t, accounts, 1)
	assert.True(t, accounts[0].IsActive)
}

func TestAccountsNoAutoSelectWithMultiple(t *testing.T) {
	mgr := newTestManager(t,
		testRecord("ada@contoso.com", "oid1.tid1"),
		testRecord("grace@contoso.com", "oid2.tid1"),
	)

	for _, acct := range mgr.Accounts() {
		assert.False(t, acct.IsActive, "no account should auto-activate when several are cached")
	}
	assert.Nil(t, mgr.ActiveAccount())
}

func TestSetActiveAccount(t *testing.T) {
	mgr := newTestManager(t,
		testRecord("ada@contoso.com", "oid1.tid1"),
		testRecord("grace@contoso.com", "oid2.tid1"),
	)

	acct, err := mgr.SetActiveAccount("oid2.tid1", "")
	require.NoError(t, err)
	assert.Equal(t, "grace@contoso.com", acct.Username)

	// Username matching is case-insensitive.
	acct, err = mgr.SetActiveAccount("", "ADA@Contoso.COM")
	require.NoError(t, err)
	assert.Equal(t, "ada@contoso.com", acct.Username)
	assert.Equal(t, "oid1.tid1", mgr.ActiveAccount().HomeAccountID)

	_, err = mgr.SetActiveAccount("", "nobody@contoso.com")
	assert.ErrorIs(t, err, ErrAccountNotFound)

	_, err = mgr.SetActiveAccount("", "")
	require.Error(t, err)
}

func TestActiveAccountClearsStaleSelection(t *testing.T) {
	mgr := newTestManager(t, testRecord("ada@contoso.com", "oid1.tid1"))

	mgr.mu.Lock()
	mgr.activeID = "evicted.account"
	mgr.mu.Unlock()

	assert.Nil(t, mgr.ActiveAccount())
}

func TestContextSnapshot(t *testing.T) {
	mgr := newTestManager(t, testRecord("ada@contoso.com", "oid1.tid1"))

	snap := mgr.Context()
	require.NotNil(t, snap.ActiveAccount)
	assert.Equal(t, "ada@contoso.com", snap.ActiveAccount.Username)
	assert.Len(t, snap.AvailableAccounts, 1)
	assert.Equal(t, []string{"Files.ReadWrite.All"}, snap.Scopes)
	assert.Equal(t, mgr.store.Path(), snap.CachePath)
}

func TestTokenWithoutActiveAccount(t *testing.T) {
	mgr := newTestManager(t)

	_, err := mgr.Token(context.Background())
	assert.ErrorIs(t, err, ErrNoActiveAccount)
}

func TestTokenReturnsCachedValidToken(t *testing.T) {
	mgr := newTestManager(t, testRecord("ada@contoso.com", "oid1.tid1"))

	// No endpoint is reachable; a valid cached token must be served as is.
	tok, err := mgr.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-oid1.tid1", tok)
}

func TestTokenRefreshesAndPersists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		assert.Equal(t, "refresh-oid1.tid1", r.Form.Get("refresh_token"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"access_token": "refreshed-at",
			"token_type": "Bearer",
			"expires_in": 3600,
			"refresh_token": "refreshed-rt"
		}`)
	}))
	defer srv.Close()

	expired := testRecord("ada@contoso.com", "oid1.tid1")
	expired.Token.Expiry = time.Now().Add(-time.Hour)

	mgr := newTestManager(t, expired)
	pointEndpointAt(mgr, srv.URL)

	tok, err := mgr.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "refreshed-at", tok)

	// The refreshed token reached the cache file.
	persisted, err := mgr.store.Load()
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Equal(t, "refreshed-at", persisted[0].Token.AccessToken)
	assert.Equal(t, "refreshed-rt", persisted[0].Token.RefreshToken)

	// A second acquisition reuses the fresh token without another refresh.
	tok, err = mgr.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "refreshed-at", tok)
}

func TestAccountFromTokenRequiresIDToken(t *testing.T) {
	_, err := accountFromToken(&oauth2.Token{AccessToken: "at"})
	require.Error(t, err)

	bad := (&oauth2.Token{AccessToken: "at"}).WithExtra(map[string]any{
		"id_token": makeIDToken(t, map[string]any{"preferred_username": "ada@contoso.com"}),
	})
	_, err = accountFromToken(bad)
	require.Error(t, err, "claims without oid/tid cannot key the cache")
}
