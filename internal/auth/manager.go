// Package auth manages Microsoft identities for the Graph connector: the
// device-code login flow, a multi-account token cache, and the selection of
// the account that subsequent Graph calls run as.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"
)

// Sentinel errors surfaced to tool handlers. The messages tell the agent
// what to do next.
var (
	ErrNoActiveAccount = errors.New("auth: no active Microsoft account selected — sign in with start_device_login or pick one with set_active_account")
	ErrFlowNotFound    = errors.New("auth: the requested device flow does not exist or has already been completed")
	ErrAccountNotFound = errors.New("auth: no cached account matches the provided identifier")
)

// identityScopes are requested on top of the configured Graph scopes so the
// token response carries an ID token; account bookkeeping needs its claims.
var identityScopes = []string{"openid", "profile", "email"}

// AccountStatus is an account plus whether it is the one Graph calls run as.
type AccountStatus struct {
	Account
	IsActive bool `json:"is_active"`
}

// DeviceLogin is the first half of the login handshake, shown to the user.
type DeviceLogin struct {
	FlowID          string `json:"flow_id"`
	UserCode        string `json:"user_code"`
	VerificationURI string `json:"verification_uri"`
	ExpiresIn       int64  `json:"expires_in"`
	Interval        int64  `json:"interval"`
	Message         string `json:"message"`
}

// LoginResult reports a completed device login.
type LoginResult struct {
	Account   AccountStatus `json:"account"`
	ExpiresIn int64         `json:"expires_in"`
	Scope     string        `json:"scope,omitempty"`
	TokenType string        `json:"token_type,omitempty"`
}

// Snapshot is a diagnostic view of the authentication state.
type Snapshot struct {
	ActiveAccount     *AccountStatus  `json:"active_account"`
	AvailableAccounts []AccountStatus `json:"available_accounts"`
	Scopes            []string        `json:"scopes"`
	CachePath         string          `json:"cache_path"`
}

// Manager coordinates authentication for Microsoft Graph with multi-account
// support. The active account lives in memory only; tokens and account
// identities persist through the FileStore.
type Manager struct {
	cfg    *oauth2.Config
	store  *FileStore
	scopes []string
	logger *slog.Logger

	mu       sync.Mutex
	records  []Record
	activeID string
	flows    map[string]*oauth2.DeviceAuthResponse
	sources  map[string]oauth2.TokenSource
}

// NewManager builds a Manager for the given Azure AD public client. An
// empty tenantID falls back to the multi-tenant "common" authority. The
// cached accounts are loaded eagerly so a corrupt cache fails at startup,
// not mid-session.
func NewManager(clientID, tenantID string, scopes []string, store *FileStore, logger *slog.Logger) (*Manager, error) {
	if clientID == "" {
		return nil, fmt.Errorf("auth: client ID is required to authenticate against Microsoft Graph")
	}
	if tenantID == "" {
		tenantID = "common"
	}
	if logger == nil {
		logger = slog.Default()
	}

	records, err := store.Load()
	if err != nil {
		return nil, err
	}

	return &Manager{
		cfg: &oauth2.Config{
			ClientID: clientID,
			Scopes:   append(append([]string{}, scopes...), identityScopes...),
			Endpoint: microsoft.AzureADEndpoint(tenantID),
		},
		store:   store,
		scopes:  scopes,
		logger:  logger,
		records: records,
		flows:   make(map[string]*oauth2.DeviceAuthResponse),
		sources: make(map[string]oauth2.TokenSource),
	}, nil
}

// StartDeviceLogin requests a device code and parks the flow under a fresh
// handle until complete_device_login claims it.
func (m *Manager) StartDeviceLogin(ctx context.Context) (*DeviceLogin, error) {
	da, err := m.cfg.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth: starting device login flow: %w", err)
	}

	flowID := uuid.NewString()

	m.mu.Lock()
	m.flows[flowID] = da
	m.mu.Unlock()

	m.logger.Info("initiated device login flow", "flow_id", flowID)

	return &DeviceLogin{
		FlowID:          flowID,
		UserCode:        da.UserCode,
		VerificationURI: da.VerificationURI,
		ExpiresIn:       int64(time.Until(da.Expiry).Seconds()),
		Interval:        da.Interval,
		Message: fmt.Sprintf(
			"To sign in, use a web browser to open %s and enter the code %s.",
			da.VerificationURI, da.UserCode),
	}, nil
}

// CompleteDeviceLogin polls the token endpoint for a flow started earlier.
// Each flow handle is single use. A positive timeout bounds the wait;
// otherwise polling runs until the device code itself expires. The signed-in
// account is cached and becomes active.
func (m *Manager) CompleteDeviceLogin(ctx context.Context, flowID string, timeout time.Duration) (*LoginResult, error) {
	m.mu.Lock()
	da, ok := m.flows[flowID]
	delete(m.flows, flowID)
	m.mu.Unlock()
	if !ok {
		return nil, ErrFlowNotFound
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tok, err := m.cfg.DeviceAccessToken(ctx, da)
	if err != nil {
		return nil, fmt.Errorf("auth: device login did not succeed: %w", err)
	}

	account, err := accountFromToken(tok)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.upsertLocked(Record{Account: account, Token: tok})
	m.activeID = account.HomeAccountID
	// Drop any cached source so the next Graph call uses the new token.
	delete(m.sources, account.HomeAccountID)
	saveErr := m.store.Save(m.records)
	m.mu.Unlock()

	if saveErr != nil {
		m.logger.Warn("unable to persist token cache", "error", saveErr)
	}

	m.logger.Info("device login completed", "username", account.Username)

	scope, _ := tok.Extra("scope").(string)
	return &LoginResult{
		Account:   AccountStatus{Account: account, IsActive: true},
		ExpiresIn: int64(time.Until(tok.Expiry).Seconds()),
		Scope:     scope,
		TokenType: tok.TokenType,
	}, nil
}

// accountFromToken derives the account identity from the ID token claims.
func accountFromToken(tok *oauth2.Token) (Account, error) {
	idToken, _ := tok.Extra("id_token").(string)
	if idToken == "" {
		return Account{}, fmt.Errorf("auth: token response carried no ID token — cannot identify the signed-in account")
	}

	claims, err := parseIDTokenClaims(idToken)
	if err != nil {
		return Account{}, err
	}

	homeID := claims.homeAccountID()
	if homeID == "" {
		return Account{}, fmt.Errorf("auth: ID token is missing the oid/tid claims needed to key the account cache")
	}

	return Account{
		Username:      claims.username(),
		Name:          claims.Name,
		HomeAccountID: homeID,
		Environment:   "login.microsoftonline.com",
	}, nil
}

// upsertLocked replaces or appends the record for its account.
// Caller holds m.mu.
func (m *Manager) upsertLocked(rec Record) {
	for i := range m.records {
		if m.records[i].Account.HomeAccountID == rec.Account.HomeAccountID {
			m.records[i] = rec
			return
		}
	}
	m.records = append(m.records, rec)
}

// Accounts lists the cached accounts. When nothing is active and exactly
// one account is cached, it becomes active — the common single-identity
// setup should not require an explicit selection step.
func (m *Manager) Accounts() []AccountStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.autoSelectLocked()

	statuses := make([]AccountStatus, 0, len(m.records))
	for _, rec := range m.records {
		statuses = append(statuses, AccountStatus{
			Account:  rec.Account,
			IsActive: rec.Account.HomeAccountID == m.activeID,
		})
	}
	return statuses
}

// autoSelectLocked activates a sole cached account. Caller holds m.mu.
func (m *Manager) autoSelectLocked() {
	if m.activeID == "" && len(m.records) == 1 {
		m.activeID = m.records[0].Account.HomeAccountID
		m.logger.Debug("auto-selected sole cached account",
			"username", m.records[0].Account.Username)
	}
}

// SetActiveAccount selects the account used for subsequent Graph calls, by
// home account ID or by case-insensitive username.
func (m *Manager) SetActiveAccount(homeAccountID, username string) (*AccountStatus, error) {
	if homeAccountID == "" && username == "" {
		return nil, fmt.Errorf("auth: either home_account_id or username must be provided")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rec := range m.records {
		byID := homeAccountID != "" && rec.Account.HomeAccountID == homeAccountID
		byName := username != "" && strings.EqualFold(rec.Account.Username, username)
		if byID || byName {
			m.activeID = rec.Account.HomeAccountID
			return &AccountStatus{Account: rec.Account, IsActive: true}, nil
		}
	}
	return nil, ErrAccountNotFound
}

// ActiveAccount returns the selected account, or nil when none is active.
// A stale selection (account evicted from the cache) is cleared.
func (m *Manager) ActiveAccount() *AccountStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeLocked()
}

func (m *Manager) activeLocked() *AccountStatus {
	if m.activeID == "" {
		return nil
	}
	for _, rec := range m.records {
		if rec.Account.HomeAccountID == m.activeID {
			return &AccountStatus{Account: rec.Account, IsActive: true}
		}
	}
	m.activeID = ""
	return nil
}

// Context returns a diagnostic snapshot of the authentication state.
func (m *Manager) Context() Snapshot {
	active := m.ActiveAccount()
	return Snapshot{
		ActiveAccount:     active,
		AvailableAccounts: m.Accounts(),
		Scopes:            m.scopes,
		CachePath:         m.store.Path(),
	}
}

// Token silently acquires an access token for the active account,
// auto-refreshing and persisting through the cached token source. It
// satisfies the graph package's TokenSource.
func (m *Manager) Token(ctx context.Context) (string, error) {
	_ = ctx // the token source outlives any single request; see below

	m.mu.Lock()
	m.autoSelectLocked()
	active := m.activeLocked()
	if active == nil {
		m.mu.Unlock()
		return "", ErrNoActiveAccount
	}

	src, ok := m.sources[active.HomeAccountID]
	if !ok {
		var rec Record
		for _, r := range m.records {
			if r.Account.HomeAccountID == active.HomeAccountID {
				rec = r
				break
			}
		}
		// The source is built on context.Background() so refreshes are not
		// tied to the lifetime of whichever tool call happened to come first.
		base := m.cfg.TokenSource(context.Background(), rec.Token)
		src = oauth2.ReuseTokenSource(rec.Token, &persistingSource{
			mgr:    m,
			homeID: rec.Account.HomeAccountID,
			base:   base,
			last:   rec.Token.AccessToken,
		})
		m.sources[active.HomeAccountID] = src
	}
	m.mu.Unlock()

	tok, err := src.Token()
	if err != nil {
		return "", fmt.Errorf("auth: unable to acquire a token silently — complete the device login flow first: %w", err)
	}
	return tok.AccessToken, nil
}

// persistingSource writes refreshed tokens back to the cache. It only
// persists when the access token actually changed, not on every call.
type persistingSource struct {
	mgr    *Manager
	homeID string
	base   oauth2.TokenSource

	mu   sync.Mutex
	last string
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := p.base.Token()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	changed := tok.AccessToken != p.last
	if changed {
		p.last = tok.AccessToken
	}
	p.mu.Unlock()

	if changed {
		p.mgr.updateToken(p.homeID, tok)
	}
	return tok, nil
}

// updateToken replaces a cached account's token and persists the cache.
func (m *Manager) updateToken(homeID string, tok *oauth2.Token) {
	m.mu.Lock()
	for i := range m.records {
		if m.records[i].Account.HomeAccountID == homeID {
			m.records[i].Token = tok
			break
		}
	}
	err := m.store.Save(m.records)
	m.mu.Unlock()

	if err != nil {
		m.logger.Warn("failed to persist refreshed token", "error", err)
		return
	}
	m.logger.Debug("persisted refreshed token", "home_account_id", homeID)
}
