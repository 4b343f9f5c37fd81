package auth

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// idTokenClaims are the Azure AD ID token claims used to identify an
// account. The token arrives directly from the identity provider over TLS,
// so the payload is decoded without signature verification — the claims
// only hydrate account bookkeeping, they never grant access.
type idTokenClaims struct {
	PreferredUsername string `json:"preferred_username"`
	Email             string `json:"email"`
	Name              string `json:"name"`
	ObjectID          string `json:"oid"`
	TenantID          string `json:"tid"`
}

// username returns the best available identifier for display and matching.
func (c idTokenClaims) username() string {
	if c.PreferredUsername != "" {
		return c.PreferredUsername
	}
	return c.Email
}

// homeAccountID composes the MSAL-style "<oid>.<tid>" identifier that keys
// accounts in the cache.
func (c idTokenClaims) homeAccountID() string {
	if c.ObjectID == "" || c.TenantID == "" {
		return ""
	}
	return c.ObjectID + "." + c.TenantID
}

// parseIDTokenClaims decodes the payload segment of a JWT ID token.
func parseIDTokenClaims(idToken string) (idTokenClaims, error) {
	var claims idTokenClaims

	parts := strings.Split(idToken, ".")
	if len(parts) != 3 {
		return claims, fmt.Errorf("auth: ID token is not a JWT")
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return claims, fmt.Errorf("auth: decoding ID token payload: %w", err)
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return claims, fmt.Errorf("auth: parsing ID token claims: %w", err)
	}
	return claims, nil
}
