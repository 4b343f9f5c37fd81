package auth

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeIDToken builds an unsigned JWT carrying the given claims. The manager
// never verifies signatures, so "sig" suffices for the third segment.
func makeIDToken(t *testing.T, claims map[string]any) string {
	t.Helper()

	payload, err := json.Marshal(claims)
	require.NoError(t, err)

	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + ".sig"
}

func TestParseIDTokenClaims(t *testing.T) {
	token := makeIDToken(t, map[string]any{
		"preferred_username": "ada@contoso.com",
		"name":               "Ada Lovelace",
		"oid":                "obj-1",
		"tid":                "tenant-1",
	})

	claims, err := parseIDTokenClaims(token)
	require.NoError(t, err)

	assert.Equal(t, "ada@contoso.com", claims.PreferredUsername)
	assert.Equal(t, "Ada Lovelace", claims.Name)
	assert.Equal(t, "obj-1.tenant-1", claims.homeAccountID())
	assert.Equal(t, "ada@contoso.com", claims.username())
}

func TestParseIDTokenClaimsRejectsNonJWT(t *testing.T) {
	_, err := parseIDTokenClaims("not-a-jwt")
	require.Error(t, err)

	_, err = parseIDTokenClaims("a.!!!invalid-base64!!!.c")
	require.Error(t, err)
}

func TestUsernameFallsBackToEmail(t *testing.T) {
	claims := idTokenClaims{Email: "ada@contoso.com"}
	assert.Equal(t, "ada@contoso.com", claims.username())
}

func TestHomeAccountIDRequiresBothClaims(t *testing.T) {
	assert.Empty(t, idTokenClaims{ObjectID: "obj-1"}.homeAccountID())
	assert.Empty(t, idTokenClaims{TenantID: "tenant-1"}.homeAccountID())
	assert.Empty(t, idTokenClaims{}.homeAccountID())
}
