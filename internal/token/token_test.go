package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseAt verifies tokenString with secret as of now.
func parseAt(tokenString, secret string, now time.Time) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithTimeFunc(func() time.Time { return now }), jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func TestIssue_ClaimsAndHeader(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	iss := NewIssuer("AC1", "SK1", "secret", 30*time.Minute)
	iss.now = func() time.Time { return fixed }

	g, err := iss.Issue("daily-standup")
	require.NoError(t, err)
	assert.NotEmpty(t, g.Identity)
	assert.Equal(t, fixed.Add(30*time.Minute), g.ExpiresAt)

	claims, err := parseAt(g.Token, "secret", fixed)
	require.NoError(t, err)
	assert.Equal(t, "SK1", claims.Issuer)
	assert.Equal(t, "AC1", claims.Subject)
	assert.True(t, strings.HasPrefix(claims.ID, "SK1-"))
	assert.Equal(t, g.Identity, claims.Grants.Identity)
	require.NotNil(t, claims.Grants.Video)
	assert.Equal(t, "daily-standup", claims.Grants.Video.Room)

	parsed, _, err := jwt.NewParser().ParseUnverified(g.Token, &Claims{})
	require.NoError(t, err)
	assert.Equal(t, ContentType, parsed.Header["cty"])
}

func TestIssue_UniqueIdentities(t *testing.T) {
	iss := NewIssuer("AC1", "SK1", "secret", 0)
	a, err := iss.Issue("r")
	require.NoError(t, err)
	b, err := iss.Issue("r")
	require.NoError(t, err)
	assert.NotEqual(t, a.Identity, b.Identity)
}

func TestIssue_Errors(t *testing.T) {
	_, err := NewIssuer("", "", "", 0).Issue("r")
	require.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewIssuer("AC1", "SK1", "secret", 0).Issue("")
	require.ErrorIs(t, err, ErrRoomRequired)
}

func TestIssue_SignedWithKeySecret(t *testing.T) {
	g, err := NewIssuer("AC1", "SK1", "secret", 0).Issue("r")
	require.NoError(t, err)
	_, err = parseAt(g.Token, "other", time.Now())
	require.ErrorIs(t, err, jwt.ErrSignatureInvalid)

	_, err = parseAt(g.Token, "secret", g.ExpiresAt.Add(time.Minute))
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}
