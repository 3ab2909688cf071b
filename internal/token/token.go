// Package token issues participant access tokens for the video platform.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// ContentType marks the JWT as a platform access token.
	ContentType = "twilio-fpa;v=1"
	// DefaultTTL is the token lifetime when none is configured.
	DefaultTTL = time.Hour
)

var (
	ErrRoomRequired  = errors.New("room name required")
	ErrNotConfigured = errors.New("access token credentials not configured")
)

// VideoGrant allows joining one room.
type VideoGrant struct {
	Room string `json:"room,omitempty"`
}

// Grants is the grants claim of an access token.
type Grants struct {
	Identity string      `json:"identity"`
	Video    *VideoGrant `json:"video,omitempty"`
}

// Claims are the access token claims.
type Claims struct {
	Grants Grants `json:"grants"`
	jwt.RegisteredClaims
}

// Grant is an issued token together with the generated participant identity.
type Grant struct {
	Token     string    `json:"token"`
	Identity  string    `json:"identity"`
	Room      string    `json:"room_name"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Issuer signs access tokens with an API key.
type Issuer struct {
	accountSID string
	keySID     string
	secret     []byte
	ttl        time.Duration
	now        func() time.Time
}

// NewIssuer creates an access token issuer.
func NewIssuer(accountSID, keySID, keySecret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{
		accountSID: accountSID,
		keySID:     keySID,
		secret:     []byte(keySecret),
		ttl:        ttl,
		now:        time.Now,
	}
}

// Issue creates a token for a new random participant identity in the given room.
func (s *Issuer) Issue(room string) (*Grant, error) {
	return s.IssueFor(uuid.NewString(), room)
}

// IssueFor creates a token for identity in the given room.
func (s *Issuer) IssueFor(identity, room string) (*Grant, error) {
	if s.accountSID == "" || s.keySID == "" || len(s.secret) == 0 {
		return nil, ErrNotConfigured
	}
	if room == "" {
		return nil, ErrRoomRequired
	}
	now := s.now()
	exp := now.Add(s.ttl)
	claims := Claims{
		Grants: Grants{
			Identity: identity,
			Video:    &VideoGrant{Room: room},
		},
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        fmt.Sprintf("%s-%d", s.keySID, now.Unix()),
			Issuer:    s.keySID,
			Subject:   s.accountSID,
			ExpiresAt: jwt.NewNumericDate(exp),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t.Header["cty"] = ContentType
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	return &Grant{Token: signed, Identity: identity, Room: room, ExpiresAt: exp}, nil
}
