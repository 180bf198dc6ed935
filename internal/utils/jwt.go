package utils // package utils provides helper functions for token creation and hashing

import (
	"strings"
	"time" // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the JWT string.  Exp stores the expiration
// timestamp as a time.Time.  Access tokens are sent in the Authorization
// header when calling protected endpoints.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// TokenClaims are the values placed into a locally issued token.
type TokenClaims struct {
	Issuer   string
	Audience string
	Subject  string   // user number of the holder
	Nickname string   // ISIC id, mirrors what the identity provider puts there
	Scopes   []string // space separated into the "scope" claim
}

// NewAccessToken builds and signs an HS256 JWT.  Besides the registered
// claims (iss, aud, sub, exp, iat) it carries "scope" and "nickname" so
// that locally issued tokens look like the identity provider's.
func NewAccessToken(secret string, tc TokenClaims, ttlMin int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"iss":      tc.Issuer,
		"aud":      tc.Audience,
		"sub":      tc.Subject,
		"nickname": tc.Nickname,
		"exp":      exp.Unix(),
		"iat":      now.Unix(),
	}
	if len(tc.Scopes) > 0 {
		claims["scope"] = strings.Join(tc.Scopes, " ")
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}
