package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"fmt"
	"net/http" // HTTP status codes for responses
	"slices"
	"strings" // string utilities for prefix checking and trimming

	"github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
	"github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers
)

// Context keys set by JWTAuth.
const (
	CtxUserID = "user_id"
	CtxScopes = "scopes"
	CtxClaims = "claims"
)

// Claims are the token claims this service reads.  Identity providers put
// granted scopes either into a space separated "scope" string or into a
// "permissions" array; both are honoured.
type Claims struct {
	jwt.RegisteredClaims
	Scope       string   `json:"scope,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	Nickname    string   `json:"nickname,omitempty"`
}

// Scopes merges the "scope" and "permissions" claims.
func (c *Claims) Scopes() []string {
	out := strings.Fields(c.Scope)
	for _, p := range c.Permissions {
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}

// Issuers binds each key source to the issuer its tokens must carry.
// HMAC tokens are signed locally and must name Local; tokens signed with
// the identity provider's keys must name Remote.  An empty value accepts
// any issuer for that source.
type Issuers struct {
	Local  string
	Remote string
}

// Verifier validates bearer tokens: signature via keyfunc, algorithm
// against methods, audience, and issuer against the key source that
// signed the token.  Expiry is mandatory.
type Verifier struct {
	keyfunc  jwt.Keyfunc
	methods  []string
	audience string
	issuers  Issuers
}

func NewVerifier(keyfunc jwt.Keyfunc, methods []string, audience string, issuers Issuers) *Verifier {
	return &Verifier{keyfunc: keyfunc, methods: methods, audience: audience, issuers: issuers}
}

// Verify parses raw and returns its claims, or the reason it was rejected.
func (v *Verifier) Verify(raw string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods(v.methods),
		jwt.WithExpirationRequired(),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, v.keyfunc, opts...)
	if err != nil {
		return nil, err
	}
	want := v.issuers.Remote
	if _, ok := tok.Method.(*jwt.SigningMethodHMAC); ok {
		want = v.issuers.Local
	}
	if want != "" && claims.Issuer != want {
		return nil, fmt.Errorf("%w: %q", jwt.ErrTokenInvalidIssuer, claims.Issuer)
	}
	return claims, nil
}

// JWTAuth returns an Echo middleware that requires a valid Bearer token.
// A request without a bearer token gets 401; a token that fails
// verification gets 403 with the reason.  On success the subject, the
// granted scopes and the full claims are stored in the context under
// CtxUserID, CtxScopes and CtxClaims.
func JWTAuth(v *Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if !strings.HasPrefix(auth, "Bearer ") || raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Requires authentication"})
			}
			claims, err := v.Verify(raw)
			if err != nil {
				return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
			}
			c.Set(CtxUserID, claims.Subject)
			c.Set(CtxScopes, claims.Scopes())
			c.Set(CtxClaims, claims)
			return next(c)
		}
	}
}
