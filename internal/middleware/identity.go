package middleware

// identity.go holds the helper shared by the rate limiter and handlers to
// name the caller of a request.

import "github.com/labstack/echo/v4"

// Subject returns the token subject stored by JWTAuth, or "guest" when the
// request is not authenticated.
func Subject(c echo.Context) string {
	if s, ok := c.Get(CtxUserID).(string); ok && s != "" {
		return s
	}
	return "guest"
}
