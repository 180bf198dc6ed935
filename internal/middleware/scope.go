package middleware // middleware provides shared request processing for handlers

import (
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"
)

// RequireScope returns a middleware that enforces that the authenticated
// token was granted every one of scopes.  It must run after JWTAuth.  With
// no scopes configured it lets every authenticated request through, so a
// deployment can protect admin routes with authentication alone.
func RequireScope(scopes ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if len(scopes) == 0 {
			return next
		}
		return func(c echo.Context) error {
			granted, _ := c.Get(CtxScopes).([]string)
			var missing []string
			for _, s := range scopes {
				if !slices.Contains(granted, s) {
					missing = append(missing, s)
				}
			}
			if len(missing) > 0 {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "missing scope: " + strings.Join(missing, " ")})
			}
			return next(c)
		}
	}
}
