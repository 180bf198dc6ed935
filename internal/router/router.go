package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/canteen-preorder/internal/handler" // import the handlers that implement business logic
)

// RegisterRoutes registers routes that do not belong to a resource group.
// It also strips trailing slashes so that /users and /users/ reach the
// same handler.
func RegisterRoutes(e *echo.Echo) {
	e.Pre(echomw.RemoveTrailingSlash())
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the token endpoints.  Login is public; /auth/me
// requires a valid bearer token checked by requireAuth.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, requireAuth echo.MiddlewareFunc) {
	g := e.Group("/auth")
	g.POST("/login", a.Login)
	g.GET("/me", a.Me, requireAuth)
}

// RegisterUsers registers /users.  The static segments (/private and
// /meals-info) are matched before the :isic_id parameter by echo's router
// regardless of order, but they are listed first for readability.  admin
// is applied to the listing of all users only.
func RegisterUsers(e *echo.Echo, h *handler.UserHandler, admin ...echo.MiddlewareFunc) {
	g := e.Group("/users")
	g.POST("", h.Create)
	g.GET("/private", h.List, admin...)
	g.GET("/meals-info/:isic_id", h.MealInfo)
	g.GET("/:isic_id", h.Get)
	g.PUT("/:isic_id", h.Update)
	g.DELETE("/:isic_id", h.Delete)
}

// MealMiddleware groups the middleware applied to /meals.
type MealMiddleware struct {
	Cache      echo.MiddlewareFunc   // on reads
	Invalidate echo.MiddlewareFunc   // on writes
	Admin      []echo.MiddlewareFunc // on delete
}

// RegisterMeals registers /meals.  Reads are served through the response
// cache and every successful write empties it.
func RegisterMeals(e *echo.Echo, h *handler.MealHandler, mw MealMiddleware) {
	cache := orNoop(mw.Cache)
	invalidate := orNoop(mw.Invalidate)

	g := e.Group("/meals")
	g.POST("", h.Create, invalidate)
	g.GET("", h.List, cache)
	g.GET("/:id", h.Get, cache)
	g.PUT("/:id", h.Update, invalidate)
	g.DELETE("/:id", h.Delete, append(append([]echo.MiddlewareFunc{}, mw.Admin...), invalidate)...)
}

// RegisterOrders registers /orders.
func RegisterOrders(e *echo.Echo, h *handler.OrderHandler) {
	g := e.Group("/orders")
	g.POST("", h.Create)
	g.POST("/by-name", h.CreateByName)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.POST("/:id/withdraw", h.Withdraw)
	g.DELETE("/:id", h.Delete)
}

func orNoop(m echo.MiddlewareFunc) echo.MiddlewareFunc {
	if m != nil {
		return m
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
}
