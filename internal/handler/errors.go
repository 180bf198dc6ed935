package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/iliyamo/canteen-preorder/internal/repository"
)

// respondError maps repository sentinels onto HTTP responses.  Anything it
// does not recognise is logged and reported as a 500 without details.
func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
	case errors.Is(err, repository.ErrMealNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Meal not found"})
	case errors.Is(err, repository.ErrOrderNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Order not found"})
	case errors.Is(err, repository.ErrNoMealToday):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "No meal ordered for today"})
	case errors.Is(err, repository.ErrAmbiguousUser):
		return c.JSON(http.StatusConflict, echo.Map{"error": "more than one user has this name"})
	case errors.Is(err, repository.ErrDuplicate):
		return c.JSON(http.StatusConflict, echo.Map{"error": "user already exists"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
	}
	log.Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func invalidID(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
}
