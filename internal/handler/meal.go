package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/canteen-preorder/internal/model"
	"github.com/iliyamo/canteen-preorder/internal/repository"
	"github.com/iliyamo/canteen-preorder/internal/service"
)

// MealHandler serves /meals.
type MealHandler struct {
	Meals *service.MealService
}

func NewMealHandler(meals *service.MealService) *MealHandler {
	if meals == nil {
		panic("nil service passed to NewMealHandler")
	}
	return &MealHandler{Meals: meals}
}

// mealRequest is the body of POST /meals/ and PUT /meals/:id.  A meal
// number of 0 fails min=1, so it carries no required tag.
type mealRequest struct {
	MealNumber int         `json:"meal_number" validate:"min=1,max=3"`
	Name       string      `json:"name" validate:"required,max=100"`
	Date       *model.Date `json:"date" validate:"required"`
}

func (r *mealRequest) normalize() { r.Name = strings.TrimSpace(r.Name) }

func (r mealRequest) input() service.MealInput {
	return service.MealInput{MealNumber: r.MealNumber, Name: r.Name, Date: *r.Date}
}

func (h *MealHandler) Create(c echo.Context) error {
	var req mealRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	m, err := h.Meals.Create(c.Request().Context(), req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

// List handles GET /meals/ with an optional ?date=YYYY-MM-DD filter.
func (h *MealHandler) List(c echo.Context) error {
	var day *model.Date
	if raw := c.QueryParam("date"); raw != "" {
		d, err := model.ParseDate(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		day = &d
	}
	meals, err := h.Meals.List(c.Request().Context(), day)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, meals)
}

func (h *MealHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	m, err := h.Meals.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// Update handles PUT /meals/:id; name, meal number and date are replaced.
func (h *MealHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var req mealRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	m, err := h.Meals.Update(c.Request().Context(), id, req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *MealHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	err := h.Meals.Delete(c.Request().Context(), id)
	if errors.Is(err, repository.ErrConflict) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "meal has orders"})
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Meal deleted successfully!"})
}
