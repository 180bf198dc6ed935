package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/canteen-preorder/internal/repository"
	"github.com/iliyamo/canteen-preorder/internal/service"
)

// OrderHandler serves /orders.
type OrderHandler struct {
	Orders *service.OrderService
}

func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	if orders == nil {
		panic("nil service passed to NewOrderHandler")
	}
	return &OrderHandler{Orders: orders}
}

// orderRequest is the body of POST /orders/ and PUT /orders/:id.  Status
// defaults to true (active) when omitted.
type orderRequest struct {
	UserID      uint64     `json:"user_id" validate:"required"`
	MealID      uint64     `json:"meal_id" validate:"required"`
	Status      *bool      `json:"status"`
	WithdrawnAt *time.Time `json:"withdrawn_at"`
}

func (r orderRequest) input() service.OrderInput {
	return service.OrderInput{UserID: r.UserID, MealID: r.MealID, Status: r.Status, WithdrawnAt: r.WithdrawnAt}
}

type orderByNameRequest struct {
	Name       string `json:"name" validate:"required,max=30"`
	Surname    string `json:"surname" validate:"required,max=30"`
	MealNumber int    `json:"meal_number" validate:"min=1,max=3"`
}

func (r *orderByNameRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Surname = strings.TrimSpace(r.Surname)
}

func (h *OrderHandler) Create(c echo.Context) error {
	var req orderRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	o, err := h.Orders.Create(c.Request().Context(), req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, o)
}

// CreateByName handles POST /orders/by-name: the meal with the given
// number on today's menu is ordered for the user with that name.
func (h *OrderHandler) CreateByName(c echo.Context) error {
	var req orderByNameRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	o, err := h.Orders.CreateByName(c.Request().Context(), service.OrderByNameInput{
		Name:       req.Name,
		Surname:    req.Surname,
		MealNumber: req.MealNumber,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, o)
}

// List handles GET /orders/ with optional ?user_id, ?meal_id and ?status filters.
func (h *OrderHandler) List(c echo.Context) error {
	var f repository.OrderFilter
	if raw := c.QueryParam("user_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user_id"})
		}
		f.UserID = id
	}
	if raw := c.QueryParam("meal_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid meal_id"})
		}
		f.MealID = id
	}
	if raw := c.QueryParam("status"); raw != "" {
		st, err := strconv.ParseBool(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
		}
		f.Status = &st
	}
	orders, err := h.Orders.List(c.Request().Context(), f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	o, err := h.Orders.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// Update handles PUT /orders/:id.  Every field is replaced.
func (h *OrderHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var req orderRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	o, err := h.Orders.Update(c.Request().Context(), id, req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// Withdraw handles POST /orders/:id/withdraw.
func (h *OrderHandler) Withdraw(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	o, err := h.Orders.Withdraw(c.Request().Context(), id)
	if errors.Is(err, repository.ErrConflict) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "order already withdrawn"})
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	if err := h.Orders.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Order deleted successfully!"})
}
