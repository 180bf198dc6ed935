package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/canteen-preorder/internal/service"
)

// UserHandler serves /users.
type UserHandler struct {
	Users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	if users == nil {
		panic("nil service passed to NewUserHandler")
	}
	return &UserHandler{Users: users}
}

// userRequest is the body of POST /users/ and PUT /users/:isic_id.
type userRequest struct {
	Name       string `json:"name" validate:"required,max=30"`
	Surname    string `json:"surname" validate:"required,max=30"`
	ISICID     string `json:"isic_id" validate:"required,max=32"`
	UserNumber string `json:"user_number" validate:"required,len=4,number"`
	Password   string `json:"password" validate:"required,min=4"`
}

// normalize trims the text fields so a blank value fails required.
func (r *userRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Surname = strings.TrimSpace(r.Surname)
	r.ISICID = strings.TrimSpace(r.ISICID)
	r.UserNumber = strings.TrimSpace(r.UserNumber)
}

func (r userRequest) input() service.UserInput {
	return service.UserInput{
		Name:       r.Name,
		Surname:    r.Surname,
		ISICID:     r.ISICID,
		UserNumber: r.UserNumber,
		Password:   r.Password,
	}
}

// Create handles POST /users/.
func (h *UserHandler) Create(c echo.Context) error {
	var req userRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	u, err := h.Users.Create(c.Request().Context(), req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, u)
}

// List handles GET /users/private.
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.Users.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHandler) Get(c echo.Context) error {
	u, err := h.Users.Get(c.Request().Context(), c.Param("isic_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// Update handles PUT /users/:isic_id.  Every field is replaced.
func (h *UserHandler) Update(c echo.Context) error {
	var req userRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	u, err := h.Users.Update(c.Request().Context(), c.Param("isic_id"), req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.Users.Delete(c.Request().Context(), c.Param("isic_id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User deleted successfully!"})
}

// MealInfo handles GET /users/meals-info/:isic_id, the lookup done at the
// counter when a card is presented.
func (h *UserHandler) MealInfo(c echo.Context) error {
	info, err := h.Users.MealInfo(c.Request().Context(), c.Param("isic_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, info)
}
