package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/canteen-preorder/internal/middleware"
	"github.com/iliyamo/canteen-preorder/internal/service"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

// ----- DTOs -----

type loginReq struct {
	UserNumber string `json:"user_number" validate:"required,len=4,number"`
	Password   string `json:"password" validate:"required"`
}

func (r *loginReq) normalize() { r.UserNumber = strings.TrimSpace(r.UserNumber) }

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type userPart struct {
	Name       string `json:"name"`
	Surname    string `json:"surname"`
	ISICID     string `json:"isic_id"`
	UserNumber string `json:"user_number"`
}

type authResp struct {
	User   userPart  `json:"user"`
	Access tokenPart `json:"access"`
}

// Login: verify user number + password and return an access token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	tok, u, err := h.Auth.Login(c.Request().Context(), req.UserNumber, req.Password)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	case errors.Is(err, service.ErrLoginDisabled):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "local login is not enabled"})
	case err != nil:
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, authResp{
		User:   userPart{Name: u.Name, Surname: u.Surname, ISICID: u.ISICID, UserNumber: u.UserNumber},
		Access: tokenPart{Token: tok.Token, Expires: tok.Exp},
	})
}

// Me returns the subject and scopes of the presented token.
func (h *AuthHandler) Me(c echo.Context) error {
	scopes, _ := c.Get(middleware.CtxScopes).([]string)
	if scopes == nil {
		scopes = []string{}
	}
	resp := echo.Map{"sub": middleware.Subject(c), "scopes": scopes}
	if cl, ok := c.Get(middleware.CtxClaims).(*middleware.Claims); ok && cl.Nickname != "" {
		resp["nickname"] = cl.Nickname
	}
	return c.JSON(http.StatusOK, resp)
}
