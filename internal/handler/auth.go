package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coffee-store-api/internal/service"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

// ----- DTOs -----

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}
type validateReq struct {
	AccessToken string `json:"access_token"`
}

type userPart struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}
type authResp struct {
	User         userPart  `json:"user"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func toAuthResp(r *service.AuthResult) authResp {
	return authResp{
		User: userPart{
			ID:       r.User.ID,
			Username: r.User.Username,
			Email:    r.User.Email,
			Role:     r.User.Role,
		},
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		ExpiresAt:    r.ExpiresAt,
	}
}

// Register creates a user and returns a token pair immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	res, err := h.Auth.Register(c.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toAuthResp(res))
}

// Login verifies credentials and returns a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}
	res, err := h.Auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toAuthResp(res))
}

// Refresh rotates the presented refresh token and returns a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	res, err := h.Auth.Refresh(c.Request().Context(), strings.TrimSpace(req.RefreshToken))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toAuthResp(res))
}

// Logout revokes the presented refresh token. Unknown tokens are
// ignored so logging out twice is safe.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	if err := h.Auth.Logout(c.Request().Context(), strings.TrimSpace(req.RefreshToken)); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Validate reports whether an access token is currently valid.
func (h *AuthHandler) Validate(c echo.Context) error {
	var req validateReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.AccessToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "access_token required"})
	}
	valid := h.Auth.ValidateToken(strings.TrimSpace(req.AccessToken))
	return c.JSON(http.StatusOK, echo.Map{"valid": valid})
}

// Me returns the authenticated caller's identity claims.
func (h *AuthHandler) Me(c echo.Context) error {
	id, role := currentUser(c)
	return c.JSON(http.StatusOK, echo.Map{"user_id": id, "role": role})
}
