package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/akorchemkin/sitebase/api/http/presenter"
	"github.com/akorchemkin/sitebase/pkg/auth"
	"github.com/akorchemkin/sitebase/pkg/security/jwt"
)

type AuthHandler struct {
	useCase       auth.UseCase
	sessionTTL    time.Duration
	secureCookies bool
}

func NewAuthHandler(useCase auth.UseCase, sessionTTL time.Duration, secureCookies bool) *AuthHandler {
	return &AuthHandler{useCase: useCase, sessionTTL: sessionTTL, secureCookies: secureCookies}
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName,omitempty"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newUserResponse(u auth.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

// Register handles user registration.
// @Summary Register user
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body registerRequest true "registration payload"
// @Success 201 {object} map[string]any
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 409 {object} presenter.ErrorResponse
// @Failure 503 {object} presenter.ErrorResponse
// @Router  /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return presenter.Error(c, http.StatusBadRequest, "email and password are required")
	}

	result, err := h.useCase.Register(c.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		return h.authError(c, err, "failed to register user")
	}

	c.Cookie(h.sessionCookie(result.Token))
	return presenter.JSON(c, http.StatusCreated, fiber.Map{"user": newUserResponse(result.User)})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles user login.
// @Summary Login
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body loginRequest true "login payload"
// @Success 200 {object} map[string]any
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 503 {object} presenter.ErrorResponse
// @Router  /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return presenter.Error(c, http.StatusBadRequest, "email and password are required")
	}

	result, err := h.useCase.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return h.authError(c, err, "failed to login")
	}

	c.Cookie(h.sessionCookie(result.Token))
	return presenter.JSON(c, http.StatusOK, fiber.Map{"user": newUserResponse(result.User)})
}

// Logout clears the session cookie. Tokens are stateless, so there is
// nothing to revoke server-side; the client just stops carrying the cookie.
// @Summary Logout
// @Tags    auth
// @Success 204 {string} string ""
// @Router  /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(h.expiredCookie())
	return c.SendStatus(http.StatusNoContent)
}

// Me returns the account of the authenticated session.
// @Summary Current user
// @Tags    auth
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, _ := c.Locals("userId").(string)
	user, found, err := h.useCase.GetByID(c.Context(), userID)
	if err != nil {
		return h.authError(c, err, "failed to load user")
	}
	if !found {
		// Valid token but the account is gone; treat as unauthenticated.
		c.Cookie(h.expiredCookie())
		return presenter.Error(c, http.StatusUnauthorized, "account no longer exists")
	}
	return presenter.JSON(c, http.StatusOK, fiber.Map{"user": newUserResponse(user)})
}

type updateProfileRequest struct {
	FullName  *string `json:"fullName"`
	AvatarURL *string `json:"avatarUrl"`
}

// UpdateProfile applies a partial profile update to the authenticated user.
// @Summary Update profile
// @Tags    users
// @Accept  json
// @Produce json
// @Param   input body updateProfileRequest true "fields to change"
// @Success 200 {object} map[string]any
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /users/me [patch]
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}

	userID, _ := c.Locals("userId").(string)
	user, err := h.useCase.UpdateProfile(c.Context(), userID, auth.ProfileUpdate{
		FullName:  req.FullName,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		return h.authError(c, err, "failed to update profile")
	}
	return presenter.JSON(c, http.StatusOK, fiber.Map{"user": newUserResponse(user)})
}

// authError maps the service error taxonomy to HTTP statuses.
func (h *AuthHandler) authError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, auth.ErrValidation):
		return presenter.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrAlreadyExists):
		return presenter.Error(c, http.StatusConflict, "user already exists")
	case errors.Is(err, auth.ErrInvalidCredentials):
		return presenter.Error(c, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, auth.ErrNotFound):
		return presenter.Error(c, http.StatusNotFound, "user not found")
	case errors.Is(err, auth.ErrStoreUnavailable):
		return presenter.Error(c, http.StatusServiceUnavailable, "store unavailable")
	default:
		return presenter.Error(c, http.StatusInternalServerError, fallback)
	}
}

func (h *AuthHandler) sessionCookie(token string) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     jwt.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		Expires:  time.Now().Add(h.sessionTTL),
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}

func (h *AuthHandler) expiredCookie() *fiber.Cookie {
	return &fiber.Cookie{
		Name:     jwt.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}
