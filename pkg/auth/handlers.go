package auth

import (
	"net/http"
	"time"

	"github.com/kindlewood/studio/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const (
	// CookieName is the name of the session cookie.
	CookieName = "kindlewood_session"
	// CookieMaxAge is how long the cookie is valid.
	CookieMaxAge = TokenExpiry
)

type handler struct {
	authService *Service
}

func buildMeResponse(user *models.User) MeResponse {
	return MeResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	}
}

func sessionCookie(c echo.Context, value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.Request().TLS != nil || c.Request().Header.Get("X-Forwarded-Proto") == "https",
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *handler) startSession(c echo.Context, user *models.User) error {
	token, err := h.authService.GenerateToken(user)
	if err != nil {
		return errors.WithStack(err)
	}
	c.SetCookie(sessionCookie(c, token, CookieMaxAge))
	return nil
}

func (h *handler) login(c echo.Context) error {
	ctx := c.Request().Context()

	params := LoginPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.authService.Authenticate(ctx, params.Email, params.Password)
	if err != nil {
		return err
	}

	if err := h.startSession(c, user); err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusOK, buildMeResponse(user)))
}

func (h *handler) register(c echo.Context) error {
	ctx := c.Request().Context()

	params := RegisterPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.authService.Register(ctx, params.Email, params.Password, params.DisplayName)
	if err != nil {
		return err
	}

	if err := h.startSession(c, user); err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusCreated, buildMeResponse(user)))
}

func (h *handler) logout(c echo.Context) error {
	// A negative MaxAge tells the browser to drop the cookie.
	c.SetCookie(sessionCookie(c, "", -time.Second))

	return errors.WithStack(c.JSON(http.StatusOK, echo.Map{"message": "Logged out successfully"}))
}

func (h *handler) me(c echo.Context) error {
	ctx := c.Request().Context()

	principal, err := PrincipalFromContext(c)
	if err != nil {
		return err
	}

	user, err := h.authService.GetUserByID(ctx, principal.UserID)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, buildMeResponse(user)))
}
