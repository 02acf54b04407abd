package auth

import (
	"strings"

	"github.com/kindlewood/studio/pkg/errcodes"
	"github.com/kindlewood/studio/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/robinjoseph08/golib/logger"
)

const principalKey = "principal"

// Middleware provides authentication middleware.
type Middleware struct {
	authService *Service
}

func NewMiddleware(authService *Service) *Middleware {
	return &Middleware{
		authService: authService,
	}
}

// sessionToken reads the token from the session cookie, falling back to an
// Authorization: Bearer header for non-browser clients.
func sessionToken(c echo.Context) string {
	if cookie, err := c.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// Authenticate resolves the session into a models.Principal. Requests without
// a valid session for an existing user get a 401.
func (m *Middleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		token := sessionToken(c)
		if token == "" {
			return errcodes.Unauthorized("Authentication required")
		}

		claims, err := m.authService.ValidateToken(token)
		if err != nil {
			return errcodes.Unauthorized("Invalid or expired token")
		}

		user, err := m.authService.GetUserByID(ctx, claims.UserID)
		if err != nil {
			return errcodes.Unauthorized("User not found")
		}

		c.Set(principalKey, models.Principal{UserID: user.ID})
		c.SetRequest(c.Request().WithContext(
			logger.FromContext(ctx).Root(logger.Data{"user_id": user.ID}).WithContext(ctx),
		))

		return next(c)
	}
}

// PrincipalFromContext returns the caller set by Authenticate.
func PrincipalFromContext(c echo.Context) (models.Principal, error) {
	p, ok := c.Get(principalKey).(models.Principal)
	if !ok {
		return models.Principal{}, errcodes.Unauthorized("Authentication required")
	}
	return p, nil
}
