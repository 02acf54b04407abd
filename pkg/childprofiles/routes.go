package childprofiles

import (
	"github.com/kindlewood/studio/pkg/auth"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, authMiddleware *auth.Middleware) {
	h := &handler{
		childProfileService: NewService(db),
	}

	g.Use(authMiddleware.Authenticate)
	g.GET("", h.list)
	g.POST("", h.create)
}
