package kidsapp

import (
	"github.com/kindlewood/studio/pkg/auth"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, authMiddleware *auth.Middleware) {
	h := &handler{
		kidsAppService: NewService(db),
	}

	g.POST("/:id/publish-kids-app", h.publish, authMiddleware.Authenticate)
	g.DELETE("/:id/publish-kids-app", h.unpublish, authMiddleware.Authenticate)
	// Read by the Kids App itself, which has no studio session.
	g.GET("/:id/publish-kids-app", h.status)
}
