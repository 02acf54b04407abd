package projects

import (
	"github.com/kindlewood/studio/pkg/auth"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers project routes on the /projects group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, authMiddleware *auth.Middleware) {
	h := &handler{
		projectService: NewService(db),
	}

	g.GET("", h.list, authMiddleware.Authenticate)
	g.GET("/:id", h.retrieve, authMiddleware.Authenticate)
}
