// Package testutils provides seeding endpoints for end-to-end test runs.
// They're only registered when the environment is "test".
package testutils

import (
	"github.com/kindlewood/studio/pkg/auth"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB, jwtSecret string) {
	h := &handler{
		db:          db,
		authService: auth.NewService(db, jwtSecret),
	}

	test := e.Group("/test")
	test.POST("/users", h.createUser)
	test.POST("/projects", h.createProject)
	test.DELETE("/data", h.deleteAll)
}
